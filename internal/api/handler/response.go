package handler

import (
	"time"

	"github.com/labstack/echo/v4"
)

// Envelope wraps every /api response body.
type Envelope struct {
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{
		Status:    status,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// Fail renders an error envelope with no data.
func Fail(c echo.Context, status int, message string) error {
	return respond(c, status, message, nil)
}
