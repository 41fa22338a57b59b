package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stockroom/inventory-service/internal/api/metrics"
	"github.com/stockroom/inventory-service/internal/core/domain"
	"github.com/stockroom/inventory-service/internal/core/ports"
)

const invalidLoginMessage = "invalid email or password"

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Failure      500   {object}  Envelope
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return Fail(c, http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return Fail(c, http.StatusBadRequest, err.Error())
	}

	err := h.authService.Register(c.Request().Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
			return Fail(c, http.StatusBadRequest, "Email already exists")
		}
		if errors.Is(err, domain.ErrPasswordTooLong) {
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
			return Fail(c, http.StatusBadRequest, err.Error())
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return respond(c, http.StatusCreated, "User registered successfully", nil)
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  Envelope{data=loginResponse}
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Failure      500   {object}  Envelope
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return Fail(c, http.StatusBadRequest, err.Error())
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if result, ok := loginFailure(err); ok {
			metrics.LoginsTotal.WithLabelValues(result).Inc()
			return Fail(c, http.StatusUnauthorized, invalidLoginMessage)
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return respond(c, http.StatusOK, "Login successful", loginResponse{
		Token:     res.Token,
		Email:     res.Email,
		FullName:  res.FullName,
		ExpiresIn: res.ExpiresIn,
	})
}

// loginFailure classifies the credential errors that are all reported as one
// generic 401 so callers cannot enumerate registered emails.
func loginFailure(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return "not_found", true
	case errors.Is(err, domain.ErrAccountInactive):
		return "inactive", true
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "bad_password", true
	}
	return "", false
}
