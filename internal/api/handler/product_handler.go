package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/stockroom/inventory-service/internal/api/metrics"
	"github.com/stockroom/inventory-service/internal/core/domain"
	"github.com/stockroom/inventory-service/internal/core/ports"
)

const sortPriceDesc = "price_desc"

// ProductHandler handles HTTP requests for product operations.
type ProductHandler struct {
	service ports.ProductService
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// List handles GET /api/products.
//
// @Summary      List all products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=[]productResponse}
// @Failure      500  {object}  Envelope
// @Router       /api/products [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Products retrieved successfully", toProductResponses(products))
}

// Get handles GET /api/products/:id.
//
// @Summary      Get a product by id
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Product id"
// @Success      200  {object}  Envelope{data=productResponse}
// @Failure      400  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Failure      500  {object}  Envelope
// @Router       /api/products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	p, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return Fail(c, http.StatusNotFound, "Product not found")
		}
		return err
	}
	return respond(c, http.StatusOK, "Product retrieved successfully", toProductResponse(p))
}

// Create handles POST /api/products.
//
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      productRequest  true  "Product fields"
// @Success      201   {object}  Envelope{data=productResponse}
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Failure      500   {object}  Envelope
// @Router       /api/products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	req, err := bindProduct(c)
	if err != nil {
		return err
	}

	p, err := h.service.Create(c.Request().Context(), toProductInput(req))
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateSKU) || errors.Is(err, domain.ErrInvalidProduct) {
			return Fail(c, http.StatusBadRequest, "Error creating product: "+err.Error())
		}
		return err
	}

	metrics.ProductMutationsTotal.WithLabelValues(string(domain.ActionCreate)).Inc()
	return respond(c, http.StatusCreated, "Product created successfully", toProductResponse(p))
}

// Update handles PUT /api/products/:id. Every mutable field is overwritten.
//
// @Summary      Replace a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Product id"
// @Param        body  body      productRequest  true  "Product fields"
// @Success      200   {object}  Envelope{data=productResponse}
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Failure      500   {object}  Envelope
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	req, err := bindProduct(c)
	if err != nil {
		return err
	}

	p, err := h.service.Update(c.Request().Context(), id, toProductInput(req))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			return Fail(c, http.StatusNotFound, "Product not found")
		case errors.Is(err, domain.ErrDuplicateSKU), errors.Is(err, domain.ErrInvalidProduct):
			return Fail(c, http.StatusBadRequest, "Error updating product: "+err.Error())
		}
		return err
	}

	metrics.ProductMutationsTotal.WithLabelValues(string(domain.ActionUpdate)).Inc()
	return respond(c, http.StatusOK, "Product updated successfully", toProductResponse(p))
}

// Delete handles DELETE /api/products/:id.
//
// @Summary      Delete a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Product id"
// @Success      200  {object}  Envelope
// @Failure      400  {object}  Envelope
// @Failure      401  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Failure      500  {object}  Envelope
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return Fail(c, http.StatusNotFound, "Product not found")
		}
		return err
	}

	metrics.ProductMutationsTotal.WithLabelValues(string(domain.ActionDelete)).Inc()
	return respond(c, http.StatusOK, "Product deleted successfully", nil)
}

// Search handles GET /api/products/search?name=.
//
// @Summary      Search products by name
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        name  query     string  true  "Case-insensitive substring"
// @Success      200   {object}  Envelope{data=[]productResponse}
// @Failure      400   {object}  Envelope
// @Failure      500   {object}  Envelope
// @Router       /api/products/search [get]
func (h *ProductHandler) Search(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return Fail(c, http.StatusBadRequest, "name query parameter is required")
	}

	products, err := h.service.SearchByName(c.Request().Context(), name)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Search results", toProductResponses(products))
}

// ByCategory handles GET /api/products/category/:category.
//
// @Summary      List products in a category
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        category  path      string  true   "Exact category"
// @Param        sort      query     string  false  "price_desc orders by price, highest first"
// @Success      200       {object}  Envelope{data=[]productResponse}
// @Failure      500       {object}  Envelope
// @Router       /api/products/category/{category} [get]
func (h *ProductHandler) ByCategory(c echo.Context) error {
	category := c.Param("category")
	byPrice := c.QueryParam("sort") == sortPriceDesc

	products, err := h.service.ListByCategory(c.Request().Context(), category, byPrice)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Products by category retrieved", toProductResponses(products))
}

// LowStock handles GET /api/products/low-stock.
//
// @Summary      List products with quantity below 10
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=[]productResponse}
// @Failure      500  {object}  Envelope
// @Router       /api/products/low-stock [get]
func (h *ProductHandler) LowStock(c echo.Context) error {
	products, err := h.service.ListLowStock(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Low stock products retrieved", toProductResponses(products))
}

func productID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	return id, nil
}

func bindProduct(c echo.Context) (productRequest, error) {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return req, nil
}
