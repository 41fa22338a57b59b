package handler

import (
	"github.com/stockroom/inventory-service/internal/core/domain"
)

// --- Request → Service input ---

func toProductInput(req productRequest) domain.ProductInput {
	in := domain.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		SKU:         req.SKU,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	}
	if req.Price != nil {
		in.Price = *req.Price
	}
	if req.Quantity != nil {
		in.Quantity = *req.Quantity
	}
	return in
}

// --- Service result → HTTP response ---

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		SKU:         p.SKU,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
}

func toProductResponses(products []*domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}
