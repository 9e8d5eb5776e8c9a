package products

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
)

// ProductDTO is the catalog shape returned to the storefront.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price"`
	Variations  []VariationDTO  `json:"variations"`
}

// VariationDTO exposes the resolved price of a variation.
type VariationDTO struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ListResult carries one catalog page.
type ListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// ResolveUnitPrice returns the variation price when set, otherwise the product price.
func ResolveUnitPrice(productPrice decimal.Decimal, variationPrice *decimal.Decimal) decimal.Decimal {
	if variationPrice != nil {
		return *variationPrice
	}
	return productPrice
}

func toProductDTO(p models.Product) ProductDTO {
	dto := ProductDTO{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Unit:        p.Unit,
		Price:       p.Price,
		Variations:  make([]VariationDTO, 0, len(p.Variations)),
	}
	for _, v := range p.Variations {
		dto.Variations = append(dto.Variations, VariationDTO{
			ID:    v.ID,
			Name:  v.Name,
			Price: ResolveUnitPrice(p.Price, v.Price),
		})
	}
	return dto
}
