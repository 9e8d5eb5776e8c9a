package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/freshcart-backend/pkg/db"
	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/freshcart-backend/pkg/errors"
	"github.com/angelmondragon/freshcart-backend/pkg/pagination"
)

// Service exposes catalog browsing.
type Service interface {
	List(ctx context.Context, limit int, cursor string) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
}

type catalogRepository interface {
	FindActive(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListActive(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.Product, *pagination.Cursor, error)
}

type service struct {
	repo catalogRepository
}

// NewService builds the catalog service.
func NewService(repo catalogRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, limit int, cursor string) (*ListResult, error) {
	parsed, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.ListActive(ctx, limit, parsed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	result := &ListResult{Products: make([]ProductDTO, 0, len(rows))}
	for _, row := range rows {
		result.Products = append(result.Products, toProductDTO(row))
	}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindActive(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	dto := toProductDTO(*product)
	return &dto, nil
}
