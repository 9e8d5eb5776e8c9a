package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/freshcart-backend/internal/pricing"
	"github.com/angelmondragon/freshcart-backend/pkg/db"
	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/freshcart-backend/pkg/errors"
)

// ErrEmptyCart is returned when checkout is attempted without cart lines.
var ErrEmptyCart = pkgerrors.New(pkgerrors.CodeEmptyCart, "cart has no items")

// ErrCartChanged is returned when lines were edited or removed between the
// snapshot and the order commit.
var ErrCartChanged = pkgerrors.New(pkgerrors.CodeConflict, "cart changed during checkout")

const maxLineQuantity = 99

// Service exposes cart reads and mutations.
type Service interface {
	Snapshot(ctx context.Context, userID uuid.UUID) ([]Line, error)
	View(ctx context.Context, userID uuid.UUID) (*View, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (*View, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*View, error)
}

type productLoader interface {
	FindActive(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo     Repository
	products productLoader
	rules    pricing.Rules
}

// NewService wires the cart service.
func NewService(repo Repository, products productLoader, rules pricing.Rules) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products, rules: rules}, nil
}

// Snapshot returns the priced cart lines and fails when the cart is empty.
func (s *service) Snapshot(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	lines, err := s.repo.Snapshot(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	return lines, nil
}

func (s *service) View(ctx context.Context, userID uuid.UUID) (*View, error) {
	lines, err := s.repo.Snapshot(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return buildView(lines, s.rules), nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error) {
	if input.Quantity <= 0 || input.Quantity > maxLineQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be between 1 and 99")
	}

	product, err := s.products.FindActive(ctx, input.ProductID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if input.VariationID != nil && !hasVariation(product, *input.VariationID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variation does not belong to product")
	}

	existing, err := s.repo.FindLine(ctx, userID, input.ProductID, input.VariationID)
	switch {
	case err == nil:
		if existing.Quantity+input.Quantity > maxLineQuantity {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be between 1 and 99")
		}
		if err := s.repo.AddQuantity(ctx, existing.ID, input.Quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
		}
	case db.IsNotFound(err):
		item := &models.CartItem{
			UserID:      userID,
			ProductID:   input.ProductID,
			VariationID: input.VariationID,
			Quantity:    input.Quantity,
		}
		if err := s.repo.Create(ctx, item); err != nil {
			if db.IsUniqueViolation(err, "") {
				return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart item was added concurrently")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart item")
		}
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find cart item")
	}

	return s.View(ctx, userID)
}

func (s *service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (*View, error) {
	if input.Quantity <= 0 || input.Quantity > maxLineQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be between 1 and 99")
	}
	found, err := s.repo.UpdateQuantity(ctx, userID, itemID, input.Quantity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return s.View(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*View, error) {
	found, err := s.repo.Delete(ctx, userID, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart item")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return s.View(ctx, userID)
}

// RequireAvailable rejects a snapshot that still holds delisted products.
func RequireAvailable(lines []Line) error {
	gone := Unavailable(lines)
	if len(gone) == 0 {
		return nil
	}
	names := make([]string, 0, len(gone))
	for _, l := range gone {
		names = append(names, l.ProductName)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "no longer available: "+strings.Join(names, ", "))
}

func hasVariation(product *models.Product, variationID uuid.UUID) bool {
	for _, v := range product.Variations {
		if v.ID == variationID {
			return true
		}
	}
	return false
}
