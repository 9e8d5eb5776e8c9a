package cart

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
)

// Repository persists cart lines and reads priced snapshots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Snapshot(ctx context.Context, userID uuid.UUID) ([]Line, error)
	FindLine(ctx context.Context, userID, productID uuid.UUID, variationID *uuid.UUID) (*models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) error
	AddQuantity(ctx context.Context, itemID uuid.UUID, delta int) error
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (bool, error)
	Delete(ctx context.Context, userID, itemID uuid.UUID) (bool, error)
	ClearLines(ctx context.Context, userID uuid.UUID, lines []Line) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository binds the cart repository to the provided DB handle.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

const snapshotQuery = `
SELECT ci.id AS cart_item_id,
       ci.product_id,
       ci.variation_id,
       ci.quantity,
       p.name AS product_name,
       v.name AS variation_name,
       p.price AS product_price,
       v.price AS variation_price,
       p.is_active AS product_active,
       v.is_active AS variation_active
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
LEFT JOIN product_variations v ON v.id = ci.variation_id
WHERE ci.user_id = ?
ORDER BY ci.created_at ASC, ci.id ASC
`

type snapshotRow struct {
	CartItemID      uuid.UUID           `gorm:"column:cart_item_id"`
	ProductID       uuid.UUID           `gorm:"column:product_id"`
	VariationID     *uuid.UUID          `gorm:"column:variation_id"`
	Quantity        int                 `gorm:"column:quantity"`
	ProductName     string              `gorm:"column:product_name"`
	VariationName   *string             `gorm:"column:variation_name"`
	ProductPrice    decimal.Decimal     `gorm:"column:product_price"`
	VariationPrice  decimal.NullDecimal `gorm:"column:variation_price"`
	ProductActive   bool                `gorm:"column:product_active"`
	VariationActive sql.NullBool        `gorm:"column:variation_active"`
}

// Snapshot returns the user's cart lines priced from the current catalog.
func (r *repositoryImpl) Snapshot(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	var rows []snapshotRow
	if err := r.db.WithContext(ctx).Raw(snapshotQuery, userID).Scan(&rows).Error; err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(rows))
	for _, row := range rows {
		unitPrice := row.ProductPrice
		if row.VariationID != nil && row.VariationPrice.Valid {
			unitPrice = row.VariationPrice.Decimal
		}
		lines = append(lines, Line{
			CartItemID:    row.CartItemID,
			ProductID:     row.ProductID,
			VariationID:   row.VariationID,
			ProductName:   row.ProductName,
			VariationName: row.VariationName,
			Quantity:      row.Quantity,
			UnitPrice:     unitPrice,
			Available:     row.ProductActive && (row.VariationID == nil || row.VariationActive.Bool),
		})
	}
	return lines, nil
}

func (r *repositoryImpl) FindLine(ctx context.Context, userID, productID uuid.UUID, variationID *uuid.UUID) (*models.CartItem, error) {
	query := r.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID)
	if variationID == nil {
		query = query.Where("variation_id IS NULL")
	} else {
		query = query.Where("variation_id = ?", *variationID)
	}
	var item models.CartItem
	if err := query.First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repositoryImpl) Create(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repositoryImpl) AddQuantity(ctx context.Context, itemID uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta)).Error
}

func (r *repositoryImpl) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		UpdateColumn("quantity", quantity)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ClearLines deletes the snapshot lines that are still unchanged and reports
// how many were removed. Lines added or requantified after the snapshot stay.
func (r *repositoryImpl) ClearLines(ctx context.Context, userID uuid.UUID, lines []Line) (int64, error) {
	var removed int64
	for _, line := range lines {
		res := r.db.WithContext(ctx).
			Where("id = ? AND user_id = ? AND quantity = ?", line.CartItemID, userID, line.Quantity).
			Delete(&models.CartItem{})
		if res.Error != nil {
			return removed, res.Error
		}
		removed += res.RowsAffected
	}
	return removed, nil
}
