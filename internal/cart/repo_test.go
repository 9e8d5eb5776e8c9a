package cart

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/freshcart-backend/internal/pricing"
	"github.com/angelmondragon/freshcart-backend/pkg/db/dbtest"
	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
)

func seedProduct(t *testing.T, conn *gorm.DB, name string, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		SKU:      "sku-" + uuid.NewString(),
		Name:     name,
		Unit:     "each",
		Price:    decimal.RequireFromString(price),
		IsActive: true,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func seedVariation(t *testing.T, conn *gorm.DB, productID uuid.UUID, name string, price *decimal.Decimal) *models.ProductVariation {
	t.Helper()
	variation := &models.ProductVariation{ProductID: productID, Name: name, Price: price, IsActive: true}
	if err := conn.Create(variation).Error; err != nil {
		t.Fatalf("seed variation: %v", err)
	}
	return variation
}

func TestRepositorySnapshotResolvesUnitPrice(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()

	milk := seedProduct(t, conn, "Milk", "50.00")
	priced := decimal.RequireFromString("65.50")
	large := seedVariation(t, conn, milk.ID, "2L", &priced)
	inherit := seedVariation(t, conn, milk.ID, "1L", nil)

	for _, item := range []*models.CartItem{
		{UserID: userID, ProductID: milk.ID, Quantity: 1},
		{UserID: userID, ProductID: milk.ID, VariationID: &large.ID, Quantity: 2},
		{UserID: userID, ProductID: milk.ID, VariationID: &inherit.ID, Quantity: 3},
		{UserID: uuid.New(), ProductID: milk.ID, Quantity: 9},
	} {
		if err := repo.Create(ctx, item); err != nil {
			t.Fatalf("create cart item: %v", err)
		}
	}

	lines, err := repo.Snapshot(ctx, userID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	want := map[string]string{"": "50", "2L": "65.5", "1L": "50"}
	for _, line := range lines {
		key := ""
		if line.VariationName != nil {
			key = *line.VariationName
		}
		if !line.UnitPrice.Equal(decimal.RequireFromString(want[key])) {
			t.Fatalf("line %q: expected unit price %s, got %s", key, want[key], line.UnitPrice)
		}
		if line.ProductName != "Milk" {
			t.Fatalf("unexpected product name %q", line.ProductName)
		}
	}
}

func TestRepositoryClearLinesKeepsLinesChangedAfterSnapshot(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()
	otherID := uuid.New()
	bread := seedProduct(t, conn, "Bread", "40")
	eggs := seedProduct(t, conn, "Eggs", "72")
	jam := seedProduct(t, conn, "Jam", "40")

	breadLine := &models.CartItem{UserID: userID, ProductID: bread.ID, Quantity: 1}
	eggsLine := &models.CartItem{UserID: userID, ProductID: eggs.ID, Quantity: 2}
	for _, item := range []*models.CartItem{breadLine, eggsLine, {UserID: otherID, ProductID: bread.ID, Quantity: 1}} {
		if err := repo.Create(ctx, item); err != nil {
			t.Fatalf("create cart item: %v", err)
		}
	}

	lines, err := repo.Snapshot(ctx, userID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	// The shopper keeps editing the cart while checkout is running.
	if err := repo.Create(ctx, &models.CartItem{UserID: userID, ProductID: jam.ID, Quantity: 1}); err != nil {
		t.Fatalf("create late cart item: %v", err)
	}
	if _, err := repo.UpdateQuantity(ctx, userID, eggsLine.ID, 6); err != nil {
		t.Fatalf("update quantity: %v", err)
	}

	removed, err := repo.ClearLines(ctx, userID, lines)
	if err != nil {
		t.Fatalf("clear lines: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected only the unchanged line removed, got %d", removed)
	}

	var remaining []models.CartItem
	if err := conn.Where("user_id = ?", userID).Order("quantity ASC").Find(&remaining).Error; err != nil {
		t.Fatalf("load remaining: %v", err)
	}
	if len(remaining) != 2 || remaining[0].ProductID != jam.ID || remaining[1].Quantity != 6 {
		t.Fatalf("unexpected remaining lines %+v", remaining)
	}

	var others int64
	conn.Model(&models.CartItem{}).Where("user_id = ?", otherID).Count(&others)
	if others != 1 {
		t.Fatalf("expected other user's line to remain, got %d", others)
	}
}

func TestRepositorySnapshotFlagsDelistedLines(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()

	rice := seedProduct(t, conn, "Rice", "125")
	oil := seedProduct(t, conn, "Oil", "180")
	tea := seedProduct(t, conn, "Tea", "90")
	retired := seedVariation(t, conn, tea.ID, "500g", nil)

	for _, item := range []*models.CartItem{
		{UserID: userID, ProductID: rice.ID, Quantity: 1},
		{UserID: userID, ProductID: oil.ID, Quantity: 1},
		{UserID: userID, ProductID: tea.ID, VariationID: &retired.ID, Quantity: 1},
	} {
		if err := repo.Create(ctx, item); err != nil {
			t.Fatalf("create cart item: %v", err)
		}
	}
	if err := conn.Model(&models.Product{}).Where("id = ?", oil.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("delist product: %v", err)
	}
	if err := conn.Model(&models.ProductVariation{}).Where("id = ?", retired.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("delist variation: %v", err)
	}

	lines, err := repo.Snapshot(ctx, userID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	available := map[string]bool{}
	for _, line := range lines {
		available[line.ProductName] = line.Available
	}
	if !available["Rice"] || available["Oil"] || available["Tea"] {
		t.Fatalf("unexpected availability %v", available)
	}

	err = RequireAvailable(lines)
	if err == nil || !strings.Contains(err.Error(), "Oil") || !strings.Contains(err.Error(), "Tea") {
		t.Fatalf("expected delisted products named in error, got %v", err)
	}

	view := buildView(lines, pricing.DefaultRules())
	if len(view.Items) != 3 || !view.Subtotal.Equal(decimal.NewFromInt(125)) {
		t.Fatalf("expected delisted lines listed but not priced, got %d items subtotal %s", len(view.Items), view.Subtotal)
	}
}
