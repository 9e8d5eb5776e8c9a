package address

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/freshcart-backend/pkg/db"
	"github.com/angelmondragon/freshcart-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/freshcart-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo, db.FromGorm(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func sampleInput(label string) CreateInput {
	return CreateInput{
		Label:         label,
		RecipientName: "Sam Lee",
		Line1:         "9 Market St",
		City:          "Austin",
		State:         "TX",
		PostalCode:    "73301",
		Country:       "us",
	}
}

func TestCreateFirstAddressBecomesDefault(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Create(ctx, userID, sampleInput("Home"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !first.IsDefault {
		t.Fatal("expected first address to be default")
	}
	if first.Country != "US" {
		t.Fatalf("expected normalized country, got %q", first.Country)
	}

	second, err := svc.Create(ctx, userID, sampleInput("Work"))
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.IsDefault {
		t.Fatal("expected second address to not be default")
	}

	updated, err := svc.SetDefault(ctx, userID, second.ID)
	if err != nil {
		t.Fatalf("set default: %v", err)
	}
	if !updated.IsDefault {
		t.Fatal("expected updated address to be default")
	}

	list, err := svc.List(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defaults := 0
	for _, a := range list {
		if a.IsDefault {
			defaults++
		}
	}
	if defaults != 1 || list[0].ID != second.ID {
		t.Fatalf("expected exactly one default listed first, got %+v", list)
	}
}

func TestSetDefaultUnknownAddress(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.SetDefault(context.Background(), uuid.New(), uuid.New())
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetForUserRejectsForeignAddress(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, sampleInput("Home"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := repo.GetForUser(ctx, owner, created.ID); err != nil {
		t.Fatalf("expected owner lookup to succeed: %v", err)
	}
	if _, err := repo.GetForUser(ctx, uuid.New(), created.ID); err != ErrInvalidAddress {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
	if _, err := repo.GetForUser(ctx, owner, uuid.New()); !pkgerrors.Is(err, pkgerrors.CodeInvalidAddress) {
		t.Fatalf("expected INVALID_ADDRESS, got %v", err)
	}
}
