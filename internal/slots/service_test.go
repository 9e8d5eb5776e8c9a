package slots

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/freshcart-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/freshcart-backend/pkg/errors"
)

func TestServiceCreateValidatesWindow(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	start := time.Now().UTC().Add(24 * time.Hour)

	if _, err := svc.Create(context.Background(), CreateInput{StartsAt: start, EndsAt: start, MaxOrders: 3}); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty window, got %v", err)
	}

	created, err := svc.Create(context.Background(), CreateInput{StartsAt: start, EndsAt: start.Add(time.Hour), MaxOrders: 3})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.IsAvailable || created.Remaining != 3 {
		t.Fatalf("unexpected created slot %+v", created)
	}

	toggled, err := svc.SetAvailability(context.Background(), created.ID, false)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.IsAvailable {
		t.Fatal("expected slot to be closed")
	}

	list, err := svc.ListUpcoming(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected closed slot hidden, got %d", len(list))
	}
}

func TestServiceSetAvailabilityUnknown(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.SetAvailability(context.Background(), uuid.New(), true); !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
