package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/freshcart-backend/pkg/db"
	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
	"github.com/angelmondragon/freshcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freshcart-backend/pkg/errors"
	"github.com/angelmondragon/freshcart-backend/pkg/logger"
	"github.com/angelmondragon/freshcart-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SlotReleaser returns capacity to a delivery slot inside the caller's transaction.
type SlotReleaser interface {
	ReleaseSlot(ctx context.Context, tx *gorm.DB, slotID uuid.UUID) error
}

// StatusNotifier is told about committed status changes.
type StatusNotifier interface {
	OrderStatusChanged(ctx context.Context, order *models.Order) error
}

// Service exposes order history and the admin status lifecycle.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderDetail, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, input StatusUpdateInput) (*OrderDetail, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	slots    SlotReleaser
	notifier StatusNotifier
	logg     *logger.Logger
}

// NewService builds the orders service. notifier may be nil.
func NewService(repo Repository, tx txRunner, slots SlotReleaser, notifier StatusNotifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if slots == nil {
		return nil, fmt.Errorf("slot releaser required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, slots: slots, notifier: notifier, logg: logg}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListForUser(ctx, userID, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	page, next := pagination.Trim(rows, params.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	out := &OrderList{Orders: make([]OrderSummary, 0, len(page)), NextCursor: next}
	for _, order := range page {
		out.Orders = append(out.Orders, toSummary(order))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.repo.FindForUser(ctx, userID, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	detail := ToDetail(*order)
	return &detail, nil
}

// UpdateStatus applies one lifecycle transition and appends it to the timeline.
// Cancelling gives the delivery slot capacity back in the same transaction.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, input StatusUpdateInput) (*OrderDetail, error) {
	next, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return err
		}
		if !order.Status.CanTransitionTo(next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
		}

		moved, err := repo.UpdateStatus(ctx, order.ID, order.Status, next)
		if err != nil {
			return err
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
		}

		if next == enums.OrderStatusCancelled {
			if err := s.slots.ReleaseSlot(ctx, tx, order.DeliverySlotID); err != nil {
				return err
			}
		}

		if err := repo.AppendEvent(ctx, &models.OrderTrackingEvent{OrderID: order.ID, Status: next, Note: input.Note}); err != nil {
			return err
		}

		updated, err = repo.FindByID(ctx, order.ID)
		return err
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}

	if s.notifier != nil {
		if nerr := s.notifier.OrderStatusChanged(ctx, updated); nerr != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"order_id": updated.ID.String(),
				"status":   string(next),
				"error":    nerr.Error(),
			})
			s.logg.Warn(logCtx, "order status notification failed")
		}
	}

	detail := ToDetail(*updated)
	return &detail, nil
}
