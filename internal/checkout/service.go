package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/freshcart-backend/internal/address"
	"github.com/angelmondragon/freshcart-backend/internal/cart"
	"github.com/angelmondragon/freshcart-backend/internal/coupons"
	"github.com/angelmondragon/freshcart-backend/internal/loyalty"
	"github.com/angelmondragon/freshcart-backend/internal/orders"
	"github.com/angelmondragon/freshcart-backend/internal/pricing"
	"github.com/angelmondragon/freshcart-backend/internal/slots"
	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
	"github.com/angelmondragon/freshcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freshcart-backend/pkg/errors"
	"github.com/angelmondragon/freshcart-backend/pkg/logger"
	"github.com/angelmondragon/freshcart-backend/pkg/metrics"
)

const defaultPointsTTL = 365 * 24 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartReader interface {
	Snapshot(ctx context.Context, userID uuid.UUID) ([]cart.Line, error)
}

type addressLoader interface {
	GetForUser(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error)
}

type slotStore interface {
	Get(ctx context.Context, slotID uuid.UUID) (*models.DeliverySlot, error)
	ReserveSlot(ctx context.Context, tx *gorm.DB, slotID uuid.UUID) (bool, error)
}

type couponLoader interface {
	GetActive(ctx context.Context, couponID uuid.UUID) (*models.Coupon, error)
}

type couponRedeemer interface {
	RedeemCoupon(ctx context.Context, tx *gorm.DB, usage *models.CouponUsage, now time.Time) error
}

type confirmationTrigger interface {
	Fire(ctx context.Context, orderID uuid.UUID)
}

// Service places orders and prices carts.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Result, error)
	Quote(ctx context.Context, userID uuid.UUID, couponID *uuid.UUID) (*Quote, error)
}

// ServiceParams groups the checkout collaborators. Metrics may be nil.
type ServiceParams struct {
	Tx             txRunner
	Cart           cartReader
	CartRepo       cart.Repository
	Addresses      addressLoader
	Slots          slotStore
	Coupons        couponLoader
	CouponRedeemer couponRedeemer
	Orders         orders.Repository
	Loyalty        loyalty.Repository
	Trigger        confirmationTrigger
	Rules          pricing.Rules
	PointsTTL      time.Duration
	Metrics        *metrics.CheckoutMetrics
	Logger         *logger.Logger
}

type service struct {
	tx             txRunner
	cart           cartReader
	cartRepo       cart.Repository
	addresses      addressLoader
	slots          slotStore
	coupons        couponLoader
	couponRedeemer couponRedeemer
	orders         orders.Repository
	loyalty        loyalty.Repository
	trigger        confirmationTrigger
	rules          pricing.Rules
	pointsTTL      time.Duration
	metrics        *metrics.CheckoutMetrics
	logg           *logger.Logger
	now            func() time.Time
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Tx == nil:
		return nil, fmt.Errorf("tx runner required")
	case params.Cart == nil:
		return nil, fmt.Errorf("cart reader required")
	case params.CartRepo == nil:
		return nil, fmt.Errorf("cart repository required")
	case params.Addresses == nil:
		return nil, fmt.Errorf("address loader required")
	case params.Slots == nil:
		return nil, fmt.Errorf("slot store required")
	case params.Coupons == nil:
		return nil, fmt.Errorf("coupon loader required")
	case params.CouponRedeemer == nil:
		return nil, fmt.Errorf("coupon redeemer required")
	case params.Orders == nil:
		return nil, fmt.Errorf("orders repository required")
	case params.Loyalty == nil:
		return nil, fmt.Errorf("loyalty repository required")
	case params.Trigger == nil:
		return nil, fmt.Errorf("notification trigger required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	ttl := params.PointsTTL
	if ttl <= 0 {
		ttl = defaultPointsTTL
	}
	rules := params.Rules
	if !rules.PointsPerAmount.IsPositive() {
		rules.PointsPerAmount = pricing.DefaultPointsPerAmount
	}
	return &service{
		tx:             params.Tx,
		cart:           params.Cart,
		cartRepo:       params.CartRepo,
		addresses:      params.Addresses,
		slots:          params.Slots,
		coupons:        params.Coupons,
		couponRedeemer: params.CouponRedeemer,
		orders:         params.Orders,
		loyalty:        params.Loyalty,
		trigger:        params.Trigger,
		rules:          rules,
		pointsTTL:      ttl,
		metrics:        params.Metrics,
		logg:           params.Logger,
		now:            func() time.Time { return time.Now().UTC() },
	}, nil
}

// PlaceOrder validates the request, writes the order with all of its side
// effects in one transaction, and fires the confirmation after commit.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Result, error) {
	started := time.Now()
	result, err := s.placeOrder(ctx, input)
	if err != nil {
		s.metrics.ObserveFailure(failureReason(err), time.Since(started))
		return nil, err
	}
	s.metrics.ObservePlaced(input.PaymentMethod.String(), time.Since(started))

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id": result.Order.ID.String(),
		"user_id":  input.UserID.String(),
		"total":    result.Order.TotalAmount.StringFixed(2),
	})
	s.logg.Info(logCtx, "order placed")

	s.trigger.Fire(ctx, result.Order.ID)
	return result, nil
}

type prepared struct {
	lines  []cart.Line
	addr   *models.Address
	coupon *models.Coupon
	totals pricing.Totals
	points int64
}

func (s *service) prepare(ctx context.Context, input PlaceOrderInput) (*prepared, error) {
	lines, err := s.cart.Snapshot(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := cart.RequireAvailable(lines); err != nil {
		return nil, err
	}

	addr, err := s.addresses.GetForUser(ctx, input.UserID, input.AddressID)
	if err != nil {
		return nil, typed(err, "load address")
	}

	slot, err := s.slots.Get(ctx, input.DeliverySlotID)
	if err != nil {
		return nil, typed(err, "load delivery slot")
	}
	if err := slots.Validate(slot); err != nil {
		return nil, err
	}

	var coupon *models.Coupon
	if input.CouponID != nil {
		coupon, err = s.coupons.GetActive(ctx, *input.CouponID)
		if err != nil {
			return nil, err
		}
	}

	totals := s.rules.CalculateTotals(cart.PricingLines(lines), coupons.ToPricing(coupon))
	return &prepared{
		lines:  lines,
		addr:   addr,
		coupon: coupon,
		totals: totals,
		points: s.rules.PointsEarned(totals.Total),
	}, nil
}

func (s *service) placeOrder(ctx context.Context, input PlaceOrderInput) (*Result, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}

	p, err := s.prepare(ctx, input)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &models.Order{
		ID:                   uuid.New(),
		UserID:               input.UserID,
		AddressID:            p.addr.ID,
		DeliverySlotID:       input.DeliverySlotID,
		Status:               enums.OrderStatusConfirmed,
		PaymentMethod:        input.PaymentMethod,
		Subtotal:             p.totals.Subtotal,
		DeliveryFee:          p.totals.DeliveryFee,
		DiscountAmount:       p.totals.Discount,
		TotalAmount:          p.totals.Total,
		PointsEarned:         p.points,
		DeliveryAddress:      address.FormatSnapshot(*p.addr),
		DeliveryInstructions: input.DeliveryInstructions,
	}
	if p.coupon != nil {
		couponID := p.coupon.ID
		order.CouponID = &couponID
	}
	items := buildItems(order.ID, p.lines)
	event := models.OrderTrackingEvent{OrderID: order.ID, Status: enums.OrderStatusConfirmed}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		reserved, err := s.slots.ReserveSlot(ctx, tx, input.DeliverySlotID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserve delivery slot")
		}
		if !reserved {
			return slots.ErrSlotUnavailable
		}

		ordersRepo := s.orders.WithTx(tx)
		if err := ordersRepo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		if err := ordersRepo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order items")
		}

		if p.coupon != nil {
			usage := &models.CouponUsage{
				CouponID:       p.coupon.ID,
				UserID:         input.UserID,
				OrderID:        order.ID,
				DiscountAmount: p.totals.Discount,
			}
			if err := s.couponRedeemer.RedeemCoupon(ctx, tx, usage, now); err != nil {
				return typed(err, "redeem coupon")
			}
		}

		cleared, err := s.cartRepo.WithTx(tx).ClearLines(ctx, input.UserID, p.lines)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
		switch {
		// A concurrent checkout by the same user already consumed these lines.
		case cleared == 0:
			return cart.ErrEmptyCart
		case cleared != int64(len(p.lines)):
			return cart.ErrCartChanged
		}

		if p.points > 0 {
			expiresAt := now.Add(s.pointsTTL)
			entry := &models.LoyaltyLedgerEntry{
				UserID:      input.UserID,
				OrderID:     &order.ID,
				EntryType:   enums.LoyaltyEntryEarned,
				Points:      p.points,
				Description: fmt.Sprintf("Earned on order %s", order.ID.String()[:8]),
				ExpiresAt:   &expiresAt,
			}
			if err := s.loyalty.WithTx(tx).Append(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "credit loyalty points")
			}
		}

		if err := ordersRepo.AppendEvent(ctx, &event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append tracking event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Result{Order: *order, Items: items, Event: event, PointsEarned: p.points}, nil
}

// Quote prices the current cart without reserving or writing anything.
func (s *service) Quote(ctx context.Context, userID uuid.UUID, couponID *uuid.UUID) (*Quote, error) {
	lines, err := s.cart.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := cart.RequireAvailable(lines); err != nil {
		return nil, err
	}
	var coupon *models.Coupon
	if couponID != nil {
		if coupon, err = s.coupons.GetActive(ctx, *couponID); err != nil {
			return nil, err
		}
	}

	totals := s.rules.CalculateTotals(cart.PricingLines(lines), coupons.ToPricing(coupon))
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return &Quote{
		Subtotal:     totals.Subtotal,
		DeliveryFee:  totals.DeliveryFee,
		Discount:     totals.Discount,
		Total:        totals.Total,
		PointsEarned: s.rules.PointsEarned(totals.Total),
		ItemCount:    count,
	}, nil
}

func buildItems(orderID uuid.UUID, lines []cart.Line) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ID:            uuid.New(),
			OrderID:       orderID,
			ProductID:     line.ProductID,
			VariationID:   line.VariationID,
			ProductName:   line.ProductName,
			VariationName: line.VariationName,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			TotalPrice:    line.PricingLine().LineTotal().Round(2),
		})
	}
	return items
}

// typed keeps domain errors intact and wraps anything else as internal.
func typed(err error, msg string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}

func failureReason(err error) string {
	typedErr := pkgerrors.As(err)
	if typedErr == nil {
		return "internal"
	}
	switch typedErr.Code() {
	case pkgerrors.CodeEmptyCart:
		return "empty_cart"
	case pkgerrors.CodeInvalidAddress:
		return "invalid_address"
	case pkgerrors.CodeSlotUnavailable:
		return "slot_unavailable"
	case pkgerrors.CodeCouponInvalid:
		return "coupon_invalid"
	case pkgerrors.CodeConflict:
		return "cart_changed"
	case pkgerrors.CodeValidation:
		return "validation"
	default:
		return "internal"
	}
}
