package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/freshcart-backend/api/routes"
	"github.com/angelmondragon/freshcart-backend/internal/address"
	"github.com/angelmondragon/freshcart-backend/internal/auth"
	"github.com/angelmondragon/freshcart-backend/internal/cart"
	"github.com/angelmondragon/freshcart-backend/internal/checkout"
	"github.com/angelmondragon/freshcart-backend/internal/coupons"
	"github.com/angelmondragon/freshcart-backend/internal/loyalty"
	"github.com/angelmondragon/freshcart-backend/internal/notifications"
	"github.com/angelmondragon/freshcart-backend/internal/orders"
	"github.com/angelmondragon/freshcart-backend/internal/pricing"
	"github.com/angelmondragon/freshcart-backend/internal/products"
	"github.com/angelmondragon/freshcart-backend/internal/slots"
	"github.com/angelmondragon/freshcart-backend/internal/users"
	"github.com/angelmondragon/freshcart-backend/pkg/config"
	"github.com/angelmondragon/freshcart-backend/pkg/db"
	"github.com/angelmondragon/freshcart-backend/pkg/logger"
	"github.com/angelmondragon/freshcart-backend/pkg/metrics"
	"github.com/angelmondragon/freshcart-backend/pkg/pubsub"
	"github.com/angelmondragon/freshcart-backend/pkg/redis"
	"github.com/angelmondragon/freshcart-backend/pkg/security"
)

type app struct {
	deps    routes.Deps
	trigger *notifications.Trigger
}

func buildApp(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, pubsubClient *pubsub.Client, reg prometheus.Registerer) (*app, error) {
	conn := dbClient.DB()
	checkoutMetrics := metrics.NewCheckoutMetrics(reg)
	rules := pricing.Rules{
		FreeDeliveryThreshold: cfg.Checkout.FreeDeliveryThresholdAmount(),
		FlatDeliveryFee:       cfg.Checkout.FlatDeliveryFeeAmount(),
		PointsPerAmount:       cfg.Checkout.PointsPerAmountValue(),
	}

	dispatcher, err := notifications.NewPubSubDispatcher(pubsubClient.NotificationPublisher())
	if err != nil {
		return nil, err
	}
	trigger, err := notifications.NewTrigger(dispatcher, cfg.Checkout.NotificationTimeout, logg, checkoutMetrics)
	if err != nil {
		return nil, err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Users:     users.NewRepository(conn),
		Hasher:    security.NewHasher(cfg.Password),
		JWTConfig: cfg.JWT,
		Logger:    logg,
	})
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	productRepo := products.NewRepository(conn)
	productService, err := products.NewService(productRepo)
	if err != nil {
		return nil, fmt.Errorf("products service: %w", err)
	}

	cartRepo := cart.NewRepository(conn)
	cartService, err := cart.NewService(cartRepo, productRepo, rules)
	if err != nil {
		return nil, fmt.Errorf("cart service: %w", err)
	}

	addressRepo := address.NewRepository(conn)
	addressService, err := address.NewService(addressRepo, dbClient)
	if err != nil {
		return nil, fmt.Errorf("address service: %w", err)
	}

	slotRepo := slots.NewRepository(conn)
	slotService, err := slots.NewService(slotRepo)
	if err != nil {
		return nil, fmt.Errorf("slots service: %w", err)
	}

	couponRepo := coupons.NewRepository(conn)
	couponService, err := coupons.NewService(couponRepo)
	if err != nil {
		return nil, fmt.Errorf("coupons service: %w", err)
	}

	notificationService, err := notifications.NewService(notifications.NewRepository(conn))
	if err != nil {
		return nil, fmt.Errorf("notifications service: %w", err)
	}

	orderRepo := orders.NewRepository(conn)
	orderService, err := orders.NewService(orderRepo, dbClient, slotRepo, notificationService, logg)
	if err != nil {
		return nil, fmt.Errorf("orders service: %w", err)
	}

	loyaltyRepo := loyalty.NewRepository(conn)
	loyaltyService, err := loyalty.NewService(loyaltyRepo, dbClient)
	if err != nil {
		return nil, fmt.Errorf("loyalty service: %w", err)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Tx:             dbClient,
		Cart:           cartService,
		CartRepo:       cartRepo,
		Addresses:      addressRepo,
		Slots:          slotRepo,
		Coupons:        couponService,
		CouponRedeemer: couponRepo,
		Orders:         orderRepo,
		Loyalty:        loyaltyRepo,
		Trigger:        trigger,
		Rules:          rules,
		PointsTTL:      cfg.Loyalty.PointsTTL,
		Metrics:        checkoutMetrics,
		Logger:         logg,
	})
	if err != nil {
		return nil, fmt.Errorf("checkout service: %w", err)
	}

	return &app{
		trigger: trigger,
		deps: routes.Deps{
			DB:            dbClient,
			Redis:         redisClient,
			Auth:          authService,
			Products:      productService,
			Cart:          cartService,
			Addresses:     addressService,
			Slots:         slotService,
			Coupons:       couponService,
			Checkout:      checkoutService,
			Orders:        orderService,
			Loyalty:       loyaltyService,
			Notifications: notificationService,
		},
	}, nil
}
