package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/freshcart-backend/api/controllers"
	"github.com/angelmondragon/freshcart-backend/api/middleware"
	"github.com/angelmondragon/freshcart-backend/internal/address"
	"github.com/angelmondragon/freshcart-backend/internal/auth"
	"github.com/angelmondragon/freshcart-backend/internal/cart"
	"github.com/angelmondragon/freshcart-backend/internal/checkout"
	"github.com/angelmondragon/freshcart-backend/internal/coupons"
	"github.com/angelmondragon/freshcart-backend/internal/loyalty"
	"github.com/angelmondragon/freshcart-backend/internal/notifications"
	"github.com/angelmondragon/freshcart-backend/internal/orders"
	"github.com/angelmondragon/freshcart-backend/internal/products"
	"github.com/angelmondragon/freshcart-backend/internal/slots"
	"github.com/angelmondragon/freshcart-backend/pkg/config"
	"github.com/angelmondragon/freshcart-backend/pkg/enums"
	"github.com/angelmondragon/freshcart-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/freshcart-backend/pkg/redis"
)

// RedisStore is the slice of the Redis client the HTTP layer depends on.
type RedisStore interface {
	pkgredis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Ping(ctx context.Context) error
}

// Deps carries the services mounted on the router. Nil services answer with an internal error.
type Deps struct {
	DB            controllers.Pinger
	Redis         RedisStore
	Gatherer      prometheus.Gatherer
	Auth          auth.Service
	Products      products.Service
	Cart          cart.Service
	Addresses     address.Service
	Slots         slots.Service
	Coupons       coupons.Service
	Checkout      checkout.Service
	Orders        orders.Service
	Loyalty       loyalty.Service
	Notifications notifications.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	var idempotencyStore pkgredis.IdempotencyStore
	var rateStore interface {
		IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	}
	readiness := map[string]controllers.Pinger{}
	if deps.DB != nil {
		readiness["database"] = deps.DB
	}
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
		rateStore = deps.Redis
		readiness["redis"] = deps.Redis
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.RateLimit.RegisterWindow,
		cfg.RateLimit.RegisterIPLimit,
		cfg.RateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(deps.Products, logg))
		r.Get("/products/{productID}", controllers.GetProduct(deps.Products, logg))
		r.Get("/slots", controllers.ListSlots(deps.Slots, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Idempotency(idempotencyStore, cfg.Idempotency, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/auth/login", controllers.AuthLogin(deps.Auth, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, rateStore, logg)).Post("/auth/register", controllers.AuthRegister(deps.Auth, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(idempotencyStore, cfg.Idempotency, logg))

			r.Get("/cart", controllers.GetCart(deps.Cart, logg))
			r.Post("/cart/items", controllers.AddCartItem(deps.Cart, logg))
			r.Patch("/cart/items/{itemID}", controllers.UpdateCartItem(deps.Cart, logg))
			r.Delete("/cart/items/{itemID}", controllers.RemoveCartItem(deps.Cart, logg))

			r.Get("/addresses", controllers.ListAddresses(deps.Addresses, logg))
			r.Post("/addresses", controllers.CreateAddress(deps.Addresses, logg))
			r.Post("/addresses/{addressID}/default", controllers.SetDefaultAddress(deps.Addresses, logg))

			r.Get("/coupons/{code}", controllers.LookupCoupon(deps.Coupons, logg))
			r.Post("/checkout/quote", controllers.QuoteCheckout(deps.Checkout, logg))

			r.With(middleware.UserRateLimit("checkout", cfg.RateLimit.CheckoutWindow, cfg.RateLimit.CheckoutUserLimit, rateStore, logg)).
				Post("/orders", controllers.PlaceOrder(deps.Checkout, logg))
			r.Get("/orders", controllers.ListOrders(deps.Orders, logg))
			r.Get("/orders/{orderID}", controllers.GetOrder(deps.Orders, logg))

			r.Get("/loyalty", controllers.GetLoyalty(deps.Loyalty, logg))

			r.Get("/notifications", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/notifications/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
			r.Post("/notifications/{notificationID}/read", controllers.MarkNotificationRead(deps.Notifications, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))
				r.Post("/admin/slots", controllers.AdminCreateSlot(deps.Slots, logg))
				r.Patch("/admin/slots/{slotID}/availability", controllers.AdminSetSlotAvailability(deps.Slots, logg))
				r.Post("/admin/orders/{orderID}/status", controllers.AdminUpdateOrderStatus(deps.Orders, logg))
			})
		})
	})

	return r
}
