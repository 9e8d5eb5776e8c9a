package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Idempotency  IdempotencyConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Sendgrid     SendgridConfig
	Checkout     CheckoutConfig
	Loyalty      LoyaltyConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FRESHCART_APP_ENV" required:"true"`
	Port         string `envconfig:"FRESHCART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FRESHCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FRESHCART_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"FRESHCART_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	parts := strings.Split(a.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type ServiceConfig struct {
	Kind string `envconfig:"FRESHCART_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FRESHCART_DB_DSN"`
	Driver string `envconfig:"FRESHCART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FRESHCART_DB_HOST"`
	LegacyPort     int    `envconfig:"FRESHCART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FRESHCART_DB_USER"`
	LegacyPassword string `envconfig:"FRESHCART_DB_PASSWORD"`
	LegacyName     string `envconfig:"FRESHCART_DB_NAME"`
	LegacySSLMode  string `envconfig:"FRESHCART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FRESHCART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FRESHCART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FRESHCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FRESHCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FRESHCART_REDIS_URL"`
	Address      string        `envconfig:"FRESHCART_REDIS_ADDR"`
	Password     string        `envconfig:"FRESHCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"FRESHCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FRESHCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FRESHCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FRESHCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FRESHCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FRESHCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FRESHCART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FRESHCART_JWT_ISSUER" default:"freshcart"`
	ExpirationMinutes int    `envconfig:"FRESHCART_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FRESHCART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FRESHCART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FRESHCART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FRESHCART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FRESHCART_ARGON_KEY_LEN" default:"32"`
}

type RateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"FRESHCART_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"FRESHCART_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"FRESHCART_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"FRESHCART_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"FRESHCART_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"FRESHCART_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	CheckoutWindow     time.Duration `envconfig:"FRESHCART_RATE_LIMIT_CHECKOUT_WINDOW" default:"1m"`
	CheckoutUserLimit  int           `envconfig:"FRESHCART_RATE_LIMIT_CHECKOUT_USER_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FRESHCART_AUTO_MIGRATE" default:"false"`
}

type IdempotencyConfig struct {
	CheckoutTTL     time.Duration `envconfig:"FRESHCART_IDEMPOTENCY_CHECKOUT_TTL" default:"168h"`
	NotificationTTL time.Duration `envconfig:"FRESHCART_IDEMPOTENCY_NOTIFICATION_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"FRESHCART_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"FRESHCART_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"FRESHCART_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"FRESHCART_PUBSUB_NOTIFICATION_TOPIC" default:"freshcart-notifications"`
	NotificationSubscription string `envconfig:"FRESHCART_PUBSUB_NOTIFICATION_SUBSCRIPTION" default:"freshcart-notifications-worker"`
}

type SendgridConfig struct {
	APIKey      string        `envconfig:"FRESHCART_SENDGRID_API_KEY"`
	DefaultFrom string        `envconfig:"FRESHCART_SENDGRID_FROM_EMAIL" default:"orders@freshcart.local"`
	BaseURL     string        `envconfig:"FRESHCART_SENDGRID_BASE_URL" default:"https://api.sendgrid.com"`
	Timeout     time.Duration `envconfig:"FRESHCART_SENDGRID_TIMEOUT" default:"10s"`
}

// Enabled reports whether outbound email should go through SendGrid.
func (s SendgridConfig) Enabled() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

type CheckoutConfig struct {
	FreeDeliveryThreshold string        `envconfig:"FRESHCART_CHECKOUT_FREE_DELIVERY_THRESHOLD" default:"200"`
	FlatDeliveryFee       string        `envconfig:"FRESHCART_CHECKOUT_FLAT_DELIVERY_FEE" default:"30"`
	PointsPerAmount       string        `envconfig:"FRESHCART_CHECKOUT_POINTS_PER_AMOUNT" default:"100"`
	NotificationTimeout   time.Duration `envconfig:"FRESHCART_CHECKOUT_NOTIFICATION_TIMEOUT" default:"10s"`
}

// FreeDeliveryThresholdAmount parses the configured threshold.
func (c CheckoutConfig) FreeDeliveryThresholdAmount() decimal.Decimal {
	return decimal.RequireFromString(c.FreeDeliveryThreshold)
}

// FlatDeliveryFeeAmount parses the configured flat fee.
func (c CheckoutConfig) FlatDeliveryFeeAmount() decimal.Decimal {
	return decimal.RequireFromString(c.FlatDeliveryFee)
}

// PointsPerAmountValue parses the spend required for one loyalty point.
func (c CheckoutConfig) PointsPerAmountValue() decimal.Decimal {
	return decimal.RequireFromString(c.PointsPerAmount)
}

func (c CheckoutConfig) validate() error {
	for name, raw := range map[string]string{
		EnvFreeDeliveryThreshold: c.FreeDeliveryThreshold,
		EnvFlatDeliveryFee:       c.FlatDeliveryFee,
	} {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("%s must be a decimal: %w", name, err)
		}
		if value.IsNegative() {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	points, err := decimal.NewFromString(c.PointsPerAmount)
	if err != nil || !points.IsPositive() {
		return fmt.Errorf("points per amount must be a positive decimal")
	}
	return nil
}

type LoyaltyConfig struct {
	PointsTTL time.Duration `envconfig:"FRESHCART_LOYALTY_POINTS_TTL" default:"8760h"`
}

type CronConfig struct {
	Interval              time.Duration `envconfig:"FRESHCART_CRON_INTERVAL" default:"15m"`
	LockTTL               time.Duration `envconfig:"FRESHCART_CRON_LOCK_TTL" default:"10m"`
	NotificationRetention time.Duration `envconfig:"FRESHCART_CRON_NOTIFICATION_RETENTION" default:"720h"`
	LoyaltyExpiryBatch    int           `envconfig:"FRESHCART_CRON_LOYALTY_EXPIRY_BATCH" default:"500"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
