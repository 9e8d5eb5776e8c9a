package config

const (
	EnvPrefix = "FRESHCART"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "FRESHCART_APP_ENV"
	EnvPort     = "FRESHCART_APP_PORT"
	EnvLogLevel = "FRESHCART_LOG_LEVEL"

	EnvDBDSN  = "FRESHCART_DB_DSN"
	EnvDBHost = "FRESHCART_DB_HOST"
	EnvDBUser = "FRESHCART_DB_USER"
	EnvDBName = "FRESHCART_DB_NAME"

	EnvRedisURL = "FRESHCART_REDIS_URL"

	EnvJWTSecret  = "FRESHCART_JWT_SECRET"
	EnvJWTIssuer  = "FRESHCART_JWT_ISSUER"
	EnvJWTExpMins = "FRESHCART_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID          = "FRESHCART_GCP_PROJECT_ID"
	EnvPubSubNotificationTop = "FRESHCART_PUBSUB_NOTIFICATION_TOPIC"
	EnvPubSubNotificationSub = "FRESHCART_PUBSUB_NOTIFICATION_SUBSCRIPTION"

	EnvFreeDeliveryThreshold = "FRESHCART_CHECKOUT_FREE_DELIVERY_THRESHOLD"
	EnvFlatDeliveryFee       = "FRESHCART_CHECKOUT_FLAT_DELIVERY_FEE"
)

// legacyDBEnvVars must all be present when no DSN is supplied.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
