package config

// EnvPrefix namespaces every storefront environment variable.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced directly by code and tests.
const (
	EnvAppEnv          = "STOREFRONT_APP_ENV"
	EnvPort            = "STOREFRONT_APP_PORT"
	EnvDBDSN           = "STOREFRONT_DB_DSN"
	EnvDBHost          = "STOREFRONT_DB_HOST"
	EnvDBUser          = "STOREFRONT_DB_USER"
	EnvDBName          = "STOREFRONT_DB_NAME"
	EnvRedisURL        = "STOREFRONT_REDIS_URL"
	EnvCartTokenSecret = "STOREFRONT_CART_TOKEN_SECRET"
	EnvCheckoutBaseURL = "STOREFRONT_CHECKOUT_BASE_URL"
	EnvRapydAccessKey  = "STOREFRONT_RAPYD_ACCESS_KEY"
	EnvRapydSecretKey  = "STOREFRONT_RAPYD_SECRET_KEY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
