package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	CartToken    CartTokenConfig
	Checkout     CheckoutConfig
	Rapyd        RapydConfig
	SMTP         SMTPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOREFRONT_DB_DSN"`
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOREFRONT_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREFRONT_DB_USER"`
	LegacyPassword string `envconfig:"STOREFRONT_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREFRONT_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CartTokenConfig drives the signed cart cookie. Possession of a raw cart id
// is replaced by a signed, time-limited token.
type CartTokenConfig struct {
	Secret     string        `envconfig:"STOREFRONT_CART_TOKEN_SECRET" required:"true"`
	Issuer     string        `envconfig:"STOREFRONT_CART_TOKEN_ISSUER" default:"storefront"`
	TTL        time.Duration `envconfig:"STOREFRONT_CART_TOKEN_TTL" default:"8760h"`
	CookieName string        `envconfig:"STOREFRONT_CART_COOKIE_NAME" default:"cartId"`
}

type CheckoutConfig struct {
	BaseURL  string `envconfig:"STOREFRONT_CHECKOUT_BASE_URL" required:"true"`
	Currency string `envconfig:"STOREFRONT_CHECKOUT_CURRENCY" default:"ISK"`
	Country  string `envconfig:"STOREFRONT_CHECKOUT_COUNTRY" default:"IS"`
}

// RedirectBaseURL normalizes the configured base URL to https. A bare host is
// upgraded by prefixing the scheme; a missing value is caught at Load time.
func (c CheckoutConfig) RedirectBaseURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return ""
	}
	if !strings.HasPrefix(base, "https://") {
		return "https://" + strings.TrimPrefix(base, "http://")
	}
	return base
}

type RapydConfig struct {
	AccessKey string        `envconfig:"STOREFRONT_RAPYD_ACCESS_KEY" required:"true"`
	SecretKey string        `envconfig:"STOREFRONT_RAPYD_SECRET_KEY" required:"true"`
	BaseURL   string        `envconfig:"STOREFRONT_RAPYD_BASE_URL" default:"https://sandboxapi.rapyd.net"`
	Timeout   time.Duration `envconfig:"STOREFRONT_RAPYD_TIMEOUT" default:"15s"`
}

type SMTPConfig struct {
	Host        string `envconfig:"STOREFRONT_SMTP_HOST" default:"smtp.gmail.com"`
	Port        int    `envconfig:"STOREFRONT_SMTP_PORT" default:"587"`
	Username    string `envconfig:"STOREFRONT_SMTP_USERNAME"`
	Password    string `envconfig:"STOREFRONT_SMTP_PASSWORD"`
	OrdersInbox string `envconfig:"STOREFRONT_SMTP_ORDERS_INBOX"`
}

// Enabled reports whether notification mail is configured. Notifications are
// best-effort and the service boots without them.
func (s SMTPConfig) Enabled() bool {
	return s.Username != "" && s.Password != "" && s.OrdersInbox != ""
}

type PubSubConfig struct {
	ProjectID          string `envconfig:"STOREFRONT_GCP_PROJECT_ID"`
	OrdersTopic        string `envconfig:"STOREFRONT_PUBSUB_ORDERS_TOPIC" default:"storefront-order-events"`
	OrdersSubscription string `envconfig:"STOREFRONT_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"STOREFRONT_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"STOREFRONT_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"STOREFRONT_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type FeatureFlagsConfig struct {
	// EphemeralCartStore swaps the durable cart store for the in-memory one.
	// Carts then live only as long as the process; useful for demos and local
	// runs without Postgres durability.
	EphemeralCartStore bool `envconfig:"STOREFRONT_EPHEMERAL_CART_STORE" default:"false"`
	AutoMigrate        bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
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
