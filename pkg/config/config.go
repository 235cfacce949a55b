package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "WISHLIST"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Environment variable names referenced outside of struct tags.
const (
	EnvAppEnv              = "WISHLIST_APP_ENV"
	EnvPort                = "WISHLIST_APP_PORT"
	EnvDBDSN               = "WISHLIST_DB_DSN"
	EnvDBDriver            = "WISHLIST_DB_DRIVER"
	EnvDBHost              = "WISHLIST_DB_HOST"
	EnvDBUser              = "WISHLIST_DB_USER"
	EnvDBName              = "WISHLIST_DB_NAME"
	EnvRedisURL            = "WISHLIST_REDIS_URL"
	EnvShopifyAPIKey       = "WISHLIST_SHOPIFY_API_KEY"
	EnvShopifyAPISecret    = "WISHLIST_SHOPIFY_API_SECRET"
	EnvShopifyVerifyProxy  = "WISHLIST_SHOPIFY_VERIFY_PROXY_SIGNATURE"
	EnvGCPProjectID        = "WISHLIST_GCP_PROJECT_ID"
	EnvPubSubWishlistTopic = "WISHLIST_PUBSUB_WISHLIST_TOPIC"
	EnvStatsCacheTTL       = "WISHLIST_STATS_CACHE_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Shopify      ShopifyConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Stats        StatsConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
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
	if err := cfg.PubSub.validate(cfg.GCP); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WISHLIST_APP_ENV" required:"true"`
	Port         string `envconfig:"WISHLIST_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"WISHLIST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WISHLIST_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WISHLIST_DB_DSN"`
	Driver string `envconfig:"WISHLIST_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WISHLIST_DB_HOST"`
	LegacyPort     int    `envconfig:"WISHLIST_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WISHLIST_DB_USER"`
	LegacyPassword string `envconfig:"WISHLIST_DB_PASSWORD"`
	LegacyName     string `envconfig:"WISHLIST_DB_NAME"`
	LegacySSLMode  string `envconfig:"WISHLIST_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WISHLIST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WISHLIST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WISHLIST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WISHLIST_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

// RedisConfig is optional: an empty URL and address disables caching and rate limiting.
type RedisConfig struct {
	URL          string        `envconfig:"WISHLIST_REDIS_URL"`
	Address      string        `envconfig:"WISHLIST_REDIS_ADDR"`
	Password     string        `envconfig:"WISHLIST_REDIS_PASSWORD"`
	DB           int           `envconfig:"WISHLIST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WISHLIST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WISHLIST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WISHLIST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WISHLIST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WISHLIST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type ShopifyConfig struct {
	APIKey               string `envconfig:"WISHLIST_SHOPIFY_API_KEY" required:"true"`
	APISecret            string `envconfig:"WISHLIST_SHOPIFY_API_SECRET" required:"true"`
	VerifyProxySignature bool   `envconfig:"WISHLIST_SHOPIFY_VERIFY_PROXY_SIGNATURE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"WISHLIST_GCP_PROJECT_ID"`
}

// PubSubConfig is optional: an empty topic disables activity events.
type PubSubConfig struct {
	WishlistTopic string `envconfig:"WISHLIST_PUBSUB_WISHLIST_TOPIC"`
}

// Enabled reports whether wishlist activity events should be published.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.WishlistTopic) != ""
}

func (p PubSubConfig) validate(gcp GCPConfig) error {
	if p.Enabled() && strings.TrimSpace(gcp.ProjectID) == "" {
		return fmt.Errorf("%s is required when %s is set", EnvGCPProjectID, EnvPubSubWishlistTopic)
	}
	return nil
}

type StatsConfig struct {
	CacheTTL         time.Duration `envconfig:"WISHLIST_STATS_CACHE_TTL" default:"60s"`
	TopProductsLimit int           `envconfig:"WISHLIST_STATS_TOP_PRODUCTS_LIMIT" default:"10"`
}

type RateLimitConfig struct {
	Window time.Duration `envconfig:"WISHLIST_RATE_LIMIT_WINDOW" default:"1m"`
	Limit  int           `envconfig:"WISHLIST_RATE_LIMIT_LIMIT" default:"120"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"WISHLIST_CORS_ALLOWED_ORIGINS" default:"https://admin.shopify.com"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"WISHLIST_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
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
