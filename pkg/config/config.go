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
	JWT          JWTConfig
	Gateway      GatewayConfig
	Pricing      PricingConfig
	Webhook      WebhookConfig
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
	Env          string `envconfig:"BORROWHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"BORROWHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BORROWHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BORROWHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BORROWHUB_DB_DSN"`
	Driver string `envconfig:"BORROWHUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BORROWHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"BORROWHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BORROWHUB_DB_USER"`
	LegacyPassword string `envconfig:"BORROWHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"BORROWHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"BORROWHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BORROWHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BORROWHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BORROWHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BORROWHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BORROWHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BORROWHUB_REDIS_ADDR"`
	Password     string        `envconfig:"BORROWHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"BORROWHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BORROWHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BORROWHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BORROWHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BORROWHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BORROWHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BORROWHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BORROWHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BORROWHUB_JWT_EXPIRATION_MINUTES" default:"60"`
}

// GatewayConfig configures the Square-backed payment gateway client.
type GatewayConfig struct {
	AccessToken   string `envconfig:"BORROWHUB_GATEWAY_ACCESS_TOKEN"`
	Env           string `envconfig:"BORROWHUB_GATEWAY_ENV" default:"sandbox"`
	LocationID    string `envconfig:"BORROWHUB_GATEWAY_LOCATION_ID"`
	WebhookSecret string `envconfig:"BORROWHUB_GATEWAY_WEBHOOK_SECRET"`
}

// Environment returns the normalized gateway environment (sandbox/production).
func (g GatewayConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(g.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type PricingConfig struct {
	PlatformFeePercent int    `envconfig:"BORROWHUB_PLATFORM_FEE_PERCENT" default:"10"`
	DefaultCurrency    string `envconfig:"BORROWHUB_DEFAULT_CURRENCY" default:"USD"`
}

type WebhookConfig struct {
	IdempotencyTTL time.Duration `envconfig:"BORROWHUB_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BORROWHUB_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BORROWHUB_AUTO_MIGRATE" default:"false"`
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
