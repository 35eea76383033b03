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
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Finance      FinanceConfig
	Invoice      InvoiceConfig
	Retention    RetentionConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Finance.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"GLOWCALL_APP_ENV" required:"true"`
	Port         string   `envconfig:"GLOWCALL_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"GLOWCALL_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"GLOWCALL_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"GLOWCALL_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"GLOWCALL_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"GLOWCALL_DB_DSN"`
	Driver string `envconfig:"GLOWCALL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GLOWCALL_DB_HOST"`
	LegacyPort     int    `envconfig:"GLOWCALL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GLOWCALL_DB_USER"`
	LegacyPassword string `envconfig:"GLOWCALL_DB_PASSWORD"`
	LegacyName     string `envconfig:"GLOWCALL_DB_NAME"`
	LegacySSLMode  string `envconfig:"GLOWCALL_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"GLOWCALL_SQLITE_PATH" default:"file:glowcall.db?cache=shared"`

	MaxOpenConns    int           `envconfig:"GLOWCALL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GLOWCALL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GLOWCALL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GLOWCALL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GLOWCALL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GLOWCALL_REDIS_ADDR"`
	Password     string        `envconfig:"GLOWCALL_REDIS_PASSWORD"`
	DB           int           `envconfig:"GLOWCALL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GLOWCALL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GLOWCALL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GLOWCALL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GLOWCALL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GLOWCALL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GLOWCALL_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GLOWCALL_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"GLOWCALL_JWT_EXPIRATION_MINUTES" default:"60"`
}

// RateLimitConfig bounds how often a single user may create bookings.
type RateLimitConfig struct {
	BookingCreateWindow time.Duration `envconfig:"GLOWCALL_RATE_LIMIT_BOOKING_WINDOW" default:"1m"`
	BookingCreateLimit  int           `envconfig:"GLOWCALL_RATE_LIMIT_BOOKING_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GLOWCALL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GLOWCALL_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"GLOWCALL_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"GLOWCALL_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"GLOWCALL_PUBSUB_NOTIFICATION_TOPIC" default:"glowcall-notification-events"`
	NotificationSubscription string `envconfig:"GLOWCALL_PUBSUB_NOTIFICATION_SUBSCRIPTION" default:"glowcall-notification-worker"`
	BookingTopic             string `envconfig:"GLOWCALL_PUBSUB_BOOKING_TOPIC" default:"glowcall-booking-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"GLOWCALL_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"GLOWCALL_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"GLOWCALL_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// FinanceConfig holds the canonical rate table applied to every booking.
type FinanceConfig struct {
	TaxRate        string `envconfig:"GLOWCALL_FINANCE_TAX_RATE" default:"0.16"`
	CommissionRate string `envconfig:"GLOWCALL_FINANCE_COMMISSION_RATE" default:"0.15"`
}

// Rates parses the configured rates. Load has already validated them.
func (f FinanceConfig) Rates() (tax, commission decimal.Decimal) {
	tax, _ = decimal.NewFromString(f.TaxRate)
	commission, _ = decimal.NewFromString(f.CommissionRate)
	return tax, commission
}

func (f FinanceConfig) validate() error {
	for env, raw := range map[string]string{
		EnvFinanceTaxRate:        f.TaxRate,
		EnvFinanceCommissionRate: f.CommissionRate,
	} {
		rate, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%s must be a decimal: %w", env, err)
		}
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%s must be between 0 and 1", env)
		}
	}
	return nil
}

type InvoiceConfig struct {
	NumberPrefix string `envconfig:"GLOWCALL_INVOICE_NUMBER_PREFIX" default:"INV"`
	IssuerName   string `envconfig:"GLOWCALL_INVOICE_ISSUER_NAME" default:"GlowCall"`
}

type RetentionConfig struct {
	OutboxDays       int `envconfig:"GLOWCALL_RETENTION_OUTBOX_DAYS" default:"30"`
	NotificationDays int `envconfig:"GLOWCALL_RETENTION_NOTIFICATION_DAYS" default:"90"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
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
