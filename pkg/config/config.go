package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	// EnvPrefix scopes every environment variable the service reads.
	EnvPrefix = "KINBECH"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Ledger       LedgerConfig
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
	if err := cfg.Ledger.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KINBECH_APP_ENV" required:"true"`
	Port         string `envconfig:"KINBECH_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KINBECH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KINBECH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KINBECH_DB_DSN"`
	Driver string `envconfig:"KINBECH_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"KINBECH_DB_HOST"`
	Port     int    `envconfig:"KINBECH_DB_PORT" default:"5432"`
	User     string `envconfig:"KINBECH_DB_USER"`
	Password string `envconfig:"KINBECH_DB_PASSWORD"`
	Name     string `envconfig:"KINBECH_DB_NAME"`
	SSLMode  string `envconfig:"KINBECH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KINBECH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KINBECH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KINBECH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KINBECH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KINBECH_REDIS_URL" required:"true"`
	Password     string        `envconfig:"KINBECH_REDIS_PASSWORD"`
	DB           int           `envconfig:"KINBECH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KINBECH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KINBECH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KINBECH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KINBECH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KINBECH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"KINBECH_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"KINBECH_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"KINBECH_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"KINBECH_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// LedgerConfig carries the platform-wide rates the fulfillment pipeline
// injects per request instead of reading mutable singleton rows.
type LedgerConfig struct {
	// TaxRatePercent is the single global tax percentage applied on
	// subtotal + shipping during totals recompute (e.g. "13" for 13%).
	TaxRatePercent string `envconfig:"KINBECH_TAX_RATE_PERCENT" default:"0"`
	// DefaultCommissionRate is the fallback commission fraction used when a
	// vendor has no configured commission record.
	DefaultCommissionRate string `envconfig:"KINBECH_DEFAULT_COMMISSION_RATE" default:"0.10"`
}

func (l LedgerConfig) validate() error {
	tax, err := decimal.NewFromString(l.TaxRatePercent)
	if err != nil {
		return fmt.Errorf("invalid tax rate percent %q: %w", l.TaxRatePercent, err)
	}
	if tax.IsNegative() {
		return fmt.Errorf("tax rate percent must not be negative")
	}
	rate, err := decimal.NewFromString(l.DefaultCommissionRate)
	if err != nil {
		return fmt.Errorf("invalid default commission rate %q: %w", l.DefaultCommissionRate, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("default commission rate must be within [0,1]")
	}
	return nil
}

// TaxRate returns the configured global tax percentage.
func (l LedgerConfig) TaxRate() decimal.Decimal {
	d, err := decimal.NewFromString(l.TaxRatePercent)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// CommissionFallback returns the configured default commission fraction.
func (l LedgerConfig) CommissionFallback() decimal.Decimal {
	d, err := decimal.NewFromString(l.DefaultCommissionRate)
	if err != nil {
		return decimal.NewFromFloat(0.10)
	}
	return d
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"KINBECH_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for env, value := range map[string]string{
		"KINBECH_DB_HOST": db.Host,
		"KINBECH_DB_USER": db.User,
		"KINBECH_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either KINBECH_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
