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
	Cart         CartConfig
	Cron         CronConfig
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
	Env          string   `envconfig:"MIXBAR_APP_ENV" required:"true"`
	Port         string   `envconfig:"MIXBAR_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"MIXBAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"MIXBAR_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"MIXBAR_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MIXBAR_DB_DSN"`
	Driver string `envconfig:"MIXBAR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MIXBAR_DB_HOST"`
	LegacyPort     int    `envconfig:"MIXBAR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MIXBAR_DB_USER"`
	LegacyPassword string `envconfig:"MIXBAR_DB_PASSWORD"`
	LegacyName     string `envconfig:"MIXBAR_DB_NAME"`
	LegacySSLMode  string `envconfig:"MIXBAR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MIXBAR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MIXBAR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MIXBAR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MIXBAR_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"MIXBAR_DB_SLOW_QUERY" default:"200ms"`
}

// IsSQLite reports whether the configured driver targets SQLite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"MIXBAR_REDIS_URL"`
	Address      string        `envconfig:"MIXBAR_REDIS_ADDR"`
	Password     string        `envconfig:"MIXBAR_REDIS_PASSWORD"`
	DB           int           `envconfig:"MIXBAR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MIXBAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MIXBAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MIXBAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MIXBAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MIXBAR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type CartConfig struct {
	CacheTTL       time.Duration `envconfig:"MIXBAR_CART_CACHE_TTL" default:"15m"`
	IdempotencyTTL time.Duration `envconfig:"MIXBAR_CART_IDEMPOTENCY_TTL" default:"24h"`
	DefaultLocale  string        `envconfig:"MIXBAR_CART_DEFAULT_LOCALE" default:"en"`
}

// CronConfig drives the background worker and its stale-cart sweep.
type CronConfig struct {
	Interval       time.Duration `envconfig:"MIXBAR_CRON_INTERVAL" default:"15m"`
	LockTTL        time.Duration `envconfig:"MIXBAR_CRON_LOCK_TTL" default:"10m"`
	StaleCartAfter time.Duration `envconfig:"MIXBAR_CRON_STALE_CART_AFTER" default:"72h"`
	StaleCartBatch int           `envconfig:"MIXBAR_CRON_STALE_CART_BATCH" default:"500"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MIXBAR_AUTO_MIGRATE" default:"false"`
	CartCache   bool `envconfig:"MIXBAR_FEATURE_CART_CACHE" default:"true"`
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
