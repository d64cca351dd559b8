package config

// EnvPrefix is passed to envconfig; every field carries an explicit key so the
// prefix only matters for untagged fields.
const EnvPrefix = "MIXBAR"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "MIXBAR_APP_ENV"
	EnvPort     = "MIXBAR_APP_PORT"
	EnvLogLevel = "MIXBAR_LOG_LEVEL"

	EnvDBDSN    = "MIXBAR_DB_DSN"
	EnvDBDriver = "MIXBAR_DB_DRIVER"
	EnvDBHost   = "MIXBAR_DB_HOST"
	EnvDBPort   = "MIXBAR_DB_PORT"
	EnvDBUser   = "MIXBAR_DB_USER"
	EnvDBName   = "MIXBAR_DB_NAME"

	EnvRedisURL = "MIXBAR_REDIS_URL"

	EnvCartCacheTTL = "MIXBAR_CART_CACHE_TTL"

	EnvCORSOrigins    = "MIXBAR_CORS_ORIGINS"
	EnvCronInterval   = "MIXBAR_CRON_INTERVAL"
	EnvCronStaleAfter = "MIXBAR_CRON_STALE_CART_AFTER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
