package config

const EnvPrefix = "WARD"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "WARD_APP_ENV"
	EnvPort     = "WARD_APP_PORT"
	EnvDBDSN    = "WARD_DB_DSN"
	EnvDBHost   = "WARD_DB_HOST"
	EnvDBUser   = "WARD_DB_USER"
	EnvDBName   = "WARD_DB_NAME"
	EnvRedisURL = "WARD_REDIS_URL"

	EnvJWTSecret  = "WARD_JWT_SECRET"
	EnvJWTIssuer  = "WARD_JWT_ISSUER"
	EnvJWTExpMins = "WARD_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
