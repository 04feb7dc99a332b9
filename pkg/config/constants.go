package config

const (
	EnvPrefix = "fieldstock"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "FIELDSTOCK_APP_ENV"
	EnvPort     = "FIELDSTOCK_APP_PORT"
	EnvDBDSN    = "FIELDSTOCK_DB_DSN"
	EnvDBHost   = "FIELDSTOCK_DB_HOST"
	EnvDBUser   = "FIELDSTOCK_DB_USER"
	EnvDBName   = "FIELDSTOCK_DB_NAME"
	EnvRedisURL = "FIELDSTOCK_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
