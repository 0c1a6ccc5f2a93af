package config

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "BORROWHUB"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "BORROWHUB_DB_DSN"
	EnvDBHost = "BORROWHUB_DB_HOST"
	EnvDBUser = "BORROWHUB_DB_USER"
	EnvDBName = "BORROWHUB_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
