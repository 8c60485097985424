package config

// EnvPrefix is the envconfig prefix shared by every variable.
const EnvPrefix = "AGRICONECTA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "AGRICONECTA_DB_DSN"
	EnvDBHost = "AGRICONECTA_DB_HOST"
	EnvDBUser = "AGRICONECTA_DB_USER"
	EnvDBName = "AGRICONECTA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
