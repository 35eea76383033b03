package config

const (
	EnvPrefix = "GLOWCALL"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "GLOWCALL_APP_ENV"
	EnvPort     = "GLOWCALL_APP_PORT"
	EnvLogLevel = "GLOWCALL_LOG_LEVEL"

	EnvDBDSN  = "GLOWCALL_DB_DSN"
	EnvDBHost = "GLOWCALL_DB_HOST"
	EnvDBUser = "GLOWCALL_DB_USER"
	EnvDBName = "GLOWCALL_DB_NAME"

	EnvUseSQLite = "GLOWCALL_USE_SQLITE"

	EnvRedisURL = "GLOWCALL_REDIS_URL"

	EnvJWTSecret  = "GLOWCALL_JWT_SECRET"
	EnvJWTIssuer  = "GLOWCALL_JWT_ISSUER"
	EnvJWTExpMins = "GLOWCALL_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "GLOWCALL_GCP_PROJECT_ID"

	EnvPubSubNotificationTopic = "GLOWCALL_PUBSUB_NOTIFICATION_TOPIC"
	EnvPubSubNotificationSub   = "GLOWCALL_PUBSUB_NOTIFICATION_SUBSCRIPTION"

	EnvFinanceTaxRate        = "GLOWCALL_FINANCE_TAX_RATE"
	EnvFinanceCommissionRate = "GLOWCALL_FINANCE_COMMISSION_RATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
