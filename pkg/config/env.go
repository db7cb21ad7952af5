package config

const EnvPrefix = "COMMISSARY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	StorageDriverLocal = "local"
	StorageDriverGCS   = "gcs"
)

const (
	EnvAppEnv            = "COMMISSARY_APP_ENV"
	EnvPort              = "COMMISSARY_APP_PORT"
	EnvDBDSN             = "COMMISSARY_DB_DSN"
	EnvDBHost            = "COMMISSARY_DB_HOST"
	EnvDBUser            = "COMMISSARY_DB_USER"
	EnvDBName            = "COMMISSARY_DB_NAME"
	EnvUseSQLite         = "COMMISSARY_USE_SQLITE"
	EnvRedisURL          = "COMMISSARY_REDIS_URL"
	EnvStorageDriver     = "COMMISSARY_STORAGE_DRIVER"
	EnvUploadDir         = "COMMISSARY_UPLOAD_DIR"
	EnvGCSBucket         = "COMMISSARY_GCS_BUCKET_NAME"
	EnvLowStockThreshold = "COMMISSARY_LOW_STOCK_THRESHOLD"
	EnvCORSOrigins       = "COMMISSARY_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
