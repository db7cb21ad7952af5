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
	FeatureFlags FeatureFlagsConfig
	Storage      StorageConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Inventory    InventoryConfig
	Cron         CronConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(cfg.GCS); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COMMISSARY_APP_ENV" required:"true"`
	Port         string `envconfig:"COMMISSARY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"COMMISSARY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COMMISSARY_LOG_WARN_STACK" default:"false"`
	Timezone     string `envconfig:"COMMISSARY_TIMEZONE" default:"Local"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the configured timezone used to decide what "today" is.
func (a AppConfig) Location() *time.Location {
	name := strings.TrimSpace(a.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}

type DBConfig struct {
	DSN    string `envconfig:"COMMISSARY_DB_DSN"`
	Driver string `envconfig:"COMMISSARY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"COMMISSARY_DB_HOST"`
	LegacyPort     int    `envconfig:"COMMISSARY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COMMISSARY_DB_USER"`
	LegacyPassword string `envconfig:"COMMISSARY_DB_PASSWORD"`
	LegacyName     string `envconfig:"COMMISSARY_DB_NAME"`
	LegacySSLMode  string `envconfig:"COMMISSARY_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"COMMISSARY_SQLITE_PATH" default:"commissary.db"`

	MaxOpenConns    int           `envconfig:"COMMISSARY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COMMISSARY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COMMISSARY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COMMISSARY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional; leaving both URL and address empty disables idempotency replay.
type RedisConfig struct {
	URL          string        `envconfig:"COMMISSARY_REDIS_URL"`
	Address      string        `envconfig:"COMMISSARY_REDIS_ADDR"`
	Password     string        `envconfig:"COMMISSARY_REDIS_PASSWORD"`
	DB           int           `envconfig:"COMMISSARY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COMMISSARY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COMMISSARY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COMMISSARY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COMMISSARY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COMMISSARY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"COMMISSARY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"COMMISSARY_AUTO_MIGRATE" default:"false"`
}

type StorageConfig struct {
	Driver        string `envconfig:"COMMISSARY_STORAGE_DRIVER" default:"local"`
	UploadDir     string `envconfig:"COMMISSARY_UPLOAD_DIR" default:"uploads"`
	PublicBaseURL string `envconfig:"COMMISSARY_UPLOAD_PUBLIC_BASE" default:"/uploads"`
	MaxUploadMB   int    `envconfig:"COMMISSARY_MAX_UPLOAD_MB" default:"10"`
}

// MaxUploadBytes converts the configured megabyte cap into bytes.
func (s StorageConfig) MaxUploadBytes() int64 {
	if s.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(s.MaxUploadMB) << 20
}

func (s StorageConfig) validate(gcs GCSConfig) error {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case StorageDriverLocal:
		if strings.TrimSpace(s.UploadDir) == "" {
			return fmt.Errorf("%s is required for the local storage driver", EnvUploadDir)
		}
	case StorageDriverGCS:
		if strings.TrimSpace(gcs.BucketName) == "" {
			return fmt.Errorf("%s is required for the gcs storage driver", EnvGCSBucket)
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", s.Driver)
	}
	return nil
}

type GCPConfig struct {
	ProjectID              string `envconfig:"COMMISSARY_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"COMMISSARY_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"COMMISSARY_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"COMMISSARY_GCS_BUCKET_NAME"`
}

type InventoryConfig struct {
	LowStockThreshold int `envconfig:"COMMISSARY_LOW_STOCK_THRESHOLD" default:"10"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"COMMISSARY_CRON_INTERVAL" default:"24h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"COMMISSARY_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DBDriverSQLite
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}
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
