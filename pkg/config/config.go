package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "meepledex"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "MEEPLEDEX_DB_DSN"
	EnvDBHost = "MEEPLEDEX_DB_HOST"
	EnvDBUser = "MEEPLEDEX_DB_USER"
	EnvDBName = "MEEPLEDEX_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	BGG          BGGConfig
	Cloudinary   CloudinaryConfig
	BuyList      BuyListConfig
	Cron         CronConfig
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
	Env          string `envconfig:"MEEPLEDEX_APP_ENV" required:"true"`
	Port         string `envconfig:"MEEPLEDEX_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MEEPLEDEX_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEEPLEDEX_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MEEPLEDEX_DB_DSN"`
	Driver string `envconfig:"MEEPLEDEX_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MEEPLEDEX_DB_HOST"`
	LegacyPort     int    `envconfig:"MEEPLEDEX_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MEEPLEDEX_DB_USER"`
	LegacyPassword string `envconfig:"MEEPLEDEX_DB_PASSWORD"`
	LegacyName     string `envconfig:"MEEPLEDEX_DB_NAME"`
	LegacySSLMode  string `envconfig:"MEEPLEDEX_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEEPLEDEX_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEEPLEDEX_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEEPLEDEX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEEPLEDEX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEEPLEDEX_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MEEPLEDEX_REDIS_ADDR"`
	Password     string        `envconfig:"MEEPLEDEX_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEEPLEDEX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEEPLEDEX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEEPLEDEX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEEPLEDEX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEEPLEDEX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEEPLEDEX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MEEPLEDEX_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MEEPLEDEX_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MEEPLEDEX_JWT_EXPIRATION_MINUTES" default:"720"`
}

// AccessTokenTTL returns the access token lifetime configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MEEPLEDEX_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MEEPLEDEX_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MEEPLEDEX_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MEEPLEDEX_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MEEPLEDEX_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MEEPLEDEX_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MEEPLEDEX_AUTO_MIGRATE" default:"false"`
}

type BGGConfig struct {
	BaseURL        string        `envconfig:"MEEPLEDEX_BGG_BASE_URL" default:"https://boardgamegeek.com/xmlapi2"`
	RequestTimeout time.Duration `envconfig:"MEEPLEDEX_BGG_REQUEST_TIMEOUT" default:"15s"`
	QueueRetries   int           `envconfig:"MEEPLEDEX_BGG_QUEUE_RETRIES" default:"5"`
	QueueBackoff   time.Duration `envconfig:"MEEPLEDEX_BGG_QUEUE_BACKOFF" default:"2s"`
	CacheTTL       time.Duration `envconfig:"MEEPLEDEX_BGG_CACHE_TTL" default:"24h"`
	SyncStaleAfter time.Duration `envconfig:"MEEPLEDEX_BGG_SYNC_STALE_AFTER" default:"168h"`
}

type CloudinaryConfig struct {
	CloudName string `envconfig:"MEEPLEDEX_CLOUDINARY_CLOUD_NAME"`
	APIKey    string `envconfig:"MEEPLEDEX_CLOUDINARY_API_KEY"`
	APISecret string `envconfig:"MEEPLEDEX_CLOUDINARY_API_SECRET"`
	Folder    string `envconfig:"MEEPLEDEX_CLOUDINARY_FOLDER" default:"meepledex"`
}

type BuyListConfig struct {
	RefreshStaleAfter time.Duration `envconfig:"MEEPLEDEX_BUYLIST_REFRESH_STALE_AFTER" default:"24h"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"MEEPLEDEX_CRON_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"MEEPLEDEX_CRON_LOCK_TTL" default:"1h"`
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
