package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable the platform reads.
	EnvPrefix = "CARTLINE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CARTLINE_DB_DSN"
	EnvDBHost = "CARTLINE_DB_HOST"
	EnvDBUser = "CARTLINE_DB_USER"
	EnvDBName = "CARTLINE_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Cron          CronConfig
	Analytics     AnalyticsConfig
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
	Env          string `envconfig:"CARTLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"CARTLINE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CARTLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARTLINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"CARTLINE_DB_DSN"`

	Host     string `envconfig:"CARTLINE_DB_HOST"`
	Port     int    `envconfig:"CARTLINE_DB_PORT" default:"5432"`
	User     string `envconfig:"CARTLINE_DB_USER"`
	Password string `envconfig:"CARTLINE_DB_PASSWORD"`
	Name     string `envconfig:"CARTLINE_DB_NAME"`
	SSLMode  string `envconfig:"CARTLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARTLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARTLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARTLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARTLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARTLINE_REDIS_URL"`
	Address      string        `envconfig:"CARTLINE_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"CARTLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARTLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARTLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARTLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARTLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARTLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARTLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CARTLINE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CARTLINE_JWT_ISSUER" default:"cartline"`
	ExpirationMinutes int    `envconfig:"CARTLINE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CARTLINE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CARTLINE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CARTLINE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CARTLINE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CARTLINE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CARTLINE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CARTLINE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CARTLINE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CARTLINE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"CARTLINE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CARTLINE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CARTLINE_AUTO_MIGRATE" default:"false"`
}

type CronConfig struct {
	Interval    time.Duration `envconfig:"CARTLINE_CRON_INTERVAL" default:"24h"`
	LockTTL     time.Duration `envconfig:"CARTLINE_CRON_LOCK_TTL" default:"25h"`
	MetricsPort string        `envconfig:"CARTLINE_CRON_METRICS_PORT" default:"9090"`
}

type AnalyticsConfig struct {
	RetentionDays int `envconfig:"CARTLINE_ANALYTICS_RETENTION_DAYS" default:"90"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
