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
	JWT          JWTConfig
	GuestCart    GuestCartConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"WARD_APP_ENV" required:"true"`
	Port         string `envconfig:"WARD_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WARD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WARD_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WARD_DB_DSN"`
	Driver string `envconfig:"WARD_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WARD_DB_HOST"`
	LegacyPort     int    `envconfig:"WARD_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WARD_DB_USER"`
	LegacyPassword string `envconfig:"WARD_DB_PASSWORD"`
	LegacyName     string `envconfig:"WARD_DB_NAME"`
	LegacySSLMode  string `envconfig:"WARD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WARD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WARD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WARD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WARD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WARD_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WARD_REDIS_ADDR"`
	Password     string        `envconfig:"WARD_REDIS_PASSWORD"`
	DB           int           `envconfig:"WARD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WARD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WARD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WARD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WARD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WARD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"WARD_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"WARD_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"WARD_JWT_EXPIRATION_MINUTES" default:"60"`
}

// GuestCartConfig bounds the anonymous cart snapshots held in Redis.
type GuestCartConfig struct {
	TTL        time.Duration `envconfig:"WARD_GUEST_CART_TTL" default:"720h"`
	MaxEntries int           `envconfig:"WARD_GUEST_CART_MAX_ENTRIES" default:"200"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WARD_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WARD_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"WARD_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	CartTopic string `envconfig:"WARD_PUBSUB_CART_TOPIC" default:"ward-cart-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"WARD_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"WARD_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"WARD_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
