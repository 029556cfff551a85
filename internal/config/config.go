package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type PostgresConfig struct {
	Host     string `envconfig:"PG_HOST" default:"127.0.0.1"`
	Port     int    `envconfig:"PG_PORT" default:"5432"`
	User     string `envconfig:"PG_USER" default:"root"`
	Password string `envconfig:"PG_PASSWORD" default:"hello-world"`
	DBName   string `envconfig:"PG_DB" default:"affordability"`
	SSLMode  string `envconfig:"PG_SSLMODE" default:"disable"`
}

type RedisConfig struct {
	Addr        string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	Password    string `envconfig:"REDIS_PASSWORD" default:""`
	DB          int    `envconfig:"REDIS_DB" default:"0"`
	MaxRetries  int    `envconfig:"REDIS_MAX_RETRIES" default:"5"`
	DialTimeout int    `envconfig:"REDIS_DIAL_TIMEOUT" default:"10"`
	Timeout     int    `envconfig:"REDIS_TIMEOUT" default:"5"`
	Prefix      string `envconfig:"REDIS_PREFIX" default:"affordability_"`
}

// S3Config is optional; reports fall back to local storage when Endpoint is empty.
type S3Config struct {
	Endpoint        string `envconfig:"S3_ENDPOINT" default:""`
	AccessKeyID     string `envconfig:"S3_ACCESS_KEY" default:""`
	SecretAccessKey string `envconfig:"S3_SECRET_KEY" default:""`
	Bucket          string `envconfig:"S3_BUCKET" default:"reports"`
	UseSSL          bool   `envconfig:"S3_USE_SSL" default:"false"`
	Region          string `envconfig:"S3_REGION" default:"us-east-1"`
	Prefix          string `envconfig:"S3_PREFIX" default:""`
}

type StorageConfig struct {
	ReportDir    string        `envconfig:"REPORT_DIR" default:"./reports"`
	PublicPrefix string        `envconfig:"FILES_PUBLIC_PREFIX" default:"/files"`
	ExternalURL  string        `envconfig:"EXTERNAL_URL" default:""`
	MaxFileAge   time.Duration `envconfig:"REPORT_MAX_AGE" default:"30m"`
	CleanupSpec  string        `envconfig:"REPORT_CLEANUP_SPEC" default:"@every 5m"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"text"`
}

type AppConfig struct {
	Port       string        `envconfig:"APP_PORT" default:"8010"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"2h"`

	Postgres PostgresConfig
	Redis    RedisConfig
	S3       S3Config
	Storage  StorageConfig
	Log      LogConfig
}

// Load reads the configuration from the environment. Nested sections use their own
// variable names so no prefix is applied.
func Load() (AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// S3Enabled reports whether reports should be uploaded to object storage.
func (c AppConfig) S3Enabled() bool {
	return c.S3.Endpoint != ""
}
