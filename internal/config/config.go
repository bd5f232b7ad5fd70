package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported store drivers.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// Supported attachment drivers.
const (
	UploadDisk = "disk"
	UploadS3   = "s3"
)

// Config holds the runtime configuration of the catalog service.
type Config struct {
	AppPort         string
	ShutdownTimeout time.Duration
	MaxUploadMB     int
	CORSOrigins     string
	SeedProducts    bool

	Store    StoreConfig
	Upload   UploadConfig
	RabbitMQ RabbitMQConfig
	Log      LogConfig
}

// StoreConfig selects and configures the product store.
type StoreConfig struct {
	Driver          string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	DSN             string // postgres DSN or sqlite file
}

// UploadConfig selects and configures where attachments are written.
type UploadConfig struct {
	Driver    string
	Dir       string
	URLPrefix string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Prefix    string
	S3PublicURL string
}

// RabbitMQConfig configures the optional product event publisher.
// An empty URL disables publishing.
type RabbitMQConfig struct {
	URL   string
	Queue string
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string
	Format string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("MAX_UPLOAD_MB", 50)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("SEED_PRODUCTS", false)

	v.SetDefault("STORE_DRIVER", StoreMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "catalog")
	v.SetDefault("MONGO_COLLECTION", "products")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=catalog port=5432 sslmode=disable")

	v.SetDefault("UPLOAD_DRIVER", UploadDisk)
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_URL_PREFIX", "/uploads")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_PREFIX", "uploads")
	v.SetDefault("S3_PUBLIC_URL", "")

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "product_events")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Load reads the configuration from v. Environment variables override
// defaults; CONFIG_FILE, when set, names an additional config file.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	shutdown, err := time.ParseDuration(v.GetString("SHUTDOWN_TIMEOUT"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppPort:         v.GetString("APP_PORT"),
		ShutdownTimeout: shutdown,
		MaxUploadMB:     v.GetInt("MAX_UPLOAD_MB"),
		CORSOrigins:     v.GetString("CORS_ORIGINS"),
		SeedProducts:    v.GetBool("SEED_PRODUCTS"),
		Store: StoreConfig{
			Driver:          strings.ToLower(v.GetString("STORE_DRIVER")),
			MongoURI:        v.GetString("MONGO_URI"),
			MongoDatabase:   v.GetString("MONGO_DATABASE"),
			MongoCollection: v.GetString("MONGO_COLLECTION"),
			DSN:             v.GetString("DATABASE_DSN"),
		},
		Upload: UploadConfig{
			Driver:      strings.ToLower(v.GetString("UPLOAD_DRIVER")),
			Dir:         v.GetString("UPLOAD_DIR"),
			URLPrefix:   strings.TrimRight(v.GetString("UPLOAD_URL_PREFIX"), "/"),
			S3Bucket:    v.GetString("S3_BUCKET"),
			S3Region:    v.GetString("S3_REGION"),
			S3Endpoint:  v.GetString("S3_ENDPOINT"),
			S3AccessKey: v.GetString("S3_ACCESS_KEY"),
			S3SecretKey: v.GetString("S3_SECRET_KEY"),
			S3Prefix:    strings.Trim(v.GetString("S3_PREFIX"), "/"),
			S3PublicURL: strings.TrimRight(v.GetString("S3_PUBLIC_URL"), "/"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   v.GetString("RABBITMQ_URL"),
			Queue: v.GetString("RABBITMQ_QUEUE"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Driver {
	case StoreMongo, StorePostgres, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Upload.Driver {
	case UploadDisk:
		if c.Upload.Dir == "" {
			return fmt.Errorf("UPLOAD_DIR is required for the disk upload driver")
		}
	case UploadS3:
		if c.Upload.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 upload driver")
		}
	default:
		return fmt.Errorf("unsupported UPLOAD_DRIVER %q", c.Upload.Driver)
	}

	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	return nil
}
