package config_test

import (
	"testing"
	"time"

	"catalog/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, config.StoreMongo, cfg.Store.Driver)
	assert.Equal(t, "products", cfg.Store.MongoCollection)
	assert.Equal(t, config.UploadDisk, cfg.Upload.Driver)
	assert.Equal(t, "/uploads", cfg.Upload.URLPrefix)
	assert.Equal(t, "product_events", cfg.RabbitMQ.Queue)
	assert.Empty(t, cfg.RabbitMQ.URL)
	assert.Equal(t, 50, cfg.MaxUploadMB)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("DATABASE_DSN", "file::memory:")
	t.Setenv("UPLOAD_URL_PREFIX", "/files/")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, config.StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, "file::memory:", cfg.Store.DSN)
	assert.Equal(t, "/files", cfg.Upload.URLPrefix)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_RejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown store", map[string]string{"STORE_DRIVER": "redis"}, "unsupported STORE_DRIVER"},
		{"unknown upload", map[string]string{"UPLOAD_DRIVER": "ftp"}, "unsupported UPLOAD_DRIVER"},
		{"s3 without bucket", map[string]string{"UPLOAD_DRIVER": "s3"}, "S3_BUCKET is required"},
		{"bad timeout", map[string]string{"SHUTDOWN_TIMEOUT": "soon"}, "invalid SHUTDOWN_TIMEOUT"},
		{"zero upload size", map[string]string{"MAX_UPLOAD_MB": "0"}, "MAX_UPLOAD_MB must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, val := range tt.env {
				t.Setenv(k, val)
			}
			_, err := config.Load(viper.New())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
