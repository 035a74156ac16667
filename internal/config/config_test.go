package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SMTP_HOST", "")
	t.Setenv("SMTP_USER", "")
	t.Setenv("SMTP_PASS", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("SUBMIT_INITIAL_BACKOFF", "")

	cfg := Load()

	assert.Equal(t, StorageMongo, cfg.StorageDriver)
	assert.Equal(t, 5, cfg.SubmitMaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.SubmitInitialBackoff)
	assert.Equal(t, 10*time.Second, cfg.SubmitMaxBackoff)
	assert.Equal(t, 30*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "POSTGRES")
	t.Setenv("SUBMIT_INITIAL_BACKOFF", "500ms")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "mailer@example.com")
	t.Setenv("SMTP_PASS", "secret")
	t.Setenv("FROM_EMAIL", "")
	t.Setenv("SMTP_SECURE", "true")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()

	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, 500*time.Millisecond, cfg.SubmitInitialBackoff)
	assert.True(t, cfg.SMTP.Enabled())
	assert.True(t, cfg.SMTP.Secure)
	assert.Equal(t, "mailer@example.com", cfg.SMTP.From)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"mongo without uri", Config{StorageDriver: StorageMongo, SubmitMaxAttempts: 5}, true},
		{"mongo with uri", Config{StorageDriver: StorageMongo, MongoURI: "mongodb://localhost", SubmitMaxAttempts: 5}, false},
		{"postgres without url", Config{StorageDriver: StoragePostgres, SubmitMaxAttempts: 5}, true},
		{"postgres with url", Config{StorageDriver: StoragePostgres, DatabaseURL: "postgres://x", SubmitMaxAttempts: 5}, false},
		{"memory", Config{StorageDriver: StorageMemory, SubmitMaxAttempts: 1}, false},
		{"unknown driver", Config{StorageDriver: "sqlite", SubmitMaxAttempts: 5}, true},
		{"zero attempts", Config{StorageDriver: StorageMongo, MongoURI: "mongodb://localhost"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
