package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:4000", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, time.Hour, cfg.Auth.PasswordResetTTL())
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, MailProviderNoop, cfg.Mail.Provider)
	assert.Equal(t, MailQueueMemory, cfg.Mail.Queue)
	assert.Equal(t, 3, cfg.Mail.MaxAttempts)
}

func TestLoad_LegacyVariableNames(t *testing.T) {
	t.Setenv("JWT", "legacy-secret")
	t.Setenv("PORT", "5000")
	t.Setenv("EMAIL_HOST", "smtp.example.com")
	t.Setenv("EMAIL_PORT", "465")
	t.Setenv("EMAIL_SECURE", "true")
	t.Setenv("EMAIL_USER", "mailer@example.com")
	t.Setenv("EMAIL_PASS", "pw")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "legacy-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "5000", cfg.App.Port)
	assert.Equal(t, "smtp.example.com", cfg.Mail.Host)
	assert.Equal(t, 465, cfg.Mail.Port)
	assert.True(t, cfg.Mail.Secure)
	assert.Equal(t, "mailer@example.com", cfg.Mail.From)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{}},
		{name: "unknown storage", env: map[string]string{"JWT": "s", "STORAGE_DRIVER": "sqlite"}},
		{name: "unknown mail provider", env: map[string]string{"JWT": "s", "MAIL_PROVIDER": "pigeon"}},
		{name: "redis queue without redis", env: map[string]string{"JWT": "s", "MAIL_QUEUE": "redis"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AUTH_JWT_SECRET", "")
			t.Setenv("JWT", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
