package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                "development",
		Port:               "8080",
		JWTSecret:          "secure-secret-at-least-32-chars-long",
		DBPassword:         "secure-password",
		DBSSLMode:          "require",
		RandomPickTTLHours: 12,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateProductionSecrets(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	c.JWTSecret = defaultJWTSecret
	assert.Error(t, c.Validate())

	c = validConfig()
	c.Env = "production"
	c.JWTSecret = "short"
	assert.Error(t, c.Validate())

	c = validConfig()
	c.Env = "production"
	c.DBPassword = "password"
	assert.Error(t, c.Validate())
}

func TestConfig_ValidateRandomPickTTL(t *testing.T) {
	c := validConfig()
	c.RandomPickTTLHours = 0
	assert.Error(t, c.Validate())

	c.RandomPickTTLHours = 6
	require.NoError(t, c.Validate())
	assert.Equal(t, 6*time.Hour, c.RandomPickTTL())
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("QNET_IMAGE", "https://cdn.example.com/qnet.png")
	t.Setenv("RANDOM_PICK_TTL_HOURS", "3")
	t.Setenv("MONGO_DB", "careerhub_test")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", c.Env)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "https://cdn.example.com/qnet.png", c.QnetImage)
	assert.Equal(t, 3*time.Hour, c.RandomPickTTL())
	assert.Equal(t, "careerhub_test", c.MongoDB)
	assert.Equal(t, "8080", c.Port)
}
