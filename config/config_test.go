package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "5000", cfg.APIPort)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "token", cfg.SessionCookieName)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.MetricsEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("REQUEST_TIMEOUT", "750ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, ,https://admin.example.com")
	t.Setenv("JWT_EXPIRATION_HOURS", "12")
	t.Setenv("METRICS_ENABLED", "false")

	cfg := Load()

	assert.Equal(t, "9090", cfg.APIPort)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, 750*time.Millisecond, cfg.RequestTimeout)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 12, cfg.JWTExpirationHours)
	assert.False(t, cfg.MetricsEnabled)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_EXPIRATION_HOURS", "soon")
	t.Setenv("REQUEST_TIMEOUT", "five seconds")
	t.Setenv("METRICS_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 1, cfg.JWTExpirationHours)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.MetricsEnabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "unknown store driver",
			mutate:  func(c *Config) { c.StoreDriver = "cassandra" },
			wantErr: "unsupported STORE_DRIVER",
		},
		{
			name: "default secret in production",
			mutate: func(c *Config) {
				c.APIEnvironment = "production"
			},
			wantErr: "JWT_SECRET must be set",
		},
		{
			name:    "non positive session lifetime",
			mutate:  func(c *Config) { c.JWTExpirationHours = 0 },
			wantErr: "JWT_EXPIRATION_HOURS",
		},
		{
			name:    "unknown timezone",
			mutate:  func(c *Config) { c.FilterTimezone = "Mars/Olympus_Mons" },
			wantErr: "invalid FILTER_TIMEZONE",
		},
		{
			name: "production with custom secret",
			mutate: func(c *Config) {
				c.APIEnvironment = "production"
				c.JWTSecret = "a-real-secret"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := Load()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.FilterTimezone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}
