package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allVars = []string{
	"DATABASE_URL", "JWT_SECRET_KEY", "SERVER_PORT", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS",
	"SCHEDULER_INTERVAL", "R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY",
	"R2_BUCKET_NAME", "R2_PUBLIC_BASE_URL",
}

func setEnv(t *testing.T, values map[string]string) {
	t.Helper()
	for _, name := range allVars {
		t.Setenv(name, values[name])
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, map[string]string{
		"DATABASE_URL":   "postgres://localhost/tornamate",
		"JWT_SECRET_KEY": "secret",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, time.Minute, cfg.SchedulerInterval)
	assert.Nil(t, cfg.R2)
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, map[string]string{
		"DATABASE_URL":         "postgres://localhost/tornamate",
		"JWT_SECRET_KEY":       "secret",
		"SERVER_PORT":          "9000",
		"LOG_LEVEL":            "debug",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example,",
		"SCHEDULER_INTERVAL":   "30s",
		"R2_ACCOUNT_ID":        "acc",
		"R2_ACCESS_KEY_ID":     "key",
		"R2_SECRET_ACCESS_KEY": "sec",
		"R2_BUCKET_NAME":       "snapshots",
		"R2_PUBLIC_BASE_URL":   "https://cdn.example/",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.SchedulerInterval)
	require.NotNil(t, cfg.R2)
	assert.Equal(t, "snapshots", cfg.R2.BucketName)
	assert.Equal(t, "https://cdn.example", cfg.R2.PublicBaseURL)
}

func TestLoad_Errors(t *testing.T) {
	base := map[string]string{
		"DATABASE_URL":   "postgres://localhost/tornamate",
		"JWT_SECRET_KEY": "secret",
	}
	tests := []struct {
		name    string
		set     map[string]string
		wantErr string
	}{
		{name: "missing database url", set: map[string]string{"DATABASE_URL": ""}, wantErr: "DATABASE_URL"},
		{name: "missing jwt key", set: map[string]string{"JWT_SECRET_KEY": ""}, wantErr: "JWT_SECRET_KEY"},
		{name: "port not a number", set: map[string]string{"SERVER_PORT": "http"}, wantErr: "SERVER_PORT"},
		{name: "port out of range", set: map[string]string{"SERVER_PORT": "70000"}, wantErr: "between 1 and 65535"},
		{name: "bad interval", set: map[string]string{"SCHEDULER_INTERVAL": "soon"}, wantErr: "SCHEDULER_INTERVAL"},
		{name: "interval too short", set: map[string]string{"SCHEDULER_INTERVAL": "10ms"}, wantErr: "at least 1s"},
		{name: "partial r2", set: map[string]string{"R2_ACCOUNT_ID": "acc", "R2_BUCKET_NAME": "b"}, wantErr: "R2_ACCESS_KEY_ID, R2_PUBLIC_BASE_URL, R2_SECRET_ACCESS_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := map[string]string{}
			for k, v := range base {
				values[k] = v
			}
			for k, v := range tt.set {
				values[k] = v
			}
			setEnv(t, values)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
