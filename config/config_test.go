package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DAILY_MAIL_LIMIT", "")
	t.Setenv("STATIC_DIR", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.StaticDir, "no dashboard is mounted by default")

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 2000, cfg.DailyMailLimit)
	assert.Equal(t, 30*time.Second, cfg.SendTimeout)
	assert.Equal(t, 30, cfg.LookaheadDays)
	assert.Equal(t, 24*time.Hour, cfg.SentCacheTTL)
	assert.Equal(t, "database/migrations", cfg.MigrationsPath)
	assert.Equal(t, time.Local, cfg.Location())
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DAILY_MAIL_LIMIT", "50")
	t.Setenv("SEND_TIMEOUT", "5s")
	t.Setenv("TIMEZONE", "Europe/Berlin")
	t.Setenv("SKIP_TLS_VERIFY", "YES")
	t.Setenv("SENDER_NAME", "Rotary Club")
	t.Setenv("SENDER_EMAIL", "club@example.org")
	t.Setenv("TRANSPORT_ENDPOINT", "smtp://mail.example.org:587")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("STATIC_DIR", "web")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "web", cfg.StaticDir)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 50, cfg.DailyMailLimit)
	assert.Equal(t, 5*time.Second, cfg.SendTimeout)
	assert.True(t, cfg.SkipTLSVerify)
	assert.Equal(t, "Rotary Club", cfg.SenderName)
	assert.Equal(t, "club@example.org", cfg.SenderEmail)
	assert.Equal(t, "smtp://mail.example.org:587", cfg.TransportEndpoint)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{DailyMailLimit: 10, SendTimeout: time.Second, LookaheadDays: 30, Timezone: "UTC"}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero limit", mutate: func(c *Config) { c.DailyMailLimit = 0 }, wantErr: true, errMsg: "DAILY_MAIL_LIMIT"},
		{name: "zero timeout", mutate: func(c *Config) { c.SendTimeout = 0 }, wantErr: true, errMsg: "SEND_TIMEOUT"},
		{name: "negative lookahead", mutate: func(c *Config) { c.LookaheadDays = -1 }, wantErr: true, errMsg: "LOOKAHEAD_DAYS"},
		{name: "unknown zone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }, wantErr: true, errMsg: "TIMEZONE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsYes(t *testing.T) {
	assert.True(t, isYes("YES"))
	assert.True(t, isYes("true"))
	assert.False(t, isYes("NO"))
	assert.False(t, isYes(""))
}
