package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configurations
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string
	StaticDir string

	DatabaseURL    string
	MigrationsPath string
	RedisURL       string
	SentCacheTTL   time.Duration

	DailyMailLimit int
	SendTimeout    time.Duration
	LookaheadDays  int
	Timezone       string

	// SMTP credentials used when the transport endpoint is smtp:// or smtps://
	MailHub       string
	AuthUser      string
	AuthPass      string
	SkipTLSVerify bool

	// Seed values for the stored club sender settings
	SenderName        string
	SenderEmail       string
	TransportEndpoint string
}

// LoadConfig reads configuration from .env and the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables directly.")
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port:              v.GetString("port"),
		LogLevel:          strings.ToLower(v.GetString("log_level")),
		LogFormat:         strings.ToLower(v.GetString("log_format")),
		StaticDir:         v.GetString("static_dir"),
		DatabaseURL:       v.GetString("database_url"),
		MigrationsPath:    v.GetString("migrations_path"),
		RedisURL:          v.GetString("redis_url"),
		SentCacheTTL:      v.GetDuration("sent_cache_ttl"),
		DailyMailLimit:    v.GetInt("daily_mail_limit"),
		SendTimeout:       v.GetDuration("send_timeout"),
		LookaheadDays:     v.GetInt("lookahead_days"),
		Timezone:          v.GetString("timezone"),
		MailHub:           v.GetString("mailhub"),
		AuthUser:          v.GetString("authuser"),
		AuthPass:          v.GetString("authpass"),
		SkipTLSVerify:     isYes(v.GetString("skip_tls_verify")),
		SenderName:        v.GetString("sender_name"),
		SenderEmail:       v.GetString("sender_email"),
		TransportEndpoint: v.GetString("transport_endpoint"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("migrations_path", "database/migrations")
	v.SetDefault("sent_cache_ttl", 24*time.Hour)
	v.SetDefault("daily_mail_limit", 2000)
	v.SetDefault("send_timeout", 30*time.Second)
	v.SetDefault("lookahead_days", 30)
	v.SetDefault("timezone", "Local")
}

// isYes keeps the YES convention of the original env files while also
// accepting ordinary booleans.
func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true
	}
	return false
}

// Validate checks ranges and the time zone name.
func (c *Config) Validate() error {
	if c.DailyMailLimit <= 0 {
		return fmt.Errorf("DAILY_MAIL_LIMIT must be positive, got %d", c.DailyMailLimit)
	}
	if c.SendTimeout <= 0 {
		return fmt.Errorf("SEND_TIMEOUT must be positive, got %s", c.SendTimeout)
	}
	if c.LookaheadDays <= 0 {
		return fmt.Errorf("LOOKAHEAD_DAYS must be positive, got %d", c.LookaheadDays)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured time zone. Validate has already vetted it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
