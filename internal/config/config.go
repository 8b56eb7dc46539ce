package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	BaseURL string `mapstructure:"base_url"`
	Server  struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
	Database struct {
		URL            string `mapstructure:"url"`
		MigrateOnStart bool   `mapstructure:"migrate_on_start"`
	} `mapstructure:"database"`
	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`
	Security struct {
		RequestID struct {
			TrustHeader bool `mapstructure:"trust_header"`
		} `mapstructure:"request_id"`
		Session struct {
			SweeperInterval time.Duration `mapstructure:"sweeper_interval"`
			CookieSecure    bool          `mapstructure:"cookie_secure"`
			SameSite        string        `mapstructure:"same_site"`
			TTL             time.Duration `mapstructure:"ttl"`
		} `mapstructure:"session"`
		MFA struct {
			LocalRequired bool `mapstructure:"local_required"`
		} `mapstructure:"mfa"`
		RateLimit struct {
			Enabled           bool          `mapstructure:"enabled"`
			RequestsPerMinute int           `mapstructure:"rpm"`
			Burst             int           `mapstructure:"burst"`
			TTL               time.Duration `mapstructure:"ttl"`
		} `mapstructure:"rate_limit"`
		Denylist struct {
			Enabled bool `mapstructure:"enabled"`
		} `mapstructure:"denylist"`
	} `mapstructure:"security"`
	Storage struct {
		Driver   string `mapstructure:"driver"` // "local" or "minio"
		LocalDir string `mapstructure:"local_dir"`
		Minio    struct {
			Endpoint  string `mapstructure:"endpoint"`
			AccessKey string `mapstructure:"access_key"`
			SecretKey string `mapstructure:"secret_key"`
			Bucket    string `mapstructure:"bucket"`
			Region    string `mapstructure:"region"`
			UseSSL    bool   `mapstructure:"use_ssl"`
		} `mapstructure:"minio"`
	} `mapstructure:"storage"`
	Upload struct {
		MaxBytes int64 `mapstructure:"max_bytes"`
	} `mapstructure:"upload"`
	Alerts struct {
		Enabled           bool   `mapstructure:"enabled"`
		Schedule          string `mapstructure:"schedule"`
		RecipientFallback string `mapstructure:"recipient_fallback"`
		Kafka             struct {
			Enabled bool     `mapstructure:"enabled"`
			Brokers []string `mapstructure:"brokers"`
			Topic   string   `mapstructure:"topic"`
		} `mapstructure:"kafka"`
		Email struct {
			Enabled bool   `mapstructure:"enabled"`
			From    string `mapstructure:"from"`
			Region  string `mapstructure:"region"`
		} `mapstructure:"email"`
	} `mapstructure:"alerts"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.migrate_on_start", true)
	// Sensible logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
	// Security defaults
	v.SetDefault("security.request_id.trust_header", false)
	v.SetDefault("security.session.sweeper_interval", "5m")
	v.SetDefault("security.session.cookie_secure", false)
	v.SetDefault("security.session.same_site", "lax")
	v.SetDefault("security.session.ttl", "8h")
	v.SetDefault("security.mfa.local_required", false)
	v.SetDefault("security.rate_limit.enabled", true)
	v.SetDefault("security.rate_limit.rpm", 120)
	v.SetDefault("security.rate_limit.burst", 60)
	v.SetDefault("security.rate_limit.ttl", "30m")
	v.SetDefault("security.denylist.enabled", true)
	// Documents
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_dir", "./uploads")
	v.SetDefault("storage.minio.bucket", "maintdash-documents")
	v.SetDefault("storage.minio.region", "us-east-1")
	v.SetDefault("upload.max_bytes", 10<<20)
	// Alerts
	v.SetDefault("alerts.enabled", false)
	v.SetDefault("alerts.schedule", "@every 15m")
	v.SetDefault("alerts.kafka.topic", "maintenance.alerts")
	v.SetDefault("alerts.email.region", "us-east-1")
}

var envBindings = map[string]string{
	"base_url":                          "BASE_URL",
	"server.addr":                       "SERVER_ADDR",
	"database.url":                      "DATABASE_URL",
	"database.migrate_on_start":         "DATABASE_MIGRATE_ON_START",
	"logging.level":                     "LOG_LEVEL",
	"logging.format":                    "LOG_FORMAT",
	"cors.allowed_origins":              "CORS_ALLOWED_ORIGINS",
	"security.request_id.trust_header":  "REQUEST_ID_TRUST_HEADER",
	"security.session.sweeper_interval": "SESSION_SWEEPER_INTERVAL",
	"security.session.cookie_secure":    "SESSION_COOKIE_SECURE",
	"security.session.same_site":        "SESSION_SAME_SITE",
	"security.session.ttl":              "SESSION_TTL",
	"security.mfa.local_required":       "MFA_LOCAL_REQUIRED",
	"security.rate_limit.enabled":       "RATE_LIMIT_ENABLED",
	"security.rate_limit.rpm":           "RATE_LIMIT_RPM",
	"security.rate_limit.burst":         "RATE_LIMIT_BURST",
	"security.rate_limit.ttl":           "RATE_LIMIT_TTL",
	"security.denylist.enabled":         "DENYLIST_ENABLED",
	"storage.driver":                    "STORAGE_DRIVER",
	"storage.local_dir":                 "STORAGE_LOCAL_DIR",
	"storage.minio.endpoint":            "MINIO_ENDPOINT",
	"storage.minio.access_key":          "MINIO_ACCESS_KEY",
	"storage.minio.secret_key":          "MINIO_SECRET_KEY",
	"storage.minio.bucket":              "MINIO_BUCKET",
	"storage.minio.region":              "MINIO_REGION",
	"storage.minio.use_ssl":             "MINIO_USE_SSL",
	"upload.max_bytes":                  "UPLOAD_MAX_BYTES",
	"alerts.enabled":                    "ALERTS_ENABLED",
	"alerts.schedule":                   "ALERTS_SCHEDULE",
	"alerts.recipient_fallback":         "ALERTS_RECIPIENT_FALLBACK",
	"alerts.kafka.enabled":              "ALERTS_KAFKA_ENABLED",
	"alerts.kafka.brokers":              "KAFKA_BROKERS",
	"alerts.kafka.topic":                "KAFKA_ALERTS_TOPIC",
	"alerts.email.enabled":              "ALERTS_EMAIL_ENABLED",
	"alerts.email.from":                 "ALERTS_EMAIL_FROM",
	"alerts.email.region":               "AWS_REGION",
}

// Load reads config.yaml from . or .., then .env, then the environment.
// Missing base_url or database.url is a programming error and panics.
func Load() Config {
	c, err := load(viper.New(), []string{".", ".."})
	if err != nil {
		panic("config error: " + err.Error())
	}
	return c
}

func load(v *viper.Viper, paths []string) (Config, error) {
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	_ = v.ReadInConfig()

	// .env never overrides variables already present in the environment
	_ = godotenv.Load()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, err
	}
	// comma-separated lists arrive as a single element from the environment
	c.CORS.AllowedOrigins = splitList(c.CORS.AllowedOrigins)
	c.Alerts.Kafka.Brokers = splitList(c.Alerts.Kafka.Brokers)

	if c.BaseURL == "" {
		return Config{}, errors.New("base_url/BASE_URL required")
	}
	if c.Database.URL == "" {
		return Config{}, errors.New("database.url/DATABASE_URL required")
	}
	return c, nil
}

func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
