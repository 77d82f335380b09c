package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// AppConfig holds all runtime configuration. Values come from
// config.yaml with PARISH_* environment overrides; secrets must be
// provided through the environment, never defaulted in code.
type AppConfig struct {
	AppPort        string   `mapstructure:"app_port"`
	GinMode        string   `mapstructure:"gin_mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	JWTSecret   string `mapstructure:"jwt_secret"`
	JWTTTLHours int    `mapstructure:"jwt_ttl_hours"`

	// AdminEmails is the allow-list: matching accounts are ADMIN
	// regardless of the stored role.
	AdminEmails []string `mapstructure:"admin_emails"`

	DatabaseURI string `mapstructure:"database_uri"`
	DBHost      string `mapstructure:"db_host"`
	DBPort      string `mapstructure:"db_port"`
	DBUser      string `mapstructure:"db_user"`
	DBPassword  string `mapstructure:"db_password"`
	DBName      string `mapstructure:"db_name"`

	RedisHost     string `mapstructure:"redis_host"`
	RedisPort     int    `mapstructure:"redis_port"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisPassword string `mapstructure:"redis_password"`

	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
	GitHubClientID     string `mapstructure:"github_client_id"`
	GitHubClientSecret string `mapstructure:"github_client_secret"`
	OAuthRedirectBase  string `mapstructure:"oauth_redirect_base"`

	UploadDir       string `mapstructure:"upload_dir"`
	UploadMaxSizeMB int    `mapstructure:"upload_max_size_mb"`

	RateLimitPerMinute     int  `mapstructure:"rate_limit_per_minute"`
	RegisterCaptchaEnabled bool `mapstructure:"register_captcha_enabled"`

	LogLevel      string `mapstructure:"log_level"`
	LogPath       string `mapstructure:"log_path"`
	GinLogPath    string `mapstructure:"gin_log_path"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`
	LogMaxAgeDays int    `mapstructure:"log_max_age_days"`
	LogCompress   bool   `mapstructure:"log_compress"`
}

var (
	cfg    AppConfig
	loaded bool
)

// Load reads configuration once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("PARISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("invalid config file: %v", err)
		}
		// missing file is fine, env and defaults cover it
	}

	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	// Comma-separated env form for list values
	if len(cfg.AdminEmails) == 1 && strings.Contains(cfg.AdminEmails[0], ",") {
		cfg.AdminEmails = splitAndTrim(cfg.AdminEmails[0])
	}
	if len(cfg.AllowedOrigins) == 1 && strings.Contains(cfg.AllowedOrigins[0], ",") {
		cfg.AllowedOrigins = splitAndTrim(cfg.AllowedOrigins[0])
	}

	if cfg.JWTSecret == "" {
		log.Fatal("PARISH_JWT_SECRET must be set")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_port", "8080")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("jwt_ttl_hours", 72)
	v.SetDefault("db_host", "127.0.0.1")
	v.SetDefault("db_port", "3306")
	v.SetDefault("db_user", "root")
	v.SetDefault("db_name", "parishboard")
	v.SetDefault("redis_host", "127.0.0.1")
	v.SetDefault("redis_port", 6379)
	v.SetDefault("oauth_redirect_base", "http://localhost:8080")
	v.SetDefault("upload_dir", "static/uploads")
	v.SetDefault("upload_max_size_mb", 50)
	v.SetDefault("rate_limit_per_minute", 60)
	v.SetDefault("log_level", "info")
	v.SetDefault("gin_log_path", "logs/gin.log")
	v.SetDefault("log_max_size_mb", 100)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("log_max_age_days", 7)
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
