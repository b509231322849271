package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "change-me-in-production"

type Config struct {
	Port string
	Env  string

	MongoURI     string
	DatabaseName string

	JWTSecret     string
	JWTExpiration time.Duration

	B2ApplicationKeyID string
	B2ApplicationKey   string
	B2BucketName       string
	B2SignedURLTTL     time.Duration

	MaxUploadSize int64

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	FolderCacheTTL time.Duration

	PathReconcileSchedule string

	AllowedOrigins []string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) B2Enabled() bool {
	return c.B2ApplicationKeyID != "" && c.B2ApplicationKey != "" && c.B2BucketName != ""
}

func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// Load reads defaults, then an optional config.yaml from the working
// directory or ./configs, then the environment, later sources winning.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("configs")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	cfg := &Config{
		Port: v.GetString("port"),
		Env:  v.GetString("env"),

		MongoURI:     firstNonEmpty(v.GetString("mongo_uri"), v.GetString("mongodb_uri")),
		DatabaseName: v.GetString("database_name"),

		JWTSecret:     v.GetString("jwt_secret"),
		JWTExpiration: v.GetDuration("jwt_expiration"),

		B2ApplicationKeyID: firstNonEmpty(v.GetString("b2_application_key_id"), v.GetString("b2_key_id")),
		B2ApplicationKey:   firstNonEmpty(v.GetString("b2_application_key"), v.GetString("b2_app_key")),
		B2BucketName:       firstNonEmpty(v.GetString("b2_bucket_name"), v.GetString("b2_bucket")),
		B2SignedURLTTL:     v.GetDuration("b2_signed_url_ttl"),

		MaxUploadSize: v.GetInt64("max_upload_size"),

		RedisAddr:      v.GetString("redis_addr"),
		RedisPassword:  v.GetString("redis_password"),
		RedisDB:        v.GetInt("redis_db"),
		FolderCacheTTL: v.GetDuration("folder_cache_ttl"),

		PathReconcileSchedule: strings.TrimSpace(v.GetString("path_reconcile_schedule")),

		AllowedOrigins: parseStringSlice(v.GetString("allowed_origins")),

		RequestTimeout:  v.GetDuration("request_timeout"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("env", "development")
	v.SetDefault("mongo_uri", "")
	v.SetDefault("mongodb_uri", "mongodb://localhost:27017")
	v.SetDefault("database_name", "driveclone")
	v.SetDefault("jwt_secret", defaultJWTSecret)
	v.SetDefault("jwt_expiration", "24h")
	v.SetDefault("b2_application_key_id", "")
	v.SetDefault("b2_key_id", "")
	v.SetDefault("b2_application_key", "")
	v.SetDefault("b2_app_key", "")
	v.SetDefault("b2_bucket_name", "")
	v.SetDefault("b2_bucket", "")
	v.SetDefault("b2_signed_url_ttl", "0s")
	v.SetDefault("max_upload_size", 50<<20)
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("folder_cache_ttl", "10m")
	v.SetDefault("path_reconcile_schedule", "@every 6h")
	v.SetDefault("allowed_origins", "http://localhost:3000")
	v.SetDefault("request_timeout", "30s")
	v.SetDefault("shutdown_timeout", "10s")
}

func (c *Config) validate() error {
	var problems []string

	if c.MongoURI == "" {
		problems = append(problems, "MONGO_URI is required")
	}
	if c.JWTExpiration <= 0 {
		problems = append(problems, "JWT_EXPIRATION must be positive")
	}
	if c.MaxUploadSize <= 0 {
		problems = append(problems, "MAX_UPLOAD_SIZE must be positive")
	}
	if !c.IsDevelopment() {
		if c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret {
			problems = append(problems, "JWT_SECRET must be set outside development")
		}
		if !c.B2Enabled() {
			problems = append(problems, "B2_APPLICATION_KEY_ID, B2_APPLICATION_KEY and B2_BUCKET_NAME are required outside development")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// LoadEnvFile loads the first .env found in the working directory or one of
// its parents and returns its path, or "" when none exists.
func LoadEnvFile() (string, error) {
	pwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	candidates := []string{
		filepath.Join(pwd, ".env"),
		filepath.Join(filepath.Dir(pwd), ".env"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return "", fmt.Errorf("load %s: %w", path, err)
		}
		return path, nil
	}
	return "", nil
}

// MaskConnectionString hides the credentials part of a MongoDB URI.
func MaskConnectionString(uri string) string {
	if at := strings.LastIndex(uri, "@"); at >= 0 {
		scheme := ""
		if i := strings.Index(uri, "://"); i >= 0 && i < at {
			scheme = uri[:i+3]
		}
		return scheme + "****@" + uri[at+1:]
	}
	return uri
}

func CreateContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseStringSlice(s string) []string {
	result := []string{}
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
