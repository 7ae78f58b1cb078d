package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string
	HTTPAddress string

	JWTSecretKey      string
	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	Issuer            string
	Audience          string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	EmailTokenTTL     time.Duration
	PasswordPepper    string

	RevocationStore string
	RedisAddress    string
	RedisPassword   string
	RedisDB         int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	AppBaseURL   string

	StorageBackend string
	UploadDir      string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string

	AllowedOrigins   []string
	AllowCredentials bool
	AdminEmails      []string
	TelephoneRegion  string

	RateLimitRPS   int
	RateLimitBurst int

	LogLevel      string
	HTTPSCertFile string
	HTTPSKeyFile  string
}

const (
	RevocationMemory = "memory"
	RevocationRedis  = "redis"

	StorageFS = "fs"
	StorageS3 = "s3"
)

var keys = []string{
	"DATABASE_URL", "HTTP_ADDRESS",
	"JWT_SECRET_KEY", "JWT_PRIVATE_KEY_PATH", "JWT_PUBLIC_KEY_PATH", "JWT_ISSUER", "JWT_AUDIENCE",
	"ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "EMAIL_TOKEN_TTL", "PASSWORD_PEPPER",
	"REVOCATION_STORE", "REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "SMTP_FROM", "APP_BASE_URL",
	"STORAGE_BACKEND", "UPLOAD_DIR", "S3_BUCKET", "S3_REGION", "S3_BASE_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY",
	"ALLOWED_ORIGINS", "ALLOW_CREDENTIALS", "ADMIN_EMAILS", "TELEPHONE_REGION",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"LOG_LEVEL", "HTTPS_CERT_FILE", "HTTPS_KEY_FILE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDRESS", ":8080")
	v.SetDefault("ACCESS_TOKEN_TTL", "15m")
	v.SetDefault("REFRESH_TOKEN_TTL", "720h")
	v.SetDefault("EMAIL_TOKEN_TTL", "1h")
	v.SetDefault("REVOCATION_STORE", RevocationMemory)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("APP_BASE_URL", "http://localhost:8080")
	v.SetDefault("STORAGE_BACKEND", StorageFS)
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("TELEPHONE_REGION", "KE")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("LOG_LEVEL", "debug")
}

// Load reads config.json from the working directory, if present, and lets
// environment variables override it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")

	setDefaults(v)
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file, %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:       v.GetString("DATABASE_URL"),
		HTTPAddress:       v.GetString("HTTP_ADDRESS"),
		JWTSecretKey:      v.GetString("JWT_SECRET_KEY"),
		JWTPrivateKeyPath: v.GetString("JWT_PRIVATE_KEY_PATH"),
		JWTPublicKeyPath:  v.GetString("JWT_PUBLIC_KEY_PATH"),
		Issuer:            v.GetString("JWT_ISSUER"),
		Audience:          v.GetString("JWT_AUDIENCE"),
		AccessTokenTTL:    v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:   v.GetDuration("REFRESH_TOKEN_TTL"),
		EmailTokenTTL:     v.GetDuration("EMAIL_TOKEN_TTL"),
		PasswordPepper:    v.GetString("PASSWORD_PEPPER"),
		RevocationStore:   strings.ToLower(v.GetString("REVOCATION_STORE")),
		RedisAddress:      v.GetString("REDIS_ADDRESS"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),
		SMTPHost:          v.GetString("SMTP_HOST"),
		SMTPPort:          v.GetInt("SMTP_PORT"),
		SMTPUsername:      v.GetString("SMTP_USERNAME"),
		SMTPPassword:      v.GetString("SMTP_PASSWORD"),
		SMTPFrom:          v.GetString("SMTP_FROM"),
		AppBaseURL:        strings.TrimRight(v.GetString("APP_BASE_URL"), "/"),
		StorageBackend:    strings.ToLower(v.GetString("STORAGE_BACKEND")),
		UploadDir:         v.GetString("UPLOAD_DIR"),
		S3Bucket:          v.GetString("S3_BUCKET"),
		S3Region:          v.GetString("S3_REGION"),
		S3BaseEndpoint:    v.GetString("S3_BASE_ENDPOINT"),
		S3AccessKey:       v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:       v.GetString("S3_SECRET_KEY"),
		AllowedOrigins:    stringList(v, "ALLOWED_ORIGINS"),
		AllowCredentials:  v.GetBool("ALLOW_CREDENTIALS"),
		AdminEmails:       stringList(v, "ADMIN_EMAILS"),
		TelephoneRegion:   strings.ToUpper(v.GetString("TELEPHONE_REGION")),
		RateLimitRPS:      v.GetInt("RATE_LIMIT_RPS"),
		RateLimitBurst:    v.GetInt("RATE_LIMIT_BURST"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		HTTPSCertFile:     v.GetString("HTTPS_CERT_FILE"),
		HTTPSKeyFile:      v.GetString("HTTPS_KEY_FILE"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	hasKeys := c.JWTPrivateKeyPath != "" && c.JWTPublicKeyPath != ""
	if c.JWTSecretKey == "" && !hasKeys {
		return fmt.Errorf("either JWT_SECRET_KEY or JWT_PRIVATE_KEY_PATH/JWT_PUBLIC_KEY_PATH must be set")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 || c.EmailTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	switch c.RevocationStore {
	case RevocationMemory:
	case RevocationRedis:
		if c.RedisAddress == "" {
			return fmt.Errorf("REDIS_ADDRESS is required when REVOCATION_STORE=redis")
		}
	default:
		return fmt.Errorf("unknown REVOCATION_STORE %q", c.RevocationStore)
	}
	switch c.StorageBackend {
	case StorageFS:
	case StorageS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	return nil
}

// IsAdminEmail reports whether signups from email are granted the admin role.
func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range c.AdminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

// stringList accepts either a JSON array or a comma separated string.
func stringList(v *viper.Viper, key string) []string {
	raw := v.Get(key)
	switch val := raw.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return val
	case string:
		val = strings.TrimSpace(val)
		if val == "" {
			return nil
		}
		if strings.HasPrefix(val, "[") {
			var out []string
			if err := json.Unmarshal([]byte(val), &out); err == nil {
				return out
			}
		}
		var out []string
		for _, part := range strings.Split(val, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}
