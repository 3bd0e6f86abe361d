package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Classifier    ClassifierConfig
	Storage       StorageConfig
	Schedule      ScheduleConfig
	Mail          MailConfig
	PasswordReset PasswordResetConfig
	Jobs          JobsConfig
}

type AppConfig struct {
	Port       string
	Env        string
	LogLevel   string
	Timezone   string
	CORSOrigin string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// ClassifierConfig points at the external chest X-ray classifier.
type ClassifierConfig struct {
	URL                string
	ProbeTimeout       time.Duration
	Timeout            time.Duration
	InsecureSkipVerify bool
}

type StorageConfig struct {
	Dir           string
	MaxImageBytes int64
}

// ScheduleConfig describes the clinic day the slot allocator works on.
// DayStart and DayEnd are HH:MM wall-clock times in App.Timezone.
type ScheduleConfig struct {
	DayStart string
	DayEnd   string
	SlotStep time.Duration
}

// MailConfig is optional. When SMTPHost is empty, outgoing mail is only logged.
type MailConfig struct {
	SMTPHost string
	SMTPPort int
	Username string
	Password string
	From     string
}

type PasswordResetConfig struct {
	CodeTTL time.Duration
}

type JobsConfig struct {
	RayRetryEnabled     bool
	RayRetrySpec        string
	RayRetryMaxAttempts int
	RayRetryGrace       time.Duration
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_TIMEZONE", "UTC")
	v.SetDefault("CORS_ALLOW_ORIGIN", "*")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CLASSIFIER_URL", "https://ai-project-production-e272.up.railway.app/predict")
	v.SetDefault("CLASSIFIER_PROBE_TIMEOUT", "10s")
	v.SetDefault("CLASSIFIER_TIMEOUT", "60s")
	v.SetDefault("CLASSIFIER_INSECURE_SKIP_VERIFY", false)
	v.SetDefault("STORAGE_DIR", "storage/rays")
	v.SetDefault("STORAGE_MAX_IMAGE_BYTES", 5120*1024)
	v.SetDefault("SCHEDULE_DAY_START", "09:00")
	v.SetDefault("SCHEDULE_DAY_END", "17:00")
	v.SetDefault("SCHEDULE_SLOT_STEP", "30m")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_FROM", "no-reply@medray.local")
	v.SetDefault("PASSWORD_RESET_CODE_TTL", "15m")
	v.SetDefault("RAY_RETRY_ENABLED", true)
	v.SetDefault("RAY_RETRY_SPEC", "@every 5m")
	v.SetDefault("RAY_RETRY_MAX_ATTEMPTS", 3)
	v.SetDefault("RAY_RETRY_GRACE", "2m")

	// A missing .env is fine, everything can come from the environment.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	accessExpiry, err := time.ParseDuration(v.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(v.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	config := &Config{
		App: AppConfig{
			Port:       v.GetString("APP_PORT"),
			Env:        v.GetString("APP_ENV"),
			LogLevel:   v.GetString("LOG_LEVEL"),
			Timezone:   v.GetString("APP_TIMEZONE"),
			CORSOrigin: v.GetString("CORS_ALLOW_ORIGIN"),
		},
		DB: DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Classifier: ClassifierConfig{
			URL:                v.GetString("CLASSIFIER_URL"),
			ProbeTimeout:       v.GetDuration("CLASSIFIER_PROBE_TIMEOUT"),
			Timeout:            v.GetDuration("CLASSIFIER_TIMEOUT"),
			InsecureSkipVerify: v.GetBool("CLASSIFIER_INSECURE_SKIP_VERIFY"),
		},
		Storage: StorageConfig{
			Dir:           v.GetString("STORAGE_DIR"),
			MaxImageBytes: v.GetInt64("STORAGE_MAX_IMAGE_BYTES"),
		},
		Schedule: ScheduleConfig{
			DayStart: v.GetString("SCHEDULE_DAY_START"),
			DayEnd:   v.GetString("SCHEDULE_DAY_END"),
			SlotStep: v.GetDuration("SCHEDULE_SLOT_STEP"),
		},
		Mail: MailConfig{
			SMTPHost: v.GetString("SMTP_HOST"),
			SMTPPort: v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("MAIL_FROM"),
		},
		PasswordReset: PasswordResetConfig{
			CodeTTL: v.GetDuration("PASSWORD_RESET_CODE_TTL"),
		},
		Jobs: JobsConfig{
			RayRetryEnabled:     v.GetBool("RAY_RETRY_ENABLED"),
			RayRetrySpec:        v.GetString("RAY_RETRY_SPEC"),
			RayRetryMaxAttempts: v.GetInt("RAY_RETRY_MAX_ATTEMPTS"),
			RayRetryGrace:       v.GetDuration("RAY_RETRY_GRACE"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return config, nil
}

// Location resolves App.Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
