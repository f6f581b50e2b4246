package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Financial  FinancialConfig
	Enlistment EnlistmentConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// FinancialConfig carries the assessment constants for the academic term.
// Installment due dates are opaque display strings; switching academic years
// is a configuration change, not a code change.
type FinancialConfig struct {
	RatePerUnit      float64
	MiscFees         float64
	OtherFees        float64
	Downpayment      float64
	InstallmentCount int
	InstallmentDates []string
	PaymentTolerance float64
	SnapshotCacheTTL time.Duration
}

// EnlistmentConfig bounds a student's term load.
type EnlistmentConfig struct {
	MaxUnits int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Financial = FinancialConfig{
		RatePerUnit:      v.GetFloat64("FIN_RATE_PER_UNIT"),
		MiscFees:         v.GetFloat64("FIN_MISC_FEES"),
		OtherFees:        v.GetFloat64("FIN_OTHER_FEES"),
		Downpayment:      v.GetFloat64("FIN_DOWNPAYMENT"),
		InstallmentCount: v.GetInt("FIN_INSTALLMENT_COUNT"),
		InstallmentDates: splitAndTrim(v.GetString("FIN_INSTALLMENT_DATES")),
		PaymentTolerance: v.GetFloat64("FIN_PAYMENT_TOLERANCE"),
		SnapshotCacheTTL: parseDuration(v.GetString("FIN_SNAPSHOT_CACHE_TTL"), 2*time.Minute),
	}

	cfg.Enlistment = EnlistmentConfig{
		MaxUnits: v.GetInt("ENLISTMENT_MAX_UNITS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "enlistment")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "enlistment-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("FIN_RATE_PER_UNIT", 1500.00)
	v.SetDefault("FIN_MISC_FEES", 7431.00)
	v.SetDefault("FIN_OTHER_FEES", 18562.00)
	v.SetDefault("FIN_DOWNPAYMENT", 3000.00)
	v.SetDefault("FIN_INSTALLMENT_COUNT", 8)
	v.SetDefault("FIN_INSTALLMENT_DATES", "Aug. 30 2026,Sep. 15 2026,Sep. 30 2026,Oct. 15 2026,Oct. 30 2026,Nov. 15 2026,Nov. 30 2026,Dec. 10 2026")
	v.SetDefault("FIN_PAYMENT_TOLERANCE", 0.01)
	v.SetDefault("FIN_SNAPSHOT_CACHE_TTL", "2m")

	v.SetDefault("ENLISTMENT_MAX_UNITS", 24)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
