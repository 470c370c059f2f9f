package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	JWTSecret      string
	PasswordPepper string
	TokenTTL       time.Duration
	CookieSecure   bool

	StoreTimeout      time.Duration
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	Argon2MemoryKiB   uint32
	Argon2Iterations  uint32
	Argon2Parallelism uint

	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and the process environment. Values are read
// once; there is no reload.
func Load() (Config, error) {
	cfg := Read()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read is Load without validation, for tools that need only part of the
// settings.
func Read() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("cors_allowed_origins", "")
	v.SetDefault("cors_allow_credentials", false)
	v.SetDefault("password_pepper", "")
	v.SetDefault("token_ttl", "60m")
	v.SetDefault("cookie_secure", false)
	v.SetDefault("store_timeout", "5s")
	v.SetDefault("db_max_open_conns", 20)
	v.SetDefault("db_max_idle_conns", 5)
	v.SetDefault("db_conn_max_lifetime", "30m")
	v.SetDefault("argon2_memory_kib", 64*1024)
	v.SetDefault("argon2_iterations", 3)
	v.SetDefault("argon2_parallelism", 2)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	cfg := Config{
		HTTPAddr:             strings.TrimSpace(v.GetString("http_addr")),
		DatabaseURL:          strings.TrimSpace(v.GetString("database_url")),
		CORSAllowCredentials: v.GetBool("cors_allow_credentials"),
		JWTSecret:            strings.TrimSpace(v.GetString("jwt_secret")),
		PasswordPepper:       v.GetString("password_pepper"),
		TokenTTL:             v.GetDuration("token_ttl"),
		CookieSecure:         v.GetBool("cookie_secure"),
		StoreTimeout:         v.GetDuration("store_timeout"),
		DBMaxOpenConns:       v.GetInt("db_max_open_conns"),
		DBMaxIdleConns:       v.GetInt("db_max_idle_conns"),
		DBConnMaxLifetime:    v.GetDuration("db_conn_max_lifetime"),
		Argon2MemoryKiB:      v.GetUint32("argon2_memory_kib"),
		Argon2Iterations:     v.GetUint32("argon2_iterations"),
		Argon2Parallelism:    v.GetUint("argon2_parallelism"),
		LogLevel:             strings.TrimSpace(v.GetString("log_level")),
		LogFormat:            strings.TrimSpace(v.GetString("log_format")),
	}

	for _, o := range strings.Split(v.GetString("cors_allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	return cfg
}

func (c Config) validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("missing env: DATABASE_URL"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("missing env: JWT_SECRET"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, fmt.Errorf("STORE_TIMEOUT must be positive, got %s", c.StoreTimeout))
	}
	errs = append(errs, c.ValidateArgon2())
	return errors.Join(errs...)
}

// ValidateArgon2 checks only the password hashing cost.
func (c Config) ValidateArgon2() error {
	if c.Argon2MemoryKiB == 0 || c.Argon2Iterations == 0 || c.Argon2Parallelism == 0 {
		return errors.New("argon2 parameters must be positive")
	}
	if c.Argon2Parallelism > math.MaxUint8 {
		return fmt.Errorf("ARGON2_PARALLELISM must be at most %d, got %d", math.MaxUint8, c.Argon2Parallelism)
	}
	return nil
}
