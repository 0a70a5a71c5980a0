// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	configPath        = pflag.String("config", ".", "Directory containing config.toml")
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"local", "s3", "minio"}
	validDBDrivers    = []string{"sqlite", "postgres"}
)

var (
	ErrMissingJWTSecret        = errors.New("no jwt secret provided")
	ErrMissingEncryptionSecret = errors.New("no encryption secret provided")
)

type Config struct {
	App struct {
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"app"`

	Host struct {
		Port    int      `mapstructure:"port"`
		BaseURL string   `mapstructure:"base_url"`
		CORS    []string `mapstructure:"cors"`
	} `mapstructure:"host"`

	Security struct {
		JWTSecret        string        `mapstructure:"jwt_secret"`
		EncryptionSecret string        `mapstructure:"encryption_secret"`
		TokenTTL         time.Duration `mapstructure:"token_ttl"`
	} `mapstructure:"security"`

	DB struct {
		Driver string `mapstructure:"driver"`
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"db"`

	Storage struct {
		Type      string `mapstructure:"type"`
		LocalPath string `mapstructure:"local_path"`
	} `mapstructure:"storage"`

	S3 struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		// Set for S3 compatible providers like Cloudflare R2
		Endpoint string `mapstructure:"endpoint"`
	} `mapstructure:"s3"`

	Minio struct {
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		Bucket          string `mapstructure:"bucket"`
		UseSSL          bool   `mapstructure:"use_ssl"`
	} `mapstructure:"minio"`

	Mail struct {
		Enabled  bool   `mapstructure:"enabled"`
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		Sender   string `mapstructure:"sender"`
	} `mapstructure:"mail"`

	Files struct {
		ListCacheSeconds int           `mapstructure:"list_cache_seconds"`
		OrphanSweepEvery time.Duration `mapstructure:"orphan_sweep_every"`
		OrphanGrace      time.Duration `mapstructure:"orphan_grace"`
	} `mapstructure:"files"`
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() (*Config, error) {
	pflag.Parse()

	v := viper.New()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	cfg, err := Load(v)
	if errors.Is(err, ErrMissingJWTSecret) || errors.Is(err, ErrMissingEncryptionSecret) {
		fmt.Println("WARNING: " + err.Error() + ". A random one has been generated for you. Set it as an environment variable or in the config.toml file.\n\n" + genSecret())
		os.Exit(0)
	}

	return cfg, err
}

// Load binds environment variables, applies defaults and validates the
// values held by v.
func Load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "APP_LOG_LEVEL")

	v.BindEnv("host.port", "HOST_PORT")
	v.BindEnv("host.base_url", "HOST_BASE_URL", "BASE_URL")
	v.BindEnv("host.cors", "HOST_CORS")

	v.BindEnv("security.jwt_secret", "JWT_SECRET", "SECRET_KEY")
	v.BindEnv("security.encryption_secret", "ENCRYPTION_SECRET")
	v.BindEnv("security.token_ttl", "SECURITY_TOKEN_TTL")

	v.BindEnv("db.driver", "DB_DRIVER")
	v.BindEnv("db.dsn", "DB_DSN")

	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.local_path", "STORAGE_LOCAL_PATH")

	v.BindEnv("s3.region", "S3_REGION")
	v.BindEnv("s3.bucket", "S3_BUCKET")
	v.BindEnv("s3.access_key_id", "S3_ACCESS_KEY_ID")
	v.BindEnv("s3.secret_access_key", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("s3.endpoint", "S3_ENDPOINT")

	v.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	v.BindEnv("minio.access_key_id", "MINIO_ACCESS_KEY_ID")
	v.BindEnv("minio.secret_access_key", "MINIO_SECRET_ACCESS_KEY")
	v.BindEnv("minio.bucket", "MINIO_BUCKET")
	v.BindEnv("minio.use_ssl", "MINIO_USE_SSL")

	v.BindEnv("mail.enabled", "MAIL_ENABLED")
	v.BindEnv("mail.host", "MAIL_HOST")
	v.BindEnv("mail.port", "MAIL_PORT")
	v.BindEnv("mail.username", "MAIL_USERNAME")
	v.BindEnv("mail.password", "MAIL_PASSWORD")
	v.BindEnv("mail.sender", "MAIL_SENDER_ADDRESS")

	v.BindEnv("files.list_cache_seconds", "FILES_LIST_CACHE_SECONDS")
	v.BindEnv("files.orphan_sweep_every", "FILES_ORPHAN_SWEEP_EVERY")
	v.BindEnv("files.orphan_grace", "FILES_ORPHAN_GRACE")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.base_url", "http://localhost:8080")
	v.SetDefault("host.cors", []string{"http://localhost:5173"})

	v.SetDefault("security.token_ttl", 30*time.Minute)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploaded_files")

	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.port", 587)

	v.SetDefault("files.list_cache_seconds", 10)
	v.SetDefault("files.orphan_sweep_every", 6*time.Hour)
	v.SetDefault("files.orphan_grace", time.Hour)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config, %w", err)
	}

	cfg.Host.BaseURL = strings.TrimRight(cfg.Host.BaseURL, "/")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return errors.New("invalid log level provided")
	}

	if c.Host.Port <= 0 {
		return errors.New("invalid port provided")
	}

	if c.Host.BaseURL == "" {
		return errors.New("no base url provided")
	}

	if len(c.Host.CORS) == 0 {
		return errors.New("at least one cors origin is required")
	}

	if c.Security.JWTSecret == "" {
		return ErrMissingJWTSecret
	}

	if c.Security.EncryptionSecret == "" {
		return ErrMissingEncryptionSecret
	}

	if c.Security.TokenTTL <= 0 {
		return errors.New("security.token_ttl must be bigger than 0")
	}

	if !slices.Contains(validDBDrivers, c.DB.Driver) {
		return errors.New("invalid database driver provided")
	}

	if c.DB.DSN == "" {
		return errors.New("no database dsn provided")
	}

	switch c.Storage.Type {
	case "local":
		if c.Storage.LocalPath == "" {
			return errors.New("storage.local_path can't be empty")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("bucket can't be empty")
		}
		if c.S3.AccessKeyID == "" {
			return errors.New("access key id can't be empty")
		}
		if c.S3.SecretAccessKey == "" {
			return errors.New("secret access key can't be empty")
		}
		if c.S3.Region == "" && c.S3.Endpoint == "" {
			return errors.New("either a region or an endpoint is required")
		}
	case "minio":
		if c.Minio.Endpoint == "" {
			return errors.New("minio endpoint can't be empty")
		}
		if c.Minio.Bucket == "" {
			return errors.New("bucket can't be empty")
		}
	}

	if !slices.Contains(validStorageTypes, c.Storage.Type) {
		return errors.New("invalid storage type provided")
	}

	if c.Mail.Enabled {
		if c.Mail.Host == "" {
			return errors.New("mail host can't be empty")
		}
		if c.Mail.Sender == "" {
			return errors.New("mail sender address can't be empty")
		}
	}

	if c.Files.ListCacheSeconds < 0 {
		return errors.New("files.list_cache_seconds can't be negative")
	}

	if c.Files.OrphanSweepEvery < 0 || c.Files.OrphanGrace < 0 {
		return errors.New("orphan sweep durations can't be negative")
	}

	return nil
}
