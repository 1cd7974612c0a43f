package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Catalog CatalogConfig
	JWT     JWTConfig
	Auth    AuthConfig
	Storage StorageConfig
	S3      S3Config
	CORS    CORSConfig
	Log     LogConfig
	Notify  NotifyConfig
	Docs    DocsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// CatalogConfig selects and locates the formula catalog backend.
// Backend "xlsx" keeps everything in one workbook on disk, the way the
// plant's master sheet works; "postgres" uses the DB settings instead.
type CatalogConfig struct {
	Backend  string `mapstructure:"backend"`
	XLSXPath string `mapstructure:"xlsx_path"`
}

// DBConfig holds PostgreSQL connection settings for the postgres backend.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	AccessTokenExpiry time.Duration `mapstructure:"access_expiry"`
	Issuer            string        `mapstructure:"issuer"`
}

// AuthConfig holds the single-operator credentials. The password is stored
// as a bcrypt hash; an empty hash disables authentication entirely, which is
// only acceptable on a lab machine.
type AuthConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

// StorageConfig selects where generated production documents are kept.
type StorageConfig struct {
	Backend  string `mapstructure:"backend"` // "local" or "s3"
	LocalDir string `mapstructure:"local_dir"`
}

// S3Config holds AWS S3 settings for the s3 storage backend.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// NotifyConfig holds production event notification settings.
type NotifyConfig struct {
	Provider    string `mapstructure:"provider"` // "noop" or "ses"
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	ToAddress   string `mapstructure:"to_address"`
}

// DocsConfig holds production document generation settings.
type DocsConfig struct {
	PlantName string `mapstructure:"plant_name"`
}

// Load reads configuration from environment variables with the FORMULAB_
// prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FORMULAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// Catalog defaults
	v.SetDefault("catalog.backend", "xlsx")
	v.SetDefault("catalog.xlsx_path", "formulab.xlsx")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "formulab")
	v.SetDefault("db.password", "formulab_secret")
	v.SetDefault("db.name", "formulab_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "12h")
	v.SetDefault("jwt.issuer", "formulab")

	// Auth defaults
	v.SetDefault("auth.username", "operador")
	v.SetDefault("auth.password_hash", "")

	// Storage defaults
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local_dir", "ordenes")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "formulab-docs")
	v.SetDefault("s3.endpoint", "")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Notify defaults
	v.SetDefault("notify.provider", "noop")
	v.SetDefault("notify.region", "us-east-1")
	v.SetDefault("notify.from_address", "planta@formulab.local")
	v.SetDefault("notify.from_name", "Formulab")
	v.SetDefault("notify.to_address", "")

	// Docs defaults
	v.SetDefault("docs.plant_name", "PLANTA DE PRODUCCION")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":          "FORMULAB_SERVER_PORT",
		"server.read_timeout":  "FORMULAB_SERVER_READ_TIMEOUT",
		"server.write_timeout": "FORMULAB_SERVER_WRITE_TIMEOUT",
		"server.environment":   "FORMULAB_SERVER_ENVIRONMENT",
		"catalog.backend":      "FORMULAB_CATALOG_BACKEND",
		"catalog.xlsx_path":    "FORMULAB_CATALOG_XLSX_PATH",
		"db.host":              "FORMULAB_DB_HOST",
		"db.port":              "FORMULAB_DB_PORT",
		"db.user":              "FORMULAB_DB_USER",
		"db.password":          "FORMULAB_DB_PASSWORD",
		"db.name":              "FORMULAB_DB_NAME",
		"db.sslmode":           "FORMULAB_DB_SSLMODE",
		"db.max_open":          "FORMULAB_DB_MAX_OPEN",
		"db.max_idle":          "FORMULAB_DB_MAX_IDLE",
		"jwt.secret":           "FORMULAB_JWT_SECRET",
		"jwt.access_expiry":    "FORMULAB_JWT_ACCESS_EXPIRY",
		"jwt.issuer":           "FORMULAB_JWT_ISSUER",
		"auth.username":        "FORMULAB_AUTH_USERNAME",
		"auth.password_hash":   "FORMULAB_AUTH_PASSWORD_HASH",
		"storage.backend":      "FORMULAB_STORAGE_BACKEND",
		"storage.local_dir":    "FORMULAB_STORAGE_LOCAL_DIR",
		"s3.region":            "FORMULAB_S3_REGION",
		"s3.bucket":            "FORMULAB_S3_BUCKET",
		"s3.endpoint":          "FORMULAB_S3_ENDPOINT",
		"s3.access_key":        "FORMULAB_S3_ACCESS_KEY",
		"s3.secret_key":        "FORMULAB_S3_SECRET_KEY",
		"cors.allowed_origins": "FORMULAB_CORS_ALLOWED_ORIGINS",
		"log.level":            "FORMULAB_LOG_LEVEL",
		"log.format":           "FORMULAB_LOG_FORMAT",
		"notify.provider":      "FORMULAB_NOTIFY_PROVIDER",
		"notify.region":        "FORMULAB_NOTIFY_REGION",
		"notify.from_address":  "FORMULAB_NOTIFY_FROM_ADDRESS",
		"notify.from_name":     "FORMULAB_NOTIFY_FROM_NAME",
		"notify.to_address":    "FORMULAB_NOTIFY_TO_ADDRESS",
		"docs.plant_name":      "FORMULAB_DOCS_PLANT_NAME",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FORMULAB_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FORMULAB_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Catalog = CatalogConfig{
		Backend:  v.GetString("catalog.backend"),
		XLSXPath: v.GetString("catalog.xlsx_path"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:            v.GetString("jwt.secret"),
		AccessTokenExpiry: v.GetDuration("jwt.access_expiry"),
		Issuer:            v.GetString("jwt.issuer"),
	}
	cfg.Auth = AuthConfig{
		Username:     v.GetString("auth.username"),
		PasswordHash: v.GetString("auth.password_hash"),
	}
	cfg.Storage = StorageConfig{
		Backend:  v.GetString("storage.backend"),
		LocalDir: v.GetString("storage.local_dir"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	// Extra CORS origins beyond the always-allowed localhost set, as a
	// comma-separated list.
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Notify = NotifyConfig{
		Provider:    v.GetString("notify.provider"),
		Region:      v.GetString("notify.region"),
		FromAddress: v.GetString("notify.from_address"),
		FromName:    v.GetString("notify.from_name"),
		ToAddress:   v.GetString("notify.to_address"),
	}
	cfg.Docs = DocsConfig{
		PlantName: v.GetString("docs.plant_name"),
	}

	return cfg, nil
}
