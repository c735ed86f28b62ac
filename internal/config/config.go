package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Reconcile ReconcileConfig
	Orders    OrdersConfig
	Ledger    LedgerConfig
	OCR       OCRConfig
	Archive   ArchiveConfig
	Notify    NotifyConfig
	Lock      LockConfig
	Receipts  ReceiptsConfig
	DB        DBConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ReconcileConfig holds the reconciliation constants most likely to vary by jurisdiction.
type ReconcileConfig struct {
	TaxRate        decimal.Decimal
	LineTolerance  decimal.Decimal
	TotalTolerance decimal.Decimal
}

// OrdersConfig locates purchase-order workbooks.
type OrdersConfig struct {
	Dir       string `mapstructure:"dir"`
	Extension string `mapstructure:"extension"`
}

// LedgerConfig locates the inventory ledger workbook.
type LedgerConfig struct {
	Path  string `mapstructure:"path"`
	Sheet string `mapstructure:"sheet"`
}

// OCRProviderConfig holds settings for a single OCR provider.
type OCRProviderConfig struct {
	Provider    string `mapstructure:"provider"`
	Binary      string `mapstructure:"binary"`
	Endpoint    string `mapstructure:"endpoint"`
	APIKey      string `mapstructure:"api_key"`
	Language    string `mapstructure:"language"`
	EngineMode  int    `mapstructure:"oem"`
	PageSegMode int    `mapstructure:"psm"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// OCRConfig holds OCR settings with an optional secondary provider.
type OCRConfig struct {
	Primary    OCRProviderConfig `mapstructure:"primary"`
	Secondary  OCRProviderConfig `mapstructure:"secondary"`
	Preprocess bool              `mapstructure:"preprocess"`
}

// SecondaryConfig returns the secondary OCR provider config, or nil if not configured.
func (o *OCRConfig) SecondaryConfig() *OCRProviderConfig {
	if o.Secondary.Provider != "" {
		return &o.Secondary
	}
	return nil
}

// ArchiveConfig holds settings for archiving invoices and reports.
type ArchiveConfig struct {
	Provider  string `mapstructure:"provider"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// NotifyConfig holds discrepancy notification settings.
type NotifyConfig struct {
	Provider    string   `mapstructure:"provider"`
	Region      string   `mapstructure:"region"`
	FromAddress string   `mapstructure:"from_address"`
	FromName    string   `mapstructure:"from_name"`
	Recipients  []string `mapstructure:"recipients"`
}

// LockConfig holds ledger writer lock settings.
type LockConfig struct {
	Provider      string        `mapstructure:"provider"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
	RetryBackoff  time.Duration `mapstructure:"retry_backoff"`
	MaxRetries    int           `mapstructure:"max_retries"`
}

// ReceiptsConfig selects where receipts awaiting a decision are kept.
type ReceiptsConfig struct {
	Provider string `mapstructure:"provider"`
}

// DBConfig holds PostgreSQL connection settings.
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

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the STOCKRECON_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STOCKRECON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_upload_mb", 20)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Reconciliation defaults
	v.SetDefault("reconcile.tax_rate", "0.19")
	v.SetDefault("reconcile.line_tolerance", "0.01")
	v.SetDefault("reconcile.total_tolerance", "0.5")

	// File locations
	v.SetDefault("orders.dir", "ordenes")
	v.SetDefault("orders.extension", ".xlsx")
	v.SetDefault("ledger.path", "inventario.xlsx")
	v.SetDefault("ledger.sheet", "Sheet1")

	// OCR defaults
	v.SetDefault("ocr.preprocess", true)
	v.SetDefault("ocr.primary.provider", "tesseract")
	v.SetDefault("ocr.primary.binary", "tesseract")
	v.SetDefault("ocr.primary.endpoint", "")
	v.SetDefault("ocr.primary.api_key", "")
	v.SetDefault("ocr.primary.language", "spa")
	v.SetDefault("ocr.primary.oem", 3)
	v.SetDefault("ocr.primary.psm", 6)
	v.SetDefault("ocr.primary.timeout_secs", 60)
	v.SetDefault("ocr.secondary.provider", "")
	v.SetDefault("ocr.secondary.binary", "tesseract")
	v.SetDefault("ocr.secondary.endpoint", "")
	v.SetDefault("ocr.secondary.api_key", "")
	v.SetDefault("ocr.secondary.language", "spa")
	v.SetDefault("ocr.secondary.oem", 3)
	v.SetDefault("ocr.secondary.psm", 6)
	v.SetDefault("ocr.secondary.timeout_secs", 60)

	// Archive defaults
	v.SetDefault("archive.provider", "noop")
	v.SetDefault("archive.region", "us-east-1")
	v.SetDefault("archive.bucket", "stockrecon-archive")
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.prefix", "receipts")

	// Notify defaults
	v.SetDefault("notify.provider", "noop")
	v.SetDefault("notify.region", "us-east-1")
	v.SetDefault("notify.from_address", "noreply@stockrecon.local")
	v.SetDefault("notify.from_name", "Stock Receiving")
	v.SetDefault("notify.recipients", "")

	// Lock defaults
	v.SetDefault("lock.provider", "local")
	v.SetDefault("lock.redis_addr", "localhost:6379")
	v.SetDefault("lock.redis_password", "")
	v.SetDefault("lock.redis_db", 0)
	v.SetDefault("lock.ttl", "30s")
	v.SetDefault("lock.retry_backoff", "200ms")
	v.SetDefault("lock.max_retries", 50)

	// Receipt store defaults
	v.SetDefault("receipts.provider", "memory")

	// DB defaults (used when receipts.provider is postgres)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "stockrecon")
	v.SetDefault("db.password", "stockrecon_secret")
	v.SetDefault("db.name", "stockrecon")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "STOCKRECON_SERVER_PORT",
		"server.read_timeout":        "STOCKRECON_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "STOCKRECON_SERVER_WRITE_TIMEOUT",
		"server.environment":         "STOCKRECON_SERVER_ENVIRONMENT",
		"server.max_upload_mb":       "STOCKRECON_SERVER_MAX_UPLOAD_MB",
		"log.level":                  "STOCKRECON_LOG_LEVEL",
		"log.format":                 "STOCKRECON_LOG_FORMAT",
		"reconcile.tax_rate":         "STOCKRECON_RECONCILE_TAX_RATE",
		"reconcile.line_tolerance":   "STOCKRECON_RECONCILE_LINE_TOLERANCE",
		"reconcile.total_tolerance":  "STOCKRECON_RECONCILE_TOTAL_TOLERANCE",
		"orders.dir":                 "STOCKRECON_ORDERS_DIR",
		"orders.extension":           "STOCKRECON_ORDERS_EXTENSION",
		"ledger.path":                "STOCKRECON_LEDGER_PATH",
		"ledger.sheet":               "STOCKRECON_LEDGER_SHEET",
		"ocr.preprocess":             "STOCKRECON_OCR_PREPROCESS",
		"ocr.primary.provider":       "STOCKRECON_OCR_PRIMARY_PROVIDER",
		"ocr.primary.binary":         "STOCKRECON_OCR_PRIMARY_BINARY",
		"ocr.primary.endpoint":       "STOCKRECON_OCR_PRIMARY_ENDPOINT",
		"ocr.primary.api_key":        "STOCKRECON_OCR_PRIMARY_API_KEY",
		"ocr.primary.language":       "STOCKRECON_OCR_PRIMARY_LANGUAGE",
		"ocr.primary.oem":            "STOCKRECON_OCR_PRIMARY_OEM",
		"ocr.primary.psm":            "STOCKRECON_OCR_PRIMARY_PSM",
		"ocr.primary.timeout_secs":   "STOCKRECON_OCR_PRIMARY_TIMEOUT_SECS",
		"ocr.secondary.provider":     "STOCKRECON_OCR_SECONDARY_PROVIDER",
		"ocr.secondary.binary":       "STOCKRECON_OCR_SECONDARY_BINARY",
		"ocr.secondary.endpoint":     "STOCKRECON_OCR_SECONDARY_ENDPOINT",
		"ocr.secondary.api_key":      "STOCKRECON_OCR_SECONDARY_API_KEY",
		"ocr.secondary.language":     "STOCKRECON_OCR_SECONDARY_LANGUAGE",
		"ocr.secondary.oem":          "STOCKRECON_OCR_SECONDARY_OEM",
		"ocr.secondary.psm":          "STOCKRECON_OCR_SECONDARY_PSM",
		"ocr.secondary.timeout_secs": "STOCKRECON_OCR_SECONDARY_TIMEOUT_SECS",
		"archive.provider":           "STOCKRECON_ARCHIVE_PROVIDER",
		"archive.region":             "STOCKRECON_ARCHIVE_REGION",
		"archive.bucket":             "STOCKRECON_ARCHIVE_BUCKET",
		"archive.endpoint":           "STOCKRECON_ARCHIVE_ENDPOINT",
		"archive.access_key":         "STOCKRECON_ARCHIVE_ACCESS_KEY",
		"archive.secret_key":         "STOCKRECON_ARCHIVE_SECRET_KEY",
		"archive.prefix":             "STOCKRECON_ARCHIVE_PREFIX",
		"notify.provider":            "STOCKRECON_NOTIFY_PROVIDER",
		"notify.region":              "STOCKRECON_NOTIFY_REGION",
		"notify.from_address":        "STOCKRECON_NOTIFY_FROM_ADDRESS",
		"notify.from_name":           "STOCKRECON_NOTIFY_FROM_NAME",
		"notify.recipients":          "STOCKRECON_NOTIFY_RECIPIENTS",
		"lock.provider":              "STOCKRECON_LOCK_PROVIDER",
		"lock.redis_addr":            "STOCKRECON_LOCK_REDIS_ADDR",
		"lock.redis_password":        "STOCKRECON_LOCK_REDIS_PASSWORD",
		"lock.redis_db":              "STOCKRECON_LOCK_REDIS_DB",
		"lock.ttl":                   "STOCKRECON_LOCK_TTL",
		"lock.retry_backoff":         "STOCKRECON_LOCK_RETRY_BACKOFF",
		"lock.max_retries":           "STOCKRECON_LOCK_MAX_RETRIES",
		"receipts.provider":          "STOCKRECON_RECEIPTS_PROVIDER",
		"db.host":                    "STOCKRECON_DB_HOST",
		"db.port":                    "STOCKRECON_DB_PORT",
		"db.user":                    "STOCKRECON_DB_USER",
		"db.password":                "STOCKRECON_DB_PASSWORD",
		"db.name":                    "STOCKRECON_DB_NAME",
		"db.sslmode":                 "STOCKRECON_DB_SSLMODE",
		"db.max_open":                "STOCKRECON_DB_MAX_OPEN",
		"db.max_idle":                "STOCKRECON_DB_MAX_IDLE",
		"cors.allowed_origins":       "STOCKRECON_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Container platforms set PORT. Use it if STOCKRECON_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("STOCKRECON_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		MaxUploadMB:  v.GetInt64("server.max_upload_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	var err error
	if cfg.Reconcile.TaxRate, err = decimalSetting(v, "reconcile.tax_rate"); err != nil {
		return nil, err
	}
	if cfg.Reconcile.LineTolerance, err = decimalSetting(v, "reconcile.line_tolerance"); err != nil {
		return nil, err
	}
	if cfg.Reconcile.TotalTolerance, err = decimalSetting(v, "reconcile.total_tolerance"); err != nil {
		return nil, err
	}

	cfg.Orders = OrdersConfig{
		Dir:       v.GetString("orders.dir"),
		Extension: v.GetString("orders.extension"),
	}
	cfg.Ledger = LedgerConfig{
		Path:  v.GetString("ledger.path"),
		Sheet: v.GetString("ledger.sheet"),
	}

	cfg.OCR = OCRConfig{
		Preprocess: v.GetBool("ocr.preprocess"),
		Primary:    ocrProvider(v, "ocr.primary"),
		Secondary:  ocrProvider(v, "ocr.secondary"),
	}

	cfg.Archive = ArchiveConfig{
		Provider:  v.GetString("archive.provider"),
		Region:    v.GetString("archive.region"),
		Bucket:    v.GetString("archive.bucket"),
		Endpoint:  v.GetString("archive.endpoint"),
		AccessKey: v.GetString("archive.access_key"),
		SecretKey: v.GetString("archive.secret_key"),
		Prefix:    v.GetString("archive.prefix"),
	}

	cfg.Notify = NotifyConfig{
		Provider:    v.GetString("notify.provider"),
		Region:      v.GetString("notify.region"),
		FromAddress: v.GetString("notify.from_address"),
		FromName:    v.GetString("notify.from_name"),
		Recipients:  splitList(v.GetString("notify.recipients")),
	}

	cfg.Lock = LockConfig{
		Provider:      v.GetString("lock.provider"),
		RedisAddr:     v.GetString("lock.redis_addr"),
		RedisPassword: v.GetString("lock.redis_password"),
		RedisDB:       v.GetInt("lock.redis_db"),
		TTL:           v.GetDuration("lock.ttl"),
		RetryBackoff:  v.GetDuration("lock.retry_backoff"),
		MaxRetries:    v.GetInt("lock.max_retries"),
	}

	cfg.Receipts = ReceiptsConfig{
		Provider: v.GetString("receipts.provider"),
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

	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}

	return cfg, nil
}

func ocrProvider(v *viper.Viper, prefix string) OCRProviderConfig {
	return OCRProviderConfig{
		Provider:    v.GetString(prefix + ".provider"),
		Binary:      v.GetString(prefix + ".binary"),
		Endpoint:    v.GetString(prefix + ".endpoint"),
		APIKey:      v.GetString(prefix + ".api_key"),
		Language:    v.GetString(prefix + ".language"),
		EngineMode:  v.GetInt(prefix + ".oem"),
		PageSegMode: v.GetInt(prefix + ".psm"),
		TimeoutSecs: v.GetInt(prefix + ".timeout_secs"),
	}
}

func decimalSetting(v *viper.Viper, key string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}

// splitList parses a comma-separated string, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
