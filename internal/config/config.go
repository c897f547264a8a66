package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"lcaload/internal/domain"
)

// MaxBatchSize is the hard cap on records per committed batch.
const MaxBatchSize = 1000

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	S3        S3Config
	Ingest    IngestConfig
	Archive   ArchiveConfig
	Geography GeographyConfig
	Email     EmailConfig
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider        string `mapstructure:"provider"`
	Region          string `mapstructure:"region"`
	FromAddress     string `mapstructure:"from_address"`
	FromName        string `mapstructure:"from_name"`
	OperatorAddress string `mapstructure:"operator_address"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
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

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// IngestConfig holds chunked ingest settings.
type IngestConfig struct {
	CursorMode       domain.CursorMode `mapstructure:"cursor_mode"`
	WindowBytes      int64             `mapstructure:"window_bytes"`
	WindowRows       int               `mapstructure:"window_rows"`
	BatchSize        int               `mapstructure:"batch_size"`
	SampleCap        int               `mapstructure:"sample_cap"`
	HeaderProbeBytes int64             `mapstructure:"header_probe_bytes"`
	SourceEncoding   string            `mapstructure:"source_encoding"`
}

// ArchiveConfig holds settings for downloading remote wage archives.
type ArchiveConfig struct {
	// AllowedHosts entries match exactly; an entry starting with "." also
	// matches every subdomain.
	AllowedHosts []string      `mapstructure:"allowed_hosts"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
	MaxArchiveMB int64         `mapstructure:"max_archive_mb"`
}

// GeographyConfig holds geography lookup cache settings.
type GeographyConfig struct {
	CacheSize int `mapstructure:"cache_size"`
}

// Load reads configuration from environment variables with the LCALOAD_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LCALOAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "lcaload")
	v.SetDefault("db.password", "lcaload_secret")
	v.SetDefault("db.name", "lcaload_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "lcaload-sources")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 1024)

	// Ingest defaults
	v.SetDefault("ingest.cursor_mode", string(domain.CursorModeByte))
	v.SetDefault("ingest.window_bytes", 4<<20)
	v.SetDefault("ingest.window_rows", 5000)
	v.SetDefault("ingest.batch_size", 500)
	v.SetDefault("ingest.sample_cap", 100)
	v.SetDefault("ingest.header_probe_bytes", 64<<10)
	v.SetDefault("ingest.source_encoding", "utf-8")

	// Archive defaults
	v.SetDefault("archive.allowed_hosts", "www.dol.gov,flag.dol.gov")
	v.SetDefault("archive.fetch_timeout", "5m")
	v.SetDefault("archive.max_retries", 3)
	v.SetDefault("archive.max_archive_mb", 512)

	v.SetDefault("geography.cache_size", 16)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@lcaload.local")
	v.SetDefault("email.from_name", "lcaload")
	v.SetDefault("email.operator_address", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "LCALOAD_SERVER_PORT",
		"server.read_timeout":       "LCALOAD_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "LCALOAD_SERVER_WRITE_TIMEOUT",
		"server.environment":        "LCALOAD_SERVER_ENVIRONMENT",
		"db.host":                   "LCALOAD_DB_HOST",
		"db.port":                   "LCALOAD_DB_PORT",
		"db.user":                   "LCALOAD_DB_USER",
		"db.password":               "LCALOAD_DB_PASSWORD",
		"db.name":                   "LCALOAD_DB_NAME",
		"db.sslmode":                "LCALOAD_DB_SSLMODE",
		"db.max_open":               "LCALOAD_DB_MAX_OPEN",
		"db.max_idle":               "LCALOAD_DB_MAX_IDLE",
		"s3.region":                 "LCALOAD_S3_REGION",
		"s3.bucket":                 "LCALOAD_S3_BUCKET",
		"s3.endpoint":               "LCALOAD_S3_ENDPOINT",
		"s3.access_key":             "LCALOAD_S3_ACCESS_KEY",
		"s3.secret_key":             "LCALOAD_S3_SECRET_KEY",
		"s3.max_file_size_mb":       "LCALOAD_S3_MAX_FILE_SIZE_MB",
		"ingest.cursor_mode":        "LCALOAD_INGEST_CURSOR_MODE",
		"ingest.window_bytes":       "LCALOAD_INGEST_WINDOW_BYTES",
		"ingest.window_rows":        "LCALOAD_INGEST_WINDOW_ROWS",
		"ingest.batch_size":         "LCALOAD_INGEST_BATCH_SIZE",
		"ingest.sample_cap":         "LCALOAD_INGEST_SAMPLE_CAP",
		"ingest.header_probe_bytes": "LCALOAD_INGEST_HEADER_PROBE_BYTES",
		"ingest.source_encoding":    "LCALOAD_INGEST_SOURCE_ENCODING",
		"archive.allowed_hosts":     "LCALOAD_ARCHIVE_ALLOWED_HOSTS",
		"archive.fetch_timeout":     "LCALOAD_ARCHIVE_FETCH_TIMEOUT",
		"archive.max_retries":       "LCALOAD_ARCHIVE_MAX_RETRIES",
		"archive.max_archive_mb":    "LCALOAD_ARCHIVE_MAX_ARCHIVE_MB",
		"geography.cache_size":      "LCALOAD_GEOGRAPHY_CACHE_SIZE",
		"email.provider":            "LCALOAD_EMAIL_PROVIDER",
		"email.region":              "LCALOAD_EMAIL_REGION",
		"email.from_address":        "LCALOAD_EMAIL_FROM_ADDRESS",
		"email.from_name":           "LCALOAD_EMAIL_FROM_NAME",
		"email.operator_address":    "LCALOAD_EMAIL_OPERATOR_ADDRESS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if LCALOAD_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("LCALOAD_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
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
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
	}

	mode := domain.CursorMode(strings.ToLower(v.GetString("ingest.cursor_mode")))
	if mode != domain.CursorModeByte && mode != domain.CursorModeRow {
		return nil, fmt.Errorf("config: ingest.cursor_mode must be %q or %q, got %q",
			domain.CursorModeByte, domain.CursorModeRow, mode)
	}
	cfg.Ingest = IngestConfig{
		CursorMode:       mode,
		WindowBytes:      v.GetInt64("ingest.window_bytes"),
		WindowRows:       v.GetInt("ingest.window_rows"),
		BatchSize:        ClampBatchSize(v.GetInt("ingest.batch_size")),
		SampleCap:        v.GetInt("ingest.sample_cap"),
		HeaderProbeBytes: v.GetInt64("ingest.header_probe_bytes"),
		SourceEncoding:   v.GetString("ingest.source_encoding"),
	}
	if cfg.Ingest.WindowBytes <= 0 || cfg.Ingest.WindowRows <= 0 {
		return nil, fmt.Errorf("config: ingest windows must be positive (bytes=%d rows=%d)",
			cfg.Ingest.WindowBytes, cfg.Ingest.WindowRows)
	}
	if cfg.Ingest.HeaderProbeBytes <= 0 {
		cfg.Ingest.HeaderProbeBytes = 64 << 10
	}

	cfg.Archive = ArchiveConfig{
		AllowedHosts: splitList(v.GetString("archive.allowed_hosts")),
		FetchTimeout: v.GetDuration("archive.fetch_timeout"),
		MaxRetries:   v.GetInt("archive.max_retries"),
		MaxArchiveMB: v.GetInt64("archive.max_archive_mb"),
	}

	cfg.Geography = GeographyConfig{
		CacheSize: v.GetInt("geography.cache_size"),
	}

	cfg.Email = EmailConfig{
		Provider:        v.GetString("email.provider"),
		Region:          v.GetString("email.region"),
		FromAddress:     v.GetString("email.from_address"),
		FromName:        v.GetString("email.from_name"),
		OperatorAddress: v.GetString("email.operator_address"),
	}

	return cfg, nil
}

// ClampBatchSize bounds n to 1..MaxBatchSize.
func ClampBatchSize(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxBatchSize:
		return MaxBatchSize
	default:
		return n
	}
}

// splitList parses a comma-separated, lower-cased host list.
func splitList(raw string) []string {
	var out []string
	for _, h := range strings.Split(raw, ",") {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}
