package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Reference data source kinds.
const (
	SourceFile     = "file"
	SourceHTTP     = "http"
	SourceS3       = "s3"
	SourcePostgres = "postgres"
)

// Session store kinds.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port string
	Env  string

	DB      DatabaseConfig
	Redis   RedisConfig
	S3      S3Config
	RefData RefDataConfig
	Session SessionConfig
	Prize   PrizeConfig
	Form    FormConfig
	CORS    CORSConfig
}

// DatabaseConfig contains PostgreSQL connection parameters. Postgres is
// optional; Enabled reports whether a host was configured.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Enabled reports whether Postgres should be used.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// S3Config contains the bucket holding reference datasets.
type S3Config struct {
	Region          string
	Bucket          string
	Prefix          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// RefDataConfig selects where the province/district/subdistrict/site
// datasets are loaded from.
type RefDataConfig struct {
	Source           string
	Dir              string
	BaseURL          string
	ProvincesPath    string
	DistrictsPath    string
	SubdistrictsPath string
	SitesPath        string
	ReloadInterval   time.Duration
	FetchTimeout     time.Duration
}

// SessionConfig controls form session storage and tokens.
type SessionConfig struct {
	Store      string
	Secret     string
	TTL        time.Duration
	SubmitLock time.Duration
}

// PrizeConfig points at the prize-fulfillment API.
type PrizeConfig struct {
	URL string

	// SigningSecret, when set, signs each request body in the X-Signature header.
	SigningSecret string
}

// FormConfig holds form behaviour switches.
type FormConfig struct {
	EnforceSite     bool
	NotifyAutoClose time.Duration
}

// CORSConfig lists the browser origins (host[:port]) allowed to call the API.
type CORSConfig struct {
	AllowedHosts []string
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")

	// Database (optional)
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// S3 (reference datasets)
	cfg.S3 = S3Config{
		Region:          getEnv("S3_REGION", "ap-southeast-1"),
		Bucket:          getEnv("S3_BUCKET", ""),
		Prefix:          getEnv("S3_PREFIX", ""),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}

	// Reference data
	cfg.RefData = RefDataConfig{
		Source:           strings.ToLower(getEnv("REFDATA_SOURCE", SourceFile)),
		Dir:              getEnv("REFDATA_DIR", "public"),
		BaseURL:          getEnv("REFDATA_BASE_URL", ""),
		ProvincesPath:    getEnv("REFDATA_PROVINCES_PATH", "thaigeo/provinces.json"),
		DistrictsPath:    getEnv("REFDATA_DISTRICTS_PATH", "thaigeo/district.json"),
		SubdistrictsPath: getEnv("REFDATA_SUBDISTRICTS_PATH", "thaigeo/subdistricts.json"),
		SitesPath:        getEnv("REFDATA_SITES_PATH", "site.json"),
	}

	// Sessions
	cfg.Session = SessionConfig{
		Store:  strings.ToLower(getEnv("SESSION_STORE", StoreMemory)),
		Secret: getEnv("SESSION_SECRET", ""),
	}

	// Prize API
	cfg.Prize = PrizeConfig{
		URL:           getEnv("PRIZE_API_URL", "https://b-api.thaideal.co/api/prize"),
		SigningSecret: getEnv("PRIZE_SIGNING_SECRET", ""),
	}

	// Form
	cfg.Form.EnforceSite = getEnvBool("ENFORCE_SITE", false)

	// CORS
	cfg.CORS.AllowedHosts = splitList(getEnv("CORS_ALLOWED_HOSTS", "localhost:3000,127.0.0.1:3000"))

	// Durations
	var err error
	if cfg.RefData.ReloadInterval, err = parseDurationEnv("REFDATA_RELOAD_INTERVAL", "0s"); err != nil {
		return nil, fmt.Errorf("invalid REFDATA_RELOAD_INTERVAL: %w", err)
	}
	if cfg.RefData.FetchTimeout, err = parseDurationEnv("REFDATA_FETCH_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid REFDATA_FETCH_TIMEOUT: %w", err)
	}
	if cfg.Session.TTL, err = parseDurationEnv("SESSION_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.Session.SubmitLock, err = parseDurationEnv("SUBMIT_LOCK_TTL", "60s"); err != nil {
		return nil, fmt.Errorf("invalid SUBMIT_LOCK_TTL: %w", err)
	}
	if cfg.Form.NotifyAutoClose, err = parseDurationEnv("NOTIFY_AUTO_CLOSE", "5s"); err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_AUTO_CLOSE: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Session.Secret == "" {
		return errors.New("SESSION_SECRET must be set for form session tokens")
	}

	switch c.Session.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("unknown SESSION_STORE %q: use %q or %q", c.Session.Store, StoreMemory, StoreRedis)
	}

	switch c.RefData.Source {
	case SourceFile:
		if c.RefData.Dir == "" {
			return errors.New("REFDATA_DIR must be set when REFDATA_SOURCE=file")
		}
	case SourceHTTP:
		if c.RefData.BaseURL == "" {
			return errors.New("REFDATA_BASE_URL must be set when REFDATA_SOURCE=http")
		}
	case SourceS3:
		if c.S3.Bucket == "" {
			return errors.New("S3_BUCKET must be set when REFDATA_SOURCE=s3")
		}
	case SourcePostgres:
		if !c.DB.Enabled() {
			return errors.New("DB_HOST must be set when REFDATA_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("unknown REFDATA_SOURCE %q", c.RefData.Source)
	}

	// A configured host needs the rest of the DSN.
	if c.DB.Enabled() && (c.DB.User == "" || c.DB.Name == "") {
		return errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	if c.Prize.URL == "" {
		return errors.New("PRIZE_API_URL must not be empty")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvBool returns the value of an environment variable as a bool or a default if empty/invalid.
func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}
