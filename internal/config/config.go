package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SourceFile = "file"
	SourceHTTP = "http"

	// DefaultJWTSecret only keeps local runs working; Validate refuses it
	// once a password is configured.
	DefaultJWTSecret = "changeme"
)

type Config struct {
	ServerPort string
	AppEnv     string
	LogLevel   string
	Timezone   string

	// Audit persistence is enabled only when DBUrl is set.
	DBUrl string

	JWTSecret         string
	AdminEmail        string
	AdminPasswordHash string
	CORSOrigins       []string

	DataSource    string
	DataDir       string
	APIBaseURL    string
	SourceTimeout time.Duration
	SchemaFile    string
	SchemaStrict  bool

	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string

	GoogleAPIKey    string
	GenAIModel      string
	GenAIImageModel string
	GenAITimeout    time.Duration

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	AWSKeyID    string
	AWSSecret   string
	KafkaBroker string
	KafkaTopic  string

	SentryDSN string
}

// Load reads .env (when present) and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		AppEnv:     getEnv("APP_ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		Timezone:   getEnv("TIMEZONE", "America/Bogota"),

		DBUrl: getEnv("DATABASE_URL", ""),

		JWTSecret:         getEnv("JWT_SECRET", DefaultJWTSecret),
		AdminEmail:        strings.ToLower(getEnv("ADMIN_EMAIL", "admin@kingdombarber.co")),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		DataSource:    strings.ToLower(getEnv("DATA_SOURCE", SourceFile)),
		DataDir:       getEnv("DATA_DIR", "data"),
		APIBaseURL:    getEnv("API_BASE_URL", "http://localhost:8000"),
		SourceTimeout: getDuration("SOURCE_TIMEOUT", 10*time.Second),
		SchemaFile:    getEnv("SCHEMA_FILE", ""),
		SchemaStrict:  getBool("SCHEMA_STRICT", false),

		CacheTTL:      getDuration("CACHE_TTL", 10*time.Minute),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		GoogleAPIKey:    getEnv("GOOGLE_API_KEY", ""),
		GenAIModel:      getEnv("GENAI_MODEL", "gemini-2.5-flash"),
		GenAIImageModel: getEnv("GENAI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		GenAITimeout:    getDuration("GENAI_TIMEOUT", 30*time.Second),

		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		AWSKeyID:    getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecret:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		KafkaBroker: getEnv("KAFKA_BROKER", ""),
		KafkaTopic:  getEnv("KAFKA_TOPIC", "kingdom.reports"),

		SentryDSN: getEnv("SENTRY_DSN", ""),
	}
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.DataSource {
	case SourceFile:
		if strings.TrimSpace(c.DataDir) == "" {
			return fmt.Errorf("config: DATA_DIR is required for the file source")
		}
	case SourceHTTP:
		if strings.TrimSpace(c.APIBaseURL) == "" {
			return fmt.Errorf("config: API_BASE_URL is required for the http source")
		}
	default:
		return fmt.Errorf("config: DATA_SOURCE must be %q or %q, got %q", SourceFile, SourceHTTP, c.DataSource)
	}
	if c.AuthEnabled() {
		secret := strings.TrimSpace(c.JWTSecret)
		if secret == "" || secret == DefaultJWTSecret {
			return fmt.Errorf("config: JWT_SECRET must be set when ADMIN_PASSWORD_HASH is configured")
		}
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.ServerPort)
}

func (c *Config) AuthEnabled() bool {
	return c.AdminPasswordHash != ""
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getBool(key string, def bool) bool {
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

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
