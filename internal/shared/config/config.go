package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
)

const (
	defaultLLMBaseURL     = "https://api.deepseek.com/v1"
	defaultLLMModel       = "deepseek-chat"
	defaultMaxUploadBytes = 10 << 20
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	CORSAllowOrigin []string

	ObjectStoreType string
	LocalStoreDir   string
	PublicBaseURL   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	S3Endpoint      string
	S3PublicBaseURL string
	SSEKMSKeyID     string

	DatabaseURL string

	LLMProvider string
	LLMAPIKey   string
	LLMBaseURL  string
	LLMModel    string
	LLMTimeout  time.Duration

	SummaryTimeout     time.Duration
	SummaryMaxTokens   int
	SummaryTemperature float32

	MaxUploadBytes int64

	ReconcileSchedule string
	ReconcileMinAge   time.Duration
	ReconcileDryRun   bool
	ReconcileTimeout  time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	port := getEnv("PORT", "8080")

	return Config{
		Port:            port,
		Env:             env,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data/blobs"),
		PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:"+strings.TrimPrefix(port, ":")),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", "documents"),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		DatabaseURL: dbURL,

		LLMProvider: normalizeLLMProvider(getEnv("LLM_PROVIDER", "openai")),
		LLMAPIKey:   firstEnv("LLM_API_KEY", "DEEPSEEK_API_KEY", "OPENAI_API_KEY"),
		LLMBaseURL:  getEnv("LLM_BASE_URL", defaultLLMBaseURL),
		LLMModel:    getEnv("LLM_MODEL", defaultLLMModel),
		LLMTimeout:  getDuration("LLM_TIMEOUT", 60*time.Second),

		SummaryTimeout:     getDuration("SUMMARY_TIMEOUT", 90*time.Second),
		SummaryMaxTokens:   getInt("SUMMARY_MAX_TOKENS", 1000),
		SummaryTemperature: getFloat32("SUMMARY_TEMPERATURE", 0.3),

		MaxUploadBytes: getSize("MAX_UPLOAD_SIZE", defaultMaxUploadBytes),

		ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", "@every 1h"),
		ReconcileMinAge:   getDuration("RECONCILE_MIN_AGE", 15*time.Minute),
		ReconcileDryRun:   getBool("RECONCILE_DRY_RUN", false),
		ReconcileTimeout:  getDuration("RECONCILE_TIMEOUT", 10*time.Minute),
	}
}

// BlobBaseURL is the URL prefix under which the local object store is served.
func (c Config) BlobBaseURL() string {
	return strings.TrimRight(c.PublicBaseURL, "/") + "/blobs"
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return ""
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid int %q; using %d", key, raw, def)
		return def
	}
	return val
}

func getFloat32(key string, def float32) float32 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 32)
	if err != nil || val < 0 {
		log.Printf("config %s invalid float %q; using %v", key, raw, def)
		return def
	}
	return float32(val)
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config %s invalid bool %q; using %v", key, raw, def)
		return def
	}
	return val
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid duration %q; using %s", key, raw, def)
		return def
	}
	return val
}

// getSize parses human sizes such as "10MB" or "512KiB".
func getSize(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := units.RAMInBytes(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid size %q; using %s", key, raw, units.BytesSize(float64(def)))
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeLLMProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "none", "disabled", "off":
		return "none"
	default:
		return "openai"
	}
}
