package config

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DBPath       string
	StaticDir    string
	UploadDir    string
	TemplatesDir string
	MaxUploadMB  int64
	CSRFKey      []byte
	SessionKey   []byte
	CookieDomain string
	CookieSecure bool

	// UPI payee shown on the checkout page
	UPIID    string
	UPIPayee string

	RegisterRateWindow time.Duration

	Predictor PredictorConfig
}

type PredictorConfig struct {
	Port         string
	ModelsDir    string
	DatasetPath  string
	TemplatesDir string
}

func LoadConfig() (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	cfg := &Config{
		Port:         getEnv("PORT", "5000"),
		DBPath:       getEnv("DB_PATH", "./app_data.db"),
		StaticDir:    getEnv("STATIC_DIR", "static"),
		UploadDir:    getEnv("UPLOAD_DIR", "static/uploads"),
		TemplatesDir: getEnv("TEMPLATES_DIR", "templates"),
		MaxUploadMB:  int64(getEnvInt("MAX_UPLOAD_MB", 100)),
		CookieDomain: getEnv("COOKIE_DOMAIN", ""),
		CookieSecure: getEnv("COOKIE_SECURE", "false") == "true",
		UPIID:        getEnv("UPI_ID", "projecthub@upi"),
		UPIPayee:     getEnv("UPI_PAYEE_NAME", "Student Project Hub"),
		Predictor: PredictorConfig{
			Port:         getEnv("PREDICTOR_PORT", "5001"),
			ModelsDir:    getEnv("PREDICTOR_MODELS_DIR", "models"),
			DatasetPath:  getEnv("PREDICTOR_DATASET", "Students Social Media Addiction.csv"),
			TemplatesDir: getEnv("PREDICTOR_TEMPLATES_DIR", "templates/predictor"),
		},
	}

	window, err := time.ParseDuration(getEnv("REGISTER_RATE_WINDOW", "1m"))
	if err != nil {
		slog.Error("Invalid REGISTER_RATE_WINDOW. Falling back to default.", "REGISTER_RATE_WINDOW", os.Getenv("REGISTER_RATE_WINDOW"))
		window = time.Minute
	}
	cfg.RegisterRateWindow = window

	cfg.CSRFKey = loadKey("CSRF_KEY")
	cfg.SessionKey = loadKey("SESSION_KEY")

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", os.Getenv("PORT"))
		cfg.Port = "5000"
	}
	if _, err := strconv.Atoi(cfg.Predictor.Port); err != nil {
		slog.Error("Invalid PREDICTOR_PORT environment variable. Falling back to default.", "PREDICTOR_PORT", os.Getenv("PREDICTOR_PORT"))
		cfg.Predictor.Port = "5001"
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 100
	}

	return cfg, nil
}

// MaxUploadBytes is the request body limit for multipart forms.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// loadKey reads a base64 key of at least 32 bytes, or generates a throwaway one.
func loadKey(name string) []byte {
	raw := os.Getenv(name)
	if raw == "" {
		slog.Warn(name + " environment variable not set. Generating a random key for development. This key will change on each restart. PLEASE SET " + name + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(decoded) < 32 {
		slog.Warn(name + " is invalid or too short (min 32 bytes). Generating a random key for development.")
		return generateRandomBytes(32)
	}
	return decoded
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		slog.Warn("Invalid integer environment variable. Falling back to default.", "key", key, "value", value)
	}
	return defaultValue
}

// generateRandomBytes generates a random byte slice of specified length
func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		slog.Error("Failed to read random bytes", "error", err)
		fallbackKey := "fallback-insecure-key-" + strconv.FormatInt(time.Now().UnixNano(), 10)
		padded := make([]byte, n)
		copy(padded, fallbackKey)
		return padded
	}
	return b
}
