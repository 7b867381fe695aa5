package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DataDir   string
	UsersFile string

	HTTPAddr          string
	ReadHeaderTimeout time.Duration
	MaxBodyBytes      int

	Env     string
	LogFile string

	ExportFormat string
	// PDFFont is a TrueType font embedded in PDF exports; empty uses the
	// core fonts, which cannot print text outside cp1252.
	PDFFont string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged first; variables already set in the environment win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		DataDir:           getenv("NOTES_DATA_DIR", "data"),
		UsersFile:         getenv("USERS_FILE", "users.yaml"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		ReadHeaderTimeout: getenvDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		MaxBodyBytes:      getenvInt("MAX_BODY_BYTES", 1<<20),
		Env:               getenv("APP_ENV", "development"),
		LogFile:           getenv("LOG_FILE", ""),
		ExportFormat:      getenv("EXPORT_FORMAT", "pdf"),
		PDFFont:           getenv("PDF_FONT", ""),
	}
}

// IsProduction reports whether structured JSON console logs should be used.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return def
	}
	return i
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
