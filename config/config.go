package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	ListingURL string

	StartPage   int
	MaxPages    int // 0 = unbounded
	TargetCount int // 0 = unbounded

	SleepMinMs        int
	SleepMaxMs        int
	RequestTimeoutSec int

	UseBrowser bool
	ChromeBin  string

	CheckpointPath string
	LogFilePath    string

	PostgresMirror   bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		ListingURL: getEnv("LISTING_URL", "https://collegedunia.com/management-colleges"),

		StartPage:   getEnvInt("START_PAGE", 1),
		MaxPages:    getEnvInt("MAX_PAGES", 0),
		TargetCount: getEnvInt("TARGET_COUNT", 0),

		SleepMinMs:        getEnvInt("SLEEP_MIN_MS", 1000),
		SleepMaxMs:        getEnvInt("SLEEP_MAX_MS", 3000),
		RequestTimeoutSec: getEnvInt("REQUEST_TIMEOUT_SEC", 15),

		UseBrowser: getEnvBool("USE_BROWSER", false),
		ChromeBin:  getEnv("CHROME_BIN", ""),

		CheckpointPath: getEnv("CHECKPOINT_PATH", "./output/colleges.csv"),
		LogFilePath:    getEnv("LOG_FILE_PATH", "./output/scrape.log"),

		PostgresMirror:   getEnvBool("POSTGRES_MIRROR", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "colleges_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
