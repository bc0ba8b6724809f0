package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// DBTimeout bounds every repository call.
	DBTimeout time.Duration

	ServerPort string

	RedisURL string

	SessionSecret string
	SessionMaxAge int
	CookieSecure  bool

	LogLevel string
	LogDev   bool

	WorkerCount int

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	sessionMaxAge, err := strconv.Atoi(os.Getenv("SESSION_MAX_AGE"))
	if err != nil || sessionMaxAge <= 0 {
		sessionMaxAge = 86400
	}

	dbTimeoutMS, err := strconv.Atoi(os.Getenv("DB_TIMEOUT_MS"))
	if err != nil || dbTimeoutMS <= 0 {
		dbTimeoutMS = 5000
	}

	workerCount, err := strconv.Atoi(os.Getenv("WORKER_COUNT"))
	if err != nil || workerCount <= 0 {
		workerCount = 1
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "require"
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	logDev := os.Getenv("LOG_DEV") == "1"
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		if logDev {
			logLevel = "debug"
		} else {
			logLevel = "info"
		}
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  sslMode,
		DBTimeout:  time.Duration(dbTimeoutMS) * time.Millisecond,

		ServerPort: serverPort,

		RedisURL: redisURL,

		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionMaxAge: sessionMaxAge,
		CookieSecure:  os.Getenv("COOKIE_SECURE") == "1",

		LogLevel: logLevel,
		LogDev:   logDev,

		WorkerCount: workerCount,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),
	}, nil
}

// MediaEnabled reports whether every R2 setting needed for uploads is present.
func (c *Config) MediaEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicURL != ""
}
