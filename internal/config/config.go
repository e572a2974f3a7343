package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	ServerPort string

	DBDriver   string // "postgres" or "sqlite"
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	SessionSecret string
	UploadDir     string
	LogFilePath   string
}

var GlobalConfig *Config

func LoadConfig() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	env := getEnv("ENV", "development")

	// Postgres in production, sqlite everywhere else unless overridden.
	defaultDriver := "sqlite"
	if env == "production" {
		defaultDriver = "postgres"
	}

	var dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode string
	if env == "production" {
		dbHost = getEnv("DB_HOST", "")
		dbPort = getEnv("DB_PORT", "5432")
		dbUser = getEnv("DB_USER", "")
		dbPassword = getEnv("DB_PASSWORD", "")
		dbName = getEnv("DB_NAME", "")
		dbSSLMode = getEnv("DB_SSLMODE", "require")
	} else {
		dbHost = getEnv("DB_HOST", "localhost")
		dbPort = getEnv("DB_PORT", "5432")
		dbUser = getEnv("DB_USER", "postgres")
		dbPassword = getEnv("DB_PASSWORD", "password")
		dbName = getEnv("DB_NAME", "zikhala_zonke")
		dbSSLMode = getEnv("DB_SSLMODE", "disable")
	}

	GlobalConfig = &Config{
		Env:        env,
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DBDriver:   getEnv("DB_DRIVER", defaultDriver),
		DBHost:     dbHost,
		DBPort:     dbPort,
		DBUser:     dbUser,
		DBPassword: dbPassword,
		DBName:     dbName,
		DBSSLMode:  dbSSLMode,
		SQLitePath: getEnv("SQLITE_PATH", "music.db"),

		SessionSecret: getEnv("SESSION_SECRET", "default-session-secret-change-in-production"),
		UploadDir:     getEnv("UPLOAD_DIR", "static/audio"),
		LogFilePath:   getEnv("LOG_FILE_PATH", ""),
	}

	if env == "production" && GlobalConfig.SessionSecret == "default-session-secret-change-in-production" {
		log.Println("⚠️ SESSION_SECRET not set in production, sessions are forgeable")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
