package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	defaultPort        = "8080"
	defaultDriver      = "sqlite3"
	defaultDatabaseURL = "file:/tmp/socialmedia.db?_foreign_keys=on"
)

// Config holds the runtime settings read from the environment.
type Config struct {
	Port            string
	DBDriver        string
	DatabaseURL     string
	LogLevel        string
	Env             string
	PasswordHashing string
	AutoMigrate     bool
}

func (c *Config) isProduction() bool {
	return c.Env == "production"
}

// loadConfig reads settings from the environment, after loading .env if present.
func loadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found")
	}

	autoMigrate, err := strconv.ParseBool(getEnv("AUTO_MIGRATE", "true"))
	if err != nil {
		logrus.Warnf("invalid AUTO_MIGRATE value, defaulting to true: %v", err)
		autoMigrate = true
	}

	return &Config{
		Port:            getEnv("PORT", defaultPort),
		DBDriver:        getEnv("DB_DRIVER", defaultDriver),
		DatabaseURL:     getEnv("DATABASE_URL", defaultDatabaseURL),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Env:             getEnv("GOENV", "development"),
		PasswordHashing: getEnv("PASSWORD_HASHING", hashingPlain),
		AutoMigrate:     autoMigrate,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
