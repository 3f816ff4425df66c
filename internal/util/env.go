package util

import (
	"os"
	"strconv"

	"github.com/docketlabs/docket/backend/pkg/logger"

	"github.com/joho/godotenv"
)

// LoadEnv pulls a local .env file into the process environment when one
// exists. Deployed environments set real variables instead.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using system environment variables")
	}
}

func GetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return ""
	}
	return value
}

func GetEnvString(key string, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	return value
}

func GetEnvFloat(key string, defaultValue float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return parsed
}

// GetEnvNumeric reads a numeric variable whose default is a whole number.
// Callers needing an int convert the result themselves.
func GetEnvNumeric(key string, defaultValue int) float64 {
	return GetEnvFloat(key, float64(defaultValue))
}

func GetEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	if value == "true" || value == "false" {
		return value == "true"
	}

	return defaultValue
}
