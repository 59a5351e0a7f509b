package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables. A .env file in
// the working directory is loaded first when present; real environment
// variables win over .env values (godotenv does not override them).
//
// Recognized variables:
//
//	ADDRESS                    HTTP bind address
//	DATABASE_DSN               PostgreSQL DSN
//	SECRET_KEY                 JWT HMAC secret
//	SESSION_VALIDITY_DURATION  Go duration string, e.g. "24h"
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v, ok := os.LookupEnv("ADDRESS"); ok {
		config.EndpointAddr = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("SECRET_KEY"); ok {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv("SESSION_VALIDITY_DURATION"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.SessionValidityDuration = d
	}
}
