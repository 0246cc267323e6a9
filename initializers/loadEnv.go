package initializers

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			log.Warn("No .env file found, relying on environment variables.")
		} else {
			log.Warnf("Error loading .env file: %v", err)
		}
	}
}
