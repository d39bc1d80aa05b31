package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	PORT               string
	LOG_LEVEL          string
	DB_HOST            string
	DB_PORT            string
	DB_USER            string
	DB_PASSWORD        string
	DB_NAME            string
	REDIS_ADDR         string
	REDIS_PASSWORD     string
	JWT_SECRET         string
	REFRESH_JWT_SECRET string
	KAFKA_ADDRESS      string
	ES_URL             string
	ES_USER            string
	ES_PASSWORD        string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		PORT:               os.Getenv("PORT"),
		LOG_LEVEL:          os.Getenv("LOG_LEVEL"),
		DB_HOST:            os.Getenv("DB_HOST"),
		DB_PORT:            os.Getenv("DB_PORT"),
		DB_USER:            os.Getenv("DB_USER"),
		DB_PASSWORD:        os.Getenv("DB_PASSWORD"),
		DB_NAME:            os.Getenv("DB_NAME"),
		REDIS_ADDR:         os.Getenv("REDIS_ADDR"),
		REDIS_PASSWORD:     os.Getenv("REDIS_PASSWORD"),
		JWT_SECRET:         os.Getenv("JWT_SECRET"),
		REFRESH_JWT_SECRET: os.Getenv("REFRESH_JWT_SECRET"),
		KAFKA_ADDRESS:      os.Getenv("KAFKA_ADDRESS"),
		ES_URL:             os.Getenv("ES_URL"),
		ES_USER:            os.Getenv("ES_USER"),
		ES_PASSWORD:        os.Getenv("ES_PASSWORD"),
	}

	if config.PORT == "" {
		config.PORT = "8080"
	}

	return config, nil
}
