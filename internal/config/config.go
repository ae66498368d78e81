package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Skotchmaster/cms_backend/internal/models"
)

type Config struct {
	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string

	KAFKA_ADDRESS string

	SECRET_KEY                  string
	ALGORITHM                   string
	ACCESS_TOKEN_EXPIRE_MINUTES int
	REFRESH_TOKEN_EXPIRE_DAYS   int

	UPLOAD_DIR string
	LOG_LEVEL  string
	PORT       string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_NAME:     os.Getenv("DB_NAME"),

		ES_URL:      os.Getenv("ES_URL"),
		ES_USER:     os.Getenv("ES_USER"),
		ES_PASSWORD: os.Getenv("ES_PASSWORD"),

		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),

		SECRET_KEY:                  os.Getenv("SECRET_KEY"),
		ALGORITHM:                   getDefault("ALGORITHM", "HS256"),
		ACCESS_TOKEN_EXPIRE_MINUTES: getIntDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30),
		REFRESH_TOKEN_EXPIRE_DAYS:   getIntDefault("REFRESH_TOKEN_EXPIRE_DAYS", 7),

		UPLOAD_DIR: getDefault("UPLOAD_DIR", "uploads"),
		LOG_LEVEL:  getDefault("LOG_LEVEL", "info"),
		PORT:       getDefault("PORT", "8080"),
	}

	if config.SECRET_KEY == "" {
		return nil, errors.New("SECRET_KEY is required")
	}

	return config, nil
}

func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.ACCESS_TOKEN_EXPIRE_MINUTES) * time.Minute
}

func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.REFRESH_TOKEN_EXPIRE_DAYS) * 24 * time.Hour
}

func getDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Notice: invalid %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}

func InitDB(configuration *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		configuration.DB_USER,
		configuration.DB_PASSWORD,
		configuration.DB_HOST,
		configuration.DB_PORT,
		configuration.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Role{}, &models.User{}, &models.File{}, &models.Article{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
