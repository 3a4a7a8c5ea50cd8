package utils

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Server configuration
	AppPort  string `yaml:"APP_PORT"`
	AppURL   string `yaml:"APP_URL"`
	IsProd   bool   `yaml:"IS_PROD"`
	LogPath  string `yaml:"LOG_PATH"`
	RateMax  int    `yaml:"RATE_LIMIT_MAX"`
	PageSize int    `yaml:"DEFAULT_PAGE_LIMIT"`

	// Database configuration
	DBDriver     string `yaml:"DB_DRIVER"`
	DBUser       string `yaml:"DB_USER"`
	DBName       string `yaml:"DB_NAME"`
	DBPassword   string `yaml:"DB_PASSWORD"`
	DBPort       string `yaml:"DB_PORT"`
	DBHost       string `yaml:"DB_HOST"`
	DBSQLitePath string `yaml:"DB_SQLITE_PATH"`

	// JWT
	JWTSecret string `yaml:"JWT_SECRET"`
	JWTIssuer string `yaml:"JWT_ISSUER"`

	// Mailing configuration
	RequireEmailVerification bool   `yaml:"REQUIRE_EMAIL_VERIFICATION"`
	SMTPHost                 string `yaml:"SMTP_HOST"`
	SMTPPort                 string `yaml:"SMTP_PORT"`
	SMTPSenderName           string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail            string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword         string `yaml:"SMTP_AUTH_PASSWORD"`

	// Upload storage
	StorageDriver string `yaml:"STORAGE_DRIVER"`
	UploadPath    string `yaml:"UPLOAD_PATH"`
	MaxFileSize   int    `yaml:"MAX_FILE_SIZE"`

	// AWS S3 configuration
	AWSS3Bucket  string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region  string `yaml:"AWS_S3_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY"`
}

var (
	config     Config
	configOnce sync.Once
)

// LoadConfig reads config.yaml once. A missing file is not fatal: every key
// can also be supplied through the environment.
func LoadConfig() {
	configOnce.Do(func() {
		file, err := os.ReadFile(configPath())
		if err != nil {
			log.Warnf("Error reading YAML file: %s", err)
			return
		}

		if err := yaml.Unmarshal(file, &config); err != nil {
			log.Errorf("Error parsing YAML file: %s", err)
		}
	})
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

// GetConfig returns the value for key, preferring an environment variable of
// the same name over the YAML file.
func GetConfig(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	switch key {
	case "APP_PORT":
		return orDefault(config.AppPort, "3000")
	case "APP_URL":
		return orDefault(config.AppURL, "http://localhost:3000")
	case "IS_PROD":
		return strconv.FormatBool(config.IsProd)
	case "LOG_PATH":
		return orDefault(config.LogPath, "./logs/app.log")
	case "RATE_LIMIT_MAX":
		return intOrDefault(config.RateMax, 100)
	case "DEFAULT_PAGE_LIMIT":
		return intOrDefault(config.PageSize, 10)
	case "DB_DRIVER":
		return orDefault(config.DBDriver, "postgres")
	case "DB_USER":
		return config.DBUser
	case "DB_NAME":
		return config.DBName
	case "DB_PASSWORD":
		return config.DBPassword
	case "DB_PORT":
		return orDefault(config.DBPort, "5432")
	case "DB_HOST":
		return orDefault(config.DBHost, "localhost")
	case "DB_SQLITE_PATH":
		return orDefault(config.DBSQLitePath, "tagameal.db")
	case "JWT_SECRET":
		return config.JWTSecret
	case "JWT_ISSUER":
		return orDefault(config.JWTIssuer, "TAG-A-MEAL")
	case "REQUIRE_EMAIL_VERIFICATION":
		return strconv.FormatBool(config.RequireEmailVerification)
	case "SMTP_HOST":
		return config.SMTPHost
	case "SMTP_PORT":
		return config.SMTPPort
	case "SMTP_SENDER_NAME":
		return config.SMTPSenderName
	case "SMTP_AUTH_EMAIL":
		return config.SMTPAuthEmail
	case "SMTP_AUTH_PASSWORD":
		return config.SMTPAuthPassword
	case "STORAGE_DRIVER":
		return orDefault(config.StorageDriver, "local")
	case "UPLOAD_PATH":
		return orDefault(config.UploadPath, "./uploads")
	case "MAX_FILE_SIZE":
		return intOrDefault(config.MaxFileSize, 5*1024*1024)
	case "AWS_S3_BUCKET":
		return config.AWSS3Bucket
	case "AWS_S3_REGION":
		return config.AWSS3Region
	case "AWS_ACCESS_KEY":
		return config.AWSAccessKey
	case "AWS_SECRET_KEY":
		return config.AWSSecretKey
	default:
		return ""
	}
}

func GetConfigInt(key string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(GetConfig(key)))
	if err != nil {
		return fallback
	}
	return n
}

func GetConfigBool(key string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(GetConfig(key)))
	return b
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func intOrDefault(v, def int) string {
	if v == 0 {
		return strconv.Itoa(def)
	}
	return strconv.Itoa(v)
}
