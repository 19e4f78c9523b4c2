package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	BaseURL     string
	DatabaseDSN string

	RedisAddr     string
	RedisPassword string

	KafkaBroker   string
	KafkaTopic    string
	KafkaUsername string
	KafkaPassword string

	JWTSecret      string
	JWTExpiryHours int

	GoogleClientID string

	CloudinaryURL string

	// When true, a failed OTP mail publish is logged and the request still
	// succeeds, so a transient mail outage does not block the reset flow.
	TolerateMailFailure bool
}

type MailerConfig struct {
	KafkaBroker   string
	KafkaTopic    string
	KafkaGroupID  string
	KafkaUsername string
	KafkaPassword string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	MailFromName string
}

func LoadConfig() Config {
	loadDotEnv()

	return Config{
		ServerPort:          getEnv("SERVER_PORT", ":5000"),
		BaseURL:             getEnv("BASE_URL", "*"),
		DatabaseDSN:         os.Getenv("DATABASE_DSN"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		KafkaBroker:         os.Getenv("KAFKA_BROKER"),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "chirotrack.mail"),
		KafkaUsername:       os.Getenv("KAFKA_USERNAME"),
		KafkaPassword:       os.Getenv("KAFKA_PASSWORD"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		JWTExpiryHours:      getEnvInt("JWT_EXPIRY_HOURS", 168),
		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		CloudinaryURL:       os.Getenv("CLOUDINARY_URL"),
		TolerateMailFailure: getEnvBool("TOLERATE_MAIL_FAILURE", true),
	}
}

func LoadMailerConfig() MailerConfig {
	loadDotEnv()

	return MailerConfig{
		KafkaBroker:   os.Getenv("KAFKA_BROKER"),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "chirotrack.mail"),
		KafkaGroupID:  getEnv("KAFKA_GROUP_ID", "mailer"),
		KafkaUsername: os.Getenv("KAFKA_USERNAME"),
		KafkaPassword: os.Getenv("KAFKA_PASSWORD"),
		SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		MailFrom:      os.Getenv("MAIL_FROM"),
		MailFromName:  getEnv("MAIL_FROM_NAME", "ChiroTrack"),
	}
}

func loadDotEnv() {
	if os.Getenv("ENV") == "prod" {
		return
	}
	if err := godotenv.Overload(); err != nil {
		log.Println("Warning: env file not found or could not be loaded:", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return b
}
