package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var loadEnv sync.Once

// Config returns an environment variable, loading .env on first use.
func Config(key string) string {
	loadEnv.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("Warning: .env file not found, reading from system environment variables")
		}
	})
	return os.Getenv(key)
}

type AppConfig struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	AdminName     string
	AdminEmail    string
	AdminPassword string

	BrevoAPIKey     string
	EmailSender     string
	EmailSenderName string

	RabbitMQURL string

	// RecurringBillingSchedule is a cron spec for confirming due recurring lessons.
	RecurringBillingSchedule string
	LessonReminderSchedule   string
}

func Load() AppConfig {
	return AppConfig{
		Port:                     withDefault(Config("PORT"), "8080"),
		DatabaseURL:              Config("DATABASE_URL"),
		JWTSecret:                Config("JWT_SECRET"),
		AdminName:                withDefault(Config("ADMIN_FULL_NAME"), "Administrator"),
		AdminEmail:               Config("ADMIN_EMAIL"),
		AdminPassword:            Config("ADMIN_PASSWORD"),
		BrevoAPIKey:              Config("BREVO_API_KEY"),
		EmailSender:              Config("EMAIL_SENDER"),
		EmailSenderName:          Config("EMAIL_SENDER_NAME"),
		RabbitMQURL:              Config("RABBITMQ_URL"),
		RecurringBillingSchedule: withDefault(Config("RECURRING_BILLING_CRON"), "@hourly"),
		LessonReminderSchedule:   withDefault(Config("LESSON_REMINDER_CRON"), "0 18 * * *"),
	}
}

func withDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
