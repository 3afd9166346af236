package configs

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	Env       string
	MongoURI  string
	DBName    string
	JWTSecret string

	// hard-coded staff login, same shape as the seeded librarian account
	UserId       string
	UserName     string
	UserPassword string

	FineRate              float64
	FineCap               float64
	GraceDays             int
	GeneralLoanDays       int
	PremiumLoanDays       int
	GeneralMaxLoans       int
	PremiumMaxLoans       int
	MaxRenewals           int
	ReservationExpiryDays int
	PickupWindowDays      int
	SweepInterval         time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers       []string
	NotificationsTopic string
	PaymentsTopic      string
	PaymentsGroup      string
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	fineRate, err := strconv.ParseFloat(getEnv("FINE_RATE", "0.50"), 64)
	if err != nil {
		log.Fatalf("Invalid FINE_RATE: %v", err)
	}
	fineCap, err := strconv.ParseFloat(getEnv("FINE_CAP", "25.00"), 64)
	if err != nil {
		log.Fatalf("Invalid FINE_CAP: %v", err)
	}

	sweepMinutes := getEnvInt("SWEEP_INTERVAL_MINUTES", 60)
	redisDB := getEnvInt("REDIS_DB", 0)

	return Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:    getEnv("DB_NAME", "bookflix"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		UserId:       os.Getenv("HARD_CODED_USER_ID"),
		UserName:     os.Getenv("HARD_CODED_USER_NAME"),
		UserPassword: os.Getenv("HARD_CODED_USER_PASSWORD"),

		FineRate:              fineRate,
		FineCap:               fineCap,
		GraceDays:             getEnvInt("GRACE_DAYS", 0),
		GeneralLoanDays:       getEnvInt("GENERAL_LOAN_DAYS", 7),
		PremiumLoanDays:       getEnvInt("PREMIUM_LOAN_DAYS", 14),
		GeneralMaxLoans:       getEnvInt("GENERAL_MAX_LOANS", 2),
		PremiumMaxLoans:       getEnvInt("PREMIUM_MAX_LOANS", 4),
		MaxRenewals:           getEnvInt("MAX_RENEWALS", 2),
		ReservationExpiryDays: getEnvInt("RESERVATION_EXPIRY_DAYS", 7),
		PickupWindowDays:      getEnvInt("PICKUP_WINDOW_DAYS", 3),
		SweepInterval:         time.Duration(sweepMinutes) * time.Minute,

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		KafkaBrokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		NotificationsTopic: getEnv("KAFKA_TOPIC_NOTIFICATIONS", "notification-intents"),
		PaymentsTopic:      getEnv("KAFKA_TOPIC_PAYMENTS", "payment-events"),
		PaymentsGroup:      getEnv("KAFKA_PAYMENTS_GROUP", "bookflix-fines"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return n
}
