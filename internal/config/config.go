package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	SupabaseURL       string
	SupabaseKey       string
	SupabaseJWTSecret string
	AdminSecretCode   string

	MpesaConsumerKey    string
	MpesaConsumerSecret string
	MpesaShortcode      string
	MpesaPasskey        string
	MpesaCallbackURL    string
	MpesaEnv            string

	KafkaAddress string
	ESURL        string
	ESUser       string
	ESPassword   string
	LogLevel     string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		Port:              getEnv("PORT", "8000"),
		SupabaseURL:       os.Getenv("SUPABASE_URL"),
		SupabaseKey:       os.Getenv("SUPABASE_KEY"),
		SupabaseJWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),
		AdminSecretCode:   getEnv("ADMIN_SECRET_CODE", "123456"),

		MpesaConsumerKey:    getEnv("MPESA_CONSUMER_KEY", "GTWADFxIpUfDoNikNGqq1C3023evM6UH"),
		MpesaConsumerSecret: getEnv("MPESA_CONSUMER_SECRET", "amFbAoUByPV2rM5A"),
		MpesaShortcode:      getEnv("MPESA_SHORTCODE", "174379"),
		MpesaPasskey:        getEnv("MPESA_PASSKEY", "bfb279f9aa9bdbcf158e97dd71a467cd2e0c893059b10f78e6b72ada1ed2c919"),
		MpesaCallbackURL:    getEnv("MPESA_CALLBACK_URL", "https://modcom.co.ke/job/confirmation.php"),
		MpesaEnv:            getEnv("MPESA_ENV", "sandbox"),

		KafkaAddress: os.Getenv("KAFKA_ADDRESS"),
		ESURL:        os.Getenv("ES_URL"),
		ESUser:       os.Getenv("ES_USER"),
		ESPassword:   os.Getenv("ES_PASSWORD"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}

	if config.SupabaseURL == "" || config.SupabaseKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_KEY must be set in environment variables")
	}

	return config, nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
