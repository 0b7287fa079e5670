package config

import (
	"os"
	"strconv"
)

type Config struct {
	Addr        string
	DatabaseURL string
	RedisAddr   string
	RabbitMQURL string
	JWTSecret   string

	RazorpayKeyID     string
	RazorpayKeySecret string

	// DeliveryEarning is the fixed amount credited to a delivery partner
	// each time one of their orders reaches delivered.
	DeliveryEarning float64
	// DefaultDeliveryFee is applied when the client omits a delivery fee.
	DefaultDeliveryFee float64
}

func Load() Config {
	return Config{
		Addr:               getenv("MEATKART_ADDR", ":8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RabbitMQURL:        os.Getenv("RABBITMQ_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		RazorpayKeyID:      os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:  os.Getenv("RAZORPAY_KEY_SECRET"),
		DeliveryEarning:    getenvFloat("DELIVERY_EARNING", 50),
		DefaultDeliveryFee: getenvFloat("DEFAULT_DELIVERY_FEE", 0),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
