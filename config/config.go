package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Location graph file (town/suburb distance tiers).
	LocationGraphFile string `mapstructure:"LOCATION_GRAPH_FILE"`

	// Engine defaults. Commission and markup values are percentages,
	// amounts are in N$. These seed the pricing settings document when
	// none exists yet; live values come from the settings store.
	StandardCommissionPct  float64 `mapstructure:"STANDARD_COMMISSION_PCT"`
	EmergencyCommissionPct float64 `mapstructure:"EMERGENCY_COMMISSION_PCT"`
	SubscriptionFlatFee    float64 `mapstructure:"SUBSCRIPTION_FLAT_FEE"`
	WeekendMarkupPct       float64 `mapstructure:"WEEKEND_MARKUP_PCT"`
	WeekendBonusAmount     float64 `mapstructure:"WEEKEND_BONUS_AMOUNT"`

	// Booking timezone used for weekend detection, e.g. "Africa/Windhoek".
	BookingTimezone string `mapstructure:"BOOKING_TIMEZONE"`

	// Hours a provider has to accept an assigned booking.
	AcceptanceWindowHours int `mapstructure:"ACCEPTANCE_WINDOW_HOURS"`

	// Months of recurring bookings generated ahead of time.
	RecurrenceHorizonMonths int `mapstructure:"RECURRENCE_HORIZON_MONTHS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "servihub")
	viper.SetDefault("LOCATION_GRAPH_FILE", "config/locations.yaml")
	viper.SetDefault("STANDARD_COMMISSION_PCT", 15.0)
	viper.SetDefault("EMERGENCY_COMMISSION_PCT", 20.0)
	viper.SetDefault("SUBSCRIPTION_FLAT_FEE", 25.0)
	viper.SetDefault("WEEKEND_MARKUP_PCT", 20.0)
	viper.SetDefault("WEEKEND_BONUS_AMOUNT", 50.0)
	viper.SetDefault("BOOKING_TIMEZONE", "Africa/Windhoek")
	viper.SetDefault("ACCEPTANCE_WINDOW_HOURS", 24)
	viper.SetDefault("RECURRENCE_HORIZON_MONTHS", 3)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
