package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Kafka     KafkaConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Quota     QuotaConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port        string
	Environment string
	Version     string
}

type MongoDBConfig struct {
	URI         string
	Database    string
	MaxPoolSize uint64
	MinPoolSize uint64
	MaxRetries  int
}

type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	ClientID      string
	Username      string
	Password      string
	SSL           bool
	SASLMechanism string
	AuditTopic    string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	PoolSize int
}

type JWTConfig struct {
	SharedSecret      string
	Issuer            string
	AccessTokenExpiry int // in minutes
}

type QuotaConfig struct {
	TrialDays       int
	DefaultMaxLeads int
	DefaultMaxUsers int
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Set default values
	setDefaults()

	// Enable reading from environment variables
	viper.AutomaticEnv()

	// Try to read config file (optional)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/lead-management")

	// Reading config file is optional
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use environment variables and defaults
	}

	var config Config

	config.Server = ServerConfig{
		Port:        viper.GetString("server.port"),
		Environment: viper.GetString("server.environment"),
		Version:     viper.GetString("server.version"),
	}

	config.MongoDB = MongoDBConfig{
		URI:         viper.GetString("mongodb.uri"),
		Database:    viper.GetString("mongodb.database"),
		MaxPoolSize: viper.GetUint64("mongodb.max_pool_size"),
		MinPoolSize: viper.GetUint64("mongodb.min_pool_size"),
		MaxRetries:  viper.GetInt("mongodb.max_retries"),
	}

	config.Kafka = KafkaConfig{
		Enabled:       viper.GetBool("kafka.enabled"),
		Brokers:       viper.GetStringSlice("kafka.brokers"),
		ClientID:      viper.GetString("kafka.client_id"),
		Username:      viper.GetString("kafka.username"),
		Password:      viper.GetString("kafka.password"),
		SSL:           viper.GetBool("kafka.ssl"),
		SASLMechanism: viper.GetString("kafka.sasl_mechanism"),
		AuditTopic:    viper.GetString("kafka.topics.audit"),
	}

	config.Redis = RedisConfig{
		Enabled:  viper.GetBool("redis.enabled"),
		Addr:     viper.GetString("redis.addr"),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
		PoolSize: viper.GetInt("redis.pool_size"),
	}

	config.JWT = JWTConfig{
		SharedSecret:      viper.GetString("jwt.shared_secret"),
		Issuer:            viper.GetString("jwt.issuer"),
		AccessTokenExpiry: viper.GetInt("jwt.access_token_expiry"),
	}

	config.Quota = QuotaConfig{
		TrialDays:       viper.GetInt("quota.trial_days"),
		DefaultMaxLeads: viper.GetInt("quota.default_max_leads"),
		DefaultMaxUsers: viper.GetInt("quota.default_max_users"),
	}

	config.RateLimit = RateLimitConfig{
		RequestsPerMinute: viper.GetInt("ratelimit.requests_per_minute"),
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.environment", "development")
	viper.SetDefault("server.version", "1.0.0")

	// MongoDB defaults
	viper.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongodb.database", "lead_management_db")
	viper.SetDefault("mongodb.max_pool_size", 100)
	viper.SetDefault("mongodb.min_pool_size", 10)
	viper.SetDefault("mongodb.max_retries", 5)

	// Kafka defaults
	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.client_id", "lead-management-producer")
	viper.SetDefault("kafka.username", "")
	viper.SetDefault("kafka.password", "")
	viper.SetDefault("kafka.ssl", false)
	viper.SetDefault("kafka.sasl_mechanism", "plain")
	viper.SetDefault("kafka.topics.audit", "leads.audit_events")

	// Redis defaults
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)

	// JWT defaults
	viper.SetDefault("jwt.shared_secret", "")
	viper.SetDefault("jwt.issuer", "lead-management-api")
	viper.SetDefault("jwt.access_token_expiry", 15) // 15 minutes

	// Quota defaults (trial plan)
	viper.SetDefault("quota.trial_days", 3)
	viper.SetDefault("quota.default_max_leads", 50)
	viper.SetDefault("quota.default_max_users", 1)

	// Rate limit defaults
	viper.SetDefault("ratelimit.requests_per_minute", 120)
}
