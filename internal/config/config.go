package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/remessas-global/payment-screening/internal/domain"
)

// Config holds all configuration for the payment screening service
type Config struct {
	Server        ServerConfig
	Kafka         KafkaConfig
	Elasticsearch ElasticsearchConfig
	S3            S3Config
	Auth          AuthConfig
	Logging       LoggingConfig
	RefData       RefDataConfig
	Rules         domain.RulesConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	Brokers          []string `mapstructure:"brokers"`
	ConsumerGroup    string   `mapstructure:"consumer_group"`
	TransactionTopic string   `mapstructure:"transaction_topic"`
	AlertTopic       string   `mapstructure:"alert_topic"`
}

// ElasticsearchConfig holds Elasticsearch configuration
type ElasticsearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

// S3Config holds AWS S3 configuration for audit archival
type S3Config struct {
	Enabled       bool   `mapstructure:"enabled"`
	Region        string `mapstructure:"region"`
	ArchiveBucket string `mapstructure:"archive_bucket"`
	Endpoint      string `mapstructure:"endpoint"` // For local testing with MinIO
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
}

// AuthConfig holds authentication settings
type AuthConfig struct {
	JWTPublicKeyPath string `mapstructure:"jwt_public_key_path"`
	AuditHMACSecret  string `mapstructure:"audit_hmac_secret"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RefDataConfig holds paths to the screening reference data
type RefDataConfig struct {
	SanctionsListPath     string `mapstructure:"sanctions_list_path"`
	HighRiskCountriesPath string `mapstructure:"high_risk_countries_path"`
}

// Load loads configuration from environment and config files
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("SCREENING")
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8086)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Kafka
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.consumer_group", "payment-screening-service")
	v.SetDefault("kafka.transaction_topic", "remittance.transactions")
	v.SetDefault("kafka.alert_topic", "remittance.compliance.alerts")

	// Elasticsearch
	v.SetDefault("elasticsearch.enabled", false)
	v.SetDefault("elasticsearch.addresses", []string{"http://localhost:9200"})
	v.SetDefault("elasticsearch.username", "elastic")
	v.SetDefault("elasticsearch.password", "changeme")
	v.SetDefault("elasticsearch.index", "screening-audit")

	// S3
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.archive_bucket", "remessas-audit-archive")

	// Auth
	v.SetDefault("auth.jwt_public_key_path", "./keys/jwt_public.pem")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Reference data
	v.SetDefault("refdata.sanctions_list_path", "./data/sanctions_list.json")
	v.SetDefault("refdata.high_risk_countries_path", "./data/high_risk_countries.json")

	// Screening rule thresholds
	v.SetDefault("rules.velocity_threshold", 5)
	v.SetDefault("rules.velocity_window_minutes", 60)
	v.SetDefault("rules.amount_threshold", 2000)
	v.SetDefault("rules.structuring_window_minutes", 30)
	v.SetDefault("rules.structuring_min_count", 3)
	v.SetDefault("rules.structuring_amount_variance", 0.20)
	v.SetDefault("rules.fuzzy_match_threshold", 85)
}
