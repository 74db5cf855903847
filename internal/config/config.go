package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"settlement/internal/gmopay"
)

type Config struct {
	HTTPPort int

	DBConfig struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	MigrationsPath string

	KafkaBrokerURL            string
	KafkaSettlementEventTopic string

	OutboxPollInterval time.Duration
	OutboxPollTimeout  time.Duration
	ReconcileTimeout   time.Duration

	GMOShopID           string
	GMOShopPass         string
	GMOConfigID         string
	GMOLinkURL          string
	GMOResultHashKey    string
	GMOVerificationMode gmopay.VerificationMode
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}

	cfg.HTTPPort = getEnvAsInt("SETTLEMENT_HTTP_PORT", 8080)

	cfg.DBConfig.Host = getEnvOrDefault("SETTLEMENT_DB_HOST", "localhost")
	cfg.DBConfig.Port = getEnvAsInt("SETTLEMENT_DB_PORT", 5432)
	cfg.DBConfig.User = getEnvOrDefault("SETTLEMENT_DB_USER", "user")
	cfg.DBConfig.Password = getEnvOrDefault("SETTLEMENT_DB_PASSWORD", "password")
	cfg.DBConfig.Name = getEnvOrDefault("SETTLEMENT_DB_NAME", "settlement_db")
	cfg.DBConfig.SSLMode = getEnvOrDefault("SETTLEMENT_DB_SSLMODE", "disable")

	cfg.MigrationsPath = getEnvOrDefault("MIGRATIONS_PATH", "file://migrations")

	cfg.KafkaBrokerURL = getEnvOrDefault("KAFKA_BROKER_URL", "localhost:9092")
	cfg.KafkaSettlementEventTopic = getEnvOrDefault("KAFKA_SETTLEMENT_EVENTS_TOPIC", "payment_settlement_events")

	cfg.OutboxPollInterval = getEnvAsDuration("OUTBOX_POLL_INTERVAL", 1*time.Second)
	cfg.OutboxPollTimeout = getEnvAsDuration("OUTBOX_POLL_TIMEOUT", 500*time.Millisecond)
	cfg.ReconcileTimeout = getEnvAsDuration("RECONCILE_TIMEOUT", 10*time.Second)

	cfg.GMOShopID = getEnvOrDefault("GMO_SHOP_ID", "")
	cfg.GMOShopPass = getEnvOrDefault("GMO_SHOP_PASS", "")
	cfg.GMOConfigID = getEnvOrDefault("GMO_CONFIG_ID", "")
	cfg.GMOLinkURL = getEnvOrDefault("GMO_LINK_URL", "https://stg.link.mul-pay.jp")
	cfg.GMOResultHashKey = getEnvOrDefault("GMO_RESULT_HASH_KEY", "")
	cfg.GMOVerificationMode = gmopay.VerificationMode(
		getEnvOrDefault("GMO_VERIFICATION_MODE", string(gmopay.VerificationEnforced)))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate fails startup on a partially configured shop: a missing credential
// would otherwise surface later as a cryptographically wrong checkout URL.
func (c *Config) validate() error {
	var missing []string
	if c.GMOShopID == "" {
		missing = append(missing, "GMO_SHOP_ID")
	}
	if c.GMOShopPass == "" {
		missing = append(missing, "GMO_SHOP_PASS")
	}
	if c.GMOConfigID == "" {
		missing = append(missing, "GMO_CONFIG_ID")
	}
	if c.GMOVerificationMode == gmopay.VerificationEnforced && c.GMOResultHashKey == "" {
		missing = append(missing, "GMO_RESULT_HASH_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) ShopConfig() gmopay.ShopConfig {
	return gmopay.ShopConfig{
		ShopID:   c.GMOShopID,
		ShopPass: c.GMOShopPass,
		ConfigID: c.GMOConfigID,
		LinkURL:  c.GMOLinkURL,
	}
}

func (c *Config) GetDBMigrationConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBConfig.User, c.DBConfig.Password, c.DBConfig.Host, c.DBConfig.Port, c.DBConfig.Name, c.DBConfig.SSLMode)
}

func (c *Config) GetKafkaBrokers() []string {
	return strings.Split(c.KafkaBrokerURL, ",")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnvOrDefault(key, strconv.Itoa(defaultValue))
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnvOrDefault(key, defaultValue.String())
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
