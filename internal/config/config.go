package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	// SQLite Configuration
	SQLitePath string
	// Redis Configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RuleCacheTTL  int // seconds
	// Auth Configuration
	JWTSecret      string
	AuthUsers      string // name:password:role, comma-separated
	IdempotencyTTL int    // seconds
	// Kafka Configuration
	KafkaBrokers        []string
	KafkaTopicLocates   string
	KafkaTopicInventory string
	KafkaClientID       string
	KafkaGroupID        string
	KafkaAcks           string
	KafkaRetries        int
	MaxRetries          int
	RetryDelayMs        int
	DeadLetterQueue     bool
	DLQTopic            string
	// Workflow Configuration
	SLABudgetMs         int
	ExpirySweepEnabled  bool
	ExpirySweepTimezone string
	MarketCutoffHours   map[string]int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Parse Kafka brokers (comma-separated)
	kafkaBrokersStr := getEnv("KAFKA_BROKERS", "localhost:9093")
	kafkaBrokers := strings.Split(kafkaBrokersStr, ",")
	for i, broker := range kafkaBrokers {
		kafkaBrokers[i] = strings.TrimSpace(broker)
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		SQLitePath:  getEnv("SQLITE_PATH", "./data/locates.db"),
		// Redis Configuration
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		RuleCacheTTL:  getEnvAsInt("RULE_CACHE_TTL_SECONDS", 60),
		// Auth Configuration
		JWTSecret:      getEnv("JWT_SECRET", "your-secret-key-change-in-production-min-32-chars"),
		AuthUsers:      getEnv("AUTH_USERS", "admin:admin123:admin,approver:approver123:approver,trader:trader123:trader"),
		IdempotencyTTL: getEnvAsInt("IDEMPOTENCY_TTL_SECONDS", 300),
		// Kafka Configuration
		KafkaBrokers:        kafkaBrokers,
		KafkaTopicLocates:   getEnv("KAFKA_TOPIC_LOCATES", "ims.locates"),
		KafkaTopicInventory: getEnv("KAFKA_TOPIC_INVENTORY", "ims.inventory"),
		KafkaClientID:       getEnv("KAFKA_CLIENT_ID", "locate-service"),
		KafkaGroupID:        getEnv("KAFKA_GROUP_ID", "locate-inventory-listener"),
		KafkaAcks:           getEnv("KAFKA_ACKS", "all"),
		KafkaRetries:        getEnvAsInt("KAFKA_RETRIES", 3),
		MaxRetries:          getEnvAsInt("MAX_RETRIES", 3),
		RetryDelayMs:        getEnvAsInt("RETRY_DELAY_MS", 200),
		DeadLetterQueue:     getEnvAsBool("DEAD_LETTER_QUEUE", true),
		DLQTopic:            getEnv("DLQ_TOPIC", "ims.inventory.dlq"),
		// Workflow Configuration
		SLABudgetMs:         getEnvAsInt("SLA_BUDGET_MS", 150),
		ExpirySweepEnabled:  getEnvAsBool("EXPIRY_SWEEP_ENABLED", true),
		ExpirySweepTimezone: getEnv("EXPIRY_SWEEP_TIMEZONE", "Local"),
		MarketCutoffHours:   parseCutoffHours(getEnv("MARKET_CUTOFF_HOURS", "JP=15,TW=13")),
	}
}

// parseCutoffHours reads "JP=15,TW=13" style overrides. Malformed pairs are skipped.
func parseCutoffHours(value string) map[string]int {
	result := make(map[string]int)
	for _, pair := range strings.Split(value, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		hour, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || hour < 0 || hour > 23 {
			continue
		}
		result[strings.ToUpper(strings.TrimSpace(parts[0]))] = hour
	}
	return result
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return result
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return result
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
