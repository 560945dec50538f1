package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// QueryConfig is one saved query the mirror polls. Nil fields are not sent.
type QueryConfig struct {
	Name     string   `json:"name"`
	Archived *bool    `json:"archived,omitempty"`
	Starred  *bool    `json:"starred,omitempty"`
	Sort     string   `json:"sort,omitempty"`  // "created" or "updated"
	Order    string   `json:"order,omitempty"` // "asc" or "desc"
	Page     *int     `json:"page,omitempty"`
	PerPage  *int     `json:"perPage,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

type Config struct {
	APIBaseURL      string
	APITimeout      time.Duration
	APIMaxRetries   int
	UserAgent       string
	Decoder         string
	MongoURI        string
	MongoDBName     string
	MongoColl       string
	PollInterval    time.Duration
	ServerPort      string
	Queries         []QueryConfig
	WorkerPoolSize  int
	KafkaBrokers    []string
	KafkaTopic      string
	KafkaDLQTopic   string
	KafkaGroupID    string
	QueriesFilePath string
	ServiceName     string
	TracingEnabled  bool
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	brokers := getEnv("KAFKA_BROKERS", "kafka:29092")

	cfg := &Config{
		APIBaseURL:      getEnv("API_BASE_URL", "http://localhost:8081/api"),
		APITimeout:      getDurationEnv("API_TIMEOUT", 10*time.Second),
		APIMaxRetries:   getIntEnv("API_MAX_RETRIES", 3),
		UserAgent:       getEnv("USER_AGENT", "ReadLaterSync/1.0"),
		Decoder:         getEnv("DECODER", "json"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "read_later"),
		MongoColl:       getEnv("MONGO_COLLECTION", "items"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://mongodb:27017"),
		PollInterval:    getDurationEnv("POLL_INTERVAL", 5*time.Minute),
		WorkerPoolSize:  getIntEnv("WORKER_POOL_SIZE", 2),
		KafkaBrokers:    strings.Split(brokers, ","),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "saved_items"),
		KafkaDLQTopic:   getEnv("KAFKA_DLQ_TOPIC", "saved_items_dlq"),
		KafkaGroupID:    getEnv("KAFKA_GROUP_ID", "item-notifier-group"),
		QueriesFilePath: getEnv("QUERIES_FILE_PATH", "config/queries.json"),
		ServiceName:     getEnv("OTEL_SERVICE_NAME", "read-later-sync"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", true),
	}
	cfg.Queries = loadQueries(cfg.QueriesFilePath)
	return cfg
}

// DefaultQuery is used when no queries file can be opened: the most recently
// updated unread items.
func DefaultQuery() QueryConfig {
	archived := false
	perPage := getIntEnv("DEFAULT_PER_PAGE", 30)
	return QueryConfig{
		Name:     "default-unread",
		Archived: &archived,
		Sort:     "updated",
		Order:    "desc",
		PerPage:  &perPage,
	}
}

func loadQueries(path string) []QueryConfig {
	if _, err := os.Stat(path); os.IsNotExist(err) && path == "config/queries.json" {
		fallback := "../config/queries.json"
		if _, err := os.Stat(fallback); err == nil {
			path = fallback
		}
	}

	file, err := os.Open(path)
	if err != nil {
		slog.Warn("Could not open queries file, using default query", "path", path, "error", err)
		return []QueryConfig{DefaultQuery()}
	}
	defer func() {
		if err := file.Close(); err != nil {
			slog.Warn("Failed to close queries file", "error", err)
		}
	}()

	var queries []QueryConfig
	if err := json.NewDecoder(file).Decode(&queries); err != nil {
		slog.Error("Error decoding queries file", "path", path, "error", err)
		return nil
	}
	return queries
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		// Try parsing as duration string (e.g. "1m", "60s")
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		// Try parsing as integer seconds
		if i, err := strconv.Atoi(value); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
