package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	JWTSecret string

	// Postgres
	DatabaseURL string

	// Azure AD app registration (app-only Graph access)
	AADClientID     string
	AADClientSecret string
	AADTenantID     string

	// Webhook
	WebhookNotificationURL string

	// Azure OpenAI embeddings
	AzureOpenAIEndpoint   string
	AzureOpenAIKey        string
	AzureOpenAIDeployment string
	AzureOpenAIAPIVersion string

	// Chroma vector index
	ChromaAPIKey     string
	ChromaTenant     string
	ChromaDatabase   string
	ChromaCollection string

	// Large-file processing queue (Pub/Sub)
	GoogleProjectID   string
	GoogleCredentials string
	LargeFileTopic    string

	// Subscription renewal sweep
	RenewalInterval    time.Duration
	RenewalWindow      time.Duration
	SubscriptionLength time.Duration
	RenewalMaxFailures int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	renewalInterval := 1 * time.Hour
	if v := os.Getenv("RENEWAL_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			renewalInterval = parsed
		}
	}

	renewalWindow := 6 * time.Hour
	if v := os.Getenv("RENEWAL_WINDOW"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			renewalWindow = parsed
		}
	}

	// Graph caps driveItem subscriptions at ~30 days; we keep them short and renew
	subscriptionLength := 72 * time.Hour
	if v := os.Getenv("SUBSCRIPTION_LENGTH"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			subscriptionLength = parsed
		}
	}

	return &Config{
		Port:      getEnv("PORT", "8080"),
		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),

		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=docusense port=5432 sslmode=disable"),

		AADClientID:     getEnv("AAD_CLIENT_ID", ""),
		AADClientSecret: getEnv("AAD_CLIENT_SECRET", ""),
		AADTenantID:     getEnv("AAD_TENANT_ID", ""),

		WebhookNotificationURL: getEnv("WEBHOOK_NOTIFICATION_URL", "http://localhost:8080/api/webhooks/graph"),

		AzureOpenAIEndpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureOpenAIKey:        getEnv("AZURE_OPENAI_API_KEY", ""),
		AzureOpenAIDeployment: getEnv("AZURE_OPENAI_DEPLOYMENT", "text-embedding-ada-002"),
		AzureOpenAIAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", "2024-02-01"),

		ChromaAPIKey:     getEnv("CHROMA_API_KEY", ""),
		ChromaTenant:     getEnv("CHROMA_TENANT", ""),
		ChromaDatabase:   getEnv("CHROMA_DATABASE", ""),
		ChromaCollection: getEnv("CHROMA_COLLECTION", "documents"),

		GoogleProjectID:   getEnv("GOOGLE_PROJECT_ID", ""),
		GoogleCredentials: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		LargeFileTopic:    getEnv("LARGE_FILE_TOPIC", "large-file-processing"),

		RenewalInterval:    renewalInterval,
		RenewalWindow:      renewalWindow,
		SubscriptionLength: subscriptionLength,
		RenewalMaxFailures: 3,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
