package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port              string
	LogMode           string
	StoreDriver       string
	MongoURI          string
	DBName            string
	MongoTransactions bool
	S3Bucket          string
	S3Region          string
	S3AccessKeyID     string
	S3SecretKey       string
	MaxUploadMB       int64
	ClerkSecretKey    string
	ClerkAPIURL       string
	ClerkJWTKey       string // PEM public key used to verify session tokens
	ClerkIssuer       string // expected iss claim, the frontend API URL
	AuthorizedParties []string
	WebhookSecret     string // SVIX_WEBHOOK, used by /api/webhook
	AddUserSecret     string // ADD_USER_WEBHOOK, used by /api/webhooks/addUser
	RedisAddr         string
	RedisPassword     string
	RoleCacheTTL      time.Duration
	WebhookRatePerMin int
	CORSOrigins       []string
	FrontendURL       string
}

func Load() (*Config, error) {
	maxMB := int64(50)
	if v := getEnv("MAX_UPLOAD_MB", "50"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			maxMB = n
		}
	}
	ttl, err := time.ParseDuration(getEnv("ROLE_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("ROLE_CACHE_TTL: %w", err)
	}
	rate, err := strconv.Atoi(getEnv("WEBHOOK_RATE_PER_MIN", "60"))
	if err != nil || rate <= 0 {
		return nil, fmt.Errorf("WEBHOOK_RATE_PER_MIN must be a positive integer")
	}
	tx, err := strconv.ParseBool(getEnv("MONGODB_TRANSACTIONS", "true"))
	if err != nil {
		return nil, fmt.Errorf("MONGODB_TRANSACTIONS: %w", err)
	}
	driver := strings.ToLower(getEnv("STORE_DRIVER", StoreMongo))
	if driver != StoreMongo && driver != StoreMemory {
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMongo, StoreMemory, driver)
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		LogMode:           getEnv("LOG_MODE", "dev"),
		StoreDriver:       driver,
		MongoURI:          getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:            getEnv("MONGODB_DB", "learnify"),
		MongoTransactions: tx,
		S3Bucket:          getEnv("AWS_S3_BUCKET", ""),
		S3Region:          getEnv("AWS_REGION", "us-east-1"),
		S3AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:       getEnv("AWS_SECRET_ACCESS_KEY", ""),
		MaxUploadMB:       maxMB,
		ClerkSecretKey:    getEnv("CLERK_SECRET_KEY", ""),
		ClerkAPIURL:       strings.TrimRight(getEnv("CLERK_API_URL", "https://api.clerk.com"), "/"),
		ClerkJWTKey:       strings.ReplaceAll(getEnv("CLERK_JWT_KEY", ""), `\n`, "\n"),
		ClerkIssuer:       strings.TrimRight(getEnv("CLERK_ISSUER", ""), "/"),
		AuthorizedParties: splitList(getEnv("CLERK_AUTHORIZED_PARTIES", "")),
		WebhookSecret:     getEnv("SVIX_WEBHOOK", ""),
		AddUserSecret:     getEnv("ADD_USER_WEBHOOK", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RoleCacheTTL:      ttl,
		WebhookRatePerMin: rate,
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "*")),
		FrontendURL:       getEnv("FRONTEND_URL", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports every missing value the configured features need.
// Optional integrations (S3, Redis, webhooks, frontend proxy) are skipped when unset.
func (c *Config) Validate() error {
	var missing []string
	if c.StoreDriver == StoreMongo && c.MongoURI == "" {
		missing = append(missing, "MONGODB_URI")
	}
	if c.ClerkJWTKey == "" {
		missing = append(missing, "CLERK_JWT_KEY")
	}
	if c.ClerkIssuer == "" {
		missing = append(missing, "CLERK_ISSUER")
	}
	if c.ClerkSecretKey == "" {
		missing = append(missing, "CLERK_SECRET_KEY")
	}
	if c.S3Bucket != "" && c.S3Region == "" {
		missing = append(missing, "AWS_REGION")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env: %s (set these in .env or environment)", strings.Join(missing, ", "))
	}
	return nil
}

// Summary lists which optional integrations are enabled, without secret values.
func (c *Config) Summary() []interface{} {
	return []interface{}{
		"port", c.Port,
		"store", c.StoreDriver,
		"db", c.DBName,
		"transactions", c.MongoTransactions,
		"s3", c.S3Bucket != "",
		"redis", c.RedisAddr != "",
		"webhook", c.WebhookSecret != "",
		"add_user_webhook", c.AddUserSecret != "",
		"frontend", c.FrontendURL,
	}
}
