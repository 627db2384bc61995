package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	OTPBackend string // "dynamo" | "redis"
	RedisURL   string
	OTPTTL     time.Duration

	StorageBackend string // "local" | "s3"
	UploadDir      string
	S3BucketName   string
	MaxUploadBytes int64

	JWTSecret         string // HS256 when set, otherwise RS256 key files
	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	AllowedOrigins []string // CORS allowed origins
	// TrustProxy honors X-Forwarded-For / X-Real-IP. Only enable behind a proxy that overwrites them.
	TrustProxy bool
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users string
	OTPs  string
	Files string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "8080"),
		AppEnv:         getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users: getEnv("DYNAMO_TABLE_USERS", "users"),
			OTPs:  getEnv("DYNAMO_TABLE_OTPS", "otps"),
			Files: getEnv("DYNAMO_TABLE_FILES", "files"),
		},
		OTPBackend:        strings.ToLower(getEnv("OTP_BACKEND", "dynamo")),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		OTPTTL:            time.Duration(getEnvInt("OTP_TTL_MINUTES", 5)) * time.Minute,
		StorageBackend:    strings.ToLower(getEnv("STORAGE_BACKEND", "local")),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		S3BucketName:      getEnv("S3_BUCKET_NAME", "sheetboard-uploads"),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		SMTPHost:          getEnv("SMTP_HOST", "localhost"),
		SMTPPort:          getEnv("SMTP_PORT", "1025"),
		SMTPFrom:          getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustProxy:        getEnvBool("TRUST_PROXY", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
