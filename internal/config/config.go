package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Spam defense feature flags
	HoneypotEnabled    bool
	TimingCheckEnabled bool
	TimingMinSeconds   int
	RateLimitEnabled   bool
	RateLimitMax       int
	RateLimitWindow    time.Duration
	CaptchaEnabled     bool
	CaptchaSiteKey     string
	CaptchaSecret      string
	CaptchaMinScore    float64
	CaptchaVerifyURL   string
	CaptchaTimeout     time.Duration

	// Validation limits
	MessageMinLen int
	MessageMaxLen int

	// CSRF token signing
	CSRFSecret   string
	CSRFTokenTTL time.Duration

	// Notification recipients (comma separated)
	NotifyRecipients []string
	EmailProvider    string

	// SendGrid Email Configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	// AWS / SES Configuration
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	SESFromEmail        string
	SESFromName         string
	AWSEndpointOverride string

	AdminJWTSecret string

	CORSAllowedOrigins []string

	// Coarse per-IP flood guard in front of all routes
	FloodGuardRate  float64
	FloodGuardBurst int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		HoneypotEnabled:    getEnvAsBool("HONEYPOT_ENABLED", true),
		TimingCheckEnabled: getEnvAsBool("TIMING_CHECK_ENABLED", true),
		TimingMinSeconds:   getEnvAsInt("TIMING_MIN_SECONDS", 5),
		RateLimitEnabled:   getEnvAsBool("RATE_LIMIT_ENABLED", true),
		RateLimitMax:       getEnvAsInt("RATE_LIMIT_MAX", 3),
		RateLimitWindow:    getEnvAsDuration("RATE_LIMIT_WINDOW", time.Hour),
		CaptchaEnabled:     getEnvAsBool("CAPTCHA_ENABLED", false),
		CaptchaSiteKey:     getEnv("CAPTCHA_SITE_KEY", ""),
		CaptchaSecret:      getEnv("CAPTCHA_SECRET", ""),
		CaptchaMinScore:    getEnvAsFloat("CAPTCHA_MIN_SCORE", 0.5),
		CaptchaVerifyURL:   getEnv("CAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify"),
		CaptchaTimeout:     getEnvAsDuration("CAPTCHA_VERIFY_TIMEOUT", 4*time.Second),

		MessageMinLen: getEnvAsInt("MESSAGE_MIN_LEN", 10),
		MessageMaxLen: getEnvAsInt("MESSAGE_MAX_LEN", 2000),

		CSRFSecret:   getEnv("CSRF_SECRET", ""),
		CSRFTokenTTL: getEnvAsDuration("CSRF_TOKEN_TTL", 12*time.Hour),

		NotifyRecipients: getEnvAsList("NOTIFY_RECIPIENTS", nil),
		EmailProvider:    strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "auto"))),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "TalentGrid"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		SESFromEmail:        getEnv("SES_FROM_EMAIL", ""),
		SESFromName:         getEnv("SES_FROM_NAME", "TalentGrid"),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),

		FloodGuardRate:  getEnvAsFloat("FLOOD_GUARD_RATE", 5),
		FloodGuardBurst: getEnvAsInt("FLOOD_GUARD_BURST", 20),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	// Bare integers are treated as seconds so RATE_LIMIT_WINDOW=3600 works.
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
