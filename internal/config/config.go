package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Session   SessionConfig
	Email     EmailConfig
	Resend    ResendConfig
	Delivery  DeliveryConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	Env             string
	BaseURL         string // prefix of ticket check-in URLs
	ShutdownTimeout time.Duration

	// TrustedProxyCIDRs lists the proxies whose X-Forwarded-For is believed
	TrustedProxyCIDRs []string
}

type DatabaseConfig struct {
	URL      string // Full database URL
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AuthConfig struct {
	JWTSecret              string
	TokenTTL               time.Duration
	OwnershipHideExistence bool
}

type SessionConfig struct {
	Secret string
	Secure bool
}

type EmailConfig struct {
	Driver       string // smtp, resend or log
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

type ResendConfig struct {
	APIKey string
}

type DeliveryConfig struct {
	Workers   int
	QueueSize int
	RedisURL  string
	QueueKey  string
}

type RateLimitConfig struct {
	LoginPerMinute    int
	RegisterPerMinute int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// defaultSessionSecret signs development cookies only; Validate refuses it
// in production.
const defaultSessionSecret = "your-secret-key-change-in-production"

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	port := getEnv("PORT", "8000")

	config := &Config{
		Server: ServerConfig{
			Port:              port,
			Host:              getEnv("HOST", "localhost"),
			Env:               getEnv("ENV", "development"),
			BaseURL:           getEnv("APP_URL", "http://localhost:"+port),
			ShutdownTimeout:   getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedProxyCIDRs: getEnvAsList("TRUSTED_PROXY_CIDRS", nil),
		},
		Database: parseDatabaseConfig(),
		Auth: AuthConfig{
			JWTSecret:              getEnv("JWT_SECRET", ""),
			TokenTTL:               getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
			OwnershipHideExistence: getEnvAsBool("OWNERSHIP_HIDE_EXISTENCE", false),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", defaultSessionSecret),
			Secure: getEnvAsBool("SESSION_SECURE", false),
		},
		Email: EmailConfig{
			Driver:       strings.ToLower(getEnv("MAIL_DRIVER", "log")),
			SMTPHost:     getEnv("SMTP_HOST", "localhost"),
			SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("FROM_EMAIL", "noreply@eventify.local"),
			FromName:     getEnv("FROM_NAME", "Eventify"),
		},
		Resend: ResendConfig{
			APIKey: getEnv("RESEND_API_KEY", ""),
		},
		Delivery: DeliveryConfig{
			Workers:   getEnvAsInt("DELIVERY_WORKERS", 4),
			QueueSize: getEnvAsInt("DELIVERY_QUEUE_SIZE", 256),
			RedisURL:  getEnv("REDIS_URL", ""),
			QueueKey:  getEnv("DELIVERY_QUEUE_KEY", "eventify:ticket_deliveries"),
		},
		RateLimit: RateLimitConfig{
			LoginPerMinute:    getEnvAsInt("RATE_LIMIT_LOGIN", 5),
			RegisterPerMinute: getEnvAsInt("RATE_LIMIT_REGISTER", 10),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects configurations the server cannot run safely with
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		c.Auth.JWTSecret = "development-jwt-secret-change-me"
	}
	if len(c.Auth.JWTSecret) < 16 && c.IsProduction() {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.IsProduction() {
		if c.Session.Secret == "" || c.Session.Secret == defaultSessionSecret {
			return fmt.Errorf("SESSION_SECRET is required in production")
		}
		if len(c.Session.Secret) < 32 {
			return fmt.Errorf("SESSION_SECRET must be at least 32 characters")
		}
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}

	for i, cidr := range c.Server.TrustedProxyCIDRs {
		normalized, err := normalizeCIDR(cidr)
		if err != nil {
			return fmt.Errorf("invalid TRUSTED_PROXY_CIDRS entry %q: %w", cidr, err)
		}
		c.Server.TrustedProxyCIDRs[i] = normalized
	}

	switch c.Email.Driver {
	case "smtp", "log":
	case "resend":
		if c.Resend.APIKey == "" {
			return fmt.Errorf("RESEND_API_KEY is required when MAIL_DRIVER=resend")
		}
	default:
		return fmt.Errorf("unknown MAIL_DRIVER %q", c.Email.Driver)
	}

	if c.Delivery.Workers < 1 {
		c.Delivery.Workers = 1
	}
	if c.Delivery.QueueSize < 1 {
		c.Delivery.QueueSize = 1
	}
	return nil
}

// normalizeCIDR accepts a CIDR or a bare address, which becomes a
// single-host range
func normalizeCIDR(value string) (string, error) {
	if strings.Contains(value, "/") {
		_, network, err := net.ParseCIDR(value)
		if err != nil {
			return "", err
		}
		return network.String(), nil
	}
	ip := net.ParseIP(value)
	if ip == nil {
		return "", fmt.Errorf("not an IP address or CIDR")
	}
	if ip.To4() != nil {
		return ip.String() + "/32", nil
	}
	return ip.String() + "/128", nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func parseDatabaseConfig() DatabaseConfig {
	// Check if DATABASE_URL is provided
	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL != "" {
		return parseDatabaseURL(databaseURL)
	}

	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "eventify"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func parseDatabaseURL(databaseURL string) DatabaseConfig {
	config := DatabaseConfig{
		URL: databaseURL,
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		// unparseable URLs are handed to the driver as-is
		return config
	}

	config.Host = u.Hostname()
	config.Port = 5432
	if u.Port() != "" {
		config.Port, _ = strconv.Atoi(u.Port())
	}

	if u.User != nil {
		config.User = u.User.Username()
		config.Password, _ = u.User.Password()
	}

	config.DBName = strings.TrimPrefix(u.Path, "/")

	config.SSLMode = u.Query().Get("sslmode")
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
