package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTP     HTTPConfig
	MySQL    MySQLConfig
	Session  SessionConfig
	Mail     MailConfig
	Tokens   TokenConfig
	Password PasswordConfig
	Log      LogConfig
}

type HTTPConfig struct {
	Host            string
	Port            string
	BaseURL         string
	ShutdownTimeout time.Duration
}

type MySQLConfig struct {
	DSN          string
	AutoMigrate  bool
	MaxOpenConns int
	MaxIdleConns int
}

type SessionConfig struct {
	Secret  string
	CSRFKey string
	Secure  bool
	MaxAge  int
}

const (
	MailDriverLog  = "log"
	MailDriverSMTP = "smtp"
)

type MailConfig struct {
	Driver      string
	From        string
	SMTPHost    string
	SMTPPort    int
	Username    string
	Password    string
	SendTimeout time.Duration
}

type TokenConfig struct {
	ResetTTL time.Duration
}

type PasswordConfig struct {
	Policy PasswordPolicy
}

type LogConfig struct {
	Level  string
	Format string
}

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
	RequireSpecial   bool
}

func (p PasswordPolicy) Validate(password string) error {
	if len(password) < p.MinLength {
		return fmt.Errorf("password must be at least %d characters long", p.MinLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes long", MaxPasswordBytes)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasNumber = true
		case unicode.IsPunct(ch) || unicode.IsSymbol(ch):
			hasSpecial = true
		}
	}

	var missing []string
	if p.RequireUppercase && !hasUpper {
		missing = append(missing, "uppercase letter")
	}
	if p.RequireLowercase && !hasLower {
		missing = append(missing, "lowercase letter")
	}
	if p.RequireNumber && !hasNumber {
		missing = append(missing, "number")
	}
	if p.RequireSpecial && !hasSpecial {
		missing = append(missing, "special character")
	}

	if len(missing) > 0 {
		return fmt.Errorf("password must contain at least one: %s", strings.Join(missing, ", "))
	}

	return nil
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignores error if not found)
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	sessionSecret := os.Getenv("SESSION_SECRET")
	if len(sessionSecret) < 32 {
		return nil, errors.New("SESSION_SECRET environment variable is required and must be at least 32 bytes")
	}

	csrfKey := os.Getenv("CSRF_KEY")
	if len(csrfKey) != 32 {
		return nil, errors.New("CSRF_KEY environment variable is required and must be exactly 32 bytes")
	}

	mail, err := loadMailConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		HTTP: HTTPConfig{
			Host:            getEnv("HTTP_HOST", ""),
			Port:            getEnv("HTTP_PORT", "8080"),
			BaseURL:         strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
			ShutdownTimeout: getDurationEnv("HTTP_SHUTDOWN_TIMEOUT", time.Minute),
		},
		MySQL: MySQLConfig{
			DSN:          mysqlDSN,
			AutoMigrate:  getBoolEnv("MYSQL_AUTO_MIGRATE", false),
			MaxOpenConns: getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
		},
		Session: SessionConfig{
			Secret:  sessionSecret,
			CSRFKey: csrfKey,
			Secure:  getBoolEnv("SESSION_SECURE", false),
			MaxAge:  getIntEnv("SESSION_MAX_AGE", 7*24*60*60),
		},
		Mail: mail,
		Tokens: TokenConfig{
			ResetTTL: getDurationEnv("RESET_TOKEN_TTL", 1*time.Hour),
		},
		Password: PasswordConfig{
			Policy: loadPasswordPolicy(),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}, nil
}

func (c *Config) DSN() string {
	return c.MySQL.DSN
}

// ResetURL builds the link embedded in password reset emails.
func (c *Config) ResetURL(token string) string {
	return c.HTTP.BaseURL + "/reset/" + token
}

func loadMailConfig() (MailConfig, error) {
	cfg := MailConfig{
		Driver:      strings.ToLower(getEnv("MAIL_DRIVER", MailDriverLog)),
		From:        getEnv("MAIL_FROM", "no-reply@localhost"),
		SMTPHost:    getEnv("SMTP_HOST", ""),
		SMTPPort:    getIntEnv("SMTP_PORT", 587),
		Username:    getEnv("SMTP_USERNAME", ""),
		Password:    getEnv("SMTP_PASSWORD", ""),
		SendTimeout: getSecondsEnv("MAIL_SEND_TIMEOUT", 10*time.Second),
	}

	switch cfg.Driver {
	case MailDriverLog:
	case MailDriverSMTP:
		if cfg.SMTPHost == "" {
			return MailConfig{}, errors.New("SMTP_HOST environment variable is required when MAIL_DRIVER=smtp")
		}
	default:
		return MailConfig{}, fmt.Errorf("unsupported MAIL_DRIVER %q", cfg.Driver)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func loadPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:        getIntEnv("PASSWORD_MIN_LENGTH", 8),
		RequireUppercase: getBoolEnv("PASSWORD_REQUIRE_UPPERCASE", false),
		RequireLowercase: getBoolEnv("PASSWORD_REQUIRE_LOWERCASE", false),
		RequireNumber:    getBoolEnv("PASSWORD_REQUIRE_NUMBER", false),
		RequireSpecial:   getBoolEnv("PASSWORD_REQUIRE_SPECIAL", false),
	}
}
