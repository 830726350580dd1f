package config

import (
	"log"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/joho/godotenv"
)

const (
	DefaultAccessTokenExpiryMin  = 15
	DefaultRefreshTokenExpiryMin = 20
	DefaultLoginMaxAttempts      = 5
	DefaultLoginWindowMin        = 15
	DefaultLoginCacheSize        = 10000
	DefaultMaxActiveSessions     = 5
	DefaultCleanupIntervalMin    = 60
	DefaultResetTokenExpiryMin   = 60
)

// MaintenanceFlag is a runtime-mutable switch. It is injected where needed so
// nothing reads ambient process state to make an access decision.
type MaintenanceFlag struct {
	v atomic.Bool
}

func (f *MaintenanceFlag) Enabled() bool { return f.v.Load() }
func (f *MaintenanceFlag) Set(on bool)   { f.v.Store(on) }

type Config struct {
	Env                string
	Port               string
	DBURL              string
	AccessTokenSecret  string
	RefreshTokenSecret string
	AdminEmail         string

	AccessExpiryMin  int
	RefreshExpiryMin int
	ResetExpiryMin   int

	LoginMaxAttempts   int
	LoginWindowMin     int
	LoginCacheSize     int
	MaxActiveSessions  int
	CleanupIntervalMin int

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	ResetURLBase string

	Maintenance MaintenanceFlag
}

func Load() *Config {
	env := getEnv("ENV", "development")

	envFile := "config/.env.dev"
	if env == "production" {
		envFile = "config/.env.prod"
	}
	// Missing env file is fine; real env vars still apply.
	_ = godotenv.Load(envFile)

	cfg := &Config{
		Env:                env,
		Port:               getEnv("PORT", "8080"),
		DBURL:              mustGetEnv("DB_URL"),
		AccessTokenSecret:  mustGetEnv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: mustGetEnv("REFRESH_TOKEN_SECRET"),
		AdminEmail:         mustGetEnv("ADMIN_EMAIL"),
		AccessExpiryMin:    getEnvAsInt("ACCESS_TOKEN_EXPIRY", DefaultAccessTokenExpiryMin),
		RefreshExpiryMin:   getEnvAsInt("REFRESH_TOKEN_EXPIRY", DefaultRefreshTokenExpiryMin),
		ResetExpiryMin:     getEnvAsInt("RESET_TOKEN_EXPIRY", DefaultResetTokenExpiryMin),
		LoginMaxAttempts:   getEnvAsInt("LOGIN_MAX_ATTEMPTS", DefaultLoginMaxAttempts),
		LoginWindowMin:     getEnvAsInt("LOGIN_ATTEMPT_WINDOW", DefaultLoginWindowMin),
		LoginCacheSize:     getEnvAsInt("LOGIN_ATTEMPT_CACHE_SIZE", DefaultLoginCacheSize),
		MaxActiveSessions:  getEnvAsInt("MAX_ACTIVE_SESSIONS", DefaultMaxActiveSessions),
		CleanupIntervalMin: getEnvAsInt("CLEANUP_INTERVAL", DefaultCleanupIntervalMin),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:           getEnv("SMTP_USER", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		MailFrom:           getEnv("MAIL_FROM", "no-reply@localhost"),
		ResetURLBase:       getEnv("RESET_URL_BASE", "http://localhost:3000/reset-password"),
	}
	cfg.Maintenance.Set(getEnvAsBool("MAINTENANCE_MODE", false))

	return cfg
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Fatalf("Missing required environment variable: %s", key)
	return ""
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %t", key, defaultVal)
		return defaultVal
	}
	return val
}
