package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort                  = "8080"
	DefaultJWTIssuer             = "mantenimiento-hotel-api"
	DefaultJWTAudience           = "mantenimiento-hotel-client"
	DefaultAccessTokenExpiryMin  = 480
	DefaultRefreshTokenExpiryMin = 10080
	DefaultLoginMaxAttempts      = 5
	DefaultLockoutWindowMinutes  = 30
	DefaultBcryptCost            = 10
	DefaultSupportContact        = "soporte.mantenimiento@hotel.example"
	DefaultLoginThrottleLimit    = 20
	DefaultLoginThrottleWindow   = 60
	DefaultLogLevel              = "info"
)

type Config struct {
	Env           string
	Port          string
	DBURL         string
	DBAutoMigrate bool
	RedisURL      string
	LogLevel      string

	JWTSecret        string
	JWTIssuer        string
	JWTAudience      string
	AccessExpiryMin  int
	RefreshExpiryMin int

	LoginMaxAttempts     int
	LockoutWindowMinutes int
	LockoutResetOnExpiry bool
	RecheckAccountStatus bool
	BcryptCost           int
	SupportContact       string

	LoginThrottleLimit      int
	LoginThrottleWindowSecs int
}

// Load reads config/.env.dev (or config/.env.prod when ENV=production) and
// then the process environment. Real environment variables always win over
// values from the file.
func Load() *Config {
	env := getEnv("ENV", "development")
	src := envSource{file: readEnvFile(env)}

	return &Config{
		Env:           env,
		Port:          src.get("PORT", DefaultPort),
		DBURL:         src.mustGet("DB_URL"),
		DBAutoMigrate: src.getBool("DB_AUTO_MIGRATE", false),
		RedisURL:      src.get("REDIS_URL", ""),
		LogLevel:      src.get("LOG_LEVEL", DefaultLogLevel),

		JWTSecret:        src.mustGet("JWT_SECRET"),
		JWTIssuer:        src.get("JWT_ISSUER", DefaultJWTIssuer),
		JWTAudience:      src.get("JWT_AUDIENCE", DefaultJWTAudience),
		AccessExpiryMin:  src.getInt("ACCESS_TOKEN_EXPIRY", DefaultAccessTokenExpiryMin),
		RefreshExpiryMin: src.getInt("REFRESH_TOKEN_EXPIRY", DefaultRefreshTokenExpiryMin),

		LoginMaxAttempts:     src.getInt("LOGIN_MAX_ATTEMPTS", DefaultLoginMaxAttempts),
		LockoutWindowMinutes: src.getInt("LOCKOUT_WINDOW_MINUTES", DefaultLockoutWindowMinutes),
		LockoutResetOnExpiry: src.getBool("LOCKOUT_RESET_ON_EXPIRY", false),
		RecheckAccountStatus: src.getBool("AUTH_RECHECK_ACCOUNT", true),
		BcryptCost:           src.getInt("BCRYPT_COST", DefaultBcryptCost),
		SupportContact:       src.get("SUPPORT_CONTACT", DefaultSupportContact),

		LoginThrottleLimit:      src.getInt("LOGIN_THROTTLE_LIMIT", DefaultLoginThrottleLimit),
		LoginThrottleWindowSecs: src.getInt("LOGIN_THROTTLE_WINDOW_SECONDS", DefaultLoginThrottleWindow),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessExpiryMin) * time.Minute
}

func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshExpiryMin) * time.Minute
}

func (c *Config) LockoutWindow() time.Duration {
	return time.Duration(c.LockoutWindowMinutes) * time.Minute
}

func (c *Config) LoginThrottleWindow() time.Duration {
	return time.Duration(c.LoginThrottleWindowSecs) * time.Second
}

func readEnvFile(env string) map[string]string {
	name := ".env.dev"
	if env == "production" {
		name = ".env.prod"
	}
	path := filepath.Join("config", name)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		log.Printf("Could not read %s: %v", path, err)
		return nil
	}
	return values
}

// envSource resolves keys from the process environment first and the parsed
// env file second.
type envSource struct {
	file map[string]string
}

func (s envSource) lookup(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return s.file[key]
}

func (s envSource) get(key string, defaultVal string) string {
	if value := s.lookup(key); value != "" {
		return value
	}
	return defaultVal
}

func (s envSource) mustGet(key string) string {
	if value := s.lookup(key); value != "" {
		return value
	}
	log.Fatalf("Missing required config: %s", key)
	return ""
}

func (s envSource) getInt(key string, defaultVal int) int {
	valStr := s.lookup(key)
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

func (s envSource) getBool(key string, defaultVal bool) bool {
	valStr := strings.TrimSpace(s.lookup(key))
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

func getEnv(key string, defaultVal string) string {
	return envSource{}.get(key, defaultVal)
}
