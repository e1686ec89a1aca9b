package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is read once at startup and passed around by value; nothing
// mutates it afterwards.
type Config struct {
	Env  string
	Port int

	DBURL string

	JWTSecret           string
	JWTAlgorithm        string
	JWTAccessTTLMinutes int

	CORSOrigins []string

	// first superuser, seeded at startup when all three are set
	AdminUsername string
	AdminEmail    string
	AdminPassword string

	OTELEndpoint string
}

func Load() Config {
	// best effort; env vars win over the file
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 8080)

	dbURL := getEnv("DATABASE_URL", "")

	if dbURL == "" {
		dbURL = buildDBURL()
	}

	return Config{
		Env:                 env,
		Port:                port,
		DBURL:               dbURL,
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTAlgorithm:        getEnv("JWT_ALGORITHM", "HS256"),
		JWTAccessTTLMinutes: getEnvInt("JWT_ACCESS_TTL_MINUTES", 60*24*7),
		CORSOrigins:         getEnvList("CORS_ORIGINS", nil),
		AdminUsername:       getEnv("ADMIN_USERNAME", ""),
		AdminEmail:          getEnv("ADMIN_EMAIL", ""),
		AdminPassword:       getEnv("ADMIN_PASSWORD", ""),
		OTELEndpoint:        getEnv("OTEL_EXPORTER_ENDPOINT", ""),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "accounthub")
	pass := getEnv("DB_PASSWORD", "accounthub")
	name := getEnv("DB_NAME", "accounthub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.JWTAccessTTLMinutes) * time.Minute
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)

	if v == "" {
		return fallback
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
