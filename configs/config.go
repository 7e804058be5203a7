package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var loadEnvOnce sync.Once

// Config returns the value of key, reading .env into the process
// environment the first time it is called.
func Config(key string) string {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("Warning: .env file not found, reading from system environment variables")
		}
	})

	return os.Getenv(key)
}

type Settings struct {
	Port        string
	CORSOrigins string

	DBDriver    string
	MongoURI    string
	DBName      string
	PostgresDSN string
	DBTimeout   time.Duration

	AccessTokenSecret string
	TokenTTL          time.Duration

	OverbookingAllowed bool
	AdminEmail         string
	ReconcileSchedule  string
	CloudinaryURL      string

	BrevoAPIKey     string
	EmailSender     string
	EmailSenderName string
}

func Load() (*Settings, error) {
	s := &Settings{
		Port:              withDefault(Config("PORT"), "5000"),
		CORSOrigins:       withDefault(Config("CORS_ORIGINS"), "*"),
		DBDriver:          strings.ToLower(withDefault(Config("DB_DRIVER"), "mongodb")),
		DBName:            withDefault(Config("DB_NAME"), "linguisticHorizons"),
		PostgresDSN:       Config("DATABASE_URL"),
		AccessTokenSecret: Config("ACCESS_TOKEN_SECRET"),
		AdminEmail:        Config("ADMIN_EMAIL"),
		ReconcileSchedule: withDefault(Config("RECONCILE_SCHEDULE"), "@every 30m"),
		CloudinaryURL:     Config("CLOUDINARY_URL"),
		BrevoAPIKey:       Config("BREVO_API_KEY"),
		EmailSender:       Config("EMAIL_SENDER"),
		EmailSenderName:   withDefault(Config("EMAIL_SENDER_NAME"), "Linguistic Horizons"),
	}

	var err error
	if s.DBTimeout, err = durationOr(Config("DB_TIMEOUT"), 10*time.Second); err != nil {
		return nil, fmt.Errorf("DB_TIMEOUT: %w", err)
	}
	if s.TokenTTL, err = durationOr(Config("TOKEN_TTL"), time.Hour); err != nil {
		return nil, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	if raw := Config("OVERBOOKING_ALLOWED"); raw != "" {
		if s.OverbookingAllowed, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("OVERBOOKING_ALLOWED: %w", err)
		}
	}

	s.MongoURI = Config("MONGODB_URI")
	if s.MongoURI == "" && Config("DB_USER") != "" {
		cluster := withDefault(Config("DB_CLUSTER"), "cluster0.gchp2yo.mongodb.net")
		creds := url.UserPassword(Config("DB_USER"), Config("DB_PASS"))
		s.MongoURI = fmt.Sprintf("mongodb+srv://%s@%s/?retryWrites=true&w=majority", creds.String(), cluster)
	}

	if s.AccessTokenSecret == "" {
		return nil, fmt.Errorf("ACCESS_TOKEN_SECRET is not set")
	}

	switch s.DBDriver {
	case "mongodb":
		if s.MongoURI == "" {
			return nil, fmt.Errorf("mongodb driver needs MONGODB_URI or DB_USER/DB_PASS")
		}
	case "postgres":
		if s.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres driver needs DATABASE_URL")
		}
	case "memory":
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", s.DBDriver)
	}

	return s, nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func durationOr(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	return time.ParseDuration(raw)
}
