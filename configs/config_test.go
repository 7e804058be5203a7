package config

import (
	"net/url"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "CORS_ORIGINS", "DB_DRIVER", "DB_NAME", "DATABASE_URL", "MONGODB_URI",
		"DB_USER", "DB_PASS", "DB_CLUSTER", "DB_TIMEOUT", "ACCESS_TOKEN_SECRET", "TOKEN_TTL",
		"OVERBOOKING_ALLOWED", "ADMIN_EMAIL", "RECONCILE_SCHEDULE", "CLOUDINARY_URL",
		"BREVO_API_KEY", "EMAIL_SENDER", "EMAIL_SENDER_NAME",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "memory")

	s, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.Port != "5000" || s.DBName != "linguisticHorizons" || s.CORSOrigins != "*" {
		t.Errorf("defaults = %+v", s)
	}
	if s.DBTimeout != 10*time.Second || s.TokenTTL != time.Hour || s.OverbookingAllowed {
		t.Errorf("defaults = %+v", s)
	}
	if s.ReconcileSchedule != "@every 30m" || s.EmailSenderName != "Linguistic Horizons" {
		t.Errorf("defaults = %+v", s)
	}
}

func TestLoadBuildsMongoURI(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")
	t.Setenv("DB_USER", "lh")
	t.Setenv("DB_PASS", "pw")

	s, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.DBDriver != "mongodb" {
		t.Errorf("driver = %q", s.DBDriver)
	}
	if !strings.HasPrefix(s.MongoURI, "mongodb+srv://lh:pw@cluster0.gchp2yo.mongodb.net/") {
		t.Errorf("uri = %q", s.MongoURI)
	}
}

func TestLoadEscapesMongoCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")
	t.Setenv("DB_USER", "lh admin")
	t.Setenv("DB_PASS", "p@ss:w/rd?#")

	s, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	u, err := url.Parse(s.MongoURI)
	if err != nil {
		t.Fatalf("uri %q does not parse: %v", s.MongoURI, err)
	}
	pass, _ := u.User.Password()
	if u.User.Username() != "lh admin" || pass != "p@ss:w/rd?#" {
		t.Errorf("credentials = %q / %q", u.User.Username(), pass)
	}
	if u.Host != "cluster0.gchp2yo.mongodb.net" {
		t.Errorf("host = %q", u.Host)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "no secret", env: map[string]string{"DB_DRIVER": "memory"}},
		{name: "mongo without uri", env: map[string]string{"ACCESS_TOKEN_SECRET": "x"}},
		{name: "postgres without dsn", env: map[string]string{"ACCESS_TOKEN_SECRET": "x", "DB_DRIVER": "postgres"}},
		{name: "unknown driver", env: map[string]string{"ACCESS_TOKEN_SECRET": "x", "DB_DRIVER": "sqlite"}},
		{name: "bad overbooking", env: map[string]string{"ACCESS_TOKEN_SECRET": "x", "DB_DRIVER": "memory", "OVERBOOKING_ALLOWED": "maybe"}},
		{name: "bad timeout", env: map[string]string{"ACCESS_TOKEN_SECRET": "x", "DB_DRIVER": "memory", "DB_TIMEOUT": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
