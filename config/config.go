// Package config loads the server settings from a YAML file, a .env file and
// the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageFirestore = "firestore"
	StorageMemory    = "memory"

	AuthFirebase = "firebase"
	AuthJWT      = "jwt"
)

type Config struct {
	Server struct {
		Addr        string   `yaml:"addr"`
		LoginPath   string   `yaml:"login_path"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`

	Storage struct {
		Driver string `yaml:"driver"`
	} `yaml:"storage"`

	Firebase struct {
		CredentialsFile string `yaml:"credentials_file"`
		ProjectID       string `yaml:"project_id"`
	} `yaml:"firebase"`

	Auth struct {
		Mode      string `yaml:"mode"`
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`

	Timer struct {
		DBPath string        `yaml:"db_path"`
		Tick   time.Duration `yaml:"tick"`
	} `yaml:"timer"`

	Notes struct {
		AutosaveDelay time.Duration `yaml:"autosave_delay"`
	} `yaml:"notes"`

	Dashboard struct {
		UpcomingLimit int `yaml:"upcoming_limit"`
	} `yaml:"dashboard"`

	Timezone string `yaml:"timezone"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func Default() Config {
	var c Config
	c.Server.Addr = ":8080"
	c.Server.LoginPath = "/login"
	c.Storage.Driver = StorageFirestore
	c.Auth.Mode = AuthFirebase
	c.Timer.DBPath = "studybuddy-timer.db"
	c.Timer.Tick = time.Second
	c.Notes.AutosaveDelay = time.Second
	c.Dashboard.UpcomingLimit = 5
	c.Timezone = "Local"
	c.Log.Level = "info"
	c.Log.Format = "text"
	return c
}

// Load reads path (optional) over the defaults, then applies .env and the
// environment. Callers validate what they need.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return c, fmt.Errorf("load .env: %w", err)
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return c, err
	}
	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("STUDYBUDDY_ADDR", &c.Server.Addr)
	str("PORT", &c.Server.Addr)
	str("STUDYBUDDY_LOGIN_PATH", &c.Server.LoginPath)
	str("STUDYBUDDY_STORAGE", &c.Storage.Driver)
	str("GOOGLE_APPLICATION_CREDENTIALS", &c.Firebase.CredentialsFile)
	str("FIREBASE_PROJECT_ID", &c.Firebase.ProjectID)
	str("STUDYBUDDY_AUTH_MODE", &c.Auth.Mode)
	str("JWT_SECRET_KEY", &c.Auth.JWTSecret)
	str("STUDYBUDDY_TIMER_DB", &c.Timer.DBPath)
	str("STUDYBUDDY_TIMEZONE", &c.Timezone)
	str("STUDYBUDDY_LOG_LEVEL", &c.Log.Level)
	str("STUDYBUDDY_LOG_FORMAT", &c.Log.Format)

	if v, ok := lookup("STUDYBUDDY_CORS_ORIGINS"); ok && v != "" {
		c.Server.CORSOrigins = strings.Split(v, ",")
	}
	if v, ok := lookup("STUDYBUDDY_AUTOSAVE_DELAY"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("STUDYBUDDY_AUTOSAVE_DELAY: %w", err)
		}
		c.Notes.AutosaveDelay = d
	}
	if v, ok := lookup("STUDYBUDDY_UPCOMING_LIMIT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STUDYBUDDY_UPCOMING_LIMIT: %w", err)
		}
		c.Dashboard.UpcomingLimit = n
	}
	// Hosting platforms hand out a bare port number.
	if _, err := strconv.Atoi(c.Server.Addr); err == nil {
		c.Server.Addr = ":" + c.Server.Addr
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Storage.Driver {
	case StorageFirestore, StorageMemory:
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", StorageFirestore, StorageMemory, c.Storage.Driver)
	}
	switch c.Auth.Mode {
	case AuthFirebase:
	case AuthJWT:
		if c.Auth.JWTSecret == "" {
			return errors.New("auth.mode jwt needs auth.jwt_secret")
		}
	default:
		return fmt.Errorf("auth.mode must be %q or %q, got %q", AuthFirebase, AuthJWT, c.Auth.Mode)
	}
	if c.NeedsFirebase() && c.Firebase.CredentialsFile == "" {
		return errors.New("firestore storage and firebase auth need firebase.credentials_file")
	}
	if c.Timer.Tick <= 0 || c.Notes.AutosaveDelay <= 0 {
		return errors.New("timer.tick and notes.autosave_delay must be positive")
	}
	if c.Dashboard.UpcomingLimit <= 0 {
		return errors.New("dashboard.upcoming_limit must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// NeedsFirebase reports whether the server has to initialize a Firebase app.
func (c Config) NeedsFirebase() bool {
	return c.Storage.Driver == StorageFirestore || c.Auth.Mode == AuthFirebase
}

func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return level, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Logger builds the process logger.
func (c Config) Logger() *slog.Logger {
	level, _ := c.LogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
