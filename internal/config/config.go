// Package config loads the settings shared by every orca command.
//
// Values come from defaults, then an optional YAML or JSON file, then ORCA_*
// environment variables. Command flags are applied last by the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/orca/pkg/dispatch"
)

// DefaultFile is read when no --config flag is given. It may be absent.
const DefaultFile = "orca.yaml"

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Duration reads "15m" style values from YAML, JSON and the environment.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config holds every setting.
type Config struct {
	LogLevel        string `yaml:"log_level" json:"log_level"`
	Catalog         string `yaml:"catalog" json:"catalog"`
	MinimumQuantity int    `yaml:"minimum_quantity" json:"minimum_quantity"`
	Profile         string `yaml:"profile" json:"profile"`

	Store         StoreConfig         `yaml:"store" json:"store"`
	HTTP          HTTPConfig          `yaml:"http" json:"http"`
	Intake        IntakeConfig        `yaml:"intake" json:"intake"`
	Collaborators CollaboratorsConfig `yaml:"collaborators" json:"collaborators"`
	Business      dispatch.Business   `yaml:"business" json:"business"`
}

type StoreConfig struct {
	Backend       string `yaml:"backend" json:"backend"`
	Path          string `yaml:"path" json:"path"`
	RedisAddr     string `yaml:"redis_addr" json:"redis_addr"`
	RedisPassword string `yaml:"redis_password" json:"redis_password"`
	RedisDB       int    `yaml:"redis_db" json:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix" json:"redis_prefix"`
	// SessionTTL expires idle redis sessions. Zero keeps them.
	SessionTTL Duration `yaml:"session_ttl" json:"session_ttl"`
	// EncryptionKey seals stored sessions when set. See middleware.DeriveKey.
	EncryptionKey string   `yaml:"encryption_key" json:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys" json:"fallback_keys"`
	MaskPII       bool     `yaml:"mask_pii" json:"mask_pii"`
}

type HTTPConfig struct {
	Addr           string   `yaml:"addr" json:"addr"`
	JWTSecret      string   `yaml:"jwt_secret" json:"jwt_secret"`
	TokenTTL       Duration `yaml:"token_ttl" json:"token_ttl"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
}

type IntakeConfig struct {
	Addr         string   `yaml:"addr" json:"addr"`
	SendGridKey  string   `yaml:"sendgrid_key" json:"sendgrid_key"`
	SendGridHost string   `yaml:"sendgrid_host" json:"sendgrid_host"`
	RateLimit    int      `yaml:"rate_limit" json:"rate_limit"`
	RateWindow   Duration `yaml:"rate_window" json:"rate_window"`
	// RedisLimiter shares the rate limit across instances through the store's redis.
	RedisLimiter bool `yaml:"redis_limiter" json:"redis_limiter"`
}

type CollaboratorsConfig struct {
	ClassifierURL string   `yaml:"classifier_url" json:"classifier_url"`
	OrderURL      string   `yaml:"order_url" json:"order_url"`
	Timeout       Duration `yaml:"timeout" json:"timeout"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		LogLevel:        "info",
		MinimumQuantity: 50,
		Store: StoreConfig{
			Backend:     StoreFile,
			Path:        ".orca/sessions",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "orca:",
		},
		HTTP: HTTPConfig{
			Addr:     "localhost:8080",
			TokenTTL: Duration(24 * time.Hour),
		},
		Intake: IntakeConfig{
			Addr:         "localhost:8081",
			SendGridHost: "https://api.sendgrid.com",
			RateLimit:    5,
			RateWindow:   Duration(15 * time.Minute),
		},
		Collaborators: CollaboratorsConfig{
			Timeout: Duration(15 * time.Second),
		},
		Business: dispatch.DefaultBusiness(),
	}
}

// Load builds the configuration from path and the environment. A missing
// file is not an error when path is the default one.
func Load(path string) (*Config, error) {
	cfg := Default()

	file := path
	if file == "" {
		file = DefaultFile
	}
	if err := cfg.readFile(file); err != nil {
		if !(path == "" && errors.Is(err, fs.ErrNotExist)) {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		return fmt.Errorf("config %s: unsupported format", path)
	}
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides values with ORCA_* variables.
func (c *Config) applyEnv() error {
	c.LogLevel = getEnv("ORCA_LOG_LEVEL", c.LogLevel)
	c.Catalog = getEnv("ORCA_CATALOG", c.Catalog)
	c.Profile = getEnv("ORCA_PROFILE", c.Profile)

	c.Store.Backend = getEnv("ORCA_STORE", c.Store.Backend)
	c.Store.Path = getEnv("ORCA_STORE_PATH", c.Store.Path)
	c.Store.RedisAddr = getEnv("ORCA_REDIS_ADDR", c.Store.RedisAddr)
	c.Store.RedisPassword = getEnv("ORCA_REDIS_PASSWORD", c.Store.RedisPassword)
	c.Store.RedisPrefix = getEnv("ORCA_REDIS_PREFIX", c.Store.RedisPrefix)
	c.Store.EncryptionKey = getEnv("ORCA_ENCRYPTION_KEY", c.Store.EncryptionKey)
	c.Store.FallbackKeys = getEnvList("ORCA_ENCRYPTION_FALLBACK_KEYS", c.Store.FallbackKeys)

	c.HTTP.Addr = getEnv("ORCA_HTTP_ADDR", c.HTTP.Addr)
	c.HTTP.JWTSecret = getEnv("ORCA_JWT_SECRET", c.HTTP.JWTSecret)
	c.HTTP.AllowedOrigins = getEnvList("ORCA_ALLOWED_ORIGINS", c.HTTP.AllowedOrigins)

	c.Intake.Addr = getEnv("ORCA_INTAKE_ADDR", c.Intake.Addr)
	c.Intake.SendGridKey = getEnv("SENDGRID_API_KEY", c.Intake.SendGridKey)
	c.Intake.SendGridKey = getEnv("ORCA_SENDGRID_KEY", c.Intake.SendGridKey)
	c.Intake.SendGridHost = getEnv("ORCA_SENDGRID_HOST", c.Intake.SendGridHost)

	c.Collaborators.ClassifierURL = getEnv("ORCA_CLASSIFIER_URL", c.Collaborators.ClassifierURL)
	c.Collaborators.OrderURL = getEnv("ORCA_ORDER_URL", c.Collaborators.OrderURL)

	c.Business.Email = getEnv("ORCA_BUSINESS_EMAIL", c.Business.Email)
	c.Business.Phone = getEnv("ORCA_BUSINESS_PHONE", c.Business.Phone)
	c.Business.WhatsAppNumber = getEnv("ORCA_WHATSAPP_NUMBER", c.Business.WhatsAppNumber)

	var err error
	if c.MinimumQuantity, err = getEnvInt("ORCA_MIN_QUANTITY", c.MinimumQuantity); err != nil {
		return err
	}
	if c.Store.RedisDB, err = getEnvInt("ORCA_REDIS_DB", c.Store.RedisDB); err != nil {
		return err
	}
	if c.Intake.RateLimit, err = getEnvInt("ORCA_RATE_LIMIT", c.Intake.RateLimit); err != nil {
		return err
	}
	if c.Store.MaskPII, err = getEnvBool("ORCA_MASK_PII", c.Store.MaskPII); err != nil {
		return err
	}
	if c.Intake.RedisLimiter, err = getEnvBool("ORCA_REDIS_LIMITER", c.Intake.RedisLimiter); err != nil {
		return err
	}
	for key, d := range map[string]*Duration{
		"ORCA_SESSION_TTL":           &c.Store.SessionTTL,
		"ORCA_TOKEN_TTL":             &c.HTTP.TokenTTL,
		"ORCA_RATE_WINDOW":           &c.Intake.RateWindow,
		"ORCA_COLLABORATORS_TIMEOUT": &c.Collaborators.Timeout,
	} {
		if v, ok := os.LookupEnv(key); ok {
			if err := d.UnmarshalText([]byte(v)); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}
	}
	return nil
}

// Validate rejects settings no command could run with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown store backend %q (want memory, file or redis)", c.Store.Backend)
	}
	if c.Store.Backend == StoreFile && c.Store.Path == "" {
		return errors.New("file store requires a path")
	}
	if c.MinimumQuantity < 1 {
		return fmt.Errorf("minimum quantity must be positive, got %d", c.MinimumQuantity)
	}
	if c.Intake.RateLimit < 1 || c.Intake.RateWindow <= 0 {
		return errors.New("rate limit and window must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
