// Package config loads the server and command line configuration.
//
// Settings come from an optional HCL file; environment variables win over the
// file. The file may read the environment itself through the env object:
//
//	port       = 8080
//	db_path    = "./data/bills.db"
//	jwt_secret = env.SPLITT_SECRET
//	currency   = "EUR"
//
//	receipt {
//	  provider = "gemini"
//	  api_key  = env.GEMINI_API_KEY
//	}
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

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/mmynk/splitt/internal/amount"
	"github.com/mmynk/splitt/internal/receipt"
	"github.com/mmynk/splitt/pkg/logging"
)

// DevSecret is the token signing secret used when none is configured.
const DevSecret = "splitt-dev-secret"

// Config holds every setting of the server and the command line.
type Config struct {
	Port       int    `hcl:"port,optional"`
	DBPath     string `hcl:"db_path,optional"`
	StaticPath string `hcl:"static_path,optional"`
	LogLevel   string `hcl:"log_level,optional"`
	JWTSecret  string `hcl:"jwt_secret,optional"`
	TokenTTL   string `hcl:"token_ttl,optional"`
	Currency   string `hcl:"currency,optional"`

	Receipt *Receipt `hcl:"receipt,block"`
}

// Receipt configures the receipt parser.
type Receipt struct {
	Provider string `hcl:"provider,optional"`
	Endpoint string `hcl:"endpoint,optional"`
	APIKey   string `hcl:"api_key,optional"`
	Model    string `hcl:"model,optional"`

	Paths *Paths `hcl:"paths,block"`
}

// Paths overrides the JSONPath expressions used on receipt service answers.
type Paths struct {
	Items string `hcl:"items,optional"`
	Name  string `hcl:"name,optional"`
	Price string `hcl:"price,optional"`
	Tax   string `hcl:"tax,optional"`
	Tip   string `hcl:"tip,optional"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Port:       8080,
		DBPath:     "./data/bills.db",
		StaticPath: "../frontend/static",
		LogLevel:   "info",
		JWTSecret:  DevSecret,
		TokenTTL:   "720h",
		Currency:   string(amount.DefaultCurrency),
		Receipt:    &Receipt{},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Load reads the file at path, if any, and applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		src, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("No config file, using defaults", "path", path)
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := Parse(cfg, path, src); err != nil {
				return nil, err
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Parse decodes HCL source into cfg. Attributes absent from src keep their
// current value.
func Parse(cfg *Config, filename string, src []byte) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse config file %s: %w", filename, diags)
	}

	diags = gohcl.DecodeBody(file.Body, evalContext(), cfg)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode config file %s: %w", filename, diags)
	}
	if cfg.Receipt == nil {
		cfg.Receipt = &Receipt{}
	}
	return nil
}

// evalContext exposes the process environment as the env object.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}

func (c *Config) applyEnv() error {
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		c.Port = p
	}
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.StaticPath = getEnv("STATIC_PATH", c.StaticPath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.Currency = getEnv("CURRENCY", c.Currency)

	if endpoint := os.Getenv("RECEIPT_ENDPOINT"); endpoint != "" {
		c.Receipt.Endpoint = endpoint
		if c.Receipt.Provider == receipt.ProviderNone {
			c.Receipt.Provider = receipt.ProviderHTTP
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		if c.Receipt.Provider == receipt.ProviderNone {
			c.Receipt.Provider = receipt.ProviderGemini
		}
		if c.Receipt.Provider == receipt.ProviderGemini {
			c.Receipt.APIKey = key
		}
	}
	return nil
}

// Validate checks values that cannot be checked by decoding alone.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if _, err := c.TokenDuration(); err != nil {
		return err
	}
	if !amount.Valid(c.Currency) {
		return fmt.Errorf("unknown currency %q", c.Currency)
	}
	return nil
}

// TokenDuration is how long bill edit tokens stay valid.
func (c *Config) TokenDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.TokenTTL)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid token_ttl %q", c.TokenTTL)
	}
	return d, nil
}

// Level is the configured slog level.
func (c *Config) Level() slog.Level {
	return logging.ParseLevel(c.LogLevel)
}

// ReceiptConfig converts the receipt block for receipt.NewParser.
func (c *Config) ReceiptConfig() receipt.Config {
	r := c.Receipt
	if r == nil {
		return receipt.Config{}
	}
	cfg := receipt.Config{
		Provider: r.Provider,
		Endpoint: r.Endpoint,
		APIKey:   r.APIKey,
		Model:    r.Model,
	}
	if r.Paths != nil {
		cfg.Paths = receipt.Paths{
			Items: r.Paths.Items,
			Name:  r.Paths.Name,
			Price: r.Paths.Price,
			Tax:   r.Paths.Tax,
			Tip:   r.Paths.Tip,
		}
	}
	return cfg
}
