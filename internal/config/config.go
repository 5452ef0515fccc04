// Package config loads punchctl settings from a YAML file, a .env file and
// PUNCHCTL_* environment variables, in increasing order of precedence, and
// checks the result against an embedded CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// DefaultBaseURL is the production attendance backend.
const DefaultBaseURL = "https://punching.imcbs.com/api"

// Config holds all configurable values for the client.
type Config struct {
	BaseURL      string        `yaml:"base_url"`
	SessionDB    string        `yaml:"session_db"`
	Env          string        `yaml:"env"`
	Timeout      time.Duration `yaml:"timeout"`
	Timezone     string        `yaml:"timezone"`
	PageSize     int           `yaml:"page_size"`
	StrictDecode bool          `yaml:"strict_decode"`
	ClientID     string        `yaml:"client_id"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		SessionDB: defaultSessionDB(),
		Env:       "production",
		Timezone:  "Asia/Kolkata",
		PageSize:  10,
	}
}

func defaultSessionDB() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "punchctl-session.db"
	}
	return filepath.Join(dir, "punchctl", "session.db")
}

// DefaultPath is where Load looks when no file is named.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "punchctl", "config.yaml")
}

// Load builds the configuration. An explicitly named file must exist; the
// default file is optional. A .env file in the working directory is read
// if present and never overrides variables already set.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	file, required := path, true
	if file == "" {
		file, required = DefaultPath(), false
	}
	if file != "" {
		if err := cfg.readFile(file, required); err != nil {
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

func (c *Config) readFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Reject unknown keys so a typo does not silently fall back to a default.
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("PUNCHCTL_BASE_URL", &c.BaseURL)
	setString("PUNCHCTL_SESSION_DB", &c.SessionDB)
	setString("PUNCHCTL_ENV", &c.Env)
	setString("PUNCHCTL_TIMEZONE", &c.Timezone)
	setString("PUNCHCTL_CLIENT_ID", &c.ClientID)

	if v := os.Getenv("PUNCHCTL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PUNCHCTL_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("PUNCHCTL_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PUNCHCTL_PAGE_SIZE: %w", err)
		}
		c.PageSize = n
	}
	if v := os.Getenv("PUNCHCTL_STRICT_DECODE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid PUNCHCTL_STRICT_DECODE: %w", err)
		}
		c.StrictDecode = b
	}
	return nil
}

// Validate checks c against the embedded CUE schema and that the timezone
// resolves.
func (c *Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}

	value := ctx.Encode(map[string]any{
		"base_url":        c.BaseURL,
		"session_db":      c.SessionDB,
		"env":             c.Env,
		"timeout_seconds": c.Timeout.Seconds(),
		"timezone":        c.Timezone,
		"page_size":       c.PageSize,
		"strict_decode":   c.StrictDecode,
		"client_id":       c.ClientID,
	})
	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location resolves Timezone. "IST" and "Asia/Kolkata" never need the
// system zone database.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "IST", "Asia/Kolkata":
		return time.FixedZone("IST", 5*60*60+30*60), nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
