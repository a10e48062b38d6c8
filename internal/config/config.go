// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/jeranaias/rbac-console/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the root configuration structure.
type Config struct {
	Version string        `toml:"version" json:"version"`
	API     APIConfig     `toml:"api" json:"api"`
	Session SessionConfig `toml:"session" json:"session"`
	Log     LogConfig     `toml:"log" json:"log"`
	UI      UIConfig      `toml:"ui" json:"ui"`
}

// APIConfig configures the gateway client.
type APIConfig struct {
	// BaseURL is the API base path every operation path is joined onto.
	BaseURL string `toml:"base_url" json:"base_url"`

	// TimeoutSecs bounds a single request. 0 means no client-side timeout.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`

	// MaxRequestsPerSecond paces outbound calls. 0 disables pacing.
	MaxRequestsPerSecond float64 `toml:"max_requests_per_second" json:"max_requests_per_second"`

	// RequestIDs adds an X-Request-ID header to every call.
	RequestIDs bool `toml:"request_ids" json:"request_ids"`

	UserAgent string `toml:"user_agent" json:"user_agent"`
}

// SessionConfig selects where the session token and cached user live.
type SessionConfig struct {
	// Backend is one of: file, sqlite, memory.
	Backend string `toml:"backend" json:"backend"`

	// Path overrides the backend file location. Empty uses the config dir.
	Path string `toml:"path" json:"path"`

	// Encrypt seals the file backend with AES-256-GCM.
	Encrypt bool `toml:"encrypt" json:"encrypt"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string `toml:"level" json:"level"`
	Pretty bool   `toml:"pretty" json:"pretty"`
	File   string `toml:"file" json:"file"`
}

// UIConfig configures the terminal interface.
type UIConfig struct {
	// Theme is auto, dark or light.
	Theme string `toml:"theme" json:"theme"`

	// RedirectDelayMs is how long the login view shows its success message
	// before navigating to the role's console.
	RedirectDelayMs int `toml:"redirect_delay_ms" json:"redirect_delay_ms"`
}

// Session backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// CurrentVersion is written into new config files.
const CurrentVersion = "1"

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		API: APIConfig{
			BaseURL:              "http://localhost:8000/api",
			TimeoutSecs:          0,
			MaxRequestsPerSecond: 0,
			RequestIDs:           false,
			UserAgent:            "rbac-console",
		},
		Session: SessionConfig{
			Backend: BackendFile,
			Encrypt: true,
		},
		Log: LogConfig{
			Level: "warn",
		},
		UI: UIConfig{
			Theme:           "auto",
			RedirectDelayMs: 1500,
		},
	}
}

// Timeout returns the per-request timeout, zero when disabled.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// RedirectDelay returns the deferred navigation delay.
func (u UIConfig) RedirectDelay() time.Duration {
	return time.Duration(u.RedirectDelayMs) * time.Millisecond
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the configuration directory, ~/.rbac-console unless
// RBAC_CONSOLE_HOME is set.
func ConfigDir() (string, error) {
	if dir := os.Getenv("RBAC_CONSOLE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".rbac-console"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir creates the config directory with owner-only access.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// SessionPath returns the session file for the configured backend.
func (c *Config) SessionPath() (string, error) {
	if c.Session.Path != "" {
		return c.Session.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if c.Session.Backend == BackendSQLite {
		return filepath.Join(dir, "session.db"), nil
	}
	return filepath.Join(dir, "session.json"), nil
}

// KeyPath returns the path of the session sealing key.
func KeyPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.key"), nil
}

// ensureSecurePermissions tightens a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the TOML file, else the JSON file, else defaults, then applies
// environment overrides, migration, defaults and validation.
//
// A file that exists but fails to decode does not abort: defaults are used
// and the decode error is returned alongside the usable config.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := Default()
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil && fileExists(tomlPath) {
		if err := LoadTOML(cfg, tomlPath); err != nil {
			loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			cfg = Default()
		} else {
			return finish(cfg)
		}
	} else if jsonPath, err := ConfigPathJSON(); err == nil && fileExists(jsonPath) {
		if err := LoadJSON(cfg, jsonPath); err != nil {
			loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			cfg = Default()
		} else {
			return finish(cfg)
		}
	}

	cfg, err := finish(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// LoadFromPath loads a specific file with full validation. The format is
// chosen by extension; anything other than .json is read as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
	}
	return finish(cfg)
}

// finish runs the shared post-decode pipeline.
func finish(cfg *Config) (*Config, error) {
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}
	if err := cfg.Migrate(); err != nil {
		return nil, fmt.Errorf("config migration failed: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// loadDotEnv loads ./.env without overriding variables already set.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not parse .env: %v\n", err)
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf strings.Builder
	buf.WriteString("# rbac-console configuration file\n")
	buf.WriteString("# Generated by rbac-console - edit with care\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes cfg as indented JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError is a single invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid setting found by Validate.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validBackends = map[string]bool{BackendFile: true, BackendSQLite: true, BackendMemory: true}
	validLevels   = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true, "off": true}
	validThemes   = map[string]bool{"auto": true, "dark": true, "light": true}
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// API
	if u, err := url.Parse(c.API.BaseURL); err != nil {
		errs = append(errs, ValidationError{Field: "api.base_url", Message: fmt.Sprintf("invalid URL: %v", err)})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{Field: "api.base_url", Message: fmt.Sprintf("scheme must be http or https, got %q", u.Scheme)})
	} else if u.Host == "" {
		errs = append(errs, ValidationError{Field: "api.base_url", Message: "missing host"})
	}
	if c.API.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "api.timeout_secs", Message: "must be non-negative (0 disables the timeout)"})
	}
	if c.API.MaxRequestsPerSecond < 0 {
		errs = append(errs, ValidationError{Field: "api.max_requests_per_second", Message: "must be non-negative (0 disables pacing)"})
	}

	// Session
	if !validBackends[c.Session.Backend] {
		errs = append(errs, ValidationError{
			Field:   "session.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: file, sqlite, memory", c.Session.Backend),
		})
	}

	// Log
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: trace, debug, info, warn, error, off", c.Log.Level),
		})
	}

	// UI
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}
	if c.UI.RedirectDelayMs < 0 || c.UI.RedirectDelayMs > 10000 {
		errs = append(errs, ValidationError{
			Field:   "ui.redirect_delay_ms",
			Message: fmt.Sprintf("must be 0-10000, got %d", c.UI.RedirectDelayMs),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills blank string settings that have no valid empty value.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Version == "" {
		c.Version = d.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = d.API.UserAgent
	}
	if c.Session.Backend == "" {
		c.Session.Backend = d.Session.Backend
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
}

// Migrate upgrades older layouts in place.
func (c *Config) Migrate() error {
	// Pre-1 files stored the base URL with a trailing slash.
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	c.Session.Backend = strings.ToLower(strings.TrimSpace(c.Session.Backend))
	if c.Version == "" || c.Version == "0" {
		c.Version = CurrentVersion
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// envOverrides maps RBAC_* variables. Blank values leave the file setting
// untouched; numeric fields use -1 as "unset".
type envOverrides struct {
	APIURL        string  `env:"RBAC_API_URL"`
	APITimeout    int     `env:"RBAC_API_TIMEOUT, default=-1"`
	APIRate       float64 `env:"RBAC_API_RATE, default=-1"`
	RequestIDs    string  `env:"RBAC_REQUEST_IDS"`
	SessionStore  string  `env:"RBAC_SESSION_BACKEND"`
	SessionPath   string  `env:"RBAC_SESSION_PATH"`
	SessionSealed string  `env:"RBAC_SESSION_ENCRYPT"`
	LogLevel      string  `env:"RBAC_LOG_LEVEL"`
	LogPretty     string  `env:"RBAC_LOG_PRETTY"`
	Theme         string  `env:"RBAC_THEME"`
}

// envLookuper is swapped in tests.
var envLookuper = envconfig.OsLookuper()

// ApplyEnvOverrides applies RBAC_* environment variables to c.
//
// Supported environment variables:
//   - RBAC_API_URL: overrides api.base_url
//   - RBAC_API_TIMEOUT: overrides api.timeout_secs
//   - RBAC_API_RATE: overrides api.max_requests_per_second
//   - RBAC_REQUEST_IDS: "1"/"true" enables X-Request-ID
//   - RBAC_SESSION_BACKEND, RBAC_SESSION_PATH, RBAC_SESSION_ENCRYPT
//   - RBAC_LOG_LEVEL, RBAC_LOG_PRETTY
//   - RBAC_THEME
func (c *Config) ApplyEnvOverrides() error {
	var o envOverrides
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &o,
		Lookuper: envLookuper,
	}); err != nil {
		return err
	}

	if o.APIURL != "" {
		c.API.BaseURL = o.APIURL
	}
	if o.APITimeout >= 0 {
		c.API.TimeoutSecs = o.APITimeout
	}
	if o.APIRate >= 0 {
		c.API.MaxRequestsPerSecond = o.APIRate
	}
	if o.RequestIDs != "" {
		c.API.RequestIDs = truthy(o.RequestIDs)
	}
	if o.SessionStore != "" {
		c.Session.Backend = o.SessionStore
	}
	if o.SessionPath != "" {
		c.Session.Path = o.SessionPath
	}
	if o.SessionSealed != "" {
		c.Session.Encrypt = truthy(o.SessionSealed)
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	if o.LogPretty != "" {
		c.Log.Pretty = truthy(o.LogPretty)
	}
	if o.Theme != "" {
		c.UI.Theme = o.Theme
	}
	return nil
}

func truthy(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return strings.EqualFold(strings.TrimSpace(s), "yes")
	}
	return b
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a value by its file key, e.g. "api.base_url".
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set parses value into the setting named by key and re-validates.
// The config is left unchanged when the new value is invalid.
func (c *Config) Set(key, value string) error {
	candidate := c.Clone()
	field, err := candidate.lookup(key)
	if err != nil {
		return err
	}
	if err := setFieldValue(field, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := candidate.Migrate(); err != nil {
		return err
	}
	if err := candidate.Validate(); err != nil {
		return err
	}
	*c = *candidate
	return nil
}

// lookup walks the struct by toml tag names.
func (c *Config) lookup(key string) (reflect.Value, error) {
	parts := strings.Split(strings.TrimSpace(key), ".")
	if len(parts) == 0 || parts[0] == "" {
		return reflect.Value{}, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("'%s' is a section, not a setting", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	name = strings.ReplaceAll(strings.ToLower(name), "-", "_")
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("toml"), ",")[0]
		if tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("expected true or false, got %q", value)
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("expected an integer, got %q", value)
		}
		field.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("expected a number, got %q", value)
		}
		field.SetFloat(f)
	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}
	return nil
}

// Keys lists every settable dot-notation key.
func Keys() []string {
	var keys []string
	root := reflect.TypeOf(Config{})
	for i := 0; i < root.NumField(); i++ {
		section := root.Field(i)
		name := section.Tag.Get("toml")
		if section.Type.Kind() != reflect.Struct {
			keys = append(keys, name)
			continue
		}
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, name+"."+section.Type.Field(j).Tag.Get("toml"))
		}
	}
	return keys
}

// Clone returns a copy of c. Config holds only values, so a shallow copy
// is a deep copy.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the config as TOML.
func (c *Config) String() string {
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config encode error: %v>", err)
	}
	return buf.String()
}
