// Package config provides functionality for managing configuration options
// for the application using command-line flags, an optional JSON config
// file, a .env file and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// EnvProduction is the APP_ENV value that turns on production checks.
	EnvProduction = "production"

	// devSessionSecret signs cookies outside production when no secret is set.
	devSessionSecret = "dev-secret-change-me"
)

// ErrSessionSecretRequired is returned by Validate in production when no
// session secret is configured.
var ErrSessionSecretRequired = errors.New("config: SESSION_SECRET must be set in production")

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string

	// APIURL is the base URL of the practice-session REST API.
	APIURL string

	// Env is the deployment environment ("development", "production").
	Env string

	// SessionSecret is a comma separated list of cookie secrets.
	// The first one signs new cookies; the rest are still accepted.
	SessionSecret string

	// LogLevel is the zap level name.
	LogLevel string

	// APITimeout bounds every call to the REST API.
	APITimeout time.Duration

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string
	TLSKey  string

	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only set it when a reverse proxy in front overwrites those headers.
	TrustProxy bool

	// Config is the path to the Config file.
	Config string
}

// fileOptions mirrors Options in the JSON config file.
type fileOptions struct {
	Addr          string `json:"server_address"`
	APIURL        string `json:"api_url"`
	Env           string `json:"env"`
	SessionSecret string `json:"session_secret"`
	LogLevel      string `json:"log_level"`
	APITimeout    string `json:"api_timeout"`
	TLSCert       string `json:"tls_cert"`
	TLSKey        string `json:"tls_key"`
	TrustProxy    *bool  `json:"trust_proxy"`
}

func newFlagSet(name string, o *Options) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&o.Addr, "a", "localhost:3000", "run on ip:port server")
	fs.StringVar(&o.APIURL, "api", "http://localhost:5270", "practice-session API base URL")
	fs.StringVar(&o.Env, "env", "development", "deployment environment")
	fs.StringVar(&o.SessionSecret, "session-secret", "", "comma separated cookie secrets")
	fs.StringVar(&o.LogLevel, "log-level", "info", "log level")
	fs.DurationVar(&o.APITimeout, "api-timeout", 10*time.Second, "timeout for API calls")
	fs.StringVar(&o.TLSCert, "tls-cert", "", "TLS certificate file")
	fs.StringVar(&o.TLSKey, "tls-key", "", "TLS key file")
	fs.BoolVar(&o.TrustProxy, "trust-proxy", false, "honor X-Forwarded-For / X-Real-IP from a reverse proxy")
	fs.StringVar(&o.Config, "config", "", "path to config file")
	fs.StringVar(&o.Config, "c", "", "path to config file (shorthand)")
	return fs
}

// Parse reads configuration from os.Args, the config file and the
// environment. A .env file in the working directory is loaded first; it
// never overrides variables that are already set.
func Parse() (*Options, error) {
	_ = godotenv.Load()
	return ParseArgs(os.Args[1:])
}

// ParseArgs applies, in increasing priority: flag defaults and args, the
// JSON config file, then environment variables.
func ParseArgs(args []string) (*Options, error) {
	o := &Options{}
	fs := newFlagSet("web", o)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		o.Config = configPath
	}
	if o.Config != "" {
		if err := o.loadFile(o.Config); err != nil {
			return nil, err
		}
	}

	if err := o.applyEnv(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Options) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error while reading config file: %w", err)
	}

	var f fileOptions
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}

	setIf(&o.Addr, f.Addr)
	setIf(&o.APIURL, f.APIURL)
	setIf(&o.Env, f.Env)
	setIf(&o.SessionSecret, f.SessionSecret)
	setIf(&o.LogLevel, f.LogLevel)
	setIf(&o.TLSCert, f.TLSCert)
	setIf(&o.TLSKey, f.TLSKey)
	if f.TrustProxy != nil {
		o.TrustProxy = *f.TrustProxy
	}
	if f.APITimeout != "" {
		d, err := time.ParseDuration(f.APITimeout)
		if err != nil {
			return fmt.Errorf("error while parsing config file: api_timeout: %w", err)
		}
		o.APITimeout = d
	}
	return nil
}

func (o *Options) applyEnv() error {
	setIf(&o.Addr, os.Getenv("SERVER_ADDRESS"))
	setIf(&o.APIURL, os.Getenv("VITE_API_URL"))
	setIf(&o.APIURL, os.Getenv("API_URL"))
	setIf(&o.Env, os.Getenv("APP_ENV"))
	setIf(&o.SessionSecret, os.Getenv("SESSION_SECRET"))
	setIf(&o.LogLevel, os.Getenv("LOG_LEVEL"))
	setIf(&o.TLSCert, os.Getenv("TLS_CERT"))
	setIf(&o.TLSKey, os.Getenv("TLS_KEY"))

	if v := os.Getenv("TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TRUST_PROXY: %w", err)
		}
		o.TrustProxy = b
	}

	if v := os.Getenv("API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("API_TIMEOUT: %w", err)
		}
		o.APITimeout = d
	}
	return nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// IsProduction reports whether Env is "production".
func (o *Options) IsProduction() bool {
	return strings.EqualFold(o.Env, EnvProduction)
}

// UseTLS reports whether both certificate and key are configured.
func (o *Options) UseTLS() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}

// Validate checks the options for a usable configuration.
func (o *Options) Validate() error {
	if o.IsProduction() && len(splitSecrets(o.SessionSecret)) == 0 {
		return ErrSessionSecretRequired
	}
	if (o.TLSCert == "") != (o.TLSKey == "") {
		return errors.New("config: tls-cert and tls-key must be set together")
	}
	if o.APITimeout <= 0 {
		return errors.New("config: api-timeout must be positive")
	}
	return nil
}

// SessionSecrets returns the configured cookie secrets, newest first.
// Outside production an unset secret falls back to a fixed development value.
func (o *Options) SessionSecrets() []string {
	secrets := splitSecrets(o.SessionSecret)
	if len(secrets) == 0 && !o.IsProduction() {
		return []string{devSessionSecret}
	}
	return secrets
}

func splitSecrets(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
