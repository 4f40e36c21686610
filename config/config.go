// Package config loads application settings from the process
// environment. Values are read once, at startup, and never re-read.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Profile names a fixed set of overrides applied after the environment
// has been read.
type Profile string

const (
	Production  Profile = "production"
	Development Profile = "development"
)

// ParseProfile accepts the profile name or its short form.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod", "":
		return Production, nil
	case "development", "dev":
		return Development, nil
	default:
		return "", fmt.Errorf("unknown config profile %q", s)
	}
}

// Config holds every recognised setting.
type Config struct {
	Env     string `yaml:"env"`
	Debug   bool   `yaml:"debug"`
	Testing bool   `yaml:"testing"`

	SecretKey          string `env:"SECRET_KEY" yaml:"secret_key"`
	DatabaseURL        string `env:"DATABASE_URL" yaml:"database_url"`
	TrackModifications string `env:"SQLALCHEMY_TRACK_MODIFICATIONS" yaml:"track_modifications"`

	MailServer        string   `env:"MAIL_SERVER" yaml:"mail_server"`
	MailPort          int      `env:"MAIL_PORT" envDefault:"25" yaml:"mail_port"`
	MailUseSSL        bool     `yaml:"mail_use_ssl"`
	MailUseTLS        bool     `yaml:"mail_use_tls"`
	MailUsername      string   `env:"MAIL_USERNAME" yaml:"mail_username"`
	MailPassword      string   `env:"MAIL_PASSWORD" yaml:"mail_password"`
	MailDefaultSender string   `env:"MAIL_DEFAULT_SENDER" yaml:"mail_default_sender"`
	Admins            []string `env:"ADMINS" envSeparator:"," yaml:"admins"`

	PostsPerPage int      `yaml:"posts_per_page"`
	Languages    []string `yaml:"languages"`

	MSTranslatorKey     string `env:"MS_TRANSLATOR_KEY" yaml:"ms_translator_key"`
	LogToStdout         string `env:"LOG_TO_STDOUT" yaml:"log_to_stdout"`
	ElasticsearchURL    string `env:"ELASTICSEARCH_URL" yaml:"elasticsearch_url"`
	RedisURL            string `env:"REDIS_URL" envDefault:"redis://" yaml:"redis_url"`
	TemplatesAutoReload string `env:"TEMPLATES_AUTO_RELOAD" yaml:"templates_auto_reload"`
}

// Environ converts KEY=VALUE pairs, as returned by os.Environ, to a map.
func Environ(pairs []string) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		m[k] = v
	}
	return m
}

// FromProcess loads the profile from the current process environment.
func FromProcess(p Profile) (*Config, error) {
	return Load(p, Environ(os.Environ()))
}

// Load reads settings from environ and applies profile p. Empty values
// count as unset, except for MAIL_USE_SSL and MAIL_USE_TLS which are
// enabled by mere presence.
func Load(p Profile, environ map[string]string) (*Config, error) {
	set := make(map[string]string, len(environ))
	for k, v := range environ {
		if v != "" {
			set[k] = v
		}
	}

	cfg := &Config{
		PostsPerPage: 7,
		Languages:    []string{"en", "es"},
	}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: set}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	_, cfg.MailUseSSL = environ["MAIL_USE_SSL"]
	_, cfg.MailUseTLS = environ["MAIL_USE_TLS"]
	cfg.Admins = cleanList(cfg.Admins)

	switch p {
	case Production:
		cfg.Env = "production"
		cfg.Debug = false
		cfg.Testing = false
	case Development:
		cfg.Env = "development"
		cfg.Debug = true
		cfg.Testing = true
		cfg.DatabaseURL = set["SQLALCHEMY_DATABASE_URI"]
	default:
		return nil, fmt.Errorf("unknown config profile %q", p)
	}
	return cfg, nil
}

func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// MailEnabled reports whether a mail server is configured.
func (c *Config) MailEnabled() bool {
	return c.MailServer != ""
}

// StdoutLogging reports whether LOG_TO_STDOUT is set.
func (c *Config) StdoutLogging() bool {
	return c.LogToStdout != ""
}

// MailCredentials returns the login pair and whether it should be used,
// which is when either half is non-empty.
func (c *Config) MailCredentials() (username, password string, ok bool) {
	return c.MailUsername, c.MailPassword, c.MailUsername != "" || c.MailPassword != ""
}

const redacted = "********"

// Redacted returns a copy safe to print, with secrets masked.
func (c Config) Redacted() Config {
	for _, s := range []*string{&c.SecretKey, &c.MailPassword, &c.MSTranslatorKey} {
		if *s != "" {
			*s = redacted
		}
	}
	c.DatabaseURL = redactURL(c.DatabaseURL)
	c.RedisURL = redactURL(c.RedisURL)
	c.Admins = append([]string(nil), c.Admins...)
	c.Languages = append([]string(nil), c.Languages...)
	return c
}
