package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile    = "config.yaml"
	DefaultSecretsDir    = ".secrets"
	DefaultLinksDir      = "links"
	DefaultEnvFile       = "~/.config/env/global.env"
	DefaultTimeout       = 10 * time.Second
	DefaultUserAgent     = "Mozilla/5.0 (compatible; tweetkeep/1.0)"
	DefaultAPIBaseURL    = "https://api.twitter.com/2"
	DefaultEmbedEndpoint = "https://publish.twitter.com/oembed"
	DefaultTag           = "other"
)

// DefaultMirrors are the alternate front-ends scraped when both the API
// and oEmbed fail, in the order they are tried.
var DefaultMirrors = []string{
	"https://nitter.poast.org",
	"https://nitter.cz",
	"https://nitter.net",
}

// Tags is the closed set of archive categories.
var Tags = []string{"trading", "self-improvement", "tool", "crypto", "other"}

// ValidTag reports whether tag is one of Tags.
func ValidTag(tag string) bool {
	return slices.Contains(Tags, tag)
}

// Duration wraps time.Duration for YAML unmarshaling from strings like "10s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	SecretsDir string        `yaml:"secrets_dir"`
	LinksDir   string        `yaml:"links_dir"`
	EnvFile    string        `yaml:"env_file"`
	Timeout    Duration      `yaml:"timeout"`
	UserAgent  string        `yaml:"user_agent"`
	API        APIConfig     `yaml:"api"`
	Embed      EmbedConfig   `yaml:"embed"`
	Scrape     ScrapeConfig  `yaml:"scrape"`
	Archive    ArchiveConfig `yaml:"archive"`

	// Path of the file the config was read from; empty when defaults were used.
	Path string `yaml:"-"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
}

type EmbedConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type ScrapeConfig struct {
	Mirrors []string `yaml:"mirrors"`
}

type ArchiveConfig struct {
	DefaultTag string       `yaml:"default_tag"`
	Redact     RedactConfig `yaml:"redact"`
}

type RedactConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Patterns []string `yaml:"patterns"`
}

// Load reads config.yaml from the workspace dir, applies defaults, resolves
// paths, and validates. A missing config file is not an error.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("workspace dir is required")
	}

	var cfg Config
	path := filepath.Join(dir, DefaultConfigFile)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		cfg.Path = path
	}

	applyDefaults(&cfg)
	resolvePaths(&cfg, dir)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.SecretsDir == "" {
		cfg.SecretsDir = DefaultSecretsDir
	}
	if cfg.LinksDir == "" {
		cfg.LinksDir = DefaultLinksDir
	}
	if cfg.EnvFile == "" {
		cfg.EnvFile = DefaultEnvFile
	}
	if cfg.Timeout.Duration == 0 {
		cfg.Timeout.Duration = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultAPIBaseURL
	}
	if cfg.Embed.Endpoint == "" {
		cfg.Embed.Endpoint = DefaultEmbedEndpoint
	}
	if len(cfg.Scrape.Mirrors) == 0 {
		cfg.Scrape.Mirrors = slices.Clone(DefaultMirrors)
	}
	if cfg.Archive.DefaultTag == "" {
		cfg.Archive.DefaultTag = DefaultTag
	}
}

func resolvePaths(cfg *Config, dir string) {
	if !filepath.IsAbs(cfg.SecretsDir) {
		cfg.SecretsDir = filepath.Join(dir, cfg.SecretsDir)
	}
	if !filepath.IsAbs(cfg.LinksDir) {
		cfg.LinksDir = filepath.Join(dir, cfg.LinksDir)
	}
	cfg.EnvFile = expandHome(cfg.EnvFile)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func validate(cfg *Config) error {
	if cfg.Timeout.Duration < 0 {
		return fmt.Errorf("timeout: must be positive, got %s", cfg.Timeout.Duration)
	}

	if !ValidTag(cfg.Archive.DefaultTag) {
		return fmt.Errorf("archive.default_tag: unknown tag %q (want one of %s)",
			cfg.Archive.DefaultTag, strings.Join(Tags, ", "))
	}

	for _, m := range cfg.Scrape.Mirrors {
		u, err := url.Parse(m)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("scrape.mirrors: invalid mirror URL %q", m)
		}
	}

	for _, raw := range []struct{ key, value string }{
		{"api.base_url", cfg.API.BaseURL},
		{"embed.endpoint", cfg.Embed.Endpoint},
	} {
		if u, err := url.Parse(raw.value); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s: invalid URL %q", raw.key, raw.value)
		}
	}

	return nil
}
