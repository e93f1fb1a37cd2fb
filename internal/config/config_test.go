package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTestYAML(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test yaml: %v", err)
	}
	return path
}

// --- Load tests ---

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	secrets := filepath.Join(t.TempDir(), "keys")

	writeTestYAML(t, dir, DefaultConfigFile, `
secrets_dir: `+secrets+`
links_dir: archive
env_file: /etc/tweetkeep.env
timeout: 3s
user_agent: test-agent
api:
  base_url: http://localhost:8080/2
embed:
  endpoint: http://localhost:8081/oembed
scrape:
  mirrors:
    - http://mirror.local
archive:
  default_tag: crypto
  redact:
    enabled: true
    patterns:
      - "(?i)token"
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.SecretsDir != secrets {
		t.Errorf("secrets_dir = %q, want %q", cfg.SecretsDir, secrets)
	}
	if want := filepath.Join(dir, "archive"); cfg.LinksDir != want {
		t.Errorf("links_dir = %q, want %q", cfg.LinksDir, want)
	}
	if cfg.EnvFile != "/etc/tweetkeep.env" {
		t.Errorf("env_file = %q", cfg.EnvFile)
	}
	if cfg.Timeout.Duration != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", cfg.Timeout.Duration)
	}
	if cfg.UserAgent != "test-agent" {
		t.Errorf("user_agent = %q", cfg.UserAgent)
	}
	if cfg.API.BaseURL != "http://localhost:8080/2" {
		t.Errorf("api.base_url = %q", cfg.API.BaseURL)
	}
	if cfg.Embed.Endpoint != "http://localhost:8081/oembed" {
		t.Errorf("embed.endpoint = %q", cfg.Embed.Endpoint)
	}
	if len(cfg.Scrape.Mirrors) != 1 || cfg.Scrape.Mirrors[0] != "http://mirror.local" {
		t.Errorf("mirrors = %v", cfg.Scrape.Mirrors)
	}
	if cfg.Archive.DefaultTag != "crypto" {
		t.Errorf("default_tag = %q, want crypto", cfg.Archive.DefaultTag)
	}
	if !cfg.Archive.Redact.Enabled {
		t.Error("redact.enabled = false, want true")
	}
	if len(cfg.Archive.Redact.Patterns) != 1 {
		t.Errorf("redact patterns = %v", cfg.Archive.Redact.Patterns)
	}
	if cfg.Path != filepath.Join(dir, DefaultConfigFile) {
		t.Errorf("path = %q", cfg.Path)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, DefaultConfigFile, `
user_agent: custom
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if want := filepath.Join(dir, DefaultSecretsDir); cfg.SecretsDir != want {
		t.Errorf("secrets_dir = %q, want %q", cfg.SecretsDir, want)
	}
	if want := filepath.Join(dir, DefaultLinksDir); cfg.LinksDir != want {
		t.Errorf("links_dir = %q, want %q", cfg.LinksDir, want)
	}
	if cfg.Timeout.Duration != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", cfg.Timeout.Duration, DefaultTimeout)
	}
	if cfg.API.BaseURL != DefaultAPIBaseURL {
		t.Errorf("api.base_url = %q, want %q", cfg.API.BaseURL, DefaultAPIBaseURL)
	}
	if cfg.Embed.Endpoint != DefaultEmbedEndpoint {
		t.Errorf("embed.endpoint = %q, want %q", cfg.Embed.Endpoint, DefaultEmbedEndpoint)
	}
	if len(cfg.Scrape.Mirrors) != len(DefaultMirrors) {
		t.Errorf("mirrors = %v, want %v", cfg.Scrape.Mirrors, DefaultMirrors)
	}
	if cfg.Archive.DefaultTag != DefaultTag {
		t.Errorf("default_tag = %q, want %q", cfg.Archive.DefaultTag, DefaultTag)
	}
	if cfg.Archive.Redact.Enabled {
		t.Error("redact.enabled = true, want false by default")
	}
}

func TestLoad_FileNotFoundUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("path = %q, want empty", cfg.Path)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("user_agent = %q, want %q", cfg.UserAgent, DefaultUserAgent)
	}
	if want := filepath.Join(dir, DefaultLinksDir); cfg.LinksDir != want {
		t.Errorf("links_dir = %q, want %q", cfg.LinksDir, want)
	}
}

func TestLoad_DefaultMirrorsNotShared(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.Scrape.Mirrors[0] = "http://changed"
	if DefaultMirrors[0] == "http://changed" {
		t.Error("mutating loaded mirrors changed DefaultMirrors")
	}
}

func TestLoad_HomeExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if want := filepath.Join(home, ".config/env/global.env"); cfg.EnvFile != want {
		t.Errorf("env_file = %q, want %q", cfg.EnvFile, want)
	}
}

func TestLoad_InvalidTimeout(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, DefaultConfigFile, `
timeout: soon
`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for invalid duration")
	}
	if want := "parse duration"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want containing %q", err, want)
	}
}

func TestLoad_NegativeTimeout(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, DefaultConfigFile, `
timeout: -5s
`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for negative timeout")
	}
	if want := "timeout"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want containing %q", err, want)
	}
}

func TestLoad_InvalidDefaultTag(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, DefaultConfigFile, `
archive:
  default_tag: gossip
`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for unknown tag")
	}
	if want := "archive.default_tag"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want containing %q", err, want)
	}
}

func TestLoad_InvalidMirror(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, DefaultConfigFile, `
scrape:
  mirrors:
    - "not a url"
`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for invalid mirror")
	}
	if want := "scrape.mirrors"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want containing %q", err, want)
	}
}

func TestLoad_InvalidEmbedEndpoint(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, DefaultConfigFile, `
embed:
  endpoint: "/oembed"
`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for relative endpoint")
	}
	if want := "embed.endpoint"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want containing %q", err, want)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, DefaultConfigFile, `{{{invalid`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for malformed yaml")
	}
	if want := "parse config"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want containing %q", err, want)
	}
}

func TestLoad_EmptyDir(t *testing.T) {
	_, err := Load("")
	if err == nil {
		t.Fatal("expected error for empty dir")
	}
	if want := "workspace dir is required"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want containing %q", err, want)
	}
}

func TestValidTag(t *testing.T) {
	for _, tag := range Tags {
		if !ValidTag(tag) {
			t.Errorf("ValidTag(%q) = false, want true", tag)
		}
	}
	for _, tag := range []string{"", "Other", "news", "tools"} {
		if ValidTag(tag) {
			t.Errorf("ValidTag(%q) = true, want false", tag)
		}
	}
}
