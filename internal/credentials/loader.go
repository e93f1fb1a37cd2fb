// Package credentials reads the optional X API secrets from the workspace
// secrets directory. A missing secret is reported as absent, never as an
// error; errors are reserved for files that exist but cannot be read.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ppiankov/tweetkeep/internal/oauth1"
)

// Secret file names inside the secrets directory.
const (
	BearerTokenFile  = "x_bearer_token"
	APIKeyFile       = "x_api_key"
	APISecretFile    = "x_api_secret"
	AccessTokenFile  = "x_access_token"
	AccessSecretFile = "x_access_secret"
	OAuth2TokenFile  = "x_oauth2_token.json"
)

// BearerEnv is the environment variable consulted when no bearer token
// file exists.
const BearerEnv = "X_BEARER_TOKEN"

// Loader reads credentials fresh on every call.
type Loader struct {
	Dir     string // secrets directory
	EnvFile string // optional dotenv file with a BearerEnv entry

	getenv func(string) string
}

// New creates a Loader for the given secrets directory and dotenv file.
func New(dir, envFile string) *Loader {
	return &Loader{Dir: dir, EnvFile: envFile, getenv: os.Getenv}
}

// Bearer returns the app-only bearer token. Lookup order: secrets file,
// process environment, dotenv file. Returns "" when none is set.
func (l *Loader) Bearer() (string, error) {
	tok, err := l.readSecret(BearerTokenFile)
	if err != nil || tok != "" {
		return tok, err
	}

	if tok := strings.TrimSpace(l.getenv(BearerEnv)); tok != "" {
		return tok, nil
	}

	if l.EnvFile == "" {
		return "", nil
	}
	env, err := godotenv.Read(l.EnvFile)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read env file %s: %w", l.EnvFile, err)
	}
	return strings.TrimSpace(env[BearerEnv]), nil
}

// OAuth1 returns the four-part OAuth 1.0a key set, or nil when any part
// is missing.
func (l *Loader) OAuth1() (*oauth1.Credentials, error) {
	files := []string{APIKeyFile, APISecretFile, AccessTokenFile, AccessSecretFile}
	vals := make([]string, len(files))
	for i, name := range files {
		v, err := l.readSecret(name)
		if err != nil {
			return nil, err
		}
		if v == "" {
			return nil, nil
		}
		vals[i] = v
	}
	return &oauth1.Credentials{
		ConsumerKey:    vals[0],
		ConsumerSecret: vals[1],
		AccessToken:    vals[2],
		AccessSecret:   vals[3],
	}, nil
}

// OAuth2 returns the user access token from the OAuth 2.0 token document,
// or "" when the document is missing or has no access_token.
func (l *Loader) OAuth2() (string, error) {
	data, err := os.ReadFile(filepath.Join(l.Dir, OAuth2TokenFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", OAuth2TokenFile, err)
	}

	var doc struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("parse %s: %w", OAuth2TokenFile, err)
	}
	return strings.TrimSpace(doc.AccessToken), nil
}

// readSecret returns the trimmed content of a secrets file, or "" if it
// does not exist.
func (l *Loader) readSecret(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(l.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}
