package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/tweetkeep/internal/config"
	"github.com/ppiankov/tweetkeep/internal/credentials"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check workspace, config, and which credentials are present",
	RunE:  doctorAction,
}

func doctorAction(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	ok := true

	// Workspace dir
	if info, err := os.Stat(workspaceDir); err != nil || !info.IsDir() {
		printCheck(w, false, "workspace directory %s", workspaceDir)
		ok = false
	} else {
		printCheck(w, true, "workspace directory %s", workspaceDir)
	}

	// Config file
	cfg, err := config.Load(workspaceDir)
	if err != nil {
		printCheck(w, false, "config: %v", err)
		return errors.New("some checks failed")
	}
	if cfg.Path == "" {
		printInfo(w, "no %s; using defaults", config.DefaultConfigFile)
	} else {
		printCheck(w, true, "%s (%d mirrors, timeout %s)", cfg.Path, len(cfg.Scrape.Mirrors), cfg.Timeout.Duration)
	}

	// Links dir: missing is fine, it is created on first archive.
	if info, err := os.Stat(cfg.LinksDir); err == nil && !info.IsDir() {
		printCheck(w, false, "links dir %s is not a directory", cfg.LinksDir)
		ok = false
	} else {
		printCheck(w, true, "links dir %s", cfg.LinksDir)
	}

	// Credentials (informational; each one only enables a capability).
	creds := credentials.New(cfg.SecretsDir, cfg.EnvFile)
	if bearer, err := creds.Bearer(); err != nil {
		printCheck(w, false, "bearer token: %v", err)
		ok = false
	} else {
		printPresence(w, bearer != "", "bearer token (X API fetch, follow lookup)")
	}
	if keys, err := creds.OAuth1(); err != nil {
		printCheck(w, false, "OAuth1 keys: %v", err)
		ok = false
	} else {
		printPresence(w, keys != nil, "OAuth1 keys (follow)")
	}
	if token, err := creds.OAuth2(); err != nil {
		printCheck(w, false, "OAuth2 token: %v", err)
		ok = false
	} else {
		printPresence(w, token != "", "OAuth2 token (bookmark)")
	}

	if cfg.Archive.Redact.Enabled {
		printInfo(w, "redaction on (%d patterns)", len(cfg.Archive.Redact.Patterns))
	}

	if !ok {
		return errors.New("some checks failed")
	}
	fmt.Fprintln(w, "\nAll checks passed.")
	return nil
}

func printCheck(w io.Writer, pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Fprintf(w, "[%s] %s\n", mark, fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "[INFO] %s\n", fmt.Sprintf(format, args...))
}

func printPresence(w io.Writer, present bool, what string) {
	if present {
		printCheck(w, true, "%s", what)
		return
	}
	printInfo(w, "%s: not configured", what)
}
