package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ppiankov/tweetkeep/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example config and the secrets directory in the workspace",
	RunE:  initAction,
}

func initAction(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if err := os.MkdirAll(workspaceDir, 0o755); err != nil {
		return fmt.Errorf("create workspace dir: %w", err)
	}

	configPath := filepath.Join(workspaceDir, config.DefaultConfigFile)
	wrote, err := writeIfNotExists(w, configPath, []byte(exampleConfig))
	if err != nil {
		return err
	}

	secretsDir := filepath.Join(workspaceDir, config.DefaultSecretsDir)
	if _, err := os.Stat(secretsDir); err == nil {
		fmt.Fprintf(w, "  exists: %s\n", secretsDir)
	} else {
		if err := os.MkdirAll(secretsDir, 0o700); err != nil {
			return fmt.Errorf("create secrets dir: %w", err)
		}
		fmt.Fprintf(w, "  created: %s\n", secretsDir)
		wrote = true
	}

	if !wrote {
		fmt.Fprintf(w, "Workspace %s already initialized.\n", workspaceDir)
	} else {
		fmt.Fprintf(w, "Initialized %s.\n", workspaceDir)
	}
	return nil
}

// writeIfNotExists writes data to path if the file does not exist.
// Returns true if the file was created.
func writeIfNotExists(w io.Writer, path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "  exists: %s\n", path)
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(w, "  created: %s\n", path)
	return true, nil
}

const exampleConfig = `# tweetkeep configuration
# Every key is optional; the values below are the defaults.

secrets_dir: .secrets   # x_bearer_token, x_api_key, x_api_secret,
                        # x_access_token, x_access_secret, x_oauth2_token.json
links_dir: links
env_file: ~/.config/env/global.env   # may define X_BEARER_TOKEN
timeout: 10s
user_agent: "Mozilla/5.0 (compatible; tweetkeep/1.0)"

api:
  base_url: https://api.twitter.com/2

embed:
  endpoint: https://publish.twitter.com/oembed

scrape:
  mirrors:
    - https://nitter.poast.org
    - https://nitter.cz
    - https://nitter.net

archive:
  default_tag: other   # trading | self-improvement | tool | crypto | other
  redact:
    enabled: false
    patterns: []
`
