// Package cli provides the command-line interface for tweetkeep.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitUsage      = 1 // missing URL, bad tag, unparseable post id, bad config
	ExitNoSource   = 2 // every fetch source failed; nothing was archived
	defaultWorkDir = "."
)

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

func usageError(format string, args ...any) error {
	return &ExitError{Code: ExitUsage, Err: fmt.Errorf(format, args...)}
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitUsage
}

var workspaceDir = defaultWorkDir

var rootCmd = &cobra.Command{
	Use:   "tweetkeep <url>",
	Short: "Archive a post from X into a daily markdown file",
	Long: "tweetkeep fetches a post by URL (X API, then oEmbed, then mirror scrape), " +
		"and appends it to links/YYYY-MM-DD.md in the workspace. " +
		"It can optionally follow the author and bookmark the post.",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          fetchAction,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tweetkeep %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspaceDir, "workspace", "w", defaultWorkDir,
		"workspace directory holding config.yaml, .secrets/ and links/")
	registerFetchFlags(rootCmd)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(initCmd)
}

// newLogger returns the diagnostic logger. Diagnostics go to w (stderr in
// production) so stdout carries only status lines.
func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
