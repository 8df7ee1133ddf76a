package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

type rootOptions struct {
	configPath string
	logLevel   string
	traceDir   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "notesync",
		Short: "Share markdown notes and merge remote edits back with conflict markers",
		Long: `notesync publishes a local markdown note to HackMD (or a GitHub gist) and pulls
remote edits back. Lines changed on both sides are wrapped in Git-style
conflict markers so they can be resolved in any editor.`,
		Version:       fmt.Sprintf("%s (built: %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(opts.logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			log.SetLevel(level)
			log.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to the settings file (default: $XDG_CONFIG_HOME/notesync/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.traceDir, "trace-dir", "", "Write a performance report to this directory")

	cmd.AddCommand(
		newPushCmd(opts),
		newPullCmd(opts),
		newDiffCmd(opts),
		newStatusCmd(opts),
		newConfigCmd(opts),
	)

	return cmd
}
