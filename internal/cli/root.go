// Package cli implements the recorder command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/recorder/internal/config"
	"github.com/xiaot623/gogo/recorder/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// loaded by the root command before any subcommand runs
	cfg *config.Config
	log *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recorder",
		Short: "Recorder stores protocol sessions and the payloads exchanged within them",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			log = logging.New(nil, cfg.Logging.Level)

			if issues := config.Validate(cfg, logging.Levels); len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "recorder.yaml", "config file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
