package cmd

import (
	"log/slog"

	"github.com/josephlewis42/hybridsh/core/config"
	"github.com/josephlewis42/hybridsh/core/logger"
	"github.com/spf13/cobra"
)

// initCmd writes the default configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the configuration in the --config directory.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		log := logger.New(cmd.ErrOrStderr(), slog.LevelInfo)

		_, err := config.Initialize(cfgPath, log)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
