package cmd

import (
	"os"
	"time"

	"github.com/josephlewis42/hybridsh/core/ttylog"
	"github.com/spf13/cobra"
)

var idleTimeLimit time.Duration

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Explore sessions recorded with repl --record.",
}

// playCommand replays a recording in real time
var playCommand = &cobra.Command{
	Use:   "play FILE.cast",
	Short: "Replay a recorded interactive session in the terminal.",
	Long:  `Plays a recorded interactive session back to the current terminal.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		sink := ttylog.NewOutputSink(cmd.OutOrStdout())
		sink = ttylog.NewRealTimePlayback(idleTimeLimit, sink)
		return ttylog.Replay(ttylog.NewAsciicastLogSource(fd), sink)
	},
}

// catCommand prints a recording's output at once
var catCommand = &cobra.Command{
	Use:   "cat FILE.cast",
	Short: "Print full output of recorded session to a terminal.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		return ttylog.Replay(ttylog.NewAsciicastLogSource(fd), ttylog.NewOutputSink(cmd.OutOrStdout()))
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(playCommand)
	logsCmd.AddCommand(catCommand)

	// cat doesn't allow idle time
	playCommand.Flags().DurationVarP(&idleTimeLimit, "idle-time-limit", "i", 3*time.Second, "Maximum time output can be idle. (e.g. 3s, 2m, 100ms)")
}
