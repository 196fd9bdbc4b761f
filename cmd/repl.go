package cmd

import (
	"os"

	"github.com/josephlewis42/hybridsh/core"
	"github.com/josephlewis42/hybridsh/core/ttylog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var recordPath string

// replCmd runs the interactive loop
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		sio := commandIO(cmd)
		var recorder *ttylog.Recorder
		if recordPath != "" {
			fd, err := os.Create(recordPath)
			if err != nil {
				return err
			}
			defer fd.Close()

			recorder = ttylog.NewRecorder(ttylog.NewAsciicastLogSink(fd, recordingHeader()), nil)
			sio.Stdout = recorder.Writer(sio.Stdout)
			sio.Stderr = recorder.Writer(sio.Stderr)
		}

		session, err := newSession(cmd, sio, false)
		if err != nil {
			return err
		}
		defer session.Close()

		repl, err := core.NewREPL(session, sio, core.REPLOptions{
			IsTerminal: func() bool { return isTerminal(cmd.InOrStdin()) },
			Recorder:   recorder,
		})
		if err != nil {
			return err
		}
		defer repl.Close()

		return repl.Run(cmd.Context())
	},
}

func recordingHeader() ttylog.AsciicastHeader {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width, height = 80, 24
	}
	return ttylog.AsciicastHeader{
		Width:  width,
		Height: height,
		Title:  "hybridsh session",
		Env: map[string]string{
			"TERM":  os.Getenv("TERM"),
			"SHELL": "hybridsh",
		},
	}
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().StringVar(&recordPath, "record", "", "Record the session to an asciicast file.")
}
