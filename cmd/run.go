package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var (
	runCode   string
	runDryRun bool
)

// runCmd runs a script file or a snippet
var runCmd = &cobra.Command{
	Use:   "run [FILE]",
	Short: "Run a script, or the snippet given with -c.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch {
		case runCode == "" && len(args) == 0:
			return errors.New("requires a FILE or -c")
		case runCode != "" && len(args) > 0:
			return errors.New("FILE and -c can't be combined")
		}
		cmd.SilenceUsage = true

		session, err := newSession(cmd, commandIO(cmd), runDryRun)
		if err != nil {
			return err
		}
		defer session.Close()

		if runCode != "" {
			return session.Execute(cmd.Context(), runCode)
		}
		return session.ExecuteFile(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runCode, "command", "c", "", "Code to run.")
	runCmd.Flags().BoolVarP(&runDryRun, "dry-run", "n", false, "Print final code instead of running it.")
}
