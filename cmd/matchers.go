package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// matchersCmd lists the recognized shell constructs
var matchersCmd = &cobra.Command{
	Use:   "matchers",
	Short: "Show the shell constructs that are recognized, in precedence order.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pipeline, err := newPipeline(cfg)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 8, 8, 2, ' ', 0)
		defer tw.Flush()

		fmt.Fprintf(tw, "KIND\tNAME\tMARKER\n")
		for _, m := range pipeline.LineMatchers() {
			marker := m.MarkerPrefix()
			if marker == "" {
				marker = "-"
			}
			fmt.Fprintf(tw, "line\t%s\t%s\n", m.Name(), marker)
		}
		for _, b := range pipeline.BlockMatchers() {
			fmt.Fprintf(tw, "block\t%s\t-\n", b.Name())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(matchersCmd)
}
