package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/josephlewis42/hybridsh/core/config"
	"github.com/josephlewis42/hybridsh/core/lang"
	"github.com/josephlewis42/hybridsh/core/preprocess"
	"github.com/spf13/cobra"
)

func newPipeline(cfg *config.Configuration) (*preprocess.Pipeline, error) {
	name := cfg.Dialect
	if dialectName != "" {
		name = dialectName
	}
	d, err := lang.Lookup(name)
	if err != nil {
		return nil, err
	}
	return preprocess.New(lang.WithKeywords(d, cfg.ExtraKeywords...)), nil
}

// transpileCmd prints final code without running it
var transpileCmd = &cobra.Command{
	Use:   "transpile [FILE]",
	Short: "Print the code a script translates to, reads stdin without FILE.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pipeline, err := newPipeline(cfg)
		if err != nil {
			return err
		}

		var script []byte
		if len(args) == 1 {
			script, err = os.ReadFile(args[0])
		} else {
			script, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return err
		}

		code, err := pipeline.Process(string(script))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), code)
		return err
	},
}

func init() {
	rootCmd.AddCommand(transpileCmd)
}
