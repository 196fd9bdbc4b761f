package cmd

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/josephlewis42/hybridsh/core"
	"github.com/josephlewis42/hybridsh/core/config"
	"github.com/josephlewis42/hybridsh/core/display"
	"github.com/josephlewis42/hybridsh/core/logger"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	cfgPath     string
	dialectName string
)

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.LoadOrDefault(cfgPath)
	if errors.Is(err, fs.ErrPermission) {
		slog.Warn("Couldn't read config, check the permissions of --config", "path", cfgPath)
	}

	return configuration, err
}

func newLogger(cmd *cobra.Command, cfg *config.Configuration) (*slog.Logger, error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logger.New(cmd.ErrOrStderr(), level), nil
}

func isTerminal(v interface{}) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newSession builds a session attached to the command's streams.
func newSession(cmd *cobra.Command, sio core.IO, dryRun bool) (*core.Session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}

	return core.NewSession(cfg, core.Options{
		IO:      sio,
		Dialect: dialectName,
		DryRun:  dryRun,
		Color:   display.ShouldColor(cfg.ColorMode(), isTerminal(cmd.OutOrStdout())),
		Logger:  log,
	})
}

func commandIO(cmd *cobra.Command) core.IO {
	return core.IO{
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hybridsh",
	Short: "Mix shell commands with script statements",
	Long: `hybridsh reads lines that freely mix shell commands with statements of
a scripting language, translates the shell parts and runs the result.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}

func execute(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args ...string) error {
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
	rootCmd.PersistentFlags().StringVar(&dialectName, "dialect", "", "target language, overrides the configured dialect (csharp|lua)")
}
