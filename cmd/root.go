package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/nsreg/app"
	_ "github.com/kilianp07/nsreg/app/plugins"
	"github.com/kilianp07/nsreg/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "nsreg",
	Short:         "Dotted-path registry for api functions, models and plugins",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Load startup modules and serve until interrupted",
	Args:  cobra.NoArgs,
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml, json or toml)")
	rootCmd.AddCommand(runCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// startService loads the configuration and runs import_on_start. Logs go to
// logOut so command output stays clean.
func startService(ctx context.Context, logOut io.Writer) (*app.Service, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg, app.WithLogOutput(logOut))
	if err != nil {
		return nil, err
	}
	if err := svc.Start(ctx); err != nil {
		_ = svc.Close()
		return nil, err
	}
	return svc, nil
}

func run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := startService(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "service close: %v\n", err)
		}
	}()
	return svc.Run(ctx)
}
