// Package cli wires the connectors into a cobra command tree.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tgedr/connectors/internal/app"
	"github.com/tgedr/connectors/pkg/slogx"
)

// runtime is shared by every command of one invocation.
type runtime struct {
	configPath  string
	pushgateway string
	logLevel    string

	app *app.Application
}

// NewRootCommand returns the connectors command tree.
func NewRootCommand() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *runtime) {
	rt := &runtime{}

	root := &cobra.Command{
		Use:   "connectors",
		Short: "Thin clients for Azure AD, Azure Table Storage, SFTP and Monetate",
		Long: `connectors issues tokens, reads and writes Azure tables, uploads files over
SFTP and moves records in and out of Monetate.

Configuration comes from a TOML file (--config or $CONNECTORS_CONFIG) and the
environment, which wins over the file.`,
		Version:       app.BuildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.init(cmd.ErrOrStderr()); err != nil {
				return err
			}
			cmd.SetContext(slogx.With(cmd.Context(), rt.app.Logger(), "command", cmd.CommandPath()))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&rt.configPath, "config", "", "path to a TOML config file (default $"+app.ConfigFileEnv+")")
	flags.StringVar(&rt.pushgateway, "pushgateway", "", "push HTTP metrics to this Prometheus Pushgateway when done")
	flags.StringVar(&rt.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	root.AddCommand(
		newAADCommand(rt),
		newTableCommand(rt),
		newSFTPCommand(rt),
		newMonetateCommand(rt),
	)
	return root, rt
}

// Execute runs the command tree with args, printing any error to stderr.
// Metrics are pushed once the command returns, whether it failed or not.
func Execute(ctx context.Context, args []string) error {
	root, rt := newRootCommand()
	root.SetArgs(args)

	err := rt.execute(ctx, root)
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return err
}

// execute runs root and then pushes metrics. cobra skips post-run hooks
// after a failed RunE, so the push cannot live in one.
func (rt *runtime) execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if rt.app == nil {
		return err
	}
	return errors.Join(err, rt.app.PushMetrics(context.WithoutCancel(ctx)))
}

func (rt *runtime) init(logOutput io.Writer) error {
	cfg, err := app.LoadConfig(rt.configPath)
	if err != nil {
		return err
	}
	if rt.pushgateway != "" {
		cfg.Pushgateway = rt.pushgateway
	}
	if rt.logLevel != "" {
		cfg.LogLevel = rt.logLevel
	}

	rt.app, err = app.New(cfg, logOutput)
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readInput returns the contents of path, or stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// orDefault returns flag when set, else fallback.
func orDefault(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
