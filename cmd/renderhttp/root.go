package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-renderhttp/internal/prompt"
	"github.com/goliatone/go-renderhttp/pkg/logging"
)

type deps struct {
	prompter prompt.Driver
}

type rootFlags struct {
	logLevel  string
	logFormat string
}

func newRootCmd(d deps) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "renderhttp",
		Short:         "Render templates into HTTP bodies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "log format (text, json)")

	cmd.AddCommand(newRenderCmd(d, flags))
	cmd.AddCommand(newServeCmd(flags))
	return cmd
}

func (f *rootFlags) logger(cmd *cobra.Command) *slog.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(f.logLevel),
		Format: logging.ParseFormat(f.logFormat),
		Output: cmd.ErrOrStderr(),
	})
}
