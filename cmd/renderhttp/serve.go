package main

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-renderhttp/pkg/config"
	"github.com/goliatone/go-renderhttp/pkg/logging"
	"github.com/goliatone/go-renderhttp/pkg/server"
)

const shutdownGrace = 10 * time.Second

type serveFlags struct {
	config string
	addr   string
}

func newServeCmd(root *rootFlags) *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the routes described by a config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, err := buildServer(cmd, root, flags)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context(), shutdownGrace)
		},
	}
	cmd.Flags().StringVarP(&flags.config, "config", "c", "renderhttp.yaml", "config file")
	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address (overrides the config)")
	return cmd
}

func buildServer(cmd *cobra.Command, root *rootFlags, flags *serveFlags) (*server.Server, error) {
	if flags.config == "" {
		return nil, errors.New("serve: --config is required")
	}
	cfg, err := config.Load(flags.config)
	if err != nil {
		return nil, err
	}
	cfg.ResolvePaths(filepath.Dir(flags.config))
	if flags.addr != "" {
		cfg.Addr = flags.addr
	}

	level, format := cfg.Log.Level, cfg.Log.Format
	if cmd.Flags().Changed("log-level") {
		level = root.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		format = root.logFormat
	}
	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(level),
		Format: logging.ParseFormat(format),
		Output: cmd.ErrOrStderr(),
	})

	return server.New(cfg, server.WithLogger(logger))
}
