package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ovis-hpc/ldms-appsampler/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start a Model Context Protocol server for debugging a sampler instance",
		Long: `Starts a JSON-RPC server implementing the Model Context Protocol (MCP)
over stdio, exposing list_tracked_sets, describe_catalog, and
schema_summary tools against a freshly configured sampler instance.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSampler(opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := mcp.NewServer(version, s)
			return srv.Start(ctx)
		},
	}

	opts.addFlags(cmd.Flags())
	return cmd
}
