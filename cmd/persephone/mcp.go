package main

import (
	"github.com/spf13/cobra"
	"github.com/xdsai/persephone/internal/config"
	mcpAdapter "github.com/xdsai/persephone/pkg/adapters/mcp"
)

func newMCPCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp [story]",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes story sessions as MCP tools over Standard Input/Output, so AI agents can play runs.
Logs go to stderr to keep the JSON-RPC stream on stdout clean. Use "serve --mcp" for HTTP.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			story, err := loadStory(cfg, args)
			if err != nil {
				return err
			}
			logger, err := cfg.Logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			backend, err := cfg.OpenBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			manager := newManager(story, backend, logger)
			logger.Info("Starting persephone MCP server (stdio)", "story", story.Meta.Title, "store", backend.Kind)
			return mcpAdapter.NewServer(manager, mcpAdapter.WithLogger(logger)).ServeStdio()
		},
	}
}
