package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xdsai/persephone"
	"github.com/xdsai/persephone/internal/config"
	"github.com/xdsai/persephone/internal/presentation/graph"
	"github.com/xdsai/persephone/pkg/domain"
)

func newGraphCmd(cfg *config.Config) *cobra.Command {
	var withSave bool

	cmd := &cobra.Command{
		Use:   "graph [story]",
		Short: "Export the story graph visualization",
		Long:  `Outputs a Mermaid diagram (graph TD) of the story. With --with-save the stored run is drawn on top.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			story, err := loadStory(cfg, args)
			if err != nil {
				return err
			}

			var overlay *graph.GraphOverlay
			if withSave {
				overlay, err = savedOverlay(cmd.Context(), cfg, story)
				if err != nil {
					return err
				}
			}

			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(story, overlay))
			return nil
		},
	}

	cmd.Flags().BoolVar(&withSave, "with-save", false, "highlight the stored run")
	return cmd
}

func savedOverlay(ctx context.Context, cfg *config.Config, story *domain.Story) (*graph.GraphOverlay, error) {
	backend, err := cfg.OpenBackend(ctx)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	engine := persephone.New(story)
	if _, err := engine.Load(ctx, backend.Store); err != nil {
		return nil, err
	}
	return &graph.GraphOverlay{
		VisitedNodes: engine.History(),
		CurrentNode:  engine.CurrentID(),
	}, nil
}
