package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/xdsai/persephone"
	"github.com/xdsai/persephone/internal/config"
	"github.com/xdsai/persephone/internal/presentation/tui"
	"github.com/xdsai/persephone/pkg/observability"
)

func newPlayCmd(cfg *config.Config) *cobra.Command {
	var fresh, plain, noSave bool

	cmd := &cobra.Command{
		Use:   "play [story]",
		Short: "Play a story in the terminal",
		Long: `Plays a story interactively. The run is restored from the configured save
store on start and saved again on exit (memory, --save-dir or --redis).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			story, err := loadStory(cfg, args)
			if err != nil {
				return err
			}
			logger, err := cfg.Logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			backend, err := cfg.OpenBackend(ctx)
			if err != nil {
				return err
			}
			defer backend.Close()

			engineOpts := []persephone.Option{persephone.WithLogger(logger)}
			if logger.Enabled(ctx, slog.LevelDebug) {
				engineOpts = append(engineOpts, persephone.WithLifecycleHooks(observability.LoggingHooks(logger)))
			}
			engine := persephone.New(story, engineOpts...)
			if !fresh {
				if _, err := engine.Load(ctx, backend.Store); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			interactive := false
			if f, ok := cmd.InOrStdin().(*os.File); ok {
				interactive = tui.IsInteractive(f)
			}

			opts := []tui.PlayerOption{
				tui.WithStore(backend.Store),
				tui.WithInteractive(interactive),
			}
			if interactive && !plain {
				opts = append(opts, tui.WithRenderer(tui.NewRenderer()))
				tui.PrintBanner(out, engine.Name, story.Meta.Protagonist)
			}

			if err := tui.NewPlayer(engine, cmd.InOrStdin(), out, opts...).Run(ctx); err != nil {
				return err
			}
			if noSave {
				return nil
			}
			return engine.Save(ctx, backend.Store)
		},
	}

	cmd.Flags().BoolVar(&fresh, "fresh", false, "ignore the stored run and start over")
	cmd.Flags().BoolVar(&plain, "plain", false, "print node text without markdown rendering")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run on exit")
	return cmd
}
