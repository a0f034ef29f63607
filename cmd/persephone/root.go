package main

import (
	"github.com/spf13/cobra"
	"github.com/xdsai/persephone"
	"github.com/xdsai/persephone/internal/config"
	"github.com/xdsai/persephone/pkg/domain"
)

func newRootCmd() *cobra.Command {
	cfg := config.FromEnv()

	rootCmd := &cobra.Command{
		Use:           "persephone",
		Short:         "Persephone is a branching narrative engine",
		Long:          `Persephone plays story graphs with gated choices, lore and saves, and hosts them over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands); the environment supplies defaults.
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfg.StoryPath, "story", "s", cfg.StoryPath, "story document, JSON or YAML ["+config.EnvStory+"]")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error ["+config.EnvLogLevel+"]")
	pf.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "redis address or URL for saves ["+config.EnvRedisAddr+"]")
	pf.StringVar(&cfg.SaveDir, "save-dir", cfg.SaveDir, "directory for save files ["+config.EnvSaveDir+"]")
	pf.DurationVar(&cfg.SaveTTL, "save-ttl", cfg.SaveTTL, "expire redis saves after this long ["+config.EnvSaveTTL+"]")

	rootCmd.AddCommand(
		newPlayCmd(&cfg),
		newValidateCmd(&cfg),
		newGraphCmd(&cfg),
		newServeCmd(&cfg),
		newMCPCmd(&cfg),
		newVersionCmd(),
	)
	return rootCmd
}

// loadStory resolves the story from the first argument or the configuration.
func loadStory(cfg *config.Config, args []string) (*domain.Story, error) {
	if len(args) > 0 {
		cfg.StoryPath = args[0]
	}
	if err := cfg.RequireStory(); err != nil {
		return nil, err
	}
	return persephone.LoadStory(cfg.StoryPath)
}
