package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xdsai/persephone/internal/config"
	"github.com/xdsai/persephone/internal/validator"
)

func newValidateCmd(cfg *config.Config) *cobra.Command {
	var asJSON, strict bool

	cmd := &cobra.Command{
		Use:   "validate [story]",
		Short: "Check the story graph for consistency",
		Long:  `Reports dangling targets, unreachable nodes, unknown operators and unparsable requirements.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			story, err := loadStory(cfg, args)
			if err != nil {
				return err
			}
			report := validator.Validate(story)
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				for _, issue := range report.Issues {
					fmt.Fprintln(out, issue)
				}
			}

			if err := report.Err(); err != nil {
				return err
			}
			if strict && len(report.Warnings()) > 0 {
				return fmt.Errorf("found %d warnings", len(report.Warnings()))
			}
			if !asJSON {
				fmt.Fprintln(out, "Story is valid!")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on warnings too")
	return cmd
}
