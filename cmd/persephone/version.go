package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xdsai/persephone"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of persephone",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "persephone version %s\n", persephone.Version)
		},
	}
}
