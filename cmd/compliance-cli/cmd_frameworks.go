package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Boakye-20/ai-compliance-tool/internal/catalog"
)

var frameworksCmd = &cobra.Command{
	Use:   "frameworks",
	Short: "List the supported frameworks and their composite weights",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CODE\tFRAMEWORK\tWEIGHT\tDESCRIPTION")
		for _, info := range catalog.Default().Infos() {
			fmt.Fprintf(tw, "%s\t%s\t%.0f%%\t%s\n", info.Code, info.Label, info.Weight*100, info.Description)
		}
		return tw.Flush()
	},
}
