package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTypesCmd(a *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List core types and aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.catalog()
			if err != nil {
				return err
			}
			reg := c.Registry()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if category == "" {
				for _, ct := range reg.CoreTypes() {
					fmt.Fprintf(tw, "%s\tcore\t\t%s\n", ct.Name, ct.Description)
				}
				for _, ta := range reg.TypeAliases() {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ta.Name, ta.Extends, ta.Category, ta.Description)
				}
			} else {
				for _, ta := range reg.AliasesInCategory(category) {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ta.Name, ta.Extends, ta.Category, ta.Description)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list aliases in this category")
	return cmd
}
