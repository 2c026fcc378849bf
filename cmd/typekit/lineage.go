package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newLineageCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "lineage <type>",
		Short: "Print a type's ancestor chain, root first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalog()
			if err != nil {
				return err
			}

			path := c.Lineage(args[0])
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(path)
			}
			for _, name := range path {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the lineage as a JSON array")
	return cmd
}
