package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/dkoosis/typekit/pkg/derive"
)

func newDeriveCmd(a *app) *cobra.Command {
	var (
		key     string
		notNull bool
		exclude []string
	)
	cmd := &cobra.Command{
		Use:   "derive <type>",
		Short: "Derive the rule set for a field of the given type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyType, err := derive.ParseKeyType(key)
			if err != nil {
				return err
			}
			c, err := a.catalog()
			if err != nil {
				return err
			}

			set := c.DeriveRules(args[0], keyType, !notNull, exclude...)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(set)
		},
	}
	cmd.Flags().StringVar(&key, "key", "none", "key type: none, primary_key or unique")
	cmd.Flags().BoolVar(&notNull, "not-null", false, "declare the field non-nullable")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "rule ids to suppress (comma separated)")
	return cmd
}
