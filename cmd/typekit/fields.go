package main

import (
	"github.com/spf13/cobra"

	"github.com/dkoosis/typekit/pkg/fields"
	"github.com/dkoosis/typekit/pkg/sarif"
)

func newFieldsCmd(a *app) *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "fields <file>",
		Short: "Derive rule sets for a JSONL or YAML file of field declarations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalog()
			if err != nil {
				return err
			}

			decls, bad, err := fields.ReadFile(args[0])
			if err != nil {
				return err
			}

			results := fields.Derive(c.Deriver(), decls)
			if summary {
				if err := fields.Summarize(results, c.Registry()).Write(cmd.OutOrStdout()); err != nil {
					return err
				}
			} else if err := fields.WriteJSONL(cmd.OutOrStdout(), results); err != nil {
				return err
			}

			if len(bad) > 0 {
				run := sarif.NewRun("typekit-fields")
				run.Results = fields.LineErrorsToSARIF(args[0], bad)
				log := sarif.NewLog()
				log.Runs = append(log.Runs, run)
				if err := sarif.NewEncoder(cmd.ErrOrStderr()).Encode(log); err != nil {
					return err
				}
				return errFindings
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "print per-severity totals instead of JSONL")
	return cmd
}
