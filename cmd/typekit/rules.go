package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dkoosis/typekit/pkg/registry"
	"github.com/dkoosis/typekit/pkg/sarif"
)

func newRulesCmd(a *app) *cobra.Command {
	var asSARIF bool
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List rule definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.catalog()
			if err != nil {
				return err
			}
			rules := c.Rules()

			if asSARIF {
				run := sarif.NewRun("typekit")
				run.Tool.Driver.Version = version
				run.Tool.Driver.Rules = registry.RuleDescriptors(rules)
				log := sarif.NewLog()
				log.Runs = append(log.Runs, run)
				return sarif.NewEncoder(cmd.OutOrStdout()).Encode(log)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, r := range rules {
				fixable := "-"
				if r.Fixable {
					fixable = "fixable"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Severity, fixable, r.Name, strings.Join(r.Tags, ","))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asSARIF, "sarif", false, "emit rules as SARIF reporting descriptors")
	return cmd
}
