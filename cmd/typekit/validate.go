package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dkoosis/typekit/pkg/registry"
	"github.com/dkoosis/typekit/pkg/sarif"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check catalog integrity and report issues as SARIF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}

			run := sarif.NewRun("typekit-validate")
			run.Tool.Driver.Version = version

			verr := reg.Validate()
			var issues *registry.ValidationError
			if errors.As(verr, &issues) {
				run.Results = registry.IssuesToSARIF(a.catalogURI(), issues.Issues)
			} else if verr != nil {
				return verr
			}

			log := sarif.NewLog()
			log.Runs = append(log.Runs, run)
			if err := sarif.NewEncoder(cmd.OutOrStdout()).Encode(log); err != nil {
				return err
			}

			if log.ResultCount() > 0 {
				a.logger.Error("catalog validation failed", "issues", log.ResultCount())
				return errFindings
			}
			return nil
		},
	}
}
