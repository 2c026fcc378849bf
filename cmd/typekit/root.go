package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dkoosis/typekit/pkg/catalog"
	"github.com/dkoosis/typekit/pkg/config"
	"github.com/dkoosis/typekit/pkg/logging"
	"github.com/dkoosis/typekit/pkg/registry"
)

// app carries per-invocation state shared by subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), logger: slog.New(slog.NewTextHandler(errOut, nil))}

	root := &cobra.Command{
		Use:           "typekit",
		Short:         "Inspect semantic field types and the data-quality rules they imply",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(errOut, cfg.Log)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: ./.typekit.yaml or ~/.config/typekit/config.yaml)")
	flags.String("catalog", "", "catalog YAML file overriding the embedded registry")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	_ = a.v.BindPFlag("catalog", flags.Lookup("catalog"))
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))

	root.AddCommand(
		newValidateCmd(a),
		newLineageCmd(a),
		newDeriveCmd(a),
		newTypesCmd(a),
		newRulesCmd(a),
		newFieldsCmd(a),
	)
	return root
}

// registry decodes the configured catalog without validating it.
func (a *app) registry() (*registry.Registry, error) {
	if a.cfg.Catalog == "" {
		return registry.Embedded()
	}
	return registry.LoadFile(a.cfg.Catalog)
}

// catalog loads and validates the configured catalog.
func (a *app) catalog() (*catalog.Catalog, error) {
	return catalog.Load(a.cfg.Catalog, catalog.WithLogger(a.logger))
}

// catalogURI names the catalog artifact in reports.
func (a *app) catalogURI() string {
	if a.cfg.Catalog == "" {
		return "embedded:catalog.yaml"
	}
	return a.cfg.Catalog
}

var errFindings = errors.New("findings reported")
