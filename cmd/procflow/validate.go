package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/procflow-tools/procflow/internal/logger"
	"github.com/procflow-tools/procflow/internal/schema"
	"github.com/procflow-tools/procflow/internal/validator"
)

var validateSchemasFlag string

// validateCmd represents the validate command.
var validateCmd = newValidateCmd()

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <version> [network-dir]",
		Short: "Validate network blocks against a schema version",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			version := args[0]

			registry := schema.DefaultRegistry()
			if validateSchemasFlag != "" {
				var err error
				registry, err = schema.LoadRegistry(validateSchemasFlag)
				if err != nil {
					return err
				}
			}
			if !registry.HasVersion(version) {
				return fmt.Errorf("unknown schema version '%s' (available: %s)",
					version, strings.Join(registry.Versions(), ", "))
			}

			network, err := loadNetwork(networkDir(args, 1))
			if err != nil {
				return err
			}

			v := validator.NewValidator(registry, version)
			v.ValidateNetwork(network)
			for _, d := range v.Diagnostics {
				logger.Println(d.String())
			}
			if v.HasErrors() {
				return errors.New("validation failed")
			}
			logger.Printf("network is valid against version %s", version)
			return nil
		},
	}
	cmd.Flags().StringVar(&validateSchemasFlag, "schemas", "", "block schema directory (defaults to the embedded library)")
	return cmd
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
