package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/procflow-tools/procflow/internal/query"
	"github.com/procflow-tools/procflow/internal/schema"
	"github.com/procflow-tools/procflow/internal/scope"
	"github.com/procflow-tools/procflow/internal/units"
)

var (
	queryUnitsFlag         []string
	querySchemasFlag       string
	querySchemaVersionFlag string
)

// queryCmd represents the query command.
var queryCmd = newQueryCmd()

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <expression> [network-dir]",
		Short: "Evaluate a query path against a network",
		Long: `Query evaluates a slash-delimited path expression and prints the
result as JSON.

Examples:
  procflow query branch-4
  procflow query branch-4/blocks/1:3
  procflow query "branch-4/blocks/[type=Pipe]"
  procflow query "branch-4/blocks/0/pressure?scope=branch,global"
  procflow query "nodes[type=branch]"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := networkDir(args, 1)
			network, err := loadNetwork(dir)
			if err != nil {
				return err
			}
			config, err := loadScopeConfig(dir)
			if err != nil {
				return err
			}

			path, err := query.Parse(args[0])
			if err != nil {
				return err
			}

			registry := schema.DefaultRegistry()
			if querySchemasFlag != "" {
				registry, err = schema.LoadRegistry(querySchemasFlag)
				if err != nil {
					return err
				}
			}

			overrides, err := parseUnitOverrides(queryUnitsFlag)
			if err != nil {
				return err
			}

			exec := query.NewExecutorWithResolver(network, scope.NewResolver(config))
			exec.SetUnitFormatting(
				units.NewFormatter(units.Preferences{Query: overrides}),
				registry, querySchemaVersionFlag)

			result, err := exec.Execute(path)
			if err != nil {
				return err
			}
			out, err := query.FormatResult(result)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&queryUnitsFlag, "unit", "u", nil, "display unit override as property=unit (can be repeated)")
	cmd.Flags().StringVar(&querySchemasFlag, "schemas", "", "block schema directory (defaults to the embedded library)")
	cmd.Flags().StringVar(&querySchemaVersionFlag, "schema-version", "1.0.0", "block schema version for display metadata")
	return cmd
}

func parseUnitOverrides(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	overrides := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		property, unit, found := strings.Cut(pair, "=")
		if !found || property == "" || unit == "" {
			return nil, fmt.Errorf("invalid unit override '%s', expected property=unit", pair)
		}
		overrides[property] = unit
	}
	return overrides, nil
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
