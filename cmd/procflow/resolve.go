package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/procflow-tools/procflow/internal/logger"
	"github.com/procflow-tools/procflow/internal/model"
	"github.com/procflow-tools/procflow/internal/query"
	"github.com/procflow-tools/procflow/internal/scope"
)

// resolveCmd represents the resolve command.
var resolveCmd = newResolveCmd()

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <node> <block-index> <property> [network-dir]",
		Short: "Resolve a block property through the scope cascade",
		Long: `Resolve looks up a property for one block, walking the inheritance
chain configured in config.toml (block, branch, group, global by
default) and reporting which scope supplied the value.`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(_ *cobra.Command, args []string) error {
			nodeID, property := args[0], args[2]
			blockIndex, err := strconv.Atoi(args[1])
			if err != nil || blockIndex < 0 {
				return fmt.Errorf("invalid block index '%s'", args[1])
			}

			dir := networkDir(args, 3)
			network, err := loadNetwork(dir)
			if err != nil {
				return err
			}
			config, err := loadScopeConfig(dir)
			if err != nil {
				return err
			}

			branch := network.FindBranch(nodeID)
			if branch == nil {
				return fmt.Errorf("branch '%s' not found", nodeID)
			}
			if blockIndex >= len(branch.Blocks) {
				return fmt.Errorf("block index %d out of range (length: %d)", blockIndex, len(branch.Blocks))
			}
			block := &branch.Blocks[blockIndex]

			var group *model.GroupNode
			if branch.ParentID != "" {
				group = network.FindGroup(branch.ParentID)
			}

			resolver := scope.NewResolver(config)
			chain := resolver.ChainForProperty(property, block.Type)
			logger.Printf("inheritance chain for '%s' (%s): %s", property, block.Type, chainString(chain))

			value, level, found := resolver.ResolveWithScopes(property, block, branch, group, chain)
			if !found {
				for _, l := range chain {
					_, _, ok := resolver.ResolveWithScopes(property, block, branch, group, []scope.ScopeLevel{l})
					logger.Printf("  %s: %s", l, presence(ok))
				}
				registry := scope.NewPropertyRegistry(config)
				if globals := registry.ListGlobalProperties(); len(globals) > 0 {
					logger.Printf("global properties available: %s", strings.Join(globals, ", "))
				}
				return fmt.Errorf("property '%s' not found in any scope", property)
			}

			logger.Printf("resolved '%s' from %s scope", property, level)
			out, err := query.FormatResult(value)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
	return cmd
}

func chainString(chain []scope.ScopeLevel) string {
	names := make([]string, 0, len(chain))
	for _, level := range chain {
		names = append(names, level.String())
	}
	return strings.Join(names, " -> ")
}

func presence(found bool) string {
	if found {
		return "present"
	}
	return "absent"
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
