package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/procflow-tools/procflow/internal/model"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [network-dir]",
		Short: "List the nodes of a network",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			network, err := loadNetwork(networkDir(args, 0))
			if err != nil {
				return err
			}

			fmt.Printf("network %s: %d nodes, %d edges\n", network.ID, len(network.Nodes), len(network.Edges))

			nodes := tablewriter.NewWriter(os.Stdout)
			nodes.SetHeader([]string{"ID", "Type", "Label", "Blocks", "Parent"})
			for _, node := range network.Nodes {
				base := node.Base()
				blocks := ""
				if branch, ok := node.(*model.BranchNode); ok {
					blocks = strconv.Itoa(len(branch.Blocks))
				}
				nodes.Append([]string{base.ID, base.Type, base.Label, blocks, base.ParentID})
			}
			nodes.Render()

			if len(network.Edges) > 0 {
				edges := tablewriter.NewWriter(os.Stdout)
				edges.SetHeader([]string{"Edge", "Source", "Target", "Weight"})
				for _, edge := range network.Edges {
					edges.Append([]string{edge.ID, edge.Source, edge.Target, strconv.FormatUint(uint64(edge.Data.Weight), 10)})
				}
				edges.Render()
			}
			return nil
		},
	}
	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
