package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOutputFlag string

// exportCmd represents the export command.
var exportCmd = newExportCmd()

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [network-dir]",
		Short: "Export a network as editor JSON",
		Long: `Export reads a network directory and writes the editor document
format: a single JSON object with the node and edge lists.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			network, err := loadNetwork(networkDir(args, 0))
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(network, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to serialize network: %w", err)
			}

			if exportOutputFlag != "" {
				return os.WriteFile(exportOutputFlag, append(out, '\n'), 0o644)
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&exportOutputFlag, "output", "o", "", "write JSON to file instead of stdout")
	return cmd
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
