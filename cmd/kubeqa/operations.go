package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rhobs/kubeqa/pkg/catalog"
)

func newOperationsCommand(_ *globalOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "operations",
		Short: "List the read-only operations questions can be routed to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ops := catalog.Default().Describe()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(ops)
			}
			printOperations(cmd.OutOrStdout(), ops)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the operations as JSON")
	return cmd
}

func printOperations(out io.Writer, ops []catalog.OperationInfo) {
	for _, op := range ops {
		fmt.Fprintf(out, "%s\n  %s\n", op.Name, op.Description)
		for _, p := range op.Params {
			var notes []string
			if p.Required {
				notes = append(notes, "required")
			}
			if len(p.Enum) > 0 {
				notes = append(notes, "one of "+strings.Join(p.Enum, ", "))
			}
			if p.Default != nil {
				notes = append(notes, fmt.Sprintf("default %v", p.Default))
			}
			line := fmt.Sprintf("  --%s (%s)", p.Name, p.Type)
			if len(notes) > 0 {
				line += " [" + strings.Join(notes, "; ") + "]"
			}
			fmt.Fprintf(out, "%s %s\n", line, p.Description)
		}
		fmt.Fprintln(out)
	}
}
