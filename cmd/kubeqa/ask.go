package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rhobs/kubeqa/pkg/resultutil"
)

func newAskCommand(opts *globalOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ask QUERY...",
		Short: "Answer a single question and exit",
		Example: `  kubeqa ask "how many pods are running in kube-system?"
  kubeqa ask --json what nodes do we have`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			resp := a.engine.NewSession(uuid.NewString()).Answer(ctx, strings.Join(args, " "))
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resultutil.NewAnswerOutput(resp))
			}
			_, err = fmt.Fprintln(out, resp.Text)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the answer with routing decisions and raw records as JSON")
	return cmd
}
