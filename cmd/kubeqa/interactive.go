package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rhobs/kubeqa/pkg/agent"
	"github.com/rhobs/kubeqa/pkg/compose"
)

const (
	prompt            = "kubeqa> "
	shellHistoryLimit = 10
)

func newInteractiveCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"shell"},
		Short:   "Ask questions in an interactive session",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := opts.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "kubeqa %s (%s mode). Type 'help' for examples, 'quit' to exit.\n", version, a.engine.Mode())
			return runShell(ctx, a.engine.NewSession(uuid.NewString()), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runShell reads one question per line until quit or end of input.
func runShell(ctx context.Context, session *agent.Session, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit", "q":
			return nil
		case "help", "h":
			printExamples(out)
			continue
		case "history":
			printHistory(out, session)
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		resp := session.Answer(ctx, line)
		fmt.Fprintf(out, "%s\n\n", resp.Text)
	}
}

func printExamples(out io.Writer) {
	fmt.Fprintln(out, "Example questions:")
	for _, group := range compose.Examples() {
		fmt.Fprintf(out, "\n%s\n", group.Category)
		for _, q := range group.Queries {
			fmt.Fprintf(out, "  - %s\n", q)
		}
	}
	fmt.Fprintln(out, "\nCommands: help, history, quit")
}

func printHistory(out io.Writer, session *agent.Session) {
	items := agent.Summarize(session.RecentHistory(shellHistoryLimit))
	if len(items) == 0 {
		fmt.Fprintln(out, "No questions asked yet.")
		return
	}
	for i, item := range items {
		fmt.Fprintf(out, "%d. [%s] %s (%s)\n", i+1, item.Timestamp.Format("15:04:05"), item.Query, item.Status)
	}
}
