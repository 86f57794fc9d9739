package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rhobs/kubeqa/pkg/llm"
)

const checkTimeout = 15 * time.Second

func newCheckCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify cluster access and the configured LLM backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := opts.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			var errs []error

			pingCtx, cancel := context.WithTimeout(ctx, checkTimeout)
			err = a.reader.Ping(pingCtx)
			cancel()
			if err != nil {
				fmt.Fprintf(out, "cluster: FAIL (%v)\n", err)
				errs = append(errs, err)
			} else {
				fmt.Fprintln(out, "cluster: OK")
			}

			backend := a.engine.Backend()
			if backend == nil {
				fmt.Fprintln(out, "llm: disabled (keyword routing)")
				return errors.Join(errs...)
			}
			if err := checkBackend(ctx, backend); err != nil {
				fmt.Fprintf(out, "llm: FAIL %s (%v)\n", backend.Name(), err)
				errs = append(errs, err)
			} else {
				fmt.Fprintf(out, "llm: OK %s\n", backend.Name())
			}
			return errors.Join(errs...)
		},
	}
}

func checkBackend(ctx context.Context, backend llm.Backend) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	resp, err := backend.Invoke(ctx, llm.Request{
		Purpose: llm.PurposeCheck,
		Prompt:  "Reply with the single word OK.",
	})
	if err != nil {
		return err
	}
	if resp.Text == "" && len(resp.ToolCalls) == 0 {
		return errors.New("empty response")
	}
	return nil
}
