package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"speechcore/internal/inspect"
)

func inspectCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "inspect <jq-expression>",
		Short: "Run a jq expression against a JSON snapshot captured during a support session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(file, args[0])
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to a JSON snapshot (defaults to stdin)")
	return cmd
}

func runInspect(file, expr string) error {
	var snapshot []byte
	var err error
	if file == "" {
		snapshot, err = io.ReadAll(os.Stdin)
	} else {
		snapshot, err = os.ReadFile(file)
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	results, err := inspect.RunExpr(expr, snapshot)
	if err != nil {
		fmt.Println(styleError.Render(err.Error()))
		return err
	}
	for _, r := range results {
		fmt.Println(r)
	}
	return nil
}
