package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentground/agentground"
)

func newCallCmd() *cobra.Command {
	var argsJSON string

	cmd := &cobra.Command{
		Use:   "call <server>__<tool>",
		Short: "Invoke a single tool directly, bypassing the model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var toolArgs map[string]any
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &toolArgs); err != nil {
					return fmt.Errorf("parse --args: %w", err)
				}
			}

			opts, err := agentOptions()
			if err != nil {
				return err
			}

			return agentground.WithAgent(cmd.Context(), func(agent agentground.Agent) error {
				record, err := agent.CallTool(cmd.Context(), args[0], toolArgs)
				if err != nil {
					return err
				}
				if record.IsError {
					return fmt.Errorf("tool error: %s", record.Result)
				}
				fmt.Fprintln(cmd.OutOrStdout(), record.Result)
				return nil
			}, opts...)
		},
	}

	cmd.Flags().StringVar(&argsJSON, "args", "", "tool arguments as a JSON object")
	return cmd
}
