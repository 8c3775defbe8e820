package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agentground/agentground"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools exposed by the configured servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := agentOptions()
			if err != nil {
				return err
			}

			return agentground.WithAgent(cmd.Context(), func(agent agentground.Agent) error {
				tools := agent.Tools()
				if len(tools) == 0 {
					fmt.Println("No tools available.")
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tSERVER\tDESCRIPTION")
				for _, t := range tools {
					fmt.Fprintf(w, "%s\t%s\t%s\n", t.QualifiedName, t.Server, t.Description)
				}
				return w.Flush()
			}, opts...)
		},
	}
}
