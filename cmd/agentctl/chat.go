package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentground/agentground"
)

func newChatCmd() *cobra.Command {
	var showTools bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with the configured MCP servers.
Type a message and press enter; the model may call server tools before
answering. Type /exit (or press Ctrl-D) to quit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := agentOptions()
			if err != nil {
				return err
			}

			return agentground.WithAgent(cmd.Context(), func(agent agentground.Agent) error {
				fmt.Printf("Connected, %d tools available. Type /exit to quit.\n", len(agent.Tools()))

				scanner := bufio.NewScanner(os.Stdin)
				for {
					fmt.Print("> ")
					if !scanner.Scan() {
						fmt.Println()
						return scanner.Err()
					}
					line := strings.TrimSpace(scanner.Text())
					if line == "" {
						continue
					}
					if line == "/exit" || line == "/quit" {
						return nil
					}

					for event, err := range agent.RunStream(cmd.Context(), line) {
						if err != nil {
							fmt.Fprintln(os.Stderr, "Error:", err)
							break
						}
						printEvent(event, showTools)
					}
				}
			}, opts...)
		},
	}

	cmd.Flags().BoolVar(&showTools, "show-tools", true, "print tool calls as they happen")
	return cmd
}

func printEvent(event agentground.Event, showTools bool) {
	switch e := event.(type) {
	case *agentground.TextEvent:
		fmt.Println(e.Text)
	case *agentground.ToolCallEvent:
		if showTools {
			fmt.Printf("  [calling %s/%s %s]\n", e.Server, e.Tool, e.Arguments)
		}
	case *agentground.ToolResultEvent:
		if showTools && e.IsError {
			fmt.Printf("  [%s/%s failed: %s]\n", e.Server, e.Tool, e.Result)
		}
	case *agentground.ResourceUpdatedEvent:
		fmt.Printf("  [resource updated on %s: %s]\n", e.Server, e.URI)
	}
}
