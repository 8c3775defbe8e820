// Command agentctl is a CLI for talking to MCP servers through the agent:
// an interactive chat loop, tool discovery, and direct tool invocation.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentground/agentground"
	"github.com/agentground/agentground/internal/envcfg"
	"github.com/agentground/agentground/internal/logging"
)

var (
	flagServers []string
	flagModel   string
	flagSystem  string
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "agentctl",
		Short:         "Chat with MCP servers through a tool-calling agent",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			envcfg.Load()
			level := "warn"
			if flagVerbose {
				level = "debug"
			}
			logging.Configure(logging.Config{Service: "agentctl", Level: level})
		},
	}

	root.PersistentFlags().StringArrayVar(&flagServers, "server", nil,
		"MCP server as name=target, where target is an http(s) URL or a command line (repeatable; AGENT_SERVERS env also read)")
	root.PersistentFlags().StringVar(&flagModel, "model", "", "chat model to use")
	root.PersistentFlags().StringVar(&flagSystem, "system", "", "system prompt")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newChatCmd(), newToolsCmd(), newCallCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// agentOptions assembles agent options from flags and the environment.
func agentOptions() ([]agentground.Option, error) {
	specs := flagServers
	if len(specs) == 0 {
		if env := envcfg.String("AGENT_SERVERS", ""); env != "" {
			specs = strings.Split(env, ",")
		}
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no servers configured, use --server or AGENT_SERVERS")
	}

	opts := []agentground.Option{
		agentground.WithLogger(logging.WithComponent("agent")),
	}
	for _, spec := range specs {
		name, cfg, err := parseServerSpec(strings.TrimSpace(spec))
		if err != nil {
			return nil, err
		}
		opts = append(opts, agentground.WithServer(name, cfg))
	}
	if flagModel != "" {
		opts = append(opts, agentground.WithModel(flagModel))
	}
	if flagSystem != "" {
		opts = append(opts, agentground.WithSystemPrompt(flagSystem))
	}
	return opts, nil
}

// parseServerSpec turns "name=target" into a server config. HTTP targets
// whose path ends in /sse use the legacy SSE transport, other HTTP targets
// use streamable HTTP, and anything else is run as a stdio command line.
func parseServerSpec(spec string) (string, agentground.ServerConfig, error) {
	name, target, ok := strings.Cut(spec, "=")
	if !ok || name == "" || target == "" {
		return "", nil, fmt.Errorf("invalid server spec %q, expected name=target", spec)
	}

	switch {
	case strings.HasPrefix(target, "http://"), strings.HasPrefix(target, "https://"):
		if strings.HasSuffix(strings.TrimRight(target, "/"), "/sse") {
			return name, &agentground.SSEServerConfig{URL: target}, nil
		}
		return name, &agentground.HTTPServerConfig{URL: target}, nil
	default:
		parts := strings.Fields(target)
		return name, &agentground.StdioServerConfig{
			Command: parts[0],
			Args:    parts[1:],
		}, nil
	}
}
