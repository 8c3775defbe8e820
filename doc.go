// Package agentground provides an LLM agent runtime backed by Model Context
// Protocol (MCP) servers.
//
// An Agent connects to one or more MCP servers, discovers their tools, and
// exposes them to a chat model as function tools. During a run the agent
// relays the model's tool calls to the owning server and feeds the results
// back until the model produces a final answer.
//
// # Basic Usage
//
// For a single exchange, create an agent, start it, and call Run:
//
//	ctx := context.Background()
//
//	agent := agentground.NewAgent()
//	defer agent.Close()
//
//	err := agent.Start(ctx,
//	    agentground.WithServer("toolbox", &agentground.SSEServerConfig{
//	        URL: "http://localhost:9000/sse",
//	    }),
//	    agentground.WithSystemPrompt("You are a helpful assistant."),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := agent.Run(ctx, "What is the weather in Vienna?")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Output)
//
// The agent keeps conversation history between Run calls, so subsequent
// prompts continue the same conversation.
//
// # Streaming
//
// RunStream yields events as the run progresses, including every tool call
// and its result:
//
//	for ev, err := range agent.RunStream(ctx, prompt) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    switch e := ev.(type) {
//	    case *agentground.ToolCallEvent:
//	        fmt.Printf("calling %s\n", e.Tool)
//	    case *agentground.TextEvent:
//	        fmt.Println(e.Text)
//	    }
//	}
//
// # Lifecycle
//
// Agents are single-use: after Close, create a new one with NewAgent. The
// WithAgent helper manages the lifecycle for you:
//
//	err := agentground.WithAgent(ctx, func(a agentground.Agent) error {
//	    result, err := a.Run(ctx, "List the tables in the database.")
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(result.Output)
//	    return nil
//	},
//	    agentground.WithServer("explorer", &agentground.HTTPServerConfig{
//	        URL: "http://localhost:9000/mcp",
//	    }),
//	)
//
// # Model Backend
//
// By default the agent talks to the OpenAI chat completions API; set
// OPENAI_API_KEY in the environment or use WithAPIKey. Any backend can be
// substituted through the ChatModel interface with WithChatModel, which is
// also how the package tests drive the run loop. The backend is only built
// when a run needs it; tool and resource access works without a key.
//
// # Error Handling
//
// The package provides typed errors for the distinct failure domains:
//
//	result, err := agent.Run(ctx, prompt)
//	if err != nil {
//	    var toolErr *agentground.ToolError
//	    if errors.As(err, &toolErr) {
//	        log.Fatalf("tool %s on %s failed: %v", toolErr.Tool, toolErr.Server, toolErr.Err)
//	    }
//	    log.Fatal(err)
//	}
package agentground
