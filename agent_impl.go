package agentground

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// resourceUpdateBuffer bounds pending resource-updated notifications.
// Updates beyond the buffer are dropped with a log entry.
const resourceUpdateBuffer = 64

// serverConn is one live MCP server connection.
type serverConn struct {
	name    string
	session *mcp.ClientSession
	tools   []*mcp.Tool
}

// toolBinding resolves a qualified tool name to its server and definition.
type toolBinding struct {
	conn      *serverConn
	tool      *mcp.Tool
	qualified string
	// params is the tool's input schema as a plain map, as handed to the
	// model backend.
	params map[string]any
}

type agentImpl struct {
	mu        sync.Mutex
	options   *AgentOptions
	log       zerolog.Logger
	model     ChatModel
	conns     map[string]*serverConn
	bindings  map[string]*toolBinding
	toolDefs  []ToolDef
	history   []ChatMessage
	updates   chan ResourceUpdatedEvent
	sessionID string
	started   bool
	closed    bool
}

func newAgentImpl() *agentImpl {
	return &agentImpl{
		log:       zerolog.Nop(),
		sessionID: ulid.Make().String(),
		updates:   make(chan ResourceUpdatedEvent, resourceUpdateBuffer),
	}
}

// Start implements Agent.
func (a *agentImpl) Start(ctx context.Context, opts ...Option) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if a.started {
		return ErrAlreadyStarted
	}

	options := applyOptions(opts)
	if len(options.Servers) == 0 {
		return ErrNoServers
	}

	a.log = options.Logger.With().
		Str("component", "agent").
		Str("session_id", a.sessionID).
		Logger()

	conns := make(map[string]*serverConn, len(options.Servers))
	var connsMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for name, cfg := range options.Servers {
		g.Go(func() error {
			conn, err := a.connect(gctx, name, cfg, options)
			if err != nil {
				return &ConnectionError{Server: name, Err: err}
			}
			connsMu.Lock()
			conns[name] = conn
			connsMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, conn := range conns {
			_ = conn.session.Close()
		}
		return err
	}

	bindings := make(map[string]*toolBinding)
	for _, conn := range conns {
		for _, tool := range conn.tools {
			binding, err := newToolBinding(conn, tool)
			if err != nil {
				a.log.Warn().
					Str("server", conn.name).
					Str("tool", tool.Name).
					Err(err).
					Msg("skipping tool with unusable schema")
				continue
			}
			bindings[binding.qualified] = binding
		}
	}

	defs := make([]ToolDef, 0, len(bindings))
	for _, b := range bindings {
		defs = append(defs, ToolDef{
			Name:        b.qualified,
			Description: b.tool.Description,
			Parameters:  b.params,
		})
	}
	slices.SortFunc(defs, func(x, y ToolDef) int {
		return strings.Compare(x.Name, y.Name)
	})

	if options.SystemPrompt != "" {
		a.history = append(a.history, ChatMessage{
			Role:    RoleSystem,
			Content: options.SystemPrompt,
		})
	}

	a.options = options
	a.model = options.ChatModel
	a.conns = conns
	a.bindings = bindings
	a.toolDefs = defs
	a.started = true

	a.log.Info().
		Int("servers", len(conns)).
		Int("tools", len(bindings)).
		Msg("agent started")

	return nil
}

// connect dials one MCP server and lists its tools.
func (a *agentImpl) connect(ctx context.Context, name string, cfg ServerConfig, options *AgentOptions) (*serverConn, error) {
	transport, err := transportFor(cfg, options.HTTPClient)
	if err != nil {
		return nil, err
	}

	client := mcp.NewClient(
		&mcp.Implementation{Name: "agentground", Version: Version},
		&mcp.ClientOptions{
			ResourceUpdatedHandler: func(_ context.Context, req *mcp.ResourceUpdatedNotificationRequest) {
				a.pushUpdate(name, req.Params.URI)
			},
		},
	)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, err
	}

	listed, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("list tools: %w", err)
	}

	a.log.Debug().
		Str("server", name).
		Int("tools", len(listed.Tools)).
		Msg("connected to MCP server")

	return &serverConn{name: name, session: session, tools: listed.Tools}, nil
}

// newToolBinding converts a discovered tool into its model-facing form.
func newToolBinding(conn *serverConn, tool *mcp.Tool) (*toolBinding, error) {
	params := map[string]any{"type": "object"}
	if tool.InputSchema != nil {
		raw, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("marshal input schema: %w", err)
		}
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, fmt.Errorf("unmarshal input schema: %w", err)
		}
	}

	return &toolBinding{
		conn:      conn,
		tool:      tool,
		qualified: qualifyToolName(conn.name, tool.Name),
		params:    params,
	}, nil
}

// pushUpdate queues a resource-updated notification for the next run.
func (a *agentImpl) pushUpdate(server, uri string) {
	ev := ResourceUpdatedEvent{Server: server, URI: uri}
	select {
	case a.updates <- ev:
	default:
		a.log.Warn().Str("server", server).Str("uri", uri).
			Msg("dropping resource update, buffer full")
	}
}

// checkReadyLocked verifies the agent is usable. Callers hold a.mu.
func (a *agentImpl) checkReadyLocked() error {
	if a.closed {
		return ErrClosed
	}
	if !a.started {
		return ErrNotStarted
	}
	return nil
}

// Run implements Agent.
func (a *agentImpl) Run(ctx context.Context, prompt string) (*RunResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkReadyLocked(); err != nil {
		return nil, err
	}

	return a.runLocked(ctx, prompt, func(Event) bool { return true })
}

// RunStream implements Agent.
func (a *agentImpl) RunStream(ctx context.Context, prompt string) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		a.mu.Lock()
		defer a.mu.Unlock()

		if err := a.checkReadyLocked(); err != nil {
			yield(nil, err)
			return
		}

		stopped := false
		emit := func(ev Event) bool {
			if stopped {
				return false
			}
			if !yield(ev, nil) {
				stopped = true
			}
			return !stopped
		}

		if _, err := a.runLocked(ctx, prompt, emit); err != nil && !stopped {
			yield(nil, err)
		}
	}
}

// runLocked drives the tool-call loop. Callers hold a.mu. The emit callback
// reports whether the consumer wants more events; the run itself continues
// either way so conversation history stays consistent.
func (a *agentImpl) runLocked(ctx context.Context, prompt string, emit func(Event) bool) (*RunResult, error) {
	a.history = append(a.history, ChatMessage{Role: RoleUser, Content: prompt})

	result := &RunResult{}
	for round := 1; round <= a.options.MaxToolRounds; round++ {
		a.drainUpdates(emit)

		resp, err := a.complete(ctx)
		if err != nil {
			return nil, err
		}
		result.Rounds = round
		result.Usage.add(resp.Usage)

		msg := resp.Message
		a.history = append(a.history, msg)

		if len(msg.ToolCalls) == 0 {
			result.Output = msg.Content
			emit(&TextEvent{Text: msg.Content})
			a.drainUpdates(emit)
			emit(&DoneEvent{Rounds: result.Rounds, Usage: result.Usage})
			return result, nil
		}

		for i, call := range msg.ToolCalls {
			record, toolMsg, err := a.executeToolCall(ctx, call, emit)
			if err != nil {
				// The assistant message carrying the tool calls is already
				// in history, and the model API rejects a conversation
				// where a tool call has no tool reply. Answer the failed
				// call and any calls we never reached before aborting.
				a.history = append(a.history, toolMessage(call.ID, fmt.Sprintf("tool call failed: %v", err)))
				for _, pending := range msg.ToolCalls[i+1:] {
					a.history = append(a.history, toolMessage(pending.ID, "tool call not attempted: an earlier call in this batch failed"))
				}
				return nil, err
			}
			result.ToolCalls = append(result.ToolCalls, *record)
			a.history = append(a.history, toolMsg)
		}
	}

	return nil, ErrMaxToolRounds
}

// complete performs one model call, applying the per-call timeout. The
// default backend is built on first use so that tool-only workflows never
// need an API key. Callers hold a.mu.
func (a *agentImpl) complete(ctx context.Context) (*ChatResponse, error) {
	if a.model == nil {
		key := a.options.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key == "" {
			return nil, ErrMissingAPIKey
		}
		a.model = newOpenAIModel(key, a.options.BaseURL, a.options.HTTPClient)
	}

	cctx := ctx
	if a.options.RequestTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, a.options.RequestTimeout)
		defer cancel()
	}

	resp, err := a.model.Complete(cctx, &ChatRequest{
		Model:    a.options.Model,
		Messages: a.history,
		Tools:    a.toolDefs,
	})
	if err != nil {
		var modelErr *ModelError
		if !errors.As(err, &modelErr) {
			err = &ModelError{Model: a.options.Model, Err: err}
		}
		return nil, err
	}
	return resp, nil
}

// executeToolCall dispatches one model-requested tool call to its server.
// Unknown tools and server-flagged errors come back as tool output so the
// model can recover; protocol failures abort the run with a ToolError.
func (a *agentImpl) executeToolCall(ctx context.Context, call ChatToolCall, emit func(Event) bool) (*ToolCallRecord, ChatMessage, error) {
	args := json.RawMessage(call.Arguments)
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	binding, ok := a.bindings[call.Name]
	if !ok {
		a.log.Warn().Str("tool", call.Name).Msg("model requested unknown tool")
		record := &ToolCallRecord{
			Tool:      call.Name,
			Arguments: args,
			Result:    fmt.Sprintf("unknown tool: %s", call.Name),
			IsError:   true,
		}
		return record, toolMessage(call.ID, record.Result), nil
	}

	emit(&ToolCallEvent{
		Server:    binding.conn.name,
		Tool:      binding.tool.Name,
		Arguments: args,
	})

	record, err := a.invoke(ctx, binding, args)
	if err != nil {
		return nil, ChatMessage{}, err
	}

	emit(&ToolResultEvent{
		Server:   record.Server,
		Tool:     record.Tool,
		Result:   record.Result,
		IsError:  record.IsError,
		Duration: record.Duration,
	})

	return record, toolMessage(call.ID, record.Result), nil
}

// invoke calls a bound tool and flattens its result to text.
func (a *agentImpl) invoke(ctx context.Context, binding *toolBinding, args json.RawMessage) (*ToolCallRecord, error) {
	var arguments map[string]any
	if err := json.Unmarshal(args, &arguments); err != nil {
		// The model produced malformed JSON; report it as tool output.
		return &ToolCallRecord{
			Server:    binding.conn.name,
			Tool:      binding.tool.Name,
			Arguments: args,
			Result:    fmt.Sprintf("invalid tool arguments: %v", err),
			IsError:   true,
		}, nil
	}

	start := time.Now()
	res, err := binding.conn.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      binding.tool.Name,
		Arguments: arguments,
	})
	elapsed := time.Since(start)
	if err != nil {
		return nil, &ToolError{Server: binding.conn.name, Tool: binding.tool.Name, Err: err}
	}

	record := &ToolCallRecord{
		Server:    binding.conn.name,
		Tool:      binding.tool.Name,
		Arguments: args,
		Result:    flattenContent(res.Content),
		IsError:   res.IsError,
		Duration:  elapsed,
	}

	a.log.Debug().
		Str("server", record.Server).
		Str("tool", record.Tool).
		Bool("is_error", record.IsError).
		Dur("duration", elapsed).
		Msg("tool call completed")

	return record, nil
}

// drainUpdates forwards queued resource updates to the consumer.
func (a *agentImpl) drainUpdates(emit func(Event) bool) {
	for {
		select {
		case ev := <-a.updates:
			emit(&ev)
		default:
			return
		}
	}
}

// Tools implements Agent.
func (a *agentImpl) Tools() []ToolInfo {
	a.mu.Lock()
	defer a.mu.Unlock()

	infos := make([]ToolInfo, 0, len(a.bindings))
	for _, b := range a.bindings {
		infos = append(infos, ToolInfo{
			Server:        b.conn.name,
			Name:          b.tool.Name,
			QualifiedName: b.qualified,
			Description:   b.tool.Description,
			InputSchema:   b.tool.InputSchema,
		})
	}
	slices.SortFunc(infos, func(x, y ToolInfo) int {
		return strings.Compare(x.QualifiedName, y.QualifiedName)
	})
	return infos
}

// CallTool implements Agent.
func (a *agentImpl) CallTool(ctx context.Context, qualifiedName string, args map[string]any) (*ToolCallRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkReadyLocked(); err != nil {
		return nil, err
	}

	binding, ok := a.bindings[qualifiedName]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", qualifiedName)
	}

	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("marshal arguments: %w", err)
	}

	return a.invoke(ctx, binding, raw)
}

// ReadResource implements Agent.
func (a *agentImpl) ReadResource(ctx context.Context, server, uri string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkReadyLocked(); err != nil {
		return "", err
	}

	conn, ok := a.conns[server]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownServer, server)
	}

	res, err := conn.session.ReadResource(ctx, &mcp.ReadResourceParams{URI: uri})
	if err != nil {
		return "", fmt.Errorf("read resource %s: %w", uri, err)
	}

	var parts []string
	for _, c := range res.Contents {
		if c.Text != "" {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// SubscribeResource implements Agent.
func (a *agentImpl) SubscribeResource(ctx context.Context, server, uri string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkReadyLocked(); err != nil {
		return err
	}

	conn, ok := a.conns[server]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownServer, server)
	}

	if err := conn.session.Subscribe(ctx, &mcp.SubscribeParams{URI: uri}); err != nil {
		return fmt.Errorf("subscribe %s: %w", uri, err)
	}
	return nil
}

// Close implements Agent.
func (a *agentImpl) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	for _, conn := range a.conns {
		if err := conn.session.Close(); err != nil {
			a.log.Warn().Str("server", conn.name).Err(err).
				Msg("failed to close MCP session")
		}
	}
	a.conns = nil
	a.bindings = nil

	return nil
}

// toolMessage builds the tool-role message answering a tool call.
func toolMessage(callID, content string) ChatMessage {
	return ChatMessage{
		Role:       RoleTool,
		Content:    content,
		ToolCallID: callID,
	}
}

// flattenContent renders MCP content blocks as plain text for the model.
func flattenContent(content []mcp.Content) string {
	var parts []string
	for _, c := range content {
		switch v := c.(type) {
		case *mcp.TextContent:
			parts = append(parts, v.Text)
		case *mcp.ImageContent:
			parts = append(parts, fmt.Sprintf("[image %s, %d bytes]", v.MIMEType, len(v.Data)))
		case *mcp.AudioContent:
			parts = append(parts, fmt.Sprintf("[audio %s, %d bytes]", v.MIMEType, len(v.Data)))
		case *mcp.ResourceLink:
			parts = append(parts, fmt.Sprintf("[resource %s]", v.URI))
		case *mcp.EmbeddedResource:
			if v.Resource != nil && v.Resource.Text != "" {
				parts = append(parts, v.Resource.Text)
			}
		}
	}
	return strings.Join(parts, "\n")
}
