package agentground

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// defaultMaxToolRounds bounds the tool-call loop of a single run.
const defaultMaxToolRounds = 8

// AgentOptions configures the behavior of an Agent.
type AgentOptions struct {
	// Model is the chat model identifier. Aliases like "4o-mini" are
	// accepted. Defaults to DefaultModel.
	Model string

	// SystemPrompt is prepended to the conversation when set.
	SystemPrompt string

	// MaxToolRounds bounds the number of model calls per run.
	MaxToolRounds int

	// Logger receives structured debug output. Disabled when unset.
	Logger zerolog.Logger

	// Servers maps server names to their connection configs.
	Servers map[string]ServerConfig

	// ChatModel overrides the default OpenAI backend when set.
	ChatModel ChatModel

	// HTTPClient is used for HTTP-based MCP transports and the default
	// model backend.
	HTTPClient *http.Client

	// APIKey authenticates against the default model backend. Falls back
	// to the OPENAI_API_KEY environment variable.
	APIKey string

	// BaseURL overrides the default model backend endpoint.
	BaseURL string

	// RequestTimeout bounds each individual model call. Zero means no
	// per-call deadline beyond the run context.
	RequestTimeout time.Duration
}

// Option configures AgentOptions using the functional options pattern.
type Option func(*AgentOptions)

// applyOptions applies functional options over defaults.
func applyOptions(opts []Option) *AgentOptions {
	options := &AgentOptions{
		Model:         DefaultModel,
		MaxToolRounds: defaultMaxToolRounds,
		Logger:        zerolog.Nop(),
		Servers:       make(map[string]ServerConfig),
	}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithModel selects the chat model, e.g. "gpt-4o" or the alias "4o-mini".
func WithModel(model string) Option {
	return func(o *AgentOptions) {
		o.Model = resolveModel(model)
	}
}

// WithSystemPrompt sets the system message for the conversation.
func WithSystemPrompt(prompt string) Option {
	return func(o *AgentOptions) {
		o.SystemPrompt = prompt
	}
}

// WithMaxToolRounds bounds the number of model calls per run.
// Values below one are ignored.
func WithMaxToolRounds(n int) Option {
	return func(o *AgentOptions) {
		if n >= 1 {
			o.MaxToolRounds = n
		}
	}
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger zerolog.Logger) Option {
	return func(o *AgentOptions) {
		o.Logger = logger
	}
}

// WithServer registers an MCP server under the given name. The name becomes
// the prefix of the server's qualified tool names. May be repeated; a later
// registration under the same name replaces the earlier one.
func WithServer(name string, cfg ServerConfig) Option {
	return func(o *AgentOptions) {
		o.Servers[name] = cfg
	}
}

// WithChatModel injects an alternative model backend.
func WithChatModel(model ChatModel) Option {
	return func(o *AgentOptions) {
		o.ChatModel = model
	}
}

// WithHTTPClient sets the HTTP client used for HTTP-based MCP transports
// and the default model backend.
func WithHTTPClient(client *http.Client) Option {
	return func(o *AgentOptions) {
		o.HTTPClient = client
	}
}

// WithAPIKey sets the API key for the default model backend.
func WithAPIKey(key string) Option {
	return func(o *AgentOptions) {
		o.APIKey = key
	}
}

// WithBaseURL overrides the endpoint of the default model backend. Useful
// for OpenAI-compatible gateways.
func WithBaseURL(url string) Option {
	return func(o *AgentOptions) {
		o.BaseURL = url
	}
}

// WithRequestTimeout bounds each individual model call.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *AgentOptions) {
		o.RequestTimeout = d
	}
}
