package agentground

import (
	"context"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// Message roles used in chat requests.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ChatMessage is one message in a chat conversation.
type ChatMessage struct {
	Role    string
	Content string
	// ToolCalls is set on assistant messages that request tool invocations.
	ToolCalls []ChatToolCall
	// ToolCallID links a tool-role message to the call it answers.
	ToolCallID string
}

// ChatToolCall is a tool invocation requested by the model.
type ChatToolCall struct {
	ID   string
	Name string
	// Arguments is the raw JSON argument string produced by the model.
	Arguments string
}

// ToolDef describes a function tool offered to the model.
type ToolDef struct {
	Name        string
	Description string
	// Parameters is the JSON Schema of the tool arguments.
	Parameters map[string]any
}

// ChatRequest is a single chat completion request.
type ChatRequest struct {
	Model    string
	Messages []ChatMessage
	Tools    []ToolDef
}

// ChatResponse is the model's reply to a ChatRequest.
type ChatResponse struct {
	Message ChatMessage
	Usage   Usage
}

// ChatModel is the model backend the agent drives. Implementations must be
// safe for use from a single goroutine at a time.
//
// The default implementation talks to the OpenAI chat completions API; tests
// and alternative backends supply their own via WithChatModel.
type ChatModel interface {
	Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// openAIModel is the default ChatModel, backed by the OpenAI API.
type openAIModel struct {
	client *openai.Client
}

// newOpenAIModel builds the default backend from agent options.
func newOpenAIModel(apiKey, baseURL string, httpClient *http.Client) *openAIModel {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &openAIModel{client: openai.NewClientWithConfig(cfg)}
}

// Complete implements ChatModel.
func (m *openAIModel) Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	oreq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(req.Messages)),
	}

	for _, msg := range req.Messages {
		omsg := openai.ChatCompletionMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		}
		for _, call := range msg.ToolCalls {
			omsg.ToolCalls = append(omsg.ToolCalls, openai.ToolCall{
				ID:   call.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		oreq.Messages = append(oreq.Messages, omsg)
	}

	for _, tool := range req.Tools {
		oreq.Tools = append(oreq.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	resp, err := m.client.CreateChatCompletion(ctx, oreq)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, &ModelError{Model: req.Model, Err: errEmptyCompletion}
	}

	choice := resp.Choices[0].Message
	out := ChatMessage{
		Role:    choice.Role,
		Content: choice.Content,
	}
	for _, call := range choice.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ChatToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}

	return &ChatResponse{
		Message: out,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
