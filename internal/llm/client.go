// Package llm provides chat-completion client interfaces and implementations.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingAPIKey is returned when a client is constructed without a
// credential. Raised eagerly; never retried.
var ErrMissingAPIKey = errors.New("llm: API key is not set")

// UnsupportedModelError is returned when a model name falls outside the
// active provider's accepted family. This is a deliberate guard against
// silently routing a request to an unintended provider; it is raised before
// any network I/O.
type UnsupportedModelError struct {
	Model string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("llm: unsupported model: %s", e.Model)
}

// CompletionRequest represents a single completion request.
type CompletionRequest struct {
	Model string
	// System is the system prompt for the call.
	System string
	// MemoryContext, when non-empty, is appended to the system prompt as a
	// "Memory context:" block.
	MemoryContext string
	Messages      []ChatMessage
	MaxTokens     int
	Temperature   float64
	TopP          float64
}

// ChatMessage represents a chat message for the model backend.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the interface for chat-completion providers. Complete issues
// exactly one synchronous request; it does not retry, and transport errors
// propagate unchanged to the caller.
type Client interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string

	// FamilyPrefix returns the accepted model-name prefix for this provider.
	FamilyPrefix() string

	// Models returns available models.
	Models() []string
}

// Provider is the type of chat-completion provider.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// NewClient creates a new client for the given provider.
func NewClient(provider Provider, apiKey string) (Client, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey)
	default:
		return NewAnthropicClient(apiKey)
	}
}

// checkModel validates a model name against a provider family prefix and
// returns the normalized name.
func checkModel(prefix, model string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(model))
	if !strings.HasPrefix(normalized, prefix) {
		return "", &UnsupportedModelError{Model: model}
	}
	return normalized, nil
}

// systemWithContext joins the system prompt with an optional memory-context
// block.
func systemWithContext(system, memoryContext string) string {
	if memoryContext == "" {
		return system
	}
	return system + "\n\nMemory context:\n" + memoryContext
}
