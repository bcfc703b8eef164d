// Package llm wraps the chat-completion APIs used for the simulated client
// and the optional LLM labeling strategy.
package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by NewProvider when no provider is selected.
var ErrNotConfigured = errors.New("llm provider not configured")

// Provider is a chat-completion backend.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	Name() string
}

// Role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is provider independent. Model and MaxTokens fall back
// to the provider's defaults when zero.
type CompletionRequest struct {
	System      string
	Messages    []Message
	Model       string
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}

const defaultMaxTokens = 1024
