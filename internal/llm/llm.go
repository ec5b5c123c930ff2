package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Client abstracts chat-completion providers used for summarization.
type Client interface {
	// Complete sends a single user prompt and returns the first choice's text.
	// An empty string means the provider answered without content.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest carries one prompt and its sampling limits.
type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// ErrNotConfigured is returned by PlaceholderClient.
var ErrNotConfigured = errors.New("summarization provider is not configured")

// APIError is a non-2xx reply from the provider.
type APIError struct {
	StatusCode int
	Type       string
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, msg)
}

// IsQuotaExhausted reports whether err means the account has no balance left:
// HTTP 402, or a message mentioning "Insufficient Balance".
func IsQuotaExhausted(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusPaymentRequired {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "insufficient balance")
}

// PlaceholderClient stands in when no provider key is configured.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return "", ErrNotConfigured
}
