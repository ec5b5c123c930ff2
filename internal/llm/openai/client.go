package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"summary-backend/internal/llm"
	"summary-backend/internal/shared/resilience"
	"summary-backend/internal/shared/telemetry"
)

const (
	// DefaultBaseURL points at DeepSeek's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.deepseek.com/v1"
	DefaultModel   = "deepseek-chat"

	completionsPath  = "/chat/completions"
	maxResponseBytes = 4 << 20
)

// Options configures a Client.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Resilience resilience.Config
	HTTPClient *http.Client
}

// Client implements llm.Client against any OpenAI-compatible chat completions API.
type Client struct {
	apiKey     string
	endpoint   string
	model      string
	httpClient *http.Client
	exec       *resilience.Executor
}

// NewClient constructs a Client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("LLM_API_KEY is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		apiKey:     opts.APIKey,
		endpoint:   baseURL + completionsPath,
		model:      model,
		httpClient: httpClient,
		exec:       resilience.NewExecutor(opts.Resilience),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type errorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

// Complete sends req.Prompt as a single user message.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	var content string
	err = c.exec.Execute(ctx, "llm.chat_completion", func(ctx context.Context) error {
		text, err := c.completeOnce(ctx, payload)
		if err != nil {
			return err
		}
		content = text
		return nil
	}, classify)
	if err != nil {
		if resilience.IsCircuitOpen(err) {
			return "", fmt.Errorf("summarization provider temporarily unavailable: %w", err)
		}
		return "", err
	}
	return content, nil
}

func (c *Client) completeOnce(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("chat completion read: %w", err)
	}

	var parsed chatResponse
	parseErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &llm.APIError{StatusCode: resp.StatusCode}
		if parseErr == nil && parsed.Error != nil {
			apiErr.Message = parsed.Error.Message
			apiErr.Type = parsed.Error.Type
			if parsed.Error.Code != nil {
				apiErr.Code = fmt.Sprint(parsed.Error.Code)
			}
		}
		return "", apiErr
	}
	if parseErr != nil {
		return "", fmt.Errorf("chat completion parse: %w", parseErr)
	}
	if parsed.Error != nil {
		return "", &llm.APIError{StatusCode: resp.StatusCode, Message: parsed.Error.Message, Type: parsed.Error.Type}
	}

	fields := map[string]any{
		"model":       c.model,
		"duration_ms": time.Since(start).Milliseconds(),
		"choices":     len(parsed.Choices),
	}
	if parsed.Usage != nil {
		fields["prompt_tokens"] = parsed.Usage.PromptTokens
		fields["completion_tokens"] = parsed.Usage.CompletionTokens
		fields["total_tokens"] = parsed.Usage.TotalTokens
	}
	telemetry.Info("llm.completion", fields)

	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// classify retries timeouts, throttling and server faults; other 4xx replies
// (including 402 quota) are final and do not count against the breaker.
func classify(err error) resilience.Classification {
	if errors.Is(err, context.Canceled) {
		return resilience.Classification{}
	}
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusRequestTimeout,
			apiErr.StatusCode == http.StatusTooManyRequests,
			apiErr.StatusCode >= 500:
			return resilience.Classification{Retryable: true, RecordFailure: true}
		default:
			return resilience.Classification{}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return resilience.Classification{Retryable: false, RecordFailure: true}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.Classification{Retryable: true, RecordFailure: true}
	}
	return resilience.Classification{RecordFailure: true}
}

var _ llm.Client = (*Client)(nil)
