package summaries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"summary-backend/internal/llm"
	"summary-backend/internal/shared/metrics"
	"summary-backend/internal/shared/telemetry"
)

const (
	EmptySummaryNotice   = "Unable to generate summary."
	QuotaExhaustedNotice = "[API quota exhausted] Please check the summarization API balance."
	serviceErrorPrefix   = "[AI service error] "

	defaultTimeout     = 90 * time.Second
	defaultMaxTokens   = 1000
	defaultTemperature = 0.3
)

// Writer persists a summary onto a document record.
type Writer interface {
	UpdateSummary(ctx context.Context, id, summary, language string) error
}

// Service turns document text into a summary via an llm.Client.
type Service struct {
	LLM    llm.Client
	Writer Writer

	Timeout   time.Duration
	MaxTokens int
	// Temperature is sent as is, zero included. Nil means 0.3.
	Temperature *float32
}

// Summarize validates and bounds the content, asks the provider for a summary
// and optionally stores it on req.FileID. Provider failures come back as a
// degraded Result, never as an error; only invalid input returns an error.
func (s *Service) Summarize(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Content) == "" {
		return Result{}, fmt.Errorf("summaries.summarize: %w: fileContent is required", ErrInvalidInput)
	}

	language := NormalizeLanguage(req.Language)
	content, truncated := Truncate(req.Content)
	prompt := BuildPrompt(content, language, req.CustomPrompt)

	result := s.complete(ctx, prompt)
	result.Language = language
	result.Truncated = truncated
	metrics.IncSummary(result.Outcome.String())

	fields := map[string]any{
		"file_name": req.FileName,
		"language":  language,
		"truncated": truncated,
		"outcome":   result.Outcome.String(),
		"custom":    strings.TrimSpace(req.CustomPrompt) != "",
	}
	if req.FileID != "" {
		fields["document_id"] = req.FileID
	}
	if result.Err != nil {
		fields["err"] = result.Err
		telemetry.Warn("summaries.degraded", fields)
	} else {
		telemetry.Info("summaries.generated", fields)
	}

	if req.FileID != "" && !result.Degraded() {
		result.Persisted = s.persist(ctx, req.FileID, result.Summary, language)
	}
	return result, nil
}

func (s *Service) complete(ctx context.Context, prompt string) Result {
	if s.LLM == nil {
		return classify(llm.ErrNotConfigured)
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	maxTokens := s.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	var temperature float32 = defaultTemperature
	if s.Temperature != nil {
		temperature = *s.Temperature
	}

	start := time.Now()
	text, err := s.LLM.Complete(callCtx, llm.CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	metrics.ObserveSummaryDuration(time.Since(start))
	if err != nil {
		return classify(err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		text = EmptySummaryNotice
	}
	return Result{Summary: text, Outcome: OutcomeOK}
}

func classify(err error) Result {
	if llm.IsQuotaExhausted(err) {
		return Result{Summary: QuotaExhaustedNotice, Outcome: OutcomeQuotaExhausted, Err: err}
	}
	msg := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "the summarization request timed out"
	}
	return Result{Summary: serviceErrorPrefix + msg, Outcome: OutcomeFailed, Err: err}
}

// persist stores the summary; failures are logged and counted only.
func (s *Service) persist(ctx context.Context, id, summary, language string) bool {
	if s.Writer == nil {
		return false
	}
	if err := s.Writer.UpdateSummary(ctx, id, summary, language); err != nil {
		metrics.IncSummaryPersistFailure()
		telemetry.Warn("summaries.persist_failed", map[string]any{
			"document_id": id,
			"err":         err,
		})
		return false
	}
	return true
}
