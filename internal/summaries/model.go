package summaries

import "errors"

// ErrInvalidInput is returned when a request has no content to summarize.
var ErrInvalidInput = errors.New("invalid input")

// Request is one summarization call. CustomPrompt replaces the default
// instruction for this call only.
type Request struct {
	Content      string
	FileName     string
	Language     string
	CustomPrompt string
	FileID       string
}

// Outcome tags how a summary was produced.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeQuotaExhausted
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeQuotaExhausted:
		return "quota_exhausted"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the text shown to the user plus how it was produced. Degraded
// results carry a notice in Summary and the upstream error in Err.
type Result struct {
	Summary   string
	Outcome   Outcome
	Language  string
	Truncated bool
	Persisted bool
	Err       error
}

// Degraded reports whether Summary is a notice rather than a model answer.
func (r Result) Degraded() bool {
	return r.Outcome != OutcomeOK
}
