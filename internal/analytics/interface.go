package analytics

import (
	"context"
)

// TranscriptEntry is one utterance of the transcript handed to the
// summarizer. It mirrors the broadcast envelope the clients accumulate.
type TranscriptEntry struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Report is the structured lead report produced from a transcript.
type Report struct {
	Summary   string `json:"summary"`
	Sentiment string `json:"sentiment"` // positive, negative, neutral
	LoanType  string `json:"loan_type"`
	LeadType  string `json:"lead_type"` // hot, warm, cold
	Rationale string `json:"rationale"`
}

// Summarizer turns an ordered transcript into a structured report.
// The implementation is an external LLM collaborator; failures surface
// to the caller unchanged.
type Summarizer interface {
	Summarize(ctx context.Context, messages []TranscriptEntry) (*Report, error)
}
