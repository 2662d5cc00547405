package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Abhishekshinde12/Conv-AI/internal/config"
)

const analyticsPrompt = `Based on the following chat conversation between a bank customer and a bank representative you need to provide these analytics. Only answer based on the context; if you have no details simply return: No details
1. Provide a summary of the conversation so far
2. Sentiment of the user
3. If there are chats related to a loan, tell what type of loan the user is asking for
4. Based on the conversation tell the customer lead type
5. Also give the rationale behind classifying the user with that particular lead type

context:
`

// GeminiSummarizer calls the Gemini generateContent REST API with a JSON
// response schema that forces the report structure.
type GeminiSummarizer struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGeminiSummarizer creates a summarizer from analytics config.
func NewGeminiSummarizer(cfg config.AnalyticsConfig) *GeminiSummarizer {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	return &GeminiSummarizer{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string          `json:"response_mime_type"`
	ResponseSchema   json.RawMessage `json:"response_schema"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// reportSchema constrains the model output to the Report shape.
var reportSchema = json.RawMessage(`{
  "type": "OBJECT",
  "properties": {
    "summary":   {"type": "STRING"},
    "sentiment": {"type": "STRING", "enum": ["positive", "negative", "neutral"]},
    "loan_type": {"type": "STRING"},
    "lead_type": {"type": "STRING", "enum": ["hot", "warm", "cold"]},
    "rationale": {"type": "STRING"}
  },
  "required": ["summary", "sentiment", "loan_type", "lead_type", "rationale"]
}`)

// Summarize sends the transcript to Gemini and decodes the structured
// report from the model's JSON answer.
func (s *GeminiSummarizer) Summarize(ctx context.Context, messages []TranscriptEntry) (*Report, error) {
	transcript, err := json.Marshal(messages)
	if err != nil {
		return nil, err
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: analyticsPrompt + string(transcript)}}},
		},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   reportSchema,
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", s.baseURL, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analytics request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read analytics response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analytics request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var gr geminiResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("failed to decode analytics response: %w", err)
	}

	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("analytics response contained no candidates")
	}

	var report Report
	if err := json.Unmarshal([]byte(gr.Candidates[0].Content.Parts[0].Text), &report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}

	return &report, nil
}
