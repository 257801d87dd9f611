package api

import (
	"errors"
	"fmt"
	"strings"
)

// --- Errors ---

// ErrMissingAPIKey is returned when a generator is built without a credential.
var ErrMissingAPIKey = errors.New("missing Gemini API key: set api_key in config or GEMINI_API_KEY")

// ErrInvalidAPIKey is returned when the service rejects the credential.
var ErrInvalidAPIKey = errors.New("rejected Gemini API key: check api_key in config or GEMINI_API_KEY")

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// StatusError is an HTTP-level failure from the REST transport.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Unwrap exposes ErrInvalidAPIKey for rejected credentials.
func (e *StatusError) Unwrap() error {
	if authRejected(e.StatusCode, e.Message) {
		return ErrInvalidAPIKey
	}
	return nil
}

// IsAuthError reports whether err is a missing or rejected credential.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrMissingAPIKey) || errors.Is(err, ErrInvalidAPIKey)
}

// authRejected classifies a failed response. Google answers a bad key with
// 400 INVALID_ARGUMENT and an API key message, and a revoked or restricted
// one with 401 or 403.
func authRejected(code int, message string) bool {
	switch code {
	case 401, 403:
		return true
	case 400:
		upper := strings.ToUpper(message)
		return strings.Contains(upper, "API_KEY_INVALID") || strings.Contains(upper, "API KEY")
	}
	return false
}

// --- Requests ---

// GenerateRequest is one single-turn prompt.
type GenerateRequest struct {
	Prompt      string
	System      string
	JSON        bool
	Temperature *float32
}

// --- Wire types (REST) ---

type part struct {
	Text string `json:"text,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      *float32 `json:"temperature,omitempty"`
	ResponseMIMEType string   `json:"responseMimeType,omitempty"`
}

type generateContentRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type generateContentResponse struct {
	Candidates     []candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
}

func (r generateContentResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}
