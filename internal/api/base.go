package api

import (
	"context"
	"fmt"
	"time"
)

// DefaultBaseURL is the generativelanguage API host.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// APIVersion is the REST path prefix.
const APIVersion = "v1beta"

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Transport names accepted by NewGenerator.
const (
	TransportGenAI = "genai"
	TransportREST  = "rest"
)

// Generator turns a prompt into model text.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Options selects and configures a Generator.
type Options struct {
	Transport string
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
}

// NewGenerator builds the configured transport. A missing key fails here,
// before any request is made.
func NewGenerator(ctx context.Context, opts Options) (Generator, error) {
	switch opts.Transport {
	case "", TransportGenAI:
		return NewGenAI(ctx, opts.APIKey, opts.Model, opts.BaseURL)
	case TransportREST:
		return NewClient(opts.BaseURL, opts.APIKey, opts.Model, opts.Timeout)
	default:
		return nil, fmt.Errorf("unknown transport %q (want %s or %s)", opts.Transport, TransportGenAI, TransportREST)
	}
}
