// Package llm provides text-generation clients for the audit stages.
//
// A Generator takes a system instruction and a user message and returns the
// model's reply as plain text. Callers treat the reply as untrusted free text.
package llm

import (
	"context"
	"net/http"
	"time"
)

// Generator produces text from a system instruction and a user message.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, system, user string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

// DefaultTemperature keeps answers focused; audits should be repeatable.
const DefaultTemperature = 0.2

// chatMessage is the role/content pair shared by the OpenAI and Ollama chat APIs.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func messages(system, user string) []chatMessage {
	return []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

// newHTTPClient returns a client whose transport timeout sits slightly beyond
// the per-call context timeout, so the context deadline fires first.
func newHTTPClient(perCall time.Duration) *http.Client {
	if perCall <= 0 {
		return &http.Client{}
	}
	return &http.Client{Timeout: perCall + 5*time.Second}
}

// withTimeout applies the per-call timeout when one is configured.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
