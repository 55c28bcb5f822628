package llm

import "context"

// Client sends a prompt to an LLM and returns the reply text.
// Model is provider-specific (e.g. "gpt-4o-mini", "llama-3.3-70b-versatile"); empty means the client default.
type Client interface {
	Complete(ctx context.Context, model, systemPrompt, userMessage string) (string, error)
}
