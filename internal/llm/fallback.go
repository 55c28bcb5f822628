package llm

import (
	"context"
	"errors"
)

// ErrNoClient is returned by an empty Fallback.
var ErrNoClient = errors.New("llm: no client configured")

// Fallback tries each client in order and returns the first successful reply. When all of
// them fail the errors are joined.
type Fallback []Client

// Complete calls each client's Complete until one succeeds.
func (f Fallback) Complete(ctx context.Context, model, systemPrompt, userMessage string) (string, error) {
	if len(f) == 0 {
		return "", ErrNoClient
	}
	var errs []error
	for _, c := range f {
		s, err := c.Complete(ctx, model, systemPrompt, userMessage)
		if err == nil {
			return s, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return "", errors.Join(errs...)
}

// Config names the backends to use; empty fields are skipped.
type Config struct {
	OpenAIKey string
	GroqKey   string
	OllamaURL string
}

// FromConfig builds a Fallback over the configured backends: Groq, then OpenAI, then Ollama.
// It returns nil when nothing is configured.
func FromConfig(cfg Config) Client {
	var f Fallback
	if cfg.GroqKey != "" {
		f = append(f, NewGroq(cfg.GroqKey))
	}
	if cfg.OpenAIKey != "" {
		f = append(f, NewOpenAI(cfg.OpenAIKey))
	}
	if cfg.OllamaURL != "" {
		f = append(f, NewOllama(cfg.OllamaURL))
	}
	if len(f) == 0 {
		return nil
	}
	if len(f) == 1 {
		return f[0]
	}
	return f
}
