package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	OpenAIBaseURL = "https://api.openai.com/v1"
	GroqBaseURL   = "https://api.groq.com/openai/v1"

	// DefaultOllamaBaseURL is the default base URL for a local Ollama server.
	DefaultOllamaBaseURL = "http://localhost:11434"
	// DefaultOllamaModel is used when no local model name is given.
	DefaultOllamaModel = "qwen2.5-coder"
)

// Chat implements Client against a chat endpoint. The wire decides the path and the
// request and response shapes: OpenAI-compatible /chat/completions (OpenAI, Groq) or
// Ollama's /api/chat.
type Chat struct {
	name         string
	baseURL      string
	apiKey       string
	defaultModel string
	// foreign reports model names meant for another provider; they are replaced by defaultModel.
	foreign func(model string) bool
	wire    wire
	client  *http.Client
}

// wire is one provider's request and response format.
type wire struct {
	path     string
	needsKey bool
	request  func(model string, msgs []message) any
	reply    func(r io.Reader) (string, error)
}

var openAIWire = wire{
	path:     "/chat/completions",
	needsKey: true,
	request: func(model string, msgs []message) any {
		return chatRequest{Model: model, Messages: msgs}
	},
	reply: func(r io.Reader) (string, error) {
		var out chatResponse
		if err := json.NewDecoder(r).Decode(&out); err != nil {
			return "", err
		}
		if len(out.Choices) == 0 {
			return "", errors.New("no choices in response")
		}
		return out.Choices[0].Message.Content, nil
	},
}

var ollamaWire = wire{
	path: "/api/chat",
	request: func(model string, msgs []message) any {
		return ollamaRequest{Model: model, Messages: msgs}
	},
	reply: func(r io.Reader) (string, error) {
		var out ollamaResponse
		if err := json.NewDecoder(r).Decode(&out); err != nil {
			return "", err
		}
		if out.Message.Content == "" {
			return "", errors.New("empty reply")
		}
		return out.Message.Content, nil
	},
}

// NewChat returns an OpenAI-compatible Chat client. name prefixes its errors; baseURL is
// the API root without the /chat/completions suffix. defaultModel is used when Complete
// gets no model.
func NewChat(name, baseURL, apiKey, defaultModel string) *Chat {
	return &Chat{
		name:         name,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		apiKey:       apiKey,
		defaultModel: defaultModel,
		wire:         openAIWire,
		client:       http.DefaultClient,
	}
}

// NewOpenAI returns a Client that uses the OpenAI API with the given API key.
func NewOpenAI(apiKey string) *Chat {
	return NewChat("openai", OpenAIBaseURL, apiKey, "gpt-4o-mini")
}

// NewGroq returns a Client that uses Groq's OpenAI-compatible API with the given API key.
func NewGroq(apiKey string) *Chat {
	c := NewChat("groq", GroqBaseURL, apiKey, "llama-3.3-70b-versatile")
	c.foreign = openAIModel
	return c
}

// NewOllama returns a Client for the Ollama server at baseURL, or DefaultOllamaBaseURL
// when empty. It needs no API key, so it is the last resort of FromConfig.
func NewOllama(baseURL string) *Chat {
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	c := NewChat("ollama", baseURL, "", DefaultOllamaModel)
	c.foreign = openAIModel
	c.wire = ollamaWire
	return c
}

func openAIModel(model string) bool {
	return strings.HasPrefix(model, "gpt-")
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

type ollamaRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type ollamaResponse struct {
	Message message `json:"message"`
}

// Complete sends system and user messages and returns the assistant reply.
func (c *Chat) Complete(ctx context.Context, model, systemPrompt, userMessage string) (string, error) {
	if c.wire.needsKey && c.apiKey == "" {
		return "", fmt.Errorf("%s: API key not set", c.name)
	}
	if model == "" || c.foreign != nil && c.foreign(model) {
		model = c.defaultModel
	}
	body, err := json.Marshal(c.wire.request(model, []message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userMessage},
	}))
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.wire.path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: %s", c.name, resp.Status)
	}
	reply, err := c.wire.reply(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.name, err)
	}
	return reply, nil
}
