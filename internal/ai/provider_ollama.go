package ai

import (
	"context"
	"fmt"
	"net/http"
)

// OllamaProvider implements Provider for a self-hosted Ollama server using its
// native /api/chat endpoint.
type OllamaProvider struct {
	baseURL      string
	defaultModel string
	client       *http.Client
}

// OllamaOption configures an OllamaProvider.
type OllamaOption func(*OllamaProvider)

// WithOllamaHTTPClient sets a custom HTTP client.
func WithOllamaHTTPClient(client *http.Client) OllamaOption {
	return func(p *OllamaProvider) {
		p.client = client
	}
}

// WithOllamaModel sets the model used when a request does not name one.
func WithOllamaModel(model string) OllamaOption {
	return func(p *OllamaProvider) {
		if model != "" {
			p.defaultModel = model
		}
	}
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(baseURL string, opts ...OllamaOption) *OllamaProvider {
	p := &OllamaProvider{
		baseURL:      baseURL,
		defaultModel: "llama3.2",
		client:       http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   string         `json:"format,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done            bool `json:"done"`
	PromptEvalCount int  `json:"prompt_eval_count"`
	EvalCount       int  `json:"eval_count"`
}

func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	body := ollamaChatRequest{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   false,
	}
	if body.Model == "" {
		body.Model = p.defaultModel
	}
	if req.JSON {
		body.Format = "json"
	}
	options := map[string]any{}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	if req.Temperature > 0 {
		options["temperature"] = req.Temperature
	}
	if len(options) > 0 {
		body.Options = options
	}

	var out ollamaChatResponse
	if err := postJSON(ctx, p.client, p.baseURL+"/api/chat", nil, body, &out); err != nil {
		return CompletionResponse{}, fmt.Errorf("ollama: %w", err)
	}
	if out.Message.Content == "" {
		return CompletionResponse{}, fmt.Errorf("ollama: empty message in response")
	}

	return CompletionResponse{
		Content:      out.Message.Content,
		Model:        out.Model,
		Provider:     "ollama",
		InputTokens:  out.PromptEvalCount,
		OutputTokens: out.EvalCount,
	}, nil
}

func (p *OllamaProvider) HealthCheck(ctx context.Context) error {
	return ping(ctx, p.client, p.baseURL+"/api/tags", nil)
}
