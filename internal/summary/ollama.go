package summary

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaSummarizer talks to a local Ollama instance. Generation requests are
// serialized with a mutex so a burst of long posts does not pile up concurrent
// generations on the same model.
type OllamaSummarizer struct {
	client  *api.Client
	prompt  string
	model   string
	timeout time.Duration
	mu      sync.Mutex
}

func NewOllamaSummarizer(host, prompt, model string, timeout time.Duration) *OllamaSummarizer {
	return &OllamaSummarizer{
		client: api.NewClient(&url.URL{
			Scheme: "http",
			Host:   host,
			Path:   "/",
		}, &http.Client{}),
		prompt:  prompt,
		model:   model,
		timeout: timeout,
	}
}

func (o *OllamaSummarizer) Condense(ctx context.Context, text string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var parts []string
	err := o.client.Generate(ctx, &api.GenerateRequest{
		Model:  o.model,
		System: o.prompt,
		Prompt: text,
	}, func(resp api.GenerateResponse) error {
		parts = append(parts, resp.Response)
		return nil
	})
	if err != nil {
		return "", err
	}

	return strings.Join(parts, ""), nil
}
