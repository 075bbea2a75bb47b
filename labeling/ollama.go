package labeling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Ollama calls the non-streaming /api/generate endpoint of an Ollama server.
type Ollama struct {
	BaseURL string
	Model   string

	HTTPClient *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	if o.BaseURL == "" || o.Model == "" {
		return "", fmt.Errorf("ollama: base URL and model required")
	}
	body, err := json.Marshal(ollamaRequest{Model: o.Model, Prompt: prompt})
	if err != nil {
		return "", err
	}
	url := strings.TrimRight(o.BaseURL, "/") + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	defer resp.Body.Close()

	var payload ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("ollama generate: status %d: %w", resp.StatusCode, err)
	}
	if payload.Error != "" {
		return "", fmt.Errorf("ollama error: %s", payload.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama generate: status %d", resp.StatusCode)
	}
	return payload.Response, nil
}

func (o *Ollama) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: 120 * time.Second}
}
