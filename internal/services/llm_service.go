package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/logpulse/backend/internal/risk"
)

// LLMService rewrites forecast text through a local Ollama instance.
// It is an optional enhancement: every failure path returns an error
// and the caller keeps the deterministic template text.
type LLMService struct {
	baseURL string
	model   string
	client  *http.Client
}

type OllamaGenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type OllamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func NewLLMService(baseURL, model string) *LLMService {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}

	timeout := 10 * time.Second
	if timeoutStr := os.Getenv("OLLAMA_TIMEOUT_SECONDS"); timeoutStr != "" {
		if t, err := time.ParseDuration(timeoutStr + "s"); err == nil {
			timeout = t
		}
	}

	return &LLMService{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// EnhanceForecastText asks the model to rephrase the template forecast
// without changing its facts. The returned text is used only when the
// call fully succeeds and produces non-empty output.
func (ls *LLMService) EnhanceForecastText(text string, ctx risk.ForecastContext) (string, error) {
	prompt := fmt.Sprintf(`Rewrite the following operational risk forecast as one short paragraph.
Keep every number and factor exactly as given. Do not add new facts.

Forecast: %s
Trend: %s
Top risk factors: %s

Rewritten forecast:`, text, ctx.Trend, strings.Join(ctx.TopRiskFactors, ", "))

	reqBody := OllamaGenerateRequest{
		Model:  ls.model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]interface{}{
			"temperature": 0.3,
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode ollama request: %w", err)
	}

	resp, err := ls.client.Post(ls.baseURL+"/api/generate", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var generated OllamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		return "", fmt.Errorf("failed to decode ollama response: %w", err)
	}

	enhanced := strings.TrimSpace(generated.Response)
	if enhanced == "" {
		return "", fmt.Errorf("ollama returned empty response")
	}
	return enhanced, nil
}
