package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/qalamlab/tabeer/internal/grading"
)

type Config struct {
	APIKey  string
	BaseURL string // OpenAI-compatible endpoint root
	Model   string
}

// Client speaks the OpenAI-compatible chat completions API and adapts the
// model's JSON reply to a grading.Result. It makes exactly one attempt per
// Evaluate call; recovery policy lives in the grading service.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	rubric     []grading.Criterion
}

func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-5-mini"
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(base, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		rubric:     grading.DefaultRubric(),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *Client) Evaluate(ctx context.Context, text string) grading.EvalOutcome {
	if c.apiKey == "" {
		return grading.EvalOutcome{Status: grading.EvalUnavailable}
	}

	body, err := json.Marshal(map[string]any{
		"model":           c.model,
		"response_format": map[string]string{"type": "json_object"},
		"messages": []chatMessage{
			{Role: "system", Content: systemPrompt(c.rubric)},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return grading.EvalOutcome{Status: grading.EvalTransportFailed, Reason: "marshal request: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return grading.EvalOutcome{Status: grading.EvalTransportFailed, Reason: "build request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return grading.EvalOutcome{Status: grading.EvalTransportFailed, Reason: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return grading.EvalOutcome{Status: grading.EvalTransportFailed, Reason: "read response: " + err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return grading.EvalOutcome{
			Status: grading.EvalTransportFailed,
			Reason: fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(respBody, 200)),
		}
	}

	var chat struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return grading.EvalOutcome{Status: grading.EvalMalformed, Reason: "decode envelope: " + err.Error()}
	}
	if len(chat.Choices) == 0 {
		return grading.EvalOutcome{Status: grading.EvalMalformed, Reason: "no choices in response"}
	}
	return c.decodeResult(chat.Choices[0].Message.Content)
}

func truncate(b []byte, n int) string {
	s := string(b)
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
