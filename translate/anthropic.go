package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// anthropicBackend calls the Anthropic messages API directly over HTTP.
type anthropicBackend struct {
	prov   Provider
	client *http.Client
}

func newAnthropicBackend(prov Provider) *anthropicBackend {
	timeout := prov.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &anthropicBackend{
		prov:   prov,
		client: &http.Client{Timeout: timeout},
	}
}

func buildAnthropicRequest(model, systemPrompt, userPrompt string) ([]byte, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	req := struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		System    string `json:"system,omitempty"`
		Messages  []msg  `json:"messages"`
	}{
		Model:     model,
		MaxTokens: 4096,
		System:    systemPrompt,
		Messages: []msg{
			{Role: "user", Content: userPrompt},
		},
	}
	return json.Marshal(req)
}

// extractAnthropicText pulls the first text block out of a messages API
// response, or surfaces the API error message.
func extractAnthropicText(body []byte) (string, error) {
	var raw struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}
	if raw.Error != nil {
		return "", fmt.Errorf("API error: %s", raw.Error.Message)
	}
	for _, block := range raw.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text block in response: %s", truncate(string(body), 300))
}

// Complete sends one prompt and returns the raw reply text. Retries
// with exponential backoff on transport failures and 5xx, and waits out
// 429 responses, up to the configured retry budget.
func (b *anthropicBackend) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body, err := buildAnthropicRequest(b.prov.Model, systemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	endpoint := strings.TrimRight(b.prov.BaseURL, "/") + "/messages"
	maxRetries := b.prov.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", b.prov.APIKey)
		req.Header.Set("anthropic-version", "2023-06-01")

		resp, err := b.client.Do(req)
		if err != nil {
			if attempt < maxRetries {
				if err := sleepCtx(ctx, backoff(attempt)); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("API request failed: %w", err)
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			if attempt < maxRetries {
				if err := sleepCtx(ctx, retryAfter(resp)); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("rate limited after %d retries", maxRetries)
		case resp.StatusCode >= 500:
			if attempt < maxRetries {
				if err := sleepCtx(ctx, backoff(attempt)); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 300))
		case resp.StatusCode != http.StatusOK:
			return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 300))
		}

		return extractAnthropicText(respBody)
	}

	return "", fmt.Errorf("exhausted all %d retries", maxRetries)
}

func backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

// retryAfter honors the Retry-After header on 429, in either its
// delta-seconds or HTTP-date form, defaulting to 30s.
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
		if at, err := http.ParseTime(v); err == nil {
			if d := time.Until(at); d > 0 {
				return d
			}
		}
	}
	return 30 * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
