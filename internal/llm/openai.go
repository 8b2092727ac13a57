// internal/llm/openai.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

// ClientConfig configures the chat-completions client
type ClientConfig struct {
	APIKey  string
	Model   string
	BaseURL string        // OpenAI-compatible endpoint; defaults to api.openai.com
	Timeout time.Duration // per-call budget, including transport retries
}

// Client is an OpenAI-compatible chat-completions backend
type Client struct {
	cfg    ClientConfig
	client *http.Client
}

// NewClient creates a completion client against an OpenAI-compatible API
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				IdleConnTimeout:       90 * time.Second,
				MaxIdleConnsPerHost:   5,
			},
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends one non-streaming chat completion. Transient HTTP failures
// (429/502/503/504) are retried within the per-call timeout; everything else
// maps onto a GenerationError.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", &GenerationError{Kind: KindMalformed, Err: fmt.Errorf("marshal: %w", err)}
	}

	resp, err := c.doWithRetry(callCtx, body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &GenerationError{Kind: KindTimeout, Err: err}
		}
		return "", &GenerationError{Kind: KindMalformed, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &GenerationError{Kind: KindMalformed, Err: fmt.Errorf("read body: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &GenerationError{Kind: KindRefused, Err: fmt.Errorf("API error %d: %s", resp.StatusCode, raw)}
	default:
		return "", &GenerationError{Kind: KindMalformed, Err: fmt.Errorf("API error %d: %s", resp.StatusCode, raw)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &GenerationError{Kind: KindMalformed, Err: fmt.Errorf("decode: %w", err)}
	}
	if parsed.Error != nil {
		return "", &GenerationError{Kind: KindRefused, Err: errors.New(parsed.Error.Message)}
	}
	if len(parsed.Choices) == 0 {
		return "", &GenerationError{Kind: KindMalformed, Err: errors.New("no choices in response")}
	}
	if refusal := parsed.Choices[0].Message.Refusal; refusal != "" {
		return "", &GenerationError{Kind: KindRefused, Err: errors.New(refusal)}
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", &GenerationError{Kind: KindMalformed, Err: errors.New("empty completion")}
	}
	return content, nil
}

// doWithRetry executes the request, retrying transient failures with
// exponential backoff until the call context expires
func (c *Client) doWithRetry(ctx context.Context, body []byte) (*http.Response, error) {
	const maxAttempts = 3
	delay := time.Second

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		resp, err := c.client.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, ctx.Err()
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				lastErr = err
			} else {
				return nil, err
			}
		} else if retryableStatus(resp.StatusCode) {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
		} else {
			return resp, nil
		}

		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
