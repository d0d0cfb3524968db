// Package advisor relays student questions to the xAI chat completions
// API and returns the generated text.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "university-matcher/internal/common/errors"
	"university-matcher/internal/common/logger"
)

const (
	completionsPath = "/v1/chat/completions"
	apiVersion      = "1.0"
	temperature     = 0.7
)

type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	config Config
	http   *http.Client
	logger logger.Logger
}

// NewClient builds a client whose deadline comes from the caller's
// context, bounded by config.Timeout.
func NewClient(config Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		http:   &http.Client{},
		logger: log.WithFields(map[string]interface{}{"component": "xai-client"}),
	}
}

// Complete sends one chat completion and returns the first choice.
// Transport errors, 429 and 5xx responses are retried with exponential
// backoff; other upstream errors fail immediately.
func (c *Client) Complete(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	if c.config.APIKey == "" {
		return "", apperrors.NewLLMRequestFailedError("xai api key is not configured")
	}
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(completionRequest{
		Messages:    messages,
		Model:       c.config.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", c.timeoutError(ctx, lastErr)
			}
		}

		content, retry, err := c.do(ctx, body)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", c.timeoutError(ctx, lastErr)
		}
		if !retry {
			break
		}
		c.logger.Warn("completion attempt failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}

	return "", apperrors.NewLLMRequestFailedError(lastErr.Error()).WithCause(lastErr)
}

// do performs one attempt and reports whether a failure is retryable.
func (c *Client) do(ctx context.Context, body []byte) (string, bool, error) {
	url := strings.TrimRight(c.config.BaseURL, "/") + completionsPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("x-api-version", apiVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, err
	}

	if resp.StatusCode != http.StatusOK {
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", retry, errors.New(apiErr.Error.Message)
		}
		return "", retry, fmt.Errorf("API Error: %s", http.StatusText(resp.StatusCode))
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", false, fmt.Errorf("decode completion: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", false, errors.New("completion returned no choices")
	}
	return parsed.Choices[0].Message.Content, false, nil
}

func (c *Client) timeoutError(ctx context.Context, cause error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err := apperrors.NewLLMTimeoutError(fmt.Sprintf("no completion within %s", c.config.Timeout))
		if cause != nil {
			err = err.WithCause(cause)
		}
		return err
	}
	return apperrors.NewLLMRequestFailedError("request cancelled").WithCause(ctx.Err())
}
