// Package openrouter implements the content-quality judge on top of the
// OpenRouter chat-completions API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"creator-score/internal/common/config"
	"creator-score/internal/common/errors"
	"creator-score/internal/common/httpclient"
	"creator-score/internal/common/logger"
	"creator-score/internal/common/metrics"
	"creator-score/internal/common/retry"
)

const completionsPath = "/chat/completions"

// Client is a minimal OpenRouter chat-completions client.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	retryCfg    retry.Config
	logger      logger.Logger
}

func NewClient(cfg config.APIsConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:     cfg.OpenRouter.BaseURL,
		apiKey:      cfg.OpenRouter.APIKey,
		model:       cfg.OpenRouter.Model,
		temperature: cfg.OpenRouter.Temperature,
		maxTokens:   cfg.OpenRouter.MaxTokens,
		httpClient:  httpclient.New(config.GetDuration(cfg.OpenRouter.Timeout)),
		retryCfg: retry.Config{
			MaxAttempts: cfg.OpenRouter.MaxRetries,
			BaseDelay:   time.Second,
			OnRetry: func(attempt int, err error) {
				log.WithError(err).Warn("openrouter request retry", map[string]interface{}{
					"attempt": attempt,
				})
			},
		},
		logger: log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Complete sends one system+user exchange and returns the assistant content.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.NewInternal("failed to encode openrouter request").WithCause(err)
	}

	var content string
	doErr := retry.Do(ctx, c.retryCfg, func() error {
		var reqErr error
		content, reqErr = c.doRequest(ctx, body)
		return reqErr
	})
	if doErr != nil {
		return "", doErr
	}
	return content, nil
}

func (c *Client) doRequest(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return "", errors.NewInternal("failed to build openrouter request").WithCause(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("openrouter", "error").Inc()
		return "", errors.NewUpstreamFailure("openrouter request failed").WithCause(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("openrouter", "error").Inc()
		return "", errors.NewUpstreamFailure("failed to read openrouter response").WithCause(err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues("openrouter", "error").Inc()
		return "", errors.NewUpstreamFailure("openrouter returned non-200").
			WithDetails("status", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		metrics.UpstreamRequests.WithLabelValues("openrouter", "error").Inc()
		return "", errors.NewUpstreamFailure("invalid openrouter response body").WithCause(err)
	}
	if parsed.Error != nil {
		metrics.UpstreamRequests.WithLabelValues("openrouter", "error").Inc()
		return "", errors.NewUpstreamFailure(fmt.Sprintf("openrouter error: %s", parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 {
		metrics.UpstreamRequests.WithLabelValues("openrouter", "error").Inc()
		return "", errors.NewUpstreamFailure("openrouter returned no choices")
	}

	metrics.UpstreamRequests.WithLabelValues("openrouter", "ok").Inc()
	return parsed.Choices[0].Message.Content, nil
}
