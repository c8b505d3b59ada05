package services

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/plhub/epl-analytics/pkg/config"
)

// NarrativeClient is the client for the external narrative-generation
// collaborator (Anthropic messages API). The engine itself does no retrying;
// retry, pacing and circuit breaking are this client's own policy.
type NarrativeClient struct {
	httpClient    *http.Client
	cache         *CacheService
	logger        *logrus.Logger
	apiKey        string
	baseURL       string
	model         string
	maxTokens     int
	temperature   float64
	cacheTTL      time.Duration
	pacer         *time.Ticker
	breaker       *gobreaker.CircuitBreaker
	retryAttempts int
}

// generateRequest is the role-tagged two-part message payload: a fixed
// system instruction plus the serialized prompt as a user message.
type generateRequest struct {
	Model       string            `json:"model"`
	MaxTokens   int               `json:"max_tokens"`
	Temperature float64           `json:"temperature,omitempty"`
	System      string            `json:"system,omitempty"`
	Messages    []generateMessage `json:"messages"`
}

type generateMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type generateResponse struct {
	ID      string         `json:"id"`
	Content []contentBlock `json:"content"`
	Usage   tokenUsage     `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type tokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewNarrativeClient creates a narrative collaborator client with a circuit
// breaker. Pass a nil cache to disable response caching.
func NewNarrativeClient(cfg *config.Config, cache *CacheService, logger *logrus.Logger) *NarrativeClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "narrative-api",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Info("Narrative API circuit breaker state changed")
		},
	})

	return &NarrativeClient{
		httpClient: &http.Client{
			Timeout: 60 * time.Second, // narrative generation is the one unbounded-latency step
		},
		cache:         cache,
		logger:        logger,
		apiKey:        cfg.AnthropicAPIKey,
		baseURL:       "https://api.anthropic.com/v1",
		model:         cfg.NarrativeModel,
		maxTokens:     cfg.NarrativeMaxTokens,
		temperature:   cfg.NarrativeTemperature,
		cacheTTL:      time.Duration(cfg.NarrativeCacheTTL) * time.Second,
		pacer:         time.NewTicker(1 * time.Second), // 1 request per second, safe for 60/min
		breaker:       cb,
		retryAttempts: 3,
	}
}

// Generate sends the system instruction and prompt to the collaborator and
// returns its free-text prose. Responses are cached by prompt hash so a
// repeated analysis does not re-bill the collaborator.
func (c *NarrativeClient) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	cacheKey := ""
	if c.cache != nil {
		cacheKey = c.cache.BuildKey("narrative", fmt.Sprintf("%x", md5.Sum([]byte(systemPrompt+prompt))))
		var cached string
		if err := c.cache.Get(ctx, cacheKey, &cached); err == nil {
			c.logger.WithField("key", cacheKey).Debug("Narrative cache hit")
			return cached, nil
		}
	}

	request := generateRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		System:      systemPrompt,
		Messages: []generateMessage{
			{Role: "user", Content: prompt},
		},
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.makeRequest(ctx, request)
	})
	if err != nil {
		return "", fmt.Errorf("narrative request failed: %w", err)
	}

	response := result.(*generateResponse)
	text := ""
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	c.logger.WithFields(logrus.Fields{
		"input_tokens":  response.Usage.InputTokens,
		"output_tokens": response.Usage.OutputTokens,
	}).Debug("Narrative generated")

	if c.cache != nil && text != "" {
		if err := c.cache.Set(ctx, cacheKey, text, c.cacheTTL); err != nil {
			c.logger.WithError(err).Warn("Failed to cache narrative response")
		}
	}

	return text, nil
}

// makeRequest handles the HTTP call with bounded retries and backoff.
// Outbound calls are paced to one per second by the shared ticker.
func (c *NarrativeClient) makeRequest(ctx context.Context, request generateRequest) (*generateResponse, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.pacer.C:
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewBuffer(requestBody))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var generated generateResponse
			err := json.NewDecoder(resp.Body).Decode(&generated)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("failed to decode response: %w", err)
			}
			return &generated, nil
		}

		var errResp struct {
			Error apiError `json:"error"`
		}
		decodeErr := json.NewDecoder(resp.Body).Decode(&errResp)
		resp.Body.Close()
		if decodeErr != nil {
			lastErr = fmt.Errorf("narrative API returned status %d", resp.StatusCode)
			continue
		}

		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return nil, fmt.Errorf("invalid API credentials: %s", errResp.Error.Message)
		case http.StatusBadRequest:
			return nil, fmt.Errorf("bad request: %s", errResp.Error.Message)
		case http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limited: %s", errResp.Error.Message)
		default:
			lastErr = fmt.Errorf("narrative API error (status %d): %s", resp.StatusCode, errResp.Error.Message)
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", c.retryAttempts, lastErr)
}

// Healthy reports whether the circuit to the collaborator is closed.
func (c *NarrativeClient) Healthy() bool {
	return c.breaker.State() == gobreaker.StateClosed
}
