package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plhub/epl-analytics/pkg/config"
)

func narrativeTestConfig() *config.Config {
	return &config.Config{
		AnthropicAPIKey:      "test-key",
		NarrativeModel:       "claude-sonnet-4-20250514",
		NarrativeMaxTokens:   256,
		NarrativeTemperature: 0.7,
		NarrativeCacheTTL:    60,
	}
}

func TestNarrativeClient_PacesRequests(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg_1","content":[{"type":"text","text":"ok"}],"usage":{"input_tokens":10,"output_tokens":5}}`))
	}))
	defer server.Close()

	client := NewNarrativeClient(narrativeTestConfig(), nil, quietLogger())
	client.baseURL = server.URL

	start := time.Now()
	for i := 0; i < 2; i++ {
		text, err := client.Generate(context.Background(), "system", "prompt")
		require.NoError(t, err)
		assert.Equal(t, "ok", text)
	}
	elapsed := time.Since(start)

	// Each outbound call waits for a tick of the 1 req/s pacer.
	assert.GreaterOrEqual(t, elapsed, 1900*time.Millisecond)
	assert.EqualValues(t, 2, atomic.LoadInt64(&hits))
}

func TestNarrativeClient_PacingHonorsCancellation(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
	}))
	defer server.Close()

	client := NewNarrativeClient(narrativeTestConfig(), nil, quietLogger())
	client.baseURL = server.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Generate(ctx, "system", "prompt")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, atomic.LoadInt64(&hits))
}

func TestNarrativeClient_HealthyWhenBreakerClosed(t *testing.T) {
	client := NewNarrativeClient(narrativeTestConfig(), nil, quietLogger())
	assert.True(t, client.Healthy())
}
