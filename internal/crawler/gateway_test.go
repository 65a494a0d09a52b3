package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/guanghao479/golden/internal/config"
	"github.com/guanghao479/golden/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGateway(t *testing.T, handler http.HandlerFunc) (*Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g := NewGateway(&config.FirecrawlConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
	})
	return g, srv
}

func TestGatewayNotConfigured(t *testing.T) {
	g := NewGateway(&config.FirecrawlConfig{BaseURL: "http://localhost:1"})

	assert.False(t, g.Configured())

	_, err := g.Extract(context.Background(), "https://x.com", domain.CrawlTypeEvents)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = g.StartExtract(context.Background(), "https://x.com", domain.CrawlTypeEvents)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGatewayExtractSuccess(t *testing.T) {
	g, _ := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "data": {"events": [{"title": "A"}, {"title": "B"}]}}`))
	})

	records, err := g.Extract(context.Background(), "https://x.com/cal", domain.CrawlTypeEvents)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0]["title"])
}

func TestGatewayExtractMissingCategoryKey(t *testing.T) {
	g, _ := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": {"places": []}}`))
	})

	records, err := g.Extract(context.Background(), "https://x.com", domain.CrawlTypeEvents)
	require.NoError(t, err)
	assert.Empty(t, records)
}

// TestGatewayOutcomeClasses verifies the three failure classes stay disjoint:
// transport, HTTP status, and provider-reported.
func TestGatewayOutcomeClasses(t *testing.T) {
	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close() // connection refused from here on

		g := NewGateway(&config.FirecrawlConfig{APIKey: "k", BaseURL: srv.URL, Timeout: time.Second})
		_, err := g.Extract(context.Background(), "https://x.com", domain.CrawlTypeEvents)

		var transport *TransportError
		require.ErrorAs(t, err, &transport)
	})

	t.Run("timeout is a transport failure", func(t *testing.T) {
		g, _ := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
		})
		g.client.SetTimeout(50 * time.Millisecond)

		_, err := g.Extract(context.Background(), "https://x.com", domain.CrawlTypeEvents)

		var transport *TransportError
		require.ErrorAs(t, err, &transport)
	})

	t.Run("non-2xx status", func(t *testing.T) {
		g, _ := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`rate limited`))
		})

		_, err := g.Extract(context.Background(), "https://x.com", domain.CrawlTypeEvents)

		var status *StatusError
		require.ErrorAs(t, err, &status)
		assert.Equal(t, http.StatusTooManyRequests, status.StatusCode)
	})

	t.Run("provider-reported failure preserves reason", func(t *testing.T) {
		g, _ := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success": false, "error": "page could not be rendered"}`))
		})

		_, err := g.Extract(context.Background(), "https://x.com", domain.CrawlTypeEvents)

		var provider *ProviderError
		require.ErrorAs(t, err, &provider)
		assert.Equal(t, "page could not be rendered", provider.Reason)
	})
}

func TestGatewayStartExtract(t *testing.T) {
	g, _ := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "id": "job-123"}`))
	})

	id, err := g.StartExtract(context.Background(), "https://x.com", domain.CrawlTypeEvents)
	require.NoError(t, err)
	assert.Equal(t, "job-123", id)
}

func TestGatewayStartExtractNoJobID(t *testing.T) {
	g, _ := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true}`))
	})

	_, err := g.StartExtract(context.Background(), "https://x.com", domain.CrawlTypeEvents)

	var provider *ProviderError
	require.ErrorAs(t, err, &provider)
}

func TestGatewayPollExtract(t *testing.T) {
	testCases := []struct {
		name      string
		body      string
		wantPhase JobPhase
	}{
		{"processing", `{"success": true, "status": "processing"}`, JobPhaseProcessing},
		{"still pending", `{"success": true, "status": "pending"}`, JobPhaseProcessing},
		{"completed", `{"success": true, "status": "completed", "data": {"events": [{"title": "A"}]}}`, JobPhaseCompleted},
		{"failed", `{"success": false, "status": "failed", "error": "blocked by robots.txt"}`, JobPhaseFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, _ := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/extract/job-1", r.URL.Path)
				w.Write([]byte(tc.body))
			})

			state, err := g.PollExtract(context.Background(), "job-1", domain.CrawlTypeEvents)
			require.NoError(t, err)
			assert.Equal(t, tc.wantPhase, state.Phase)

			if tc.wantPhase == JobPhaseCompleted {
				assert.Len(t, state.Records, 1)
			}
			if tc.wantPhase == JobPhaseFailed {
				assert.Equal(t, "blocked by robots.txt", state.Reason)
			}
		})
	}
}

func TestGatewayNoRetries(t *testing.T) {
	calls := 0
	g, _ := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := g.Extract(context.Background(), "https://x.com", domain.CrawlTypeEvents)
	require.Error(t, err)
	assert.Equal(t, 1, calls, "gateway must not retry on its own")
	assert.False(t, errors.Is(err, ErrNotConfigured))
}
