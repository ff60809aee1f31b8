package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSendsUserAgentAndParses(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`<html><head><title>Hello</title></head><body><p>x</p></body></html>`))
	}))
	defer srv.Close()

	f := New(Config{UserAgent: "test-agent", RequestsPerSec: 1000})
	doc, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "test-agent", gotUA)
	assert.Equal(t, "Hello", doc.Find("title").Text())
}

func TestFetchRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(Config{RequestsPerSec: 1000})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestFetchHonoursCancelledContext(t *testing.T) {
	f := New(Config{RequestsPerSec: 0.001, Burst: 1})
	// drain the single token
	f.limiter.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, "http://127.0.0.1:1")
	assert.Error(t, err)
}

func TestDefaultsApplied(t *testing.T) {
	f := New(Config{})
	assert.Equal(t, DefaultConfig().UserAgent, f.userAgent)
	assert.Equal(t, DefaultConfig().Timeout, f.client.Timeout)
}
