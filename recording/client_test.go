package recording

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(t *testing.T) (*httptest.Server, *http.ServeMux) {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, mux
}

func TestFetch_ChunkedTranscript(t *testing.T) {
	srv, mux := newProvider(t)

	mux.HandleFunc("/bot/sess-1/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token test-key", r.Header.Get("Authorization"))
		fmt.Fprintf(w, `{"recordings": [
			{"completed_at": "2026-08-28T09:00:00Z", "media_shortcuts": {"transcript": {"data": {"download_url": "%s/transcript/old"}}}},
			{"completed_at": "2026-08-29T10:00:00Z", "media_shortcuts": {"transcript": {"data": {"download_url": "%s/transcript/new"}}}}
		]}`, srv.URL, srv.URL)
	})
	mux.HandleFunc("/transcript/new", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"chunks": ["%s/chunks/1", "%s/chunks/2"]}`, srv.URL, srv.URL)
	})
	mux.HandleFunc("/chunks/1", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"speaker": "Ana", "text": "first part"}]`)
	})
	mux.HandleFunc("/chunks/2", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"speaker": "Ben", "text": "second part"}]`)
	})

	c := NewClient(srv.URL, "test-key")
	segments, err := c.Fetch(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, "first part", segments[0].Text)
	assert.Equal(t, "second part", segments[1].Text)
}

func TestFetch_InlineTranscript(t *testing.T) {
	srv, mux := newProvider(t)

	mux.HandleFunc("/bot/sess-1/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"recordings": [{"completed_at": "2026-08-29T10:00:00Z",
			"media_shortcuts": {"transcript": {"data": {"download_url": "%s/transcript/t1"}}}}]}`, srv.URL)
	})
	mux.HandleFunc("/transcript/t1", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"speaker": "Ana", "text": "inline"}]`)
	})

	c := NewClient(srv.URL, "")
	segments, err := c.Fetch(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "inline", segments[0].Text)
}

func TestFetch_NoFinalizedArtifact(t *testing.T) {
	srv, mux := newProvider(t)
	mux.HandleFunc("/bot/sess-1/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"recordings": []}`)
	})

	c := NewClient(srv.URL, "")
	segments, err := c.Fetch(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestFetch_ProviderErrorsAreSwallowed(t *testing.T) {
	srv, mux := newProvider(t)
	mux.HandleFunc("/bot/sess-1/", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	})

	c := NewClient(srv.URL, "")
	segments, err := c.Fetch(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Empty(t, segments)
}
