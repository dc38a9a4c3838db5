package recording

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dialwise/evalpipe/core"
	"github.com/dialwise/evalpipe/logging"
)

// Options configure the provider client.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     logging.Logger
}

// Client fetches finalized transcripts from the call-recording provider. It
// implements core.TranscriptSource.
//
// Fetch never returns an error: the orchestrator owns the retry decision and
// only needs to distinguish "segments" from "nothing yet", so provider and
// network failures degrade to an empty result plus a warning.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  logging.Logger
}

var _ core.TranscriptSource = (*Client)(nil)

// NewClient constructs a provider client with optional overrides.
func NewClient(baseURL, apiKey string, optFns ...func(o *Options)) *Client {
	opts := Options{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{baseURL: opts.BaseURL, apiKey: opts.APIKey, http: opts.HTTPClient, logger: opts.Logger}
}

// Fetch returns the ordered transcript segments for a session, or an empty
// slice when no finalized artifact exists yet or the provider misbehaves.
func (c *Client) Fetch(ctx context.Context, sessionID string) ([]core.TranscriptSegment, error) {
	downloadURL, err := c.latestArtifactURL(ctx, sessionID)
	if err != nil {
		c.logger.Warn("transcript artifact lookup failed", "session_id", sessionID, "error", err)
		return nil, nil
	}
	if downloadURL == "" {
		return nil, nil
	}

	chunks, err := c.downloadChunks(ctx, downloadURL)
	if err != nil {
		c.logger.Warn("transcript download failed", "session_id", sessionID, "error", err)
		return nil, nil
	}

	var segments []core.TranscriptSegment
	for _, chunk := range chunks {
		segments = append(segments, ParseSegments(chunk)...)
	}
	return segments, nil
}

// latestArtifactURL resolves the transcript download URL of the most recent
// finalized recording for the session. An empty URL with nil error means the
// provider has nothing finalized yet.
func (c *Client) latestArtifactURL(ctx context.Context, sessionID string) (string, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/bot/%s/", c.baseURL, url.PathEscape(sessionID)))
	if err != nil {
		return "", err
	}

	var best gjson.Result
	var bestCompleted string
	gjson.GetBytes(body, "recordings").ForEach(func(_, rec gjson.Result) bool {
		u := rec.Get("media_shortcuts.transcript.data.download_url")
		if !u.Exists() || u.String() == "" {
			return true
		}
		completed := rec.Get("completed_at").String()
		if completed >= bestCompleted {
			bestCompleted = completed
			best = u
		}
		return true
	})
	return best.String(), nil
}

// downloadChunks fetches the transcript payload. Large transcripts arrive as
// a manifest of chunk URLs that must be downloaded and concatenated in order;
// small ones are returned inline as a single chunk.
func (c *Client) downloadChunks(ctx context.Context, downloadURL string) ([][]byte, error) {
	body, err := c.get(ctx, downloadURL)
	if err != nil {
		return nil, err
	}

	manifest := gjson.GetBytes(body, "chunks")
	if !manifest.IsArray() {
		return [][]byte{body}, nil
	}

	var chunks [][]byte
	for _, entry := range manifest.Array() {
		chunkURL := entry.String()
		if entry.IsObject() {
			chunkURL = entry.Get("download_url").String()
		}
		if chunkURL == "" {
			continue
		}
		data, err := c.get(ctx, chunkURL)
		if err != nil {
			return nil, fmt.Errorf("chunk download: %w", err)
		}
		chunks = append(chunks, data)
	}
	return chunks, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Token "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
