// Package publisher posts images with captions to a Bluesky feed over the
// XRPC HTTP API.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// PublishError wraps a failed post. The runner logs it and leaves the
// tracker's cursor unmoved so the report is retried next run.
type PublishError struct {
	Op  string
	Err error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("bluesky %s: %v", e.Op, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Bluesky is an authenticated Bluesky client.
type Bluesky struct {
	host       string
	httpClient *http.Client

	accessJwt string
	did       string
}

type sessionResponse struct {
	AccessJwt string `json:"accessJwt"`
	Did       string `json:"did"`
	Handle    string `json:"handle"`
}

type blobResponse struct {
	Blob json.RawMessage `json:"blob"`
}

// Login creates a session with the given handle and app password.
func Login(ctx context.Context, host, username, password string, timeout time.Duration) (*Bluesky, error) {
	b := &Bluesky{
		host:       host,
		httpClient: &http.Client{Timeout: timeout},
	}

	payload, _ := json.Marshal(map[string]string{
		"identifier": username,
		"password":   password,
	})
	body, err := b.post(ctx, "com.atproto.server.createSession", "application/json", bytes.NewReader(payload), false)
	if err != nil {
		return nil, &PublishError{Op: "createSession", Err: err}
	}

	var sess sessionResponse
	if err := json.Unmarshal(body, &sess); err != nil {
		return nil, &PublishError{Op: "createSession", Err: fmt.Errorf("failed to unmarshal session: %w", err)}
	}
	if sess.AccessJwt == "" || sess.Did == "" {
		return nil, &PublishError{Op: "createSession", Err: fmt.Errorf("incomplete session response")}
	}

	b.accessJwt = sess.AccessJwt
	b.did = sess.Did
	log.Info().Str("handle", sess.Handle).Msg("Bluesky session created")
	return b, nil
}

// Publish uploads the PNG image and creates a feed post embedding it with
// the given caption and alt text.
func (b *Bluesky) Publish(ctx context.Context, caption string, image []byte, altText string) error {
	body, err := b.post(ctx, "com.atproto.repo.uploadBlob", "image/png", bytes.NewReader(image), true)
	if err != nil {
		return &PublishError{Op: "uploadBlob", Err: err}
	}

	var blob blobResponse
	if err := json.Unmarshal(body, &blob); err != nil {
		return &PublishError{Op: "uploadBlob", Err: fmt.Errorf("failed to unmarshal blob: %w", err)}
	}
	if len(blob.Blob) == 0 {
		return &PublishError{Op: "uploadBlob", Err: fmt.Errorf("empty blob response")}
	}

	record := map[string]interface{}{
		"repo":       b.did,
		"collection": "app.bsky.feed.post",
		"record": map[string]interface{}{
			"$type":     "app.bsky.feed.post",
			"text":      caption,
			"createdAt": time.Now().UTC().Format(time.RFC3339),
			"embed": map[string]interface{}{
				"$type": "app.bsky.embed.images",
				"images": []map[string]interface{}{
					{
						"alt":   altText,
						"image": json.RawMessage(blob.Blob),
					},
				},
			},
		},
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return &PublishError{Op: "createRecord", Err: err}
	}
	if _, err := b.post(ctx, "com.atproto.repo.createRecord", "application/json", bytes.NewReader(payload), true); err != nil {
		return &PublishError{Op: "createRecord", Err: err}
	}

	log.Debug().Int("image_bytes", len(image)).Msg("Post published")
	return nil
}

// post performs an XRPC procedure call and returns the response body.
func (b *Bluesky) post(ctx context.Context, method, contentType string, body io.Reader, authed bool) ([]byte, error) {
	url := fmt.Sprintf("%s/xrpc/%s", b.host, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+b.accessJwt)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("xrpc %s returned status %d: %s", method, resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
