package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"strconv"
)

const batchesEndpoint = "/v1/ingest/batches"

// HTTPClient abstracts HTTP request execution for testing and custom transports.
// The standard *http.Client satisfies this interface.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPSink POSTs each envelope as JSON to an ingestion service.
type HTTPSink struct {
	client     HTTPClient
	serviceURL string
	authKey    string
	hostname   string
}

// NewHTTPSink creates an HTTP sink posting to serviceURL + /v1/ingest/batches.
func NewHTTPSink(client HTTPClient, serviceURL, authKey string) *HTTPSink {
	hostname, _ := os.Hostname()
	return &HTTPSink{
		client:     client,
		serviceURL: serviceURL,
		authKey:    authKey,
		hostname:   hostname,
	}
}

// Send transmits env to the remote service.
func (s *HTTPSink) Send(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serviceURL+batchesEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if s.authKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.authKey)
	}
	req.Header.Set("X-Agent-Hostname", s.hostname)
	req.Header.Set("X-Agent-OSArch", runtime.GOOS+"/"+runtime.GOARCH)
	req.Header.Set("X-Batch-Id", env.ID)
	req.Header.Set("X-Batch-Records", strconv.Itoa(env.Count))

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// Close is a no-op; the HTTP client is owned by the caller.
func (s *HTTPSink) Close() error {
	return nil
}
