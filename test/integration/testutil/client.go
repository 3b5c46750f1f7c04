package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"smartstay/pkg/middleware"
)

// BaseURLEnv names the env var that enables the integration suite. When it is
// unset the tests skip, so the suite never runs against nothing.
const BaseURLEnv = "SMARTSTAY_IT_BASE_URL"

// Actor identifies the caller for a request via the trusted identity headers.
type Actor struct {
	ID    string
	Email string
	Role  string
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a test client, or skips the test when the target URL is
// not configured.
func NewClient(t *testing.T) *Client {
	t.Helper()

	baseURL := os.Getenv(BaseURLEnv)
	if baseURL == "" {
		t.Skipf("set %s to run integration tests", BaseURLEnv)
	}

	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

func (c *Client) GET(t *testing.T, actor Actor, path string) *Response {
	t.Helper()
	return c.request(t, http.MethodGet, path, actor, nil)
}

func (c *Client) POST(t *testing.T, actor Actor, path string, body any) *Response {
	t.Helper()
	return c.request(t, http.MethodPost, path, actor, body)
}

func (c *Client) PATCH(t *testing.T, actor Actor, path string, body any) *Response {
	t.Helper()
	return c.request(t, http.MethodPatch, path, actor, body)
}

func (c *Client) DELETE(t *testing.T, actor Actor, path string) *Response {
	t.Helper()
	return c.request(t, http.MethodDelete, path, actor, nil)
}

func (c *Client) request(t *testing.T, method, path string, actor Actor, body any) *Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor.ID != "" {
		req.Header.Set(middleware.HeaderActorID, actor.ID)
		req.Header.Set(middleware.HeaderActorEmail, actor.Email)
		req.Header.Set(middleware.HeaderActorRole, actor.Role)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}

	return &Response{
		Response: resp,
		Body:     respBody,
	}
}

// WaitForHealthy polls the health endpoint until the service answers.
func (c *Client) WaitForHealthy(t *testing.T, maxWait time.Duration) {
	t.Helper()

	deadline := time.Now().Add(maxWait)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		resp, err := c.HTTPClient.Get(c.BaseURL + "/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return
		}
		if resp != nil {
			resp.Body.Close()
		}
		<-ticker.C
	}

	t.Fatalf("service did not become healthy within %v", maxWait)
}

func AssertStatusCode(t *testing.T, resp *Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d. Body: %s", expected, resp.StatusCode, string(resp.Body))
	}
}

func AssertContains(t *testing.T, resp *Response, substr string) {
	t.Helper()
	if !strings.Contains(string(resp.Body), substr) {
		t.Fatalf("response body does not contain %q. Body: %s", substr, string(resp.Body))
	}
}
