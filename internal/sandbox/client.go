// Package sandbox talks to the hosted code-execution service. Runs are
// created and polled; pass/fail interpretation happens on the caller's
// side, the sandbox only reports raw run output.
package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ProviderError reports a sandbox call that failed or returned a payload
// that does not match the advertised schema.
type ProviderError struct {
	Op      string
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return "sandbox " + e.Op + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return "sandbox " + e.Op + ": " + e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Run is the validated response of a create or status call.
type Run struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Stdout string `json:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty"`
	Result string `json:"result,omitempty"`
}

// Client issues runner API calls over plain HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// languageTag maps our language vocabulary onto the runner's.
var languageTag = map[string]string{
	"python":     "python3",
	"cpp":        "cpp",
	"javascript": "javascript",
}

// CreateRun submits source code for execution and returns the run id.
func (c *Client) CreateRun(ctx context.Context, source, language, input string) (*Run, error) {
	tag, ok := languageTag[language]
	if !ok {
		return nil, &ProviderError{Op: "create", Message: "unsupported language " + language}
	}

	form := url.Values{}
	form.Set("source_code", source)
	form.Set("language", tag)
	form.Set("input", input)
	form.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/runners/create", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &ProviderError{Op: "create", Message: "building request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, "create")
}

// GetStatus polls a run by id.
func (c *Client) GetStatus(ctx context.Context, runID string) (*Run, error) {
	if runID == "" {
		return nil, &ProviderError{Op: "status", Message: "run id is empty"}
	}

	q := url.Values{}
	q.Set("id", runID)
	q.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/runners/get_details?"+q.Encode(), nil)
	if err != nil {
		return nil, &ProviderError{Op: "status", Message: "building request", Err: err}
	}

	return c.do(req, "status")
}

// do executes the request and validates the response shape, failing
// closed on anything malformed rather than forwarding it.
func (c *Client) do(req *http.Request, op string) (*Run, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ProviderError{Op: op, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Op: op, Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	var run Run
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		return nil, &ProviderError{Op: op, Message: "malformed response body", Err: err}
	}
	if run.ID == "" {
		return nil, &ProviderError{Op: op, Message: "response missing run id"}
	}
	return &run, nil
}
