package dify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrMissingWorkflowID = errors.New("dify: workflow id is required")
	ErrMissingInputs     = errors.New("dify: workflow inputs are required")
	ErrNoWorkflowKey     = errors.New("dify: no api key for workflow")
)

// DefaultTimeout bounds one blocking workflow run. Declaration generation is
// documented at 3-5 minutes, so leave generous headroom.
const DefaultTimeout = 15 * time.Minute

type Config struct {
	BaseURL string
	// APIKey is the fallback bearer key; APIKeys maps workflow ids to their
	// own keys and wins when it has an entry.
	APIKey  string
	APIKeys map[string]string
	Timeout time.Duration
}

// Client calls the Dify workflow API. Dify addresses a workflow by its bearer
// key rather than by URL, so each run resolves the key from the request's
// workflow id. The client performs no retries: a failed run is fatal for the
// caller and retry policy belongs to whoever resubmits.
type Client struct {
	baseURL    string
	apiKey     string
	apiKeys    map[string]string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		apiKeys:    cfg.APIKeys,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) apiKeyFor(workflowID string) (string, error) {
	if key, ok := c.apiKeys[workflowID]; ok && key != "" {
		return key, nil
	}
	if c.apiKey != "" {
		return c.apiKey, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoWorkflowKey, workflowID)
}

// RunWorkflow executes one workflow in blocking mode and blocks until the
// remote computation finishes or the client timeout fires.
func (c *Client) RunWorkflow(ctx context.Context, req WorkflowRequest) (*WorkflowResponse, error) {
	if req.WorkflowID == "" {
		return nil, ErrMissingWorkflowID
	}
	if len(req.Inputs) == 0 {
		return nil, ErrMissingInputs
	}
	if req.ResponseMode == "" {
		req.ResponseMode = "blocking"
	}

	apiKey, err := c.apiKeyFor(req.WorkflowID)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("dify: marshal workflow request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/workflows/run", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("dify: build workflow request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("dify: run workflow %s: %w", req.WorkflowID, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dify: read workflow response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("dify: workflow %s returned HTTP %d: %s",
			req.WorkflowID, resp.StatusCode, bytes.TrimSpace(respBody))
	}

	var workflowResp WorkflowResponse
	if err := json.Unmarshal(respBody, &workflowResp); err != nil {
		return nil, fmt.Errorf("dify: decode workflow response: %w", err)
	}

	return &workflowResp, nil
}
