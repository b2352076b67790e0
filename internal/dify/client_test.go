package dify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientRunWorkflow(t *testing.T) {
	inputs := map[string]any{"research_topic": "quantum dot"}

	t.Run("posts blocking request and decodes the response", func(t *testing.T) {
		var gotPath, gotAuth string
		var gotBody map[string]any

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"task_id": "task-1",
				"workflow_run_id": "run-1",
				"data": {
					"id": "run-1",
					"workflow_id": "wf-1",
					"status": "succeeded",
					"outputs": {"files": [{"url": "https://x/a.pdf", "filename": "a.pdf"}]},
					"elapsed_time": 212.4,
					"total_steps": 9
				}
			}`))
		}))
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL, APIKey: "secret"})
		resp, err := client.RunWorkflow(context.Background(), WorkflowRequest{
			WorkflowID: "wf-1",
			Inputs:     inputs,
			User:       "7",
		})

		require.NoError(t, err)
		assert.Equal(t, "/v1/workflows/run", gotPath)
		assert.Equal(t, "Bearer secret", gotAuth)
		assert.Equal(t, "blocking", gotBody["response_mode"], "response mode defaults to blocking")
		assert.Equal(t, "7", gotBody["user"])

		assert.Equal(t, "run-1", resp.WorkflowRunID)
		assert.Equal(t, "succeeded", resp.Data.Status)
		assert.Equal(t, "https://x/a.pdf", resp.FileURL())
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"message": "upstream worker died"}`))
		}))
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL, APIKey: "secret"})
		_, err := client.RunWorkflow(context.Background(), WorkflowRequest{WorkflowID: "wf-1", Inputs: inputs})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 502")
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL, APIKey: "secret"})
		_, err := client.RunWorkflow(context.Background(), WorkflowRequest{WorkflowID: "wf-1", Inputs: inputs})

		require.Error(t, err)
	})

	t.Run("resolves the bearer key from the workflow id", func(t *testing.T) {
		var gotAuth []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = append(gotAuth, r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"task_id": "task-1"}`))
		}))
		defer server.Close()

		client := NewClient(Config{
			BaseURL: server.URL,
			APIKey:  "shared",
			APIKeys: map[string]string{"wf-a": "key-a", "wf-b": "key-b"},
		})

		for _, workflowID := range []string{"wf-a", "wf-b", "wf-other"} {
			_, err := client.RunWorkflow(context.Background(), WorkflowRequest{WorkflowID: workflowID, Inputs: inputs})
			require.NoError(t, err)
		}

		assert.Equal(t, []string{"Bearer key-a", "Bearer key-b", "Bearer shared"}, gotAuth,
			"each workflow id carries its own key, unknown ids fall back")
	})

	t.Run("unknown workflow id without a fallback key never hits the wire", func(t *testing.T) {
		var hits int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
		}))
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL, APIKeys: map[string]string{"wf-a": "key-a"}})
		_, err := client.RunWorkflow(context.Background(), WorkflowRequest{WorkflowID: "wf-b", Inputs: inputs})

		assert.ErrorIs(t, err, ErrNoWorkflowKey)
		assert.Zero(t, hits)
	})

	t.Run("validates workflow id and inputs", func(t *testing.T) {
		client := NewClient(Config{BaseURL: "http://localhost:5001"})

		_, err := client.RunWorkflow(context.Background(), WorkflowRequest{Inputs: inputs})
		assert.ErrorIs(t, err, ErrMissingWorkflowID)

		_, err = client.RunWorkflow(context.Background(), WorkflowRequest{WorkflowID: "wf-1"})
		assert.ErrorIs(t, err, ErrMissingInputs)
	})
}

func TestWorkflowResponseFileURL(t *testing.T) {
	t.Run("nil chains are safe", func(t *testing.T) {
		var resp *WorkflowResponse
		assert.Empty(t, resp.FileURL())
		assert.Empty(t, (&WorkflowResponse{}).FileURL())
		assert.Empty(t, (&WorkflowResponse{Data: &WorkflowData{}}).FileURL())
	})

	t.Run("first file wins", func(t *testing.T) {
		resp := &WorkflowResponse{Data: &WorkflowData{Outputs: &WorkflowOutputs{
			Files: []WorkflowFile{{URL: "https://x/a.pdf"}, {URL: "https://x/b.pdf"}},
		}}}
		assert.Equal(t, "https://x/a.pdf", resp.FileURL())
	})
}
