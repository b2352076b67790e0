package dify

// WorkflowRequest is the payload for one blocking workflow run. ResponseMode
// is always "blocking" for declaration generation; the remote computation
// typically takes 3-5 minutes and the call does not return until it finishes.
// WorkflowID selects the API key for the call and CorrelationID ties log lines
// on both sides of the call together; neither is part of the wire body.
type WorkflowRequest struct {
	WorkflowID    string         `json:"-"`
	CorrelationID string         `json:"-"`
	Inputs        map[string]any `json:"inputs"`
	ResponseMode  string         `json:"response_mode"`
	User          string         `json:"user"`
}

// WorkflowResponse mirrors the Dify /workflows/run response body.
type WorkflowResponse struct {
	TaskID        string        `json:"task_id"`
	WorkflowRunID string        `json:"workflow_run_id"`
	Data          *WorkflowData `json:"data"`
}

type WorkflowData struct {
	ID          string           `json:"id"`
	WorkflowID  string           `json:"workflow_id"`
	Status      string           `json:"status"`
	Outputs     *WorkflowOutputs `json:"outputs"`
	Error       string           `json:"error"`
	ElapsedTime float64          `json:"elapsed_time"`
	TotalTokens int              `json:"total_tokens"`
	TotalSteps  int              `json:"total_steps"`
	CreatedAt   int64            `json:"created_at"`
	FinishedAt  int64            `json:"finished_at"`
}

type WorkflowOutputs struct {
	Files []WorkflowFile `json:"files"`
	Text  string         `json:"text"`
}

type WorkflowFile struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Extension string `json:"extension"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size"`
	URL       string `json:"url"`
}

// FileURL returns the download URL of the first generated file, or "" when the
// workflow produced none.
func (r *WorkflowResponse) FileURL() string {
	if r == nil || r.Data == nil || r.Data.Outputs == nil {
		return ""
	}
	if len(r.Data.Outputs.Files) == 0 {
		return ""
	}
	return r.Data.Outputs.Files[0].URL
}
