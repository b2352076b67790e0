package domain

// WorkflowJob is the payload handed to the background worker pool when a
// declaration is submitted. It carries everything one orchestrator run needs.
type WorkflowJob struct {
	DeclarationID int64          `json:"declaration_id"`
	WorkflowID    string         `json:"workflow_id"`
	Inputs        map[string]any `json:"inputs"`
	UserID        int64          `json:"user_id"`
}
