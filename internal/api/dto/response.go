package dto

type CreateDeclarationResponse struct {
	ID     int64  `json:"id"`
	Number string `json:"number"`
}

type WorkflowStepResponse struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// WorkflowStatusResponse is what pollers see while the background run is in
// flight and after it has reached a terminal state.
type WorkflowStatusResponse struct {
	DeclarationID  int64                  `json:"declaration_id"`
	Status         string                 `json:"status"`
	WorkflowStatus string                 `json:"workflow_status"`
	Steps          []WorkflowStepResponse `json:"steps"`
	FileURL        string                 `json:"file_url,omitempty"`
	FileFormat     string                 `json:"file_format,omitempty"`
}
