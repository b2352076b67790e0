package dto

type CreateDeclarationRequest struct {
	UserID   int64  `json:"user_id" binding:"required"`
	UserName string `json:"user_name"`

	WorkflowID        string `json:"workflow_id" binding:"required"`
	ResearchTopic     string `json:"research_topic" binding:"required"`
	ResearchDirection string `json:"research_direction"`
	ContentSummary    string `json:"content_summary"`
}
