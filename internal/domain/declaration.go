package domain

import (
	"time"

	"gorm.io/datatypes"
)

type WorkflowStatus string

const (
	WorkflowPending   WorkflowStatus = "pending"
	WorkflowRunning   WorkflowStatus = "running"
	WorkflowCompleted WorkflowStatus = "completed"
	WorkflowFailed    WorkflowStatus = "failed"
)

// DeclarationStatus codes are persisted as strings of the legacy numeric codes
// so existing rows keep their meaning.
type DeclarationStatus string

const (
	DeclarationInProgress DeclarationStatus = "1"
	DeclarationSuccess    DeclarationStatus = "2"
	DeclarationFailed     DeclarationStatus = "3"
)

type Declaration struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	Number        string `gorm:"type:varchar(50);uniqueIndex;not null"`
	ApplicantID   int64  `gorm:"index;not null"`
	ApplicantName string `gorm:"type:varchar(100)"`
	ResearchTopic string `gorm:"type:varchar(255)"`

	ContentSummary string `gorm:"type:text"`

	// Workflow bookkeeping. WorkflowResult holds the progress ledger as JSONB;
	// only the workflow task writes it after submission.
	WorkflowID     string            `gorm:"type:varchar(100);not null"`
	WorkflowStatus WorkflowStatus    `gorm:"type:varchar(20);index;default:'pending'"`
	WorkflowResult datatypes.JSON    `gorm:"type:jsonb"`
	Status         DeclarationStatus `gorm:"type:varchar(10);index;default:'1'"`

	SubmitTime time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// --- FACTORY ---
func NewDeclaration(number string, applicantID int64, applicantName, researchTopic, workflowID string) *Declaration {
	now := time.Now()
	return &Declaration{
		Number:         number,
		ApplicantID:    applicantID,
		ApplicantName:  applicantName,
		ResearchTopic:  researchTopic,
		WorkflowID:     workflowID,
		WorkflowStatus: WorkflowPending,
		Status:         DeclarationInProgress,
		SubmitTime:     now,
		CreatedAt:      now,
	}
}

// --- METHODS ---
func (d *Declaration) IsWorkflowFinished() bool {
	return d.WorkflowStatus == WorkflowCompleted || d.WorkflowStatus == WorkflowFailed
}
