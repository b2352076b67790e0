package domain

import (
	"time"

	"github.com/google/uuid"
)

// DeclarationCreatedEvent is published once a declaration row is saved and the
// workflow job has been handed off.
type DeclarationCreatedEvent struct {
	EventID       string    `json:"event_id"`
	DeclarationID int64     `json:"declaration_id"`
	ResearchTopic string    `json:"research_topic"`
	ApplicantID   int64     `json:"applicant_id"`
	ApplicantName string    `json:"applicant_name"`
	Status        string    `json:"status"`
	Description   string    `json:"description"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// DeclarationUpdatedEvent is the terminal notification of one workflow run:
// old status -> new status plus a human-readable note.
type DeclarationUpdatedEvent struct {
	EventID       string    `json:"event_id"`
	DeclarationID int64     `json:"declaration_id"`
	ApplicantID   int64     `json:"applicant_id"`
	OldStatus     string    `json:"old_status"`
	NewStatus     string    `json:"new_status"`
	Description   string    `json:"description"`
	UpdateReason  string    `json:"update_reason"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewDeclarationCreatedEvent(declarationID int64, researchTopic string, applicantID int64, applicantName, description string) DeclarationCreatedEvent {
	return DeclarationCreatedEvent{
		EventID:       uuid.New().String(),
		DeclarationID: declarationID,
		ResearchTopic: researchTopic,
		ApplicantID:   applicantID,
		ApplicantName: applicantName,
		Status:        string(DeclarationInProgress),
		Description:   description,
		OccurredAt:    time.Now(),
	}
}

func NewDeclarationUpdatedEvent(declarationID, applicantID int64, oldStatus, newStatus DeclarationStatus, description, reason string) DeclarationUpdatedEvent {
	return DeclarationUpdatedEvent{
		EventID:       uuid.New().String(),
		DeclarationID: declarationID,
		ApplicantID:   applicantID,
		OldStatus:     string(oldStatus),
		NewStatus:     string(newStatus),
		Description:   description,
		UpdateReason:  reason,
		OccurredAt:    time.Now(),
	}
}
