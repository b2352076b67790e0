package ports

import (
	"context"

	"gorm.io/datatypes"

	"sci-z-declaration/internal/dify"
	"sci-z-declaration/internal/domain"
)

// JobQueue carries workflow jobs from the submission service to the worker pool.
type JobQueue interface {
	// Enqueue a job for the background worker pool
	Enqueue(ctx context.Context, job domain.WorkflowJob) error

	// Wait (Block) until a job is available
	Dequeue(ctx context.Context) (*domain.WorkflowJob, error)
}

// EventBus publishes declaration lifecycle events. Delivery is best-effort,
// at-most-once; nothing in this service waits on a subscriber.
type EventBus interface {
	PublishDeclarationCreated(ctx context.Context, event domain.DeclarationCreatedEvent) error

	PublishDeclarationUpdated(ctx context.Context, event domain.DeclarationUpdatedEvent) error

	// Subscribe to updated events (used by the notifier)
	SubscribeToDeclarationUpdates(ctx context.Context) (<-chan domain.DeclarationUpdatedEvent, error)
}

// DeclarationRepository is the persistence boundary for declaration rows.
type DeclarationRepository interface {
	Create(ctx context.Context, declaration *domain.Declaration) error

	// FindByID returns (nil, nil) when the row does not exist
	FindByID(ctx context.Context, id int64) (*domain.Declaration, error)

	// UpdateWorkflowStatus persists the workflow status together with the
	// progress ledger blob; returns false when no row matched
	UpdateWorkflowStatus(ctx context.Context, id int64, status domain.WorkflowStatus, result datatypes.JSON) (bool, error)

	// UpdateStatus sets the declaration status; returns false when no row matched
	UpdateStatus(ctx context.Context, id int64, status domain.DeclarationStatus) (bool, error)

	// MarkWorkflowRunning is the run lease: it flips workflow_status to
	// "running" only when the row is not already running, and reports whether
	// the lease was acquired
	MarkWorkflowRunning(ctx context.Context, id int64) (bool, error)
}

// AttachmentRelationRepository persists file-to-entity association rows.
type AttachmentRelationRepository interface {
	Create(ctx context.Context, relation *domain.AttachmentRelation) error

	// FindAttachmentIDs lists stored-object ids linked to one entity
	FindAttachmentIDs(ctx context.Context, relationType string, relationID int64) ([]string, error)
}

// UploadInput describes one object handed to file storage.
type UploadInput struct {
	FileName    string
	Content     []byte
	ContentType string

	RelationType   string
	RelationID     int64
	RelationName   string
	AttachmentType string
	Public         bool
}

// FileStorage is the object-storage collaborator. Upload returns the stored
// object identifier used as AttachmentRelation.AttachmentID.
type FileStorage interface {
	Upload(ctx context.Context, input UploadInput) (string, error)
}

// WorkflowClient runs the remote document-generation workflow. One call, one
// run; blocking until the remote side finishes.
type WorkflowClient interface {
	RunWorkflow(ctx context.Context, req dify.WorkflowRequest) (*dify.WorkflowResponse, error)
}
