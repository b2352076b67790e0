package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"sci-z-declaration/internal/core/ports"
	"sci-z-declaration/internal/dify"
	"sci-z-declaration/internal/domain"
	"sci-z-declaration/internal/metrics"
)

// ErrNoWorkflowFile marks a run whose remote call reported success but
// produced no downloadable artifact. Treated exactly like a remote failure.
var ErrNoWorkflowFile = errors.New("workflow returned no file download url")

// Orchestrator drives one declaration workflow run end to end: remote
// workflow call, artifact download, storage relay, ledger and status updates,
// terminal event. It runs on a background worker and must never let a failed
// run escape as an error; every failure routes to the single failure path.
type Orchestrator struct {
	declarations   ports.DeclarationRepository
	workflowClient ports.WorkflowClient
	retriever      *Retriever
	relay          *Relay
	events         ports.EventBus
	tracker        *ProgressTracker
	metrics        *metrics.WorkflowMetrics
}

func NewOrchestrator(
	declarations ports.DeclarationRepository,
	workflowClient ports.WorkflowClient,
	retriever *Retriever,
	relay *Relay,
	events ports.EventBus,
	tracker *ProgressTracker,
	m *metrics.WorkflowMetrics,
) *Orchestrator {
	return &Orchestrator{
		declarations:   declarations,
		workflowClient: workflowClient,
		retriever:      retriever,
		relay:          relay,
		events:         events,
		tracker:        tracker,
		metrics:        m,
	}
}

// Process executes one workflow run. The caller has already returned; outcome
// is observable only through the declaration's status fields and ledger.
func (o *Orchestrator) Process(ctx context.Context, job domain.WorkflowJob) {
	log.Printf("Orchestrator: starting workflow run: declarationId=%d, workflowId=%s",
		job.DeclarationID, job.WorkflowID)
	start := time.Now()

	// Run lease: only one active run per declaration. A second submission
	// finds the row already running and its job is dropped here.
	leased, err := o.declarations.MarkWorkflowRunning(ctx, job.DeclarationID)
	if err != nil {
		log.Printf("Orchestrator: failed to acquire run lease for declaration %d: %v", job.DeclarationID, err)
		o.fail(ctx, job)
		o.metrics.ObserveRun("failed", time.Since(start))
		return
	}
	if !leased {
		log.Printf("Orchestrator: declaration %d already has an active run, dropping job", job.DeclarationID)
		o.metrics.ObserveRun("dropped", time.Since(start))
		return
	}

	o.tracker.AppendStep(ctx, job.DeclarationID, StepWorkflowStarted, StepStatusSuccess)

	if err := o.run(ctx, job); err != nil {
		log.Printf("Orchestrator: workflow run failed: declarationId=%d, err=%v", job.DeclarationID, err)
		o.fail(ctx, job)
		o.metrics.ObserveRun("failed", time.Since(start))
		return
	}

	o.metrics.ObserveRun("completed", time.Since(start))
	log.Printf("Orchestrator: workflow run completed: declarationId=%d", job.DeclarationID)
}

// run is the happy path. Any returned error routes to the failure path.
func (o *Orchestrator) run(ctx context.Context, job domain.WorkflowJob) error {
	// Each run gets a fresh correlation id so its log lines can be tied to
	// the remote call.
	correlationID := uuid.NewString()
	log.Printf("Orchestrator: calling remote workflow: declarationId=%d, workflowId=%s, correlationId=%s",
		job.DeclarationID, job.WorkflowID, correlationID)

	// Blocking remote call; 3-5 minutes in the common case. No retries here:
	// a failed run requires a fresh submission.
	response, err := o.workflowClient.RunWorkflow(ctx, dify.WorkflowRequest{
		WorkflowID:    job.WorkflowID,
		CorrelationID: correlationID,
		Inputs:        job.Inputs,
		ResponseMode:  "blocking",
		User:          strconv.FormatInt(job.UserID, 10),
	})
	if err != nil {
		return fmt.Errorf("execute workflow (correlation %s): %w", correlationID, err)
	}

	// Narrative markers for the remote workflow's internal stages, appended
	// unconditionally once the call has returned successfully.
	o.tracker.AppendStep(ctx, job.DeclarationID, StepAIAnalysis, StepStatusSuccess)
	o.tracker.AppendStep(ctx, job.DeclarationID, StepInfoGeneration, StepStatusSuccess)
	o.tracker.AppendStep(ctx, job.DeclarationID, StepDatabaseStorage, StepStatusSuccess)

	fileURL := response.FileURL()
	if fileURL == "" {
		return ErrNoWorkflowFile
	}
	log.Printf("Orchestrator: workflow produced artifact: declarationId=%d, fileUrl=%s",
		job.DeclarationID, fileURL)

	file, err := o.retriever.Download(ctx, fileURL)
	if err != nil {
		return err
	}

	attachmentID, err := o.relay.Store(ctx, job.DeclarationID, file, job.UserID)
	if err != nil {
		return err
	}

	o.tracker.AppendStep(ctx, job.DeclarationID, StepDocumentGenerated, StepStatusSuccess)
	o.tracker.SetStatus(ctx, job.DeclarationID, domain.WorkflowCompleted, fileURL)
	o.updateDeclarationStatus(ctx, job.DeclarationID, domain.DeclarationSuccess)

	o.publishUpdated(ctx, job, domain.DeclarationSuccess,
		"declaration document generated", "workflow run succeeded")

	log.Printf("Orchestrator: artifact relayed: declarationId=%d, attachmentId=%s",
		job.DeclarationID, attachmentID)
	return nil
}

// fail is the single failure path. Every write here is best-effort; a failure
// while recording the failure is logged and swallowed so the worker survives.
func (o *Orchestrator) fail(ctx context.Context, job domain.WorkflowJob) {
	o.tracker.SetStatus(ctx, job.DeclarationID, domain.WorkflowFailed, "")
	o.updateDeclarationStatus(ctx, job.DeclarationID, domain.DeclarationFailed)
	o.tracker.AppendStep(ctx, job.DeclarationID, StepDocumentGenerated, StepStatusFailed)

	o.publishUpdated(ctx, job, domain.DeclarationFailed,
		"declaration document generation failed", "workflow run failed")
}

func (o *Orchestrator) updateDeclarationStatus(ctx context.Context, declarationID int64, status domain.DeclarationStatus) {
	updated, err := o.declarations.UpdateStatus(ctx, declarationID, status)
	if err != nil {
		log.Printf("Orchestrator: failed to update declaration %d status to %s: %v", declarationID, status, err)
		return
	}
	if !updated {
		log.Printf("Orchestrator: declaration %d not found while setting status %s", declarationID, status)
	}
}

func (o *Orchestrator) publishUpdated(ctx context.Context, job domain.WorkflowJob, newStatus domain.DeclarationStatus, description, reason string) {
	event := domain.NewDeclarationUpdatedEvent(
		job.DeclarationID, job.UserID, domain.DeclarationInProgress, newStatus, description, reason)
	if err := o.events.PublishDeclarationUpdated(ctx, event); err != nil {
		log.Printf("Orchestrator: failed to publish updated event for declaration %d: %v", job.DeclarationID, err)
	}
}
