package workflow

import (
	"context"
	"log"

	"sci-z-declaration/internal/core/ports"
	"sci-z-declaration/internal/domain"
	"sci-z-declaration/internal/metrics"
)

// ProgressTracker persists ledger mutations through the declaration
// repository. Every append is an immediate read-modify-write so each step is
// independently durable and visible to pollers.
//
// All methods are best-effort: a tracking failure is logged and swallowed, it
// never fails the run that is being tracked.
type ProgressTracker struct {
	declarations ports.DeclarationRepository
	metrics      *metrics.WorkflowMetrics
}

func NewProgressTracker(declarations ports.DeclarationRepository, m *metrics.WorkflowMetrics) *ProgressTracker {
	return &ProgressTracker{declarations: declarations, metrics: m}
}

// AppendStep records one ledger step, keeping the current workflow status.
func (t *ProgressTracker) AppendStep(ctx context.Context, declarationID int64, name, status string) {
	declaration, err := t.declarations.FindByID(ctx, declarationID)
	if err != nil {
		log.Printf("Tracker: failed to load declaration %d for step %q: %v", declarationID, name, err)
		return
	}
	if declaration == nil {
		log.Printf("Tracker: declaration %d not found, skipping step %q", declarationID, name)
		return
	}

	ledger := LoadLedger(declaration.WorkflowResult).Append(name, status)
	t.save(ctx, declarationID, declaration.WorkflowStatus, ledger)
	t.metrics.ObserveStep(name, status)

	log.Printf("Tracker: declaration %d step recorded: %s (%s)", declarationID, name, status)
}

// SetStatus transitions the workflow status, optionally recording the
// generated artifact's URL and derived format on the ledger.
func (t *ProgressTracker) SetStatus(ctx context.Context, declarationID int64, status domain.WorkflowStatus, fileURL string) {
	declaration, err := t.declarations.FindByID(ctx, declarationID)
	if err != nil {
		log.Printf("Tracker: failed to load declaration %d for status %s: %v", declarationID, status, err)
		return
	}
	if declaration == nil {
		log.Printf("Tracker: declaration %d not found, skipping status %s", declarationID, status)
		return
	}

	ledger := LoadLedger(declaration.WorkflowResult)
	if fileURL != "" {
		ledger = ledger.WithArtifact(fileURL, FileFormatFromURL(fileURL))
	}
	t.save(ctx, declarationID, status, ledger)

	log.Printf("Tracker: declaration %d workflow status set to %s", declarationID, status)
}

func (t *ProgressTracker) save(ctx context.Context, declarationID int64, status domain.WorkflowStatus, ledger Ledger) {
	blob, err := ledger.Encode()
	if err != nil {
		log.Printf("Tracker: failed to encode ledger for declaration %d: %v", declarationID, err)
		return
	}

	updated, err := t.declarations.UpdateWorkflowStatus(ctx, declarationID, status, blob)
	if err != nil {
		log.Printf("Tracker: failed to persist ledger for declaration %d: %v", declarationID, err)
		return
	}
	if !updated {
		log.Printf("Tracker: declaration %d vanished during ledger update", declarationID)
	}
}
