package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"sci-z-declaration/internal/api/dto"
	"sci-z-declaration/internal/core/ports"
	"sci-z-declaration/internal/domain"
	"sci-z-declaration/internal/workflow"
)

var ErrDeclarationNotFound = errors.New("declaration not found")

type DeclarationService interface {
	// Submit persists a new declaration and hands the document-generation
	// workflow off to the background worker pool; it returns as soon as the
	// job is queued.
	Submit(ctx context.Context, req dto.CreateDeclarationRequest) (*dto.CreateDeclarationResponse, error)

	// WorkflowStatus is the poll surface for one declaration's run.
	WorkflowStatus(ctx context.Context, declarationID int64) (*dto.WorkflowStatusResponse, error)
}

// The Implementation
type declarationService struct {
	declarations ports.DeclarationRepository
	queue        ports.JobQueue
	events       ports.EventBus
}

// Constructor
func NewDeclarationService(declarations ports.DeclarationRepository, queue ports.JobQueue, events ports.EventBus) DeclarationService {
	return &declarationService{
		declarations: declarations,
		queue:        queue,
		events:       events,
	}
}

func (s *declarationService) Submit(ctx context.Context, req dto.CreateDeclarationRequest) (*dto.CreateDeclarationResponse, error) {
	// 1. Create the declaration entity with a seeded progress ledger
	declaration := domain.NewDeclaration(
		newDeclarationNumber(), req.UserID, req.UserName, req.ResearchTopic, req.WorkflowID)
	declaration.ContentSummary = req.ContentSummary

	ledger := workflow.Ledger{}.Append(workflow.StepDeclarationSubmitted, workflow.StepStatusSuccess)
	blob, err := ledger.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode initial ledger: %w", err)
	}
	declaration.WorkflowResult = blob

	// 2. Persist
	if err := s.declarations.Create(ctx, declaration); err != nil {
		return nil, fmt.Errorf("save declaration: %w", err)
	}
	log.Printf("Service: declaration saved: id=%d, number=%s", declaration.ID, declaration.Number)

	// 3. Publish created event (best-effort)
	event := domain.NewDeclarationCreatedEvent(
		declaration.ID, req.ResearchTopic, req.UserID, req.UserName,
		fmt.Sprintf("declaration number: %s", declaration.Number))
	if err := s.events.PublishDeclarationCreated(ctx, event); err != nil {
		log.Printf("Service: failed to publish created event for declaration %d: %v", declaration.ID, err)
	}

	// 4. Enqueue the workflow job; the run outlives this request
	job := domain.WorkflowJob{
		DeclarationID: declaration.ID,
		WorkflowID:    req.WorkflowID,
		Inputs:        buildWorkflowInputs(req),
		UserID:        req.UserID,
	}
	go func(ctx context.Context) {
		if err := s.queue.Enqueue(ctx, job); err != nil {
			log.Printf("Service: failed to enqueue workflow job for declaration %d: %v", declaration.ID, err)
		}
	}(context.WithoutCancel(ctx))

	return &dto.CreateDeclarationResponse{ID: declaration.ID, Number: declaration.Number}, nil
}

func (s *declarationService) WorkflowStatus(ctx context.Context, declarationID int64) (*dto.WorkflowStatusResponse, error) {
	declaration, err := s.declarations.FindByID(ctx, declarationID)
	if err != nil {
		return nil, fmt.Errorf("load declaration %d: %w", declarationID, err)
	}
	if declaration == nil {
		return nil, ErrDeclarationNotFound
	}

	ledger := workflow.LoadLedger(declaration.WorkflowResult)
	steps := make([]dto.WorkflowStepResponse, 0, len(ledger.Steps))
	for _, step := range ledger.Steps {
		steps = append(steps, dto.WorkflowStepResponse{
			Name:      step.Name,
			Status:    step.Status,
			Timestamp: step.Timestamp,
		})
	}

	return &dto.WorkflowStatusResponse{
		DeclarationID:  declaration.ID,
		Status:         string(declaration.Status),
		WorkflowStatus: string(declaration.WorkflowStatus),
		Steps:          steps,
		FileURL:        ledger.FileURL,
		FileFormat:     ledger.FileFormat,
	}, nil
}

// buildWorkflowInputs maps submission fields onto the remote workflow's input
// parameters.
func buildWorkflowInputs(req dto.CreateDeclarationRequest) map[string]any {
	inputs := map[string]any{
		"research_topic": req.ResearchTopic,
	}
	if req.ResearchDirection != "" {
		inputs["research_direction"] = req.ResearchDirection
	}
	if req.ContentSummary != "" {
		inputs["content_summary"] = req.ContentSummary
	}
	return inputs
}

func newDeclarationNumber() string {
	return "NSFC" + time.Now().Format("20060102150405")
}
