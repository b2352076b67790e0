package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"sci-z-declaration/internal/api/dto"
	"sci-z-declaration/internal/domain"
	"sci-z-declaration/internal/workflow"
)

type stubDeclarationRepo struct {
	mu           sync.Mutex
	declarations map[int64]*domain.Declaration
	nextID       int64
}

func newStubDeclarationRepo() *stubDeclarationRepo {
	return &stubDeclarationRepo{declarations: make(map[int64]*domain.Declaration), nextID: 1}
}

func (r *stubDeclarationRepo) Create(_ context.Context, declaration *domain.Declaration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	declaration.ID = r.nextID
	r.nextID++
	r.declarations[declaration.ID] = declaration
	return nil
}

func (r *stubDeclarationRepo) FindByID(_ context.Context, id int64) (*domain.Declaration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	declaration, ok := r.declarations[id]
	if !ok {
		return nil, nil
	}
	clone := *declaration
	return &clone, nil
}

func (r *stubDeclarationRepo) UpdateWorkflowStatus(_ context.Context, id int64, status domain.WorkflowStatus, result datatypes.JSON) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	declaration, ok := r.declarations[id]
	if !ok {
		return false, nil
	}
	declaration.WorkflowStatus = status
	declaration.WorkflowResult = result
	return true, nil
}

func (r *stubDeclarationRepo) UpdateStatus(_ context.Context, id int64, status domain.DeclarationStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	declaration, ok := r.declarations[id]
	if !ok {
		return false, nil
	}
	declaration.Status = status
	return true, nil
}

func (r *stubDeclarationRepo) MarkWorkflowRunning(_ context.Context, id int64) (bool, error) {
	return true, nil
}

type stubJobQueue struct {
	jobs chan domain.WorkflowJob
}

func (q *stubJobQueue) Enqueue(_ context.Context, job domain.WorkflowJob) error {
	q.jobs <- job
	return nil
}

func (q *stubJobQueue) Dequeue(ctx context.Context) (*domain.WorkflowJob, error) {
	select {
	case job := <-q.jobs:
		return &job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type stubEventBus struct {
	mu      sync.Mutex
	created []domain.DeclarationCreatedEvent
	updated []domain.DeclarationUpdatedEvent
}

func (b *stubEventBus) PublishDeclarationCreated(_ context.Context, event domain.DeclarationCreatedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = append(b.created, event)
	return nil
}

func (b *stubEventBus) PublishDeclarationUpdated(_ context.Context, event domain.DeclarationUpdatedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updated = append(b.updated, event)
	return nil
}

func (b *stubEventBus) SubscribeToDeclarationUpdates(_ context.Context) (<-chan domain.DeclarationUpdatedEvent, error) {
	ch := make(chan domain.DeclarationUpdatedEvent)
	close(ch)
	return ch, nil
}

func TestDeclarationServiceSubmit(t *testing.T) {
	req := dto.CreateDeclarationRequest{
		UserID:        7,
		UserName:      "alice",
		WorkflowID:    "wf-1",
		ResearchTopic: "quantum dot",
	}

	repo := newStubDeclarationRepo()
	queue := &stubJobQueue{jobs: make(chan domain.WorkflowJob, 1)}
	bus := &stubEventBus{}
	svc := NewDeclarationService(repo, queue, bus)

	resp, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
	assert.Contains(t, resp.Number, "NSFC")

	// The record starts pending/in-progress with the submission step seeded.
	declaration, err := repo.FindByID(context.Background(), resp.ID)
	require.NoError(t, err)
	require.NotNil(t, declaration)
	assert.Equal(t, domain.WorkflowPending, declaration.WorkflowStatus)
	assert.Equal(t, domain.DeclarationInProgress, declaration.Status)

	ledger := workflow.LoadLedger(declaration.WorkflowResult)
	require.Len(t, ledger.Steps, 1)
	assert.Equal(t, workflow.StepDeclarationSubmitted, ledger.Steps[0].Name)
	assert.Equal(t, workflow.StepStatusSuccess, ledger.Steps[0].Status)

	// The workflow job is enqueued fire-and-forget.
	select {
	case job := <-queue.jobs:
		assert.Equal(t, resp.ID, job.DeclarationID)
		assert.Equal(t, "wf-1", job.WorkflowID)
		assert.Equal(t, int64(7), job.UserID)
		assert.Equal(t, "quantum dot", job.Inputs["research_topic"])
	case <-time.After(2 * time.Second):
		t.Fatal("workflow job was never enqueued")
	}

	require.Len(t, bus.created, 1)
	assert.Equal(t, resp.ID, bus.created[0].DeclarationID)
}

func TestDeclarationServiceWorkflowStatus(t *testing.T) {
	repo := newStubDeclarationRepo()
	svc := NewDeclarationService(repo, &stubJobQueue{jobs: make(chan domain.WorkflowJob, 1)}, &stubEventBus{})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.WorkflowStatus(context.Background(), 404)
		assert.ErrorIs(t, err, ErrDeclarationNotFound)
	})

	t.Run("maps ledger onto the response", func(t *testing.T) {
		declaration := domain.NewDeclaration("NSFC20250101000000", 7, "alice", "quantum dot", "wf-1")
		require.NoError(t, repo.Create(context.Background(), declaration))

		ledger := workflow.Ledger{}.
			Append(workflow.StepDeclarationSubmitted, workflow.StepStatusSuccess).
			Append(workflow.StepWorkflowStarted, workflow.StepStatusSuccess).
			WithArtifact("https://x/a.pdf", "pdf")
		blob, err := ledger.Encode()
		require.NoError(t, err)
		_, err = repo.UpdateWorkflowStatus(context.Background(), declaration.ID, domain.WorkflowCompleted, blob)
		require.NoError(t, err)

		resp, err := svc.WorkflowStatus(context.Background(), declaration.ID)
		require.NoError(t, err)

		assert.Equal(t, string(domain.WorkflowCompleted), resp.WorkflowStatus)
		require.Len(t, resp.Steps, 2)
		assert.Equal(t, workflow.StepWorkflowStarted, resp.Steps[1].Name)
		assert.Equal(t, "https://x/a.pdf", resp.FileURL)
		assert.Equal(t, "pdf", resp.FileFormat)
	})
}
