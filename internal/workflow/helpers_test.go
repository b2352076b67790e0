package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/datatypes"

	"sci-z-declaration/internal/core/ports"
	"sci-z-declaration/internal/dify"
	"sci-z-declaration/internal/domain"
)

// memDeclarationRepo is an in-memory DeclarationRepository with the same
// read-modify-write visibility the real row store provides.
type memDeclarationRepo struct {
	mu           sync.Mutex
	declarations map[int64]*domain.Declaration
	failUpdates  bool
}

func newMemDeclarationRepo(declarations ...*domain.Declaration) *memDeclarationRepo {
	repo := &memDeclarationRepo{declarations: make(map[int64]*domain.Declaration)}
	for _, d := range declarations {
		repo.declarations[d.ID] = d
	}
	return repo
}

func (r *memDeclarationRepo) Create(_ context.Context, declaration *domain.Declaration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if declaration.ID == 0 {
		declaration.ID = int64(len(r.declarations) + 1)
	}
	r.declarations[declaration.ID] = declaration
	return nil
}

func (r *memDeclarationRepo) FindByID(_ context.Context, id int64) (*domain.Declaration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	declaration, ok := r.declarations[id]
	if !ok {
		return nil, nil
	}
	clone := *declaration
	return &clone, nil
}

func (r *memDeclarationRepo) UpdateWorkflowStatus(_ context.Context, id int64, status domain.WorkflowStatus, result datatypes.JSON) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdates {
		return false, errors.New("storage unavailable")
	}
	declaration, ok := r.declarations[id]
	if !ok {
		return false, nil
	}
	declaration.WorkflowStatus = status
	declaration.WorkflowResult = result
	return true, nil
}

func (r *memDeclarationRepo) UpdateStatus(_ context.Context, id int64, status domain.DeclarationStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	declaration, ok := r.declarations[id]
	if !ok {
		return false, nil
	}
	declaration.Status = status
	return true, nil
}

func (r *memDeclarationRepo) MarkWorkflowRunning(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	declaration, ok := r.declarations[id]
	if !ok || declaration.WorkflowStatus == domain.WorkflowRunning {
		return false, nil
	}
	declaration.WorkflowStatus = domain.WorkflowRunning
	return true, nil
}

func (r *memDeclarationRepo) get(id int64) *domain.Declaration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.declarations[id]
}

type memRelationRepo struct {
	mu        sync.Mutex
	relations []*domain.AttachmentRelation
	createErr error
}

func (r *memRelationRepo) Create(_ context.Context, relation *domain.AttachmentRelation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.relations = append(r.relations, relation)
	return nil
}

func (r *memRelationRepo) FindAttachmentIDs(_ context.Context, relationType string, relationID int64) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, relation := range r.relations {
		if relation.RelationType == relationType && relation.RelationID == relationID {
			ids = append(ids, relation.AttachmentID)
		}
	}
	return ids, nil
}

func (r *memRelationRepo) all() []*domain.AttachmentRelation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.AttachmentRelation(nil), r.relations...)
}

type mockStorage struct {
	mu        sync.Mutex
	uploads   []ports.UploadInput
	uploadErr error
}

func (s *mockStorage) Upload(_ context.Context, input ports.UploadInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploads = append(s.uploads, input)
	return fmt.Sprintf("%s/%d/%s", input.RelationType, input.RelationID, input.FileName), nil
}

func (s *mockStorage) allUploads() []ports.UploadInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.UploadInput(nil), s.uploads...)
}

type mockWorkflowClient struct {
	response *dify.WorkflowResponse
	err      error
	requests []dify.WorkflowRequest
	mu       sync.Mutex
}

func (c *mockWorkflowClient) RunWorkflow(_ context.Context, req dify.WorkflowRequest) (*dify.WorkflowResponse, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.response, nil
}

type mockEventBus struct {
	mu      sync.Mutex
	created []domain.DeclarationCreatedEvent
	updated []domain.DeclarationUpdatedEvent
}

func (b *mockEventBus) PublishDeclarationCreated(_ context.Context, event domain.DeclarationCreatedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = append(b.created, event)
	return nil
}

func (b *mockEventBus) PublishDeclarationUpdated(_ context.Context, event domain.DeclarationUpdatedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updated = append(b.updated, event)
	return nil
}

func (b *mockEventBus) SubscribeToDeclarationUpdates(_ context.Context) (<-chan domain.DeclarationUpdatedEvent, error) {
	ch := make(chan domain.DeclarationUpdatedEvent)
	close(ch)
	return ch, nil
}

func (b *mockEventBus) updatedEvents() []domain.DeclarationUpdatedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.DeclarationUpdatedEvent(nil), b.updated...)
}
