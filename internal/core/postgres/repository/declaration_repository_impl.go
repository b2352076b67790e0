package repository

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"sci-z-declaration/internal/core/ports"
	"sci-z-declaration/internal/domain"
)

type declarationRepository struct {
	db *gorm.DB
}

// NewDeclarationRepository creates a new instance of DeclarationRepository
func NewDeclarationRepository(db *gorm.DB) ports.DeclarationRepository {
	return &declarationRepository{db: db}
}

func (r *declarationRepository) Create(ctx context.Context, declaration *domain.Declaration) error {
	return r.db.WithContext(ctx).Create(declaration).Error
}

func (r *declarationRepository) FindByID(ctx context.Context, id int64) (*domain.Declaration, error) {
	var declaration domain.Declaration
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&declaration).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &declaration, nil
}

func (r *declarationRepository) UpdateWorkflowStatus(ctx context.Context, id int64, status domain.WorkflowStatus, result datatypes.JSON) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Declaration{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"workflow_status": status,
			"workflow_result": result,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *declarationRepository) UpdateStatus(ctx context.Context, id int64, status domain.DeclarationStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Declaration{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkWorkflowRunning acquires the per-declaration run lease. The status check
// in the WHERE clause makes the transition conditional: only one caller can
// move a declaration out of a non-running state, so a double-submitted job
// observes RowsAffected == 0 and drops the run instead of racing the first.
func (r *declarationRepository) MarkWorkflowRunning(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Declaration{}).
		Where("id = ? AND workflow_status != ?", id, domain.WorkflowRunning).
		Update("workflow_status", domain.WorkflowRunning)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
