package repository

import (
	"context"

	"gorm.io/gorm"

	"sci-z-declaration/internal/core/ports"
	"sci-z-declaration/internal/domain"
)

type attachmentRelationRepository struct {
	db *gorm.DB
}

// NewAttachmentRelationRepository creates a new instance of AttachmentRelationRepository
func NewAttachmentRelationRepository(db *gorm.DB) ports.AttachmentRelationRepository {
	return &attachmentRelationRepository{db: db}
}

func (r *attachmentRelationRepository) Create(ctx context.Context, relation *domain.AttachmentRelation) error {
	return r.db.WithContext(ctx).Create(relation).Error
}

func (r *attachmentRelationRepository) FindAttachmentIDs(ctx context.Context, relationType string, relationID int64) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&domain.AttachmentRelation{}).
		Where("relation_type = ? AND relation_id = ?", relationType, relationID).
		Order("sort_order ASC").
		Pluck("attachment_id", &ids).Error
	return ids, err
}
