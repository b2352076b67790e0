package domain

import "time"

const (
	RelationTypeDeclaration = "declaration"

	AttachmentTypeDocument = "document"
)

// AttachmentRelation links a stored object to the business entity that owns it.
type AttachmentRelation struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	AttachmentID string `gorm:"type:varchar(255);index;not null"`
	RelationType string `gorm:"type:varchar(50);index;not null"`
	RelationID   int64  `gorm:"index;not null"`
	RelationName string `gorm:"type:varchar(255)"`

	AttachmentType string `gorm:"type:varchar(50)"`
	SortOrder      int    `gorm:"default:0"`

	CreatedBy int64
	UpdatedBy int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
