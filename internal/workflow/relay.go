package workflow

import (
	"context"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"sci-z-declaration/internal/core/ports"
	"sci-z-declaration/internal/domain"
)

// A research topic longer than this is left out of the relation name.
const maxTopicRunes = 60

// Relay pushes a downloaded artifact into file storage and records the
// attachment relation that ties it to its declaration.
type Relay struct {
	declarations ports.DeclarationRepository
	relations    ports.AttachmentRelationRepository
	storage      ports.FileStorage
}

func NewRelay(declarations ports.DeclarationRepository, relations ports.AttachmentRelationRepository, storage ports.FileStorage) *Relay {
	return &Relay{declarations: declarations, relations: relations, storage: storage}
}

// Store uploads the artifact and creates the attachment relation row. The
// declaration is re-fetched to build the relation name; it disappearing
// mid-run is a data-integrity error, not a transient one.
func (s *Relay) Store(ctx context.Context, declarationID int64, file *FileData, userID int64) (string, error) {
	declaration, err := s.declarations.FindByID(ctx, declarationID)
	if err != nil {
		return "", fmt.Errorf("load declaration %d: %w", declarationID, err)
	}
	if declaration == nil {
		return "", fmt.Errorf("declaration %d not found", declarationID)
	}

	relationName := RelationName(declaration)

	attachmentID, err := s.storage.Upload(ctx, ports.UploadInput{
		FileName:       file.Name,
		Content:        file.Content,
		ContentType:    file.ContentType,
		RelationType:   domain.RelationTypeDeclaration,
		RelationID:     declarationID,
		RelationName:   relationName,
		AttachmentType: domain.AttachmentTypeDocument,
		Public:         false,
	})
	if err != nil {
		return "", fmt.Errorf("upload artifact for declaration %d: %w", declarationID, err)
	}

	now := time.Now()
	relation := &domain.AttachmentRelation{
		AttachmentID:   attachmentID,
		RelationType:   domain.RelationTypeDeclaration,
		RelationID:     declarationID,
		RelationName:   relationName,
		AttachmentType: domain.AttachmentTypeDocument,
		SortOrder:      0,
		CreatedBy:      userID,
		UpdatedBy:      userID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.relations.Create(ctx, relation); err != nil {
		return "", fmt.Errorf("create attachment relation for declaration %d: %w", declarationID, err)
	}

	log.Printf("Relay: stored artifact %s for declaration %d", attachmentID, declarationID)
	return attachmentID, nil
}

// RelationName builds the human-readable name of the association:
// "number/topic", with the topic left out when empty or over 60 characters.
func RelationName(declaration *domain.Declaration) string {
	number := declaration.Number
	topic := declaration.ResearchTopic

	if topic == "" || utf8.RuneCountInString(topic) > maxTopicRunes {
		if number != "" {
			return number
		}
		return fmt.Sprintf("declaration-%d", declaration.ID)
	}
	return fmt.Sprintf("%s/%s", number, topic)
}
