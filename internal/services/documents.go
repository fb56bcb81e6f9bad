package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/seguro/backend/internal/models"
	"github.com/seguro/backend/pkg/utils"
	"gorm.io/gorm"
)

type DocumentService struct {
	DB    *gorm.DB
	Audit *AuditService
}

func NewDocumentService(db *gorm.DB, audit *AuditService) *DocumentService {
	return &DocumentService{DB: db, Audit: audit}
}

type CreateDocumentInput struct {
	Title          string
	Description    *string
	Classification models.Classification
	OwnerID        uuid.UUID
}

// CreateDocumentResult carries the one-time extras minted at creation: the
// restricted password (restricted docs) and the permanent anonymous token
// (public docs). The password is never retrievable again.
type CreateDocumentResult struct {
	Document           *models.Document
	RestrictedPassword string
	PublicToken        string
}

func (s *DocumentService) Create(ctx context.Context, meta RequestMeta, input CreateDocumentInput) (*CreateDocumentResult, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !input.Classification.Valid() {
		return nil, fmt.Errorf("%w: unknown classification %q", ErrValidation, input.Classification)
	}

	doc := models.Document{
		Title:          input.Title,
		Description:    input.Description,
		Classification: input.Classification,
		OwnerID:        input.OwnerID,
	}

	result := &CreateDocumentResult{Document: &doc}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&doc).Error; err != nil {
			return err
		}

		if AnonymousReadable(doc.Classification) {
			_, tokenHash, _, err := utils.GenerateLinkToken()
			if err != nil {
				return err
			}
			// The public token is permanent and stored as-is; there is no
			// plaintext/digest split because it grants read-only access to
			// content the owner declared public.
			publicLink := models.PublicDocLink{
				DocumentID: doc.ID,
				Token:      tokenHash,
			}
			if err := tx.Create(&publicLink).Error; err != nil {
				return err
			}
			result.PublicToken = publicLink.Token
		}

		// The secret lands in the same transaction: a restricted document
		// must never commit without one.
		if RequiresSecondaryAuth(doc.Classification) {
			password, err := setSecretTx(tx, doc.ID)
			if err != nil {
				return err
			}
			result.RestrictedPassword = password
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Audit.LogAsync(AuditEntry{
		ActorID:    meta.ActorID,
		Action:     models.AuditDocumentCreated,
		ObjectType: models.AuditObjectDocument,
		ObjectID:   &doc.ID,
		Details: map[string]interface{}{
			"classification": string(doc.Classification),
		},
		IPAddress: meta.IPAddress,
		RequestID: meta.RequestID,
	})

	return result, nil
}

type UpdateDocumentInput struct {
	Title       *string
	Description *string
}

// Update edits title and description. Classification is immutable.
func (s *DocumentService) Update(ctx context.Context, meta RequestMeta, doc *models.Document, input UpdateDocumentInput) error {
	updates := map[string]interface{}{}
	if input.Title != nil {
		if *input.Title == "" {
			return fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.DB.WithContext(ctx).Model(doc).Updates(updates).Error; err != nil {
		return err
	}

	s.Audit.LogAsync(AuditEntry{
		ActorID:    meta.ActorID,
		Action:     models.AuditDocumentUpdated,
		ObjectType: models.AuditObjectDocument,
		ObjectID:   &doc.ID,
		IPAddress:  meta.IPAddress,
		RequestID:  meta.RequestID,
	})
	return nil
}

// Delete soft-deletes the document and revokes every grant and link on it,
// so nothing keeps conferring access to a tombstone.
func (s *DocumentService) Delete(ctx context.Context, meta RequestMeta, doc *models.Document) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		if err := tx.Model(&models.DocumentGrant{}).
			Where("document_id = ? AND revoked_at IS NULL", doc.ID).
			Update("revoked_at", now).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ShareLink{}).
			Where("document_id = ? AND revoked_at IS NULL", doc.ID).
			Update("revoked_at", now).Error; err != nil {
			return err
		}
		return tx.Delete(doc).Error
	})
	if err != nil {
		return err
	}

	s.Audit.LogAsync(AuditEntry{
		ActorID:    meta.ActorID,
		Action:     models.AuditDocumentDeleted,
		ObjectType: models.AuditObjectDocument,
		ObjectID:   &doc.ID,
		IPAddress:  meta.IPAddress,
		RequestID:  meta.RequestID,
	})
	return nil
}

func (s *DocumentService) GetByID(ctx context.Context, documentID uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := s.DB.WithContext(ctx).First(&doc, "id = ?", documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (s *DocumentService) ListOwned(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]models.Document, int64, error) {
	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Document{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docs []models.Document
	err := s.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&docs).Error
	return docs, total, err
}

// GetPublicByToken resolves a permanent anonymous token. Only public
// documents are ever served this way.
func (s *DocumentService) GetPublicByToken(ctx context.Context, token string) (*models.Document, error) {
	var link models.PublicDocLink
	if err := s.DB.WithContext(ctx).Where("token = ?", token).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	doc, err := s.GetByID(ctx, link.DocumentID)
	if err != nil {
		return nil, err
	}
	if !AnonymousReadable(doc.Classification) {
		return nil, ErrNotFound
	}
	return doc, nil
}
