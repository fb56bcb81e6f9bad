package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/seguro/backend/internal/models"
	"gorm.io/gorm"
)

// RequestMeta carries the request-scoped fields mutating services stamp onto
// audit rows.
type RequestMeta struct {
	ActorID   *uuid.UUID
	IPAddress string
	RequestID string
}

type GrantService struct {
	DB    *gorm.DB
	Audit *AuditService
}

func NewGrantService(db *gorm.DB, audit *AuditService) *GrantService {
	return &GrantService{DB: db, Audit: audit}
}

type GrantInput struct {
	DocumentID   uuid.UUID
	GranteeID    uuid.UUID
	Permissions  models.PermissionSet
	ExpiresAt    *time.Time
	Via          models.GrantProvenance
	SourceLinkID *uuid.UUID

	// Reactivate allows replacing a revoked grant. Without it a revoked
	// (document, grantee) pair stays inert.
	Reactivate bool
}

// Upsert creates or updates the single grant for a (document, grantee) pair.
// Permission sets must honor the view dependency. A previously revoked pair
// is only brought back when Reactivate is set.
func (s *GrantService) Upsert(ctx context.Context, meta RequestMeta, input GrantInput) (*models.DocumentGrant, error) {
	if !input.Permissions.Any() {
		return nil, fmt.Errorf("%w: grant must carry at least one permission", ErrValidation)
	}
	if !input.Permissions.Coherent() {
		return nil, fmt.Errorf("%w: download, edit and share require view", ErrPolicyViolation)
	}
	if input.Via == "" {
		input.Via = models.GrantViaDirect
	}

	var document models.Document
	if err := s.DB.WithContext(ctx).First(&document, "id = ?", input.DocumentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: document", ErrNotFound)
		}
		return nil, err
	}
	if !Shareable(document.Classification) {
		return nil, fmt.Errorf("%w: restricted documents cannot be shared", ErrPolicyViolation)
	}
	if document.OwnerID == input.GranteeID {
		return nil, fmt.Errorf("%w: owner cannot be granted access to own document", ErrValidation)
	}

	var grantee models.User
	if err := s.DB.WithContext(ctx).First(&grantee, "id = ?", input.GranteeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: grantee", ErrNotFound)
		}
		return nil, err
	}

	var grant *models.DocumentGrant
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		grant, txErr = upsertGrantTx(tx, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.Audit.LogAsync(AuditEntry{
		ActorID:    meta.ActorID,
		Action:     models.AuditAccessGranted,
		ObjectType: models.AuditObjectGrant,
		ObjectID:   &grant.ID,
		Details: map[string]interface{}{
			"document_id": input.DocumentID.String(),
			"grantee_id":  input.GranteeID.String(),
			"via":         string(input.Via),
		},
		IPAddress: meta.IPAddress,
		RequestID: meta.RequestID,
	})

	return grant, nil
}

// upsertGrantTx is the transaction-scoped core of Upsert, shared with share
// link activation so a grant lands in the same transaction as the link's use
// counters.
func upsertGrantTx(tx *gorm.DB, input GrantInput) (*models.DocumentGrant, error) {
	var existing models.DocumentGrant
	err := tx.Where("document_id = ? AND grantee_id = ?", input.DocumentID, input.GranteeID).
		First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err == nil {
		if existing.RevokedAt != nil && !input.Reactivate {
			return nil, fmt.Errorf("%w: grant was revoked", ErrForbidden)
		}
		updates := map[string]interface{}{
			"can_view":       input.Permissions.CanView,
			"can_download":   input.Permissions.CanDownload,
			"can_edit":       input.Permissions.CanEdit,
			"can_share":      input.Permissions.CanShare,
			"expires_at":     input.ExpiresAt,
			"revoked_at":     nil,
			"via":            input.Via,
			"source_link_id": input.SourceLinkID,
		}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return nil, err
		}
		existing.CanView = input.Permissions.CanView
		existing.CanDownload = input.Permissions.CanDownload
		existing.CanEdit = input.Permissions.CanEdit
		existing.CanShare = input.Permissions.CanShare
		existing.ExpiresAt = input.ExpiresAt
		existing.RevokedAt = nil
		existing.Via = input.Via
		existing.SourceLinkID = input.SourceLinkID
		return &existing, nil
	}

	grant := models.DocumentGrant{
		DocumentID:   input.DocumentID,
		GranteeID:    input.GranteeID,
		CanView:      input.Permissions.CanView,
		CanDownload:  input.Permissions.CanDownload,
		CanEdit:      input.Permissions.CanEdit,
		CanShare:     input.Permissions.CanShare,
		ExpiresAt:    input.ExpiresAt,
		Via:          input.Via,
		SourceLinkID: input.SourceLinkID,
	}
	if err := tx.Create(&grant).Error; err != nil {
		return nil, err
	}
	return &grant, nil
}

// Revoke sets revoked_at on the pair's grant. Revoking an already revoked or
// absent grant is a no-op.
func (s *GrantService) Revoke(ctx context.Context, meta RequestMeta, documentID, granteeID uuid.UUID) error {
	result := s.DB.WithContext(ctx).Model(&models.DocumentGrant{}).
		Where("document_id = ? AND grantee_id = ? AND revoked_at IS NULL", documentID, granteeID).
		Update("revoked_at", time.Now().UTC())
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		s.Audit.LogAsync(AuditEntry{
			ActorID:    meta.ActorID,
			Action:     models.AuditAccessRevoked,
			ObjectType: models.AuditObjectGrant,
			ObjectID:   &documentID,
			Details: map[string]interface{}{
				"document_id": documentID.String(),
				"grantee_id":  granteeID.String(),
			},
			IPAddress: meta.IPAddress,
			RequestID: meta.RequestID,
		})
	}
	return nil
}

// RevokeAll revokes every active grant on the document in one UPDATE.
func (s *GrantService) RevokeAll(ctx context.Context, meta RequestMeta, documentID uuid.UUID) (int64, error) {
	result := s.DB.WithContext(ctx).Model(&models.DocumentGrant{}).
		Where("document_id = ? AND revoked_at IS NULL", documentID).
		Update("revoked_at", time.Now().UTC())
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		s.Audit.LogAsync(AuditEntry{
			ActorID:    meta.ActorID,
			Action:     models.AuditAccessRevoked,
			ObjectType: models.AuditObjectDocument,
			ObjectID:   &documentID,
			Details: map[string]interface{}{
				"document_id":   documentID.String(),
				"revoked_count": result.RowsAffected,
			},
			IPAddress: meta.IPAddress,
			RequestID: meta.RequestID,
		})
	}
	return result.RowsAffected, nil
}

// ActiveGrant returns the pair's grant only if it currently confers access.
func (s *GrantService) ActiveGrant(ctx context.Context, documentID, granteeID uuid.UUID) (*models.DocumentGrant, error) {
	var grant models.DocumentGrant
	err := s.DB.WithContext(ctx).
		Where("document_id = ? AND grantee_id = ?", documentID, granteeID).
		First(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !grant.IsActive(time.Now()) {
		return nil, ErrNotFound
	}
	return &grant, nil
}

// ListForDocument returns all grants on the document, revoked ones included.
func (s *GrantService) ListForDocument(ctx context.Context, documentID uuid.UUID) ([]models.DocumentGrant, error) {
	var grants []models.DocumentGrant
	err := s.DB.WithContext(ctx).
		Preload("Grantee").
		Where("document_id = ?", documentID).
		Order("created_at ASC").
		Find(&grants).Error
	return grants, err
}

// ListSharedWith returns documents the user holds an active grant on.
func (s *GrantService) ListSharedWith(ctx context.Context, granteeID uuid.UUID) ([]models.DocumentGrant, error) {
	now := time.Now()
	var grants []models.DocumentGrant
	err := s.DB.WithContext(ctx).
		Where("grantee_id = ? AND revoked_at IS NULL", granteeID).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at DESC").
		Find(&grants).Error
	return grants, err
}
