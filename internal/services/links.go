package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/seguro/backend/internal/models"
	"github.com/seguro/backend/pkg/utils"
	"gorm.io/gorm"
)

type LinkService struct {
	DB    *gorm.DB
	Audit *AuditService
}

func NewLinkService(db *gorm.DB, audit *AuditService) *LinkService {
	return &LinkService{DB: db, Audit: audit}
}

type CreateLinkInput struct {
	DocumentID  uuid.UUID
	CreatorID   uuid.UUID
	Permissions models.PermissionSet
	ExpiresAt   *time.Time
	// MaxUses <= 0 means unlimited.
	MaxUses int
}

// Create mints a share link for a document. The plaintext token is returned
// exactly once; only its digest is stored. Restricted documents are never
// shareable via links.
func (s *LinkService) Create(ctx context.Context, meta RequestMeta, input CreateLinkInput) (*models.ShareLink, string, error) {
	if !input.Permissions.Any() {
		return nil, "", fmt.Errorf("%w: link must carry at least one permission", ErrValidation)
	}
	if !input.Permissions.Coherent() {
		return nil, "", fmt.Errorf("%w: download, edit and share require view", ErrPolicyViolation)
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(time.Now()) {
		return nil, "", fmt.Errorf("%w: expiry must be in the future", ErrValidation)
	}

	var document models.Document
	if err := s.DB.WithContext(ctx).First(&document, "id = ?", input.DocumentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("%w: document", ErrNotFound)
		}
		return nil, "", err
	}
	if !Shareable(document.Classification) {
		return nil, "", fmt.Errorf("%w: restricted documents cannot be shared via links", ErrPolicyViolation)
	}

	plain, hash, prefix, err := utils.GenerateLinkToken()
	if err != nil {
		return nil, "", err
	}

	link := models.ShareLink{
		DocumentID:  input.DocumentID,
		CreatorID:   input.CreatorID,
		TokenHash:   hash,
		TokenPrefix: prefix,
		CanView:     input.Permissions.CanView,
		CanDownload: input.Permissions.CanDownload,
		CanEdit:     input.Permissions.CanEdit,
		CanShare:    input.Permissions.CanShare,
		ExpiresAt:   input.ExpiresAt,
		MaxUses:     input.MaxUses,
	}
	if err := s.DB.WithContext(ctx).Create(&link).Error; err != nil {
		return nil, "", err
	}

	s.Audit.LogAsync(AuditEntry{
		ActorID:    meta.ActorID,
		Action:     models.AuditShareLinkCreated,
		ObjectType: models.AuditObjectShareLink,
		ObjectID:   &link.ID,
		Details: map[string]interface{}{
			"document_id":  input.DocumentID.String(),
			"token_prefix": prefix,
			"max_uses":     input.MaxUses,
		},
		IPAddress: meta.IPAddress,
		RequestID: meta.RequestID,
	})

	return &link, plain, nil
}

type RecipientInput struct {
	Email       string
	Permissions models.PermissionSet
	// MaxUses nil means unlimited activations for this recipient.
	MaxUses *int
}

// UpsertRecipient authorizes an email address on a link. Recipient
// permissions must be a coherent subset of the link's own set.
func (s *LinkService) UpsertRecipient(ctx context.Context, meta RequestMeta, linkID uuid.UUID, input RecipientInput) (*models.ShareLinkRecipient, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, fmt.Errorf("%w: recipient email is required", ErrValidation)
	}
	if !input.Permissions.Any() {
		return nil, fmt.Errorf("%w: recipient must carry at least one permission", ErrValidation)
	}
	if !input.Permissions.Coherent() {
		return nil, fmt.Errorf("%w: download, edit and share require view", ErrPolicyViolation)
	}
	if input.MaxUses != nil && *input.MaxUses < 1 {
		return nil, fmt.Errorf("%w: recipient max uses must be positive", ErrValidation)
	}

	var link models.ShareLink
	if err := s.DB.WithContext(ctx).First(&link, "id = ?", linkID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: share link", ErrNotFound)
		}
		return nil, err
	}
	if link.RevokedAt != nil {
		return nil, ErrLinkRevoked
	}
	if !input.Permissions.SubsetOf(link.Permissions()) {
		return nil, fmt.Errorf("%w: recipient permissions exceed the link's", ErrValidation)
	}

	var recipient models.ShareLinkRecipient
	err := s.DB.WithContext(ctx).
		Where("link_id = ? AND email = ?", linkID, email).
		First(&recipient).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err == nil {
		updates := map[string]interface{}{
			"can_view":     input.Permissions.CanView,
			"can_download": input.Permissions.CanDownload,
			"can_edit":     input.Permissions.CanEdit,
			"can_share":    input.Permissions.CanShare,
			"max_uses":     input.MaxUses,
			"revoked_at":   nil,
		}
		if err := s.DB.WithContext(ctx).Model(&recipient).Updates(updates).Error; err != nil {
			return nil, err
		}
		recipient.CanView = input.Permissions.CanView
		recipient.CanDownload = input.Permissions.CanDownload
		recipient.CanEdit = input.Permissions.CanEdit
		recipient.CanShare = input.Permissions.CanShare
		recipient.MaxUses = input.MaxUses
		recipient.RevokedAt = nil
		return &recipient, nil
	}

	recipient = models.ShareLinkRecipient{
		LinkID:      linkID,
		Email:       email,
		CanView:     input.Permissions.CanView,
		CanDownload: input.Permissions.CanDownload,
		CanEdit:     input.Permissions.CanEdit,
		CanShare:    input.Permissions.CanShare,
		MaxUses:     input.MaxUses,
	}
	if err := s.DB.WithContext(ctx).Create(&recipient).Error; err != nil {
		return nil, err
	}
	return &recipient, nil
}

// Activate redeems a share link for an authenticated principal. The whole
// redemption runs in one transaction: both use counters advance with
// conditional UPDATEs, so concurrent activations past a cap roll back instead
// of over-consuming. Failure checks run in a fixed order so callers get the
// most specific reason.
func (s *LinkService) Activate(ctx context.Context, meta RequestMeta, plainToken string, principalID uuid.UUID, principalEmail string) (*models.DocumentGrant, error) {
	hash := utils.HashLinkToken(plainToken)
	email := strings.ToLower(strings.TrimSpace(principalEmail))
	now := time.Now()

	var grant *models.DocumentGrant
	var link models.ShareLink

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("token_hash = ?", hash).First(&link).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenNotFound
			}
			return err
		}

		if link.RevokedAt != nil {
			return ErrLinkRevoked
		}
		if link.ExpiresAt != nil && !link.ExpiresAt.After(now) {
			return ErrLinkExpired
		}
		if !link.Unlimited() && link.UsesCount >= link.MaxUses {
			return ErrLinkExhausted
		}

		var recipient models.ShareLinkRecipient
		if err := tx.Where("link_id = ? AND email = ?", link.ID, email).
			First(&recipient).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmailNotAuthorized
			}
			return err
		}
		if recipient.RevokedAt != nil {
			return ErrEmailNotAuthorized
		}

		// Conditional increments are the concurrency guard: a racing
		// activation that would push a counter past its cap matches zero
		// rows and the transaction rolls back.
		res := tx.Model(&models.ShareLink{}).
			Where("id = ? AND revoked_at IS NULL", link.ID).
			Where("max_uses <= 0 OR uses_count < max_uses").
			Update("uses_count", gorm.Expr("uses_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var current models.ShareLink
			if err := tx.First(&current, "id = ?", link.ID).Error; err == nil && current.RevokedAt != nil {
				return ErrLinkRevoked
			}
			return ErrLinkExhausted
		}

		res = tx.Model(&models.ShareLinkRecipient{}).
			Where("id = ? AND revoked_at IS NULL", recipient.ID).
			Where("max_uses IS NULL OR uses_count < max_uses").
			Update("uses_count", gorm.Expr("uses_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRecipientExhausted
		}

		var txErr error
		grant, txErr = upsertGrantTx(tx, GrantInput{
			DocumentID:   link.DocumentID,
			GranteeID:    principalID,
			Permissions:  recipient.Permissions(),
			ExpiresAt:    link.ExpiresAt,
			Via:          models.GrantViaLink,
			SourceLinkID: &link.ID,
			Reactivate:   true,
		})
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.Audit.LogAsync(AuditEntry{
		ActorID:    &principalID,
		Action:     models.AuditShareLinkConsumed,
		ObjectType: models.AuditObjectShareLink,
		ObjectID:   &link.ID,
		Details: map[string]interface{}{
			"document_id":  link.DocumentID.String(),
			"token_prefix": link.TokenPrefix,
		},
		IPAddress: meta.IPAddress,
		RequestID: meta.RequestID,
	})
	s.Audit.LogAsync(AuditEntry{
		ActorID:    &principalID,
		Action:     models.AuditShareLinkActivated,
		ObjectType: models.AuditObjectGrant,
		ObjectID:   &grant.ID,
		Details: map[string]interface{}{
			"document_id": link.DocumentID.String(),
			"link_id":     link.ID.String(),
		},
		IPAddress: meta.IPAddress,
		RequestID: meta.RequestID,
	})

	return grant, nil
}

// Revoke permanently deactivates a link and cascades to every grant it
// produced. Idempotent.
func (s *LinkService) Revoke(ctx context.Context, meta RequestMeta, linkID uuid.UUID) error {
	var revokedLink, revokedGrants int64

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		res := tx.Model(&models.ShareLink{}).
			Where("id = ? AND revoked_at IS NULL", linkID).
			Update("revoked_at", now)
		if res.Error != nil {
			return res.Error
		}
		revokedLink = res.RowsAffected

		res = tx.Model(&models.DocumentGrant{}).
			Where("source_link_id = ? AND revoked_at IS NULL", linkID).
			Update("revoked_at", now)
		if res.Error != nil {
			return res.Error
		}
		revokedGrants = res.RowsAffected
		return nil
	})
	if err != nil {
		return err
	}

	if revokedLink > 0 {
		s.Audit.LogAsync(AuditEntry{
			ActorID:    meta.ActorID,
			Action:     models.AuditShareLinkRevoked,
			ObjectType: models.AuditObjectShareLink,
			ObjectID:   &linkID,
			Details: map[string]interface{}{
				"revoked_grants": revokedGrants,
			},
			IPAddress: meta.IPAddress,
			RequestID: meta.RequestID,
		})
	}
	return nil
}

// RevokeRecipient removes one email's authorization without touching the
// link or other recipients. Idempotent.
func (s *LinkService) RevokeRecipient(ctx context.Context, linkID, recipientID uuid.UUID) error {
	return s.DB.WithContext(ctx).Model(&models.ShareLinkRecipient{}).
		Where("id = ? AND link_id = ? AND revoked_at IS NULL", recipientID, linkID).
		Update("revoked_at", time.Now().UTC()).Error
}

func (s *LinkService) GetByID(ctx context.Context, linkID uuid.UUID) (*models.ShareLink, error) {
	var link models.ShareLink
	if err := s.DB.WithContext(ctx).First(&link, "id = ?", linkID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (s *LinkService) ListForDocument(ctx context.Context, documentID uuid.UUID) ([]models.ShareLink, error) {
	var links []models.ShareLink
	err := s.DB.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at DESC").
		Find(&links).Error
	return links, err
}

func (s *LinkService) ListRecipients(ctx context.Context, linkID uuid.UUID) ([]models.ShareLinkRecipient, error) {
	var recipients []models.ShareLinkRecipient
	err := s.DB.WithContext(ctx).
		Where("link_id = ?", linkID).
		Order("created_at ASC").
		Find(&recipients).Error
	return recipients, err
}
