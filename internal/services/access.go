package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/seguro/backend/internal/models"
	"gorm.io/gorm"
)

// AccessService is the single decision point for "may this principal do this
// to this document". Handlers never combine grant rows themselves.
type AccessService struct {
	DB *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{DB: db}
}

// CanPerform evaluates one action. gatePassed reports whether the caller
// presented a valid restricted-gate token for this document; it is ignored
// for other classifications.
//
// Owners hold every capability on their own documents, but reading a
// restricted document requires passing the gate even for the owner.
// Non-owners need an active grant that allows the action; restricted
// documents are never shared, so any grant found on one is stale and
// denied regardless of the gate.
func (a *AccessService) CanPerform(ctx context.Context, principalID uuid.UUID, doc *models.Document, action models.Permission, gatePassed bool) (bool, error) {
	if !action.Valid() {
		return false, nil
	}
	if doc.OwnerID == principalID {
		if RequiresSecondaryAuth(doc.Classification) && !gatePassed &&
			(action == models.PermissionView || action == models.PermissionDownload) {
			return false, nil
		}
		return true, nil
	}

	if RequiresSecondaryAuth(doc.Classification) {
		return false, nil
	}

	var grant models.DocumentGrant
	err := a.DB.WithContext(ctx).
		Where("document_id = ? AND grantee_id = ?", doc.ID, principalID).
		First(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if !grant.IsActive(time.Now()) {
		return false, nil
	}

	return grant.Permissions().Allows(action), nil
}

// EffectivePermissions reports the principal's capability set on the
// document, before any restricted-gate check. Non-owners never hold
// permissions on restricted documents.
func (a *AccessService) EffectivePermissions(ctx context.Context, principalID uuid.UUID, doc *models.Document) (models.PermissionSet, error) {
	if doc.OwnerID == principalID {
		return models.PermissionSet{CanView: true, CanDownload: true, CanEdit: true, CanShare: true}, nil
	}
	if RequiresSecondaryAuth(doc.Classification) {
		return models.PermissionSet{}, nil
	}

	var grant models.DocumentGrant
	err := a.DB.WithContext(ctx).
		Where("document_id = ? AND grantee_id = ?", doc.ID, principalID).
		First(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PermissionSet{}, nil
		}
		return models.PermissionSet{}, err
	}
	if !grant.IsActive(time.Now()) {
		return models.PermissionSet{}, nil
	}
	return grant.Permissions(), nil
}
