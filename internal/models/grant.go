package models

import (
	"time"

	"github.com/google/uuid"
)

type Permission string

const (
	PermissionView     Permission = "view"
	PermissionDownload Permission = "download"
	PermissionEdit     Permission = "edit"
	PermissionShare    Permission = "share"
)

func (p Permission) Valid() bool {
	switch p {
	case PermissionView, PermissionDownload, PermissionEdit, PermissionShare:
		return true
	default:
		return false
	}
}

// PermissionSet is the four independent capability booleans carried by
// grants and share-link recipients.
type PermissionSet struct {
	CanView     bool `json:"canView"`
	CanDownload bool `json:"canDownload"`
	CanEdit     bool `json:"canEdit"`
	CanShare    bool `json:"canShare"`
}

func (p PermissionSet) Any() bool {
	return p.CanView || p.CanDownload || p.CanEdit || p.CanShare
}

// Coherent reports whether the set honors the view dependency: no capability
// may be enabled without view.
func (p PermissionSet) Coherent() bool {
	if p.CanDownload || p.CanEdit || p.CanShare {
		return p.CanView
	}
	return true
}

// SubsetOf reports whether every capability enabled in p is also enabled
// in other.
func (p PermissionSet) SubsetOf(other PermissionSet) bool {
	if p.CanView && !other.CanView {
		return false
	}
	if p.CanDownload && !other.CanDownload {
		return false
	}
	if p.CanEdit && !other.CanEdit {
		return false
	}
	if p.CanShare && !other.CanShare {
		return false
	}
	return true
}

func (p PermissionSet) Allows(action Permission) bool {
	switch action {
	case PermissionView:
		return p.CanView
	case PermissionDownload:
		return p.CanDownload
	case PermissionEdit:
		return p.CanEdit
	case PermissionShare:
		return p.CanShare
	default:
		return false
	}
}

type GrantProvenance string

const (
	GrantViaDirect GrantProvenance = "direct"
	GrantViaLink   GrantProvenance = "link"
)

// DocumentGrant scopes one principal's capabilities on one document. Rows are
// never physically deleted; revocation sets RevokedAt and is permanent unless
// an explicit reactivating upsert replaces the grant.
type DocumentGrant struct {
	BaseModel
	DocumentID   uuid.UUID       `json:"documentID" gorm:"type:uuid;not null;index;uniqueIndex:idx_document_grantee"`
	GranteeID    uuid.UUID       `json:"granteeID" gorm:"type:uuid;not null;index;uniqueIndex:idx_document_grantee"`
	CanView      bool            `json:"canView" gorm:"not null;default:false"`
	CanDownload  bool            `json:"canDownload" gorm:"not null;default:false"`
	CanEdit      bool            `json:"canEdit" gorm:"not null;default:false"`
	CanShare     bool            `json:"canShare" gorm:"not null;default:false"`
	ExpiresAt    *time.Time      `json:"expiresAt,omitempty"`
	RevokedAt    *time.Time      `json:"revokedAt,omitempty" gorm:"index"`
	Via          GrantProvenance `json:"via" gorm:"type:varchar(10);not null;default:'direct'"`
	SourceLinkID *uuid.UUID      `json:"sourceLinkID,omitempty" gorm:"type:uuid;index"`

	Grantee User `json:"grantee,omitempty" gorm:"foreignKey:GranteeID;references:ID"`
}

func (DocumentGrant) TableName() string {
	return "document_grants"
}

// IsActive reports whether the grant confers access at the given instant. An
// expired grant is treated as absent even when RevokedAt is null.
func (g *DocumentGrant) IsActive(now time.Time) bool {
	if g.RevokedAt != nil {
		return false
	}
	if g.ExpiresAt != nil && !g.ExpiresAt.After(now) {
		return false
	}
	return true
}

func (g *DocumentGrant) Permissions() PermissionSet {
	return PermissionSet{
		CanView:     g.CanView,
		CanDownload: g.CanDownload,
		CanEdit:     g.CanEdit,
		CanShare:    g.CanShare,
	}
}
