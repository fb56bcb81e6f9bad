package models

import (
	"time"

	"github.com/google/uuid"
)

// ShareLink is an email-gated invitation to a document. Only the SHA-256 of
// the activation token is stored; TokenPrefix exists for operator-facing
// listings and log lines.
type ShareLink struct {
	BaseModel
	DocumentID  uuid.UUID  `json:"documentID" gorm:"type:uuid;not null;index"`
	CreatorID   uuid.UUID  `json:"creatorID" gorm:"type:uuid;not null;index"`
	TokenHash   string     `json:"-" gorm:"type:varchar(64);uniqueIndex;not null"`
	TokenPrefix string     `json:"tokenPrefix" gorm:"type:varchar(8);not null"`
	CanView     bool       `json:"canView" gorm:"not null;default:false"`
	CanDownload bool       `json:"canDownload" gorm:"not null;default:false"`
	CanEdit     bool       `json:"canEdit" gorm:"not null;default:false"`
	CanShare    bool       `json:"canShare" gorm:"not null;default:false"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	MaxUses     int        `json:"maxUses" gorm:"not null;default:0"`
	UsesCount   int        `json:"usesCount" gorm:"not null;default:0"`
	RevokedAt   *time.Time `json:"revokedAt,omitempty"`

	Document   Document             `json:"document,omitempty" gorm:"foreignKey:DocumentID;references:ID"`
	Recipients []ShareLinkRecipient `json:"recipients,omitempty" gorm:"foreignKey:LinkID"`
}

func (ShareLink) TableName() string {
	return "share_links"
}

// Unlimited reports whether the link carries no global use cap.
func (l *ShareLink) Unlimited() bool {
	return l.MaxUses <= 0
}

func (l *ShareLink) Permissions() PermissionSet {
	return PermissionSet{
		CanView:     l.CanView,
		CanDownload: l.CanDownload,
		CanEdit:     l.CanEdit,
		CanShare:    l.CanShare,
	}
}

// ShareLinkRecipient authorizes one email address on a link, optionally with
// its own use cap and permission subset. Email is stored lowercased.
type ShareLinkRecipient struct {
	BaseModel
	LinkID      uuid.UUID  `json:"linkID" gorm:"type:uuid;not null;index;uniqueIndex:idx_link_email"`
	Email       string     `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:idx_link_email"`
	CanView     bool       `json:"canView" gorm:"not null;default:false"`
	CanDownload bool       `json:"canDownload" gorm:"not null;default:false"`
	CanEdit     bool       `json:"canEdit" gorm:"not null;default:false"`
	CanShare    bool       `json:"canShare" gorm:"not null;default:false"`
	MaxUses     *int       `json:"maxUses,omitempty"`
	UsesCount   int        `json:"usesCount" gorm:"not null;default:0"`
	RevokedAt   *time.Time `json:"revokedAt,omitempty"`
}

func (ShareLinkRecipient) TableName() string {
	return "share_link_recipients"
}

func (r *ShareLinkRecipient) Permissions() PermissionSet {
	return PermissionSet{
		CanView:     r.CanView,
		CanDownload: r.CanDownload,
		CanEdit:     r.CanEdit,
		CanShare:    r.CanShare,
	}
}
