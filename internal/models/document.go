package models

import "github.com/google/uuid"

type Classification string

const (
	ClassificationPublic       Classification = "public"
	ClassificationPrivate      Classification = "private"
	ClassificationConfidential Classification = "confidential"
	ClassificationRestricted   Classification = "restricted"
)

func (c Classification) Valid() bool {
	switch c {
	case ClassificationPublic, ClassificationPrivate, ClassificationConfidential, ClassificationRestricted:
		return true
	default:
		return false
	}
}

// Document is the unit of sharing. Classification is immutable after
// creation; deletion is a soft delete via BaseModel so grants and audit rows
// keep a valid target.
type Document struct {
	BaseModel
	Title          string         `json:"title" gorm:"type:varchar(255);not null"`
	Description    *string        `json:"description,omitempty" gorm:"type:text"`
	Classification Classification `json:"classification" gorm:"type:varchar(20);not null;index"`
	OwnerID        uuid.UUID      `json:"ownerID" gorm:"type:uuid;not null;index"`

	Owner    User              `json:"owner,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
	Versions []DocumentVersion `json:"-" gorm:"foreignKey:DocumentID"`
	Grants   []DocumentGrant   `json:"-" gorm:"foreignKey:DocumentID"`
}

func (Document) TableName() string {
	return "documents"
}
