package models

import "github.com/google/uuid"

// PublicDocLink is the permanent anonymous token minted for every public
// document at creation time. It never expires and carries no use counter;
// anonymous access stays read-only regardless of grants.
type PublicDocLink struct {
	BaseModel
	DocumentID uuid.UUID `json:"documentID" gorm:"type:uuid;not null;uniqueIndex"`
	Token      string    `json:"token" gorm:"type:varchar(64);uniqueIndex;not null"`
}

func (PublicDocLink) TableName() string {
	return "public_doc_links"
}
