package models

import "github.com/google/uuid"

// RestrictedSecret holds the bcrypt hash of a restricted document's access
// password. The plaintext is generated server-side and shown exactly once,
// at creation or rotation.
type RestrictedSecret struct {
	BaseModel
	DocumentID uuid.UUID `json:"documentID" gorm:"type:uuid;not null;uniqueIndex"`
	SecretHash string    `json:"-" gorm:"type:text;not null"`
}

func (RestrictedSecret) TableName() string {
	return "restricted_secrets"
}
