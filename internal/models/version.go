package models

import "github.com/google/uuid"

// DocumentVersion records one stored file revision. SHA256 is the digest of
// the bytes as stored, i.e. after any classification-mandated transform.
type DocumentVersion struct {
	BaseModel
	DocumentID  uuid.UUID `json:"documentID" gorm:"type:uuid;not null;index;uniqueIndex:idx_document_version"`
	VersionNum  int       `json:"versionNum" gorm:"not null;uniqueIndex:idx_document_version"`
	Filename    string    `json:"filename" gorm:"type:varchar(255);not null"`
	MimeType    string    `json:"mimeType" gorm:"type:varchar(255);not null"`
	SizeBytes   int64     `json:"sizeBytes" gorm:"not null;default:0"`
	SHA256      string    `json:"sha256" gorm:"type:varchar(64);not null"`
	StoragePath string    `json:"-" gorm:"type:text;not null"`
}

func (DocumentVersion) TableName() string {
	return "document_versions"
}
