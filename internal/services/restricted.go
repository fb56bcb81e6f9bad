package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/seguro/backend/internal/models"
	"github.com/seguro/backend/pkg/utils"
	"gorm.io/gorm"
)

// restrictedPasswordLength matches the generated-password contract: 16 chars
// with at least one upper, lower, digit and special.
const restrictedPasswordLength = 16

type RestrictedService struct {
	DB *gorm.DB
}

func NewRestrictedService(db *gorm.DB) *RestrictedService {
	return &RestrictedService{DB: db}
}

// SetSecret generates and installs a fresh password for a restricted
// document, replacing any previous one. The plaintext is returned to the
// caller for one-time display and exists nowhere else.
func (s *RestrictedService) SetSecret(ctx context.Context, documentID uuid.UUID) (string, error) {
	var plain string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		plain, txErr = setSecretTx(tx, documentID)
		return txErr
	})
	if err != nil {
		return "", err
	}
	return plain, nil
}

// setSecretTx is the transaction-scoped core of SetSecret, shared with
// document creation so a restricted document never commits without its
// secret.
func setSecretTx(tx *gorm.DB, documentID uuid.UUID) (string, error) {
	plain, err := utils.GeneratePassword(restrictedPasswordLength)
	if err != nil {
		return "", err
	}
	hash, err := utils.HashPassword(plain)
	if err != nil {
		return "", err
	}

	var secret models.RestrictedSecret
	findErr := tx.Where("document_id = ?", documentID).First(&secret).Error
	if findErr != nil {
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			if err := tx.Create(&models.RestrictedSecret{
				DocumentID: documentID,
				SecretHash: hash,
			}).Error; err != nil {
				return "", err
			}
			return plain, nil
		}
		return "", findErr
	}
	if err := tx.Model(&secret).Update("secret_hash", hash).Error; err != nil {
		return "", err
	}
	return plain, nil
}

// Verify checks a candidate password against the document's stored hash.
// Returns ErrSecretMismatch on a wrong password and ErrNotFound when the
// document has no secret.
func (s *RestrictedService) Verify(ctx context.Context, documentID uuid.UUID, password string) error {
	var secret models.RestrictedSecret
	if err := s.DB.WithContext(ctx).Where("document_id = ?", documentID).First(&secret).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !utils.CheckPassword(password, secret.SecretHash) {
		return ErrSecretMismatch
	}
	return nil
}
