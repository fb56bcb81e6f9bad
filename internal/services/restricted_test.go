package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/seguro/backend/internal/models"
)

func TestRestrictedService_SecretRoundTrip(t *testing.T) {
	db := setupServiceTestDB(t)
	restricted := NewRestrictedService(db)

	owner := createUser(t, db, "owner@test.com")
	doc := createDocument(t, db, owner, models.ClassificationRestricted)

	password, err := restricted.SetSecret(context.TODO(), doc.ID)
	if err != nil {
		t.Fatalf("set secret failed: %v", err)
	}

	if len(password) != 16 {
		t.Errorf("expected 16-char password, got %d", len(password))
	}
	if !strings.ContainsAny(password, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") ||
		!strings.ContainsAny(password, "abcdefghijklmnopqrstuvwxyz") ||
		!strings.ContainsAny(password, "0123456789") {
		t.Errorf("password missing required character classes: %q", password)
	}

	if err := restricted.Verify(context.TODO(), doc.ID, password); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := restricted.Verify(context.TODO(), doc.ID, password+"x"); !errors.Is(err, ErrSecretMismatch) {
		t.Errorf("expected ErrSecretMismatch, got %v", err)
	}
	if err := restricted.Verify(context.TODO(), doc.ID, ""); !errors.Is(err, ErrSecretMismatch) {
		t.Errorf("expected ErrSecretMismatch for empty password, got %v", err)
	}

	// Plaintext never lands in the database.
	var secret models.RestrictedSecret
	if err := db.First(&secret, "document_id = ?", doc.ID).Error; err != nil {
		t.Fatalf("failed loading secret: %v", err)
	}
	if strings.Contains(secret.SecretHash, password) {
		t.Error("secret hash contains the plaintext password")
	}
}

func TestRestrictedService_Rotation(t *testing.T) {
	db := setupServiceTestDB(t)
	restricted := NewRestrictedService(db)

	owner := createUser(t, db, "owner@test.com")
	doc := createDocument(t, db, owner, models.ClassificationRestricted)

	first, err := restricted.SetSecret(context.TODO(), doc.ID)
	if err != nil {
		t.Fatalf("set secret failed: %v", err)
	}
	second, err := restricted.SetSecret(context.TODO(), doc.ID)
	if err != nil {
		t.Fatalf("rotation failed: %v", err)
	}
	if first == second {
		t.Error("rotation produced the same password")
	}

	if err := restricted.Verify(context.TODO(), doc.ID, first); !errors.Is(err, ErrSecretMismatch) {
		t.Errorf("old password still accepted after rotation: %v", err)
	}
	if err := restricted.Verify(context.TODO(), doc.ID, second); err != nil {
		t.Errorf("new password rejected: %v", err)
	}

	// One secret row per document.
	var count int64
	db.Model(&models.RestrictedSecret{}).Where("document_id = ?", doc.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 secret row, got %d", count)
	}
}

func TestRestrictedService_VerifyWithoutSecret(t *testing.T) {
	db := setupServiceTestDB(t)
	restricted := NewRestrictedService(db)

	owner := createUser(t, db, "owner@test.com")
	doc := createDocument(t, db, owner, models.ClassificationPrivate)

	if err := restricted.Verify(context.TODO(), doc.ID, "whatever"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
