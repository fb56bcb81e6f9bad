package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seguro/backend/internal/models"
)

func TestGrantService_Upsert(t *testing.T) {
	db := setupServiceTestDB(t)
	audit := NewAuditService(db, nil)
	grants := NewGrantService(db, audit)

	owner := createUser(t, db, "owner@test.com")
	grantee := createUser(t, db, "grantee@test.com")
	doc := createDocument(t, db, owner, models.ClassificationPrivate)

	t.Run("creates a grant", func(t *testing.T) {
		grant, err := grants.Upsert(context.TODO(), RequestMeta{}, GrantInput{
			DocumentID:  doc.ID,
			GranteeID:   grantee.ID,
			Permissions: models.PermissionSet{CanView: true, CanDownload: true},
		})
		if err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
		if grant.Via != models.GrantViaDirect {
			t.Errorf("expected direct provenance, got %s", grant.Via)
		}
	})

	t.Run("idempotent per pair", func(t *testing.T) {
		first, err := grants.Upsert(context.TODO(), RequestMeta{}, GrantInput{
			DocumentID:  doc.ID,
			GranteeID:   grantee.ID,
			Permissions: models.PermissionSet{CanView: true},
		})
		if err != nil {
			t.Fatalf("upsert failed: %v", err)
		}

		var count int64
		db.Model(&models.DocumentGrant{}).
			Where("document_id = ? AND grantee_id = ?", doc.ID, grantee.ID).
			Count(&count)
		if count != 1 {
			t.Errorf("expected a single grant row per pair, got %d", count)
		}
		if first.CanDownload {
			t.Error("expected permissions replaced, download still set")
		}
	})

	t.Run("rejects empty permission set", func(t *testing.T) {
		_, err := grants.Upsert(context.TODO(), RequestMeta{}, GrantInput{
			DocumentID: doc.ID,
			GranteeID:  grantee.ID,
		})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("rejects view dependency violation", func(t *testing.T) {
		_, err := grants.Upsert(context.TODO(), RequestMeta{}, GrantInput{
			DocumentID:  doc.ID,
			GranteeID:   grantee.ID,
			Permissions: models.PermissionSet{CanShare: true},
		})
		if !errors.Is(err, ErrPolicyViolation) {
			t.Errorf("expected ErrPolicyViolation, got %v", err)
		}
	})

	t.Run("rejects restricted documents", func(t *testing.T) {
		restricted := createDocument(t, db, owner, models.ClassificationRestricted)
		_, err := grants.Upsert(context.TODO(), RequestMeta{}, GrantInput{
			DocumentID:  restricted.ID,
			GranteeID:   grantee.ID,
			Permissions: models.PermissionSet{CanView: true},
		})
		if !errors.Is(err, ErrPolicyViolation) {
			t.Errorf("expected ErrPolicyViolation, got %v", err)
		}

		var count int64
		db.Model(&models.DocumentGrant{}).
			Where("document_id = ?", restricted.ID).
			Count(&count)
		if count != 0 {
			t.Errorf("expected no grant rows on restricted document, got %d", count)
		}
	})

	t.Run("rejects granting to the owner", func(t *testing.T) {
		_, err := grants.Upsert(context.TODO(), RequestMeta{}, GrantInput{
			DocumentID:  doc.ID,
			GranteeID:   owner.ID,
			Permissions: models.PermissionSet{CanView: true},
		})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("revoked pair stays inert without reactivate", func(t *testing.T) {
		if err := grants.Revoke(context.TODO(), RequestMeta{}, doc.ID, grantee.ID); err != nil {
			t.Fatalf("revoke failed: %v", err)
		}

		_, err := grants.Upsert(context.TODO(), RequestMeta{}, GrantInput{
			DocumentID:  doc.ID,
			GranteeID:   grantee.ID,
			Permissions: models.PermissionSet{CanView: true},
		})
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}

		grant, err := grants.Upsert(context.TODO(), RequestMeta{}, GrantInput{
			DocumentID:  doc.ID,
			GranteeID:   grantee.ID,
			Permissions: models.PermissionSet{CanView: true},
			Reactivate:  true,
		})
		if err != nil {
			t.Fatalf("reactivating upsert failed: %v", err)
		}
		if grant.RevokedAt != nil {
			t.Error("expected revocation cleared on reactivate")
		}
	})
}

func TestGrantService_RevokeAndRevokeAll(t *testing.T) {
	db := setupServiceTestDB(t)
	audit := NewAuditService(db, nil)
	grants := NewGrantService(db, audit)

	owner := createUser(t, db, "owner@test.com")
	doc := createDocument(t, db, owner, models.ClassificationPrivate)
	a := createUser(t, db, "a@test.com")
	b := createUser(t, db, "b@test.com")

	for _, grantee := range []*models.User{a, b} {
		if _, err := grants.Upsert(context.TODO(), RequestMeta{}, GrantInput{
			DocumentID:  doc.ID,
			GranteeID:   grantee.ID,
			Permissions: models.PermissionSet{CanView: true},
		}); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	t.Run("revoke is idempotent", func(t *testing.T) {
		if err := grants.Revoke(context.TODO(), RequestMeta{}, doc.ID, a.ID); err != nil {
			t.Fatalf("revoke failed: %v", err)
		}
		if err := grants.Revoke(context.TODO(), RequestMeta{}, doc.ID, a.ID); err != nil {
			t.Fatalf("second revoke failed: %v", err)
		}
		if _, err := grants.ActiveGrant(context.TODO(), doc.ID, a.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected revoked grant inactive, got %v", err)
		}
	})

	t.Run("revoke all reports affected rows", func(t *testing.T) {
		count, err := grants.RevokeAll(context.TODO(), RequestMeta{}, doc.ID)
		if err != nil {
			t.Fatalf("revoke all failed: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 remaining active grant revoked, got %d", count)
		}
		if _, err := grants.ActiveGrant(context.TODO(), doc.ID, b.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected grant inactive after revoke all, got %v", err)
		}
	})
}

func TestGrantService_ActiveGrantExpiry(t *testing.T) {
	db := setupServiceTestDB(t)
	audit := NewAuditService(db, nil)
	grants := NewGrantService(db, audit)

	owner := createUser(t, db, "owner@test.com")
	grantee := createUser(t, db, "grantee@test.com")
	doc := createDocument(t, db, owner, models.ClassificationPrivate)

	past := time.Now().Add(-time.Hour)
	if _, err := grants.Upsert(context.TODO(), RequestMeta{}, GrantInput{
		DocumentID:  doc.ID,
		GranteeID:   grantee.ID,
		Permissions: models.PermissionSet{CanView: true, CanDownload: true},
		ExpiresAt:   &past,
	}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	// Expired but not revoked: treated as absent.
	if _, err := grants.ActiveGrant(context.TODO(), doc.ID, grantee.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected expired grant to be absent, got %v", err)
	}
}
