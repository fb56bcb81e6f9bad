package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/seguro/backend/internal/models"
)

func waitForAuditRows(t *testing.T, audit *AuditService, want int64) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		var count int64
		audit.DB.Model(&models.AuditLog{}).Count(&count)
		if count >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("audit queue never drained to %d rows", want)
}

func TestAuditService_LogAsync(t *testing.T) {
	db := setupServiceTestDB(t)
	audit := NewAuditService(db, nil)

	actor := createUser(t, db, "actor@test.com")
	other := createUser(t, db, "other@test.com")

	audit.LogAsync(AuditEntry{
		ActorID:    &actor.ID,
		Action:     models.AuditDocumentCreated,
		ObjectType: models.AuditObjectDocument,
		Details:    map[string]interface{}{"classification": "private"},
		IPAddress:  "10.0.0.1",
		RequestID:  "req-1",
	})
	audit.LogAsync(AuditEntry{
		ActorID:    &other.ID,
		Action:     models.AuditDocumentDeleted,
		ObjectType: models.AuditObjectDocument,
	})
	waitForAuditRows(t, audit, 2)

	rows, total, err := audit.ListForActor(context.TODO(), actor.ID, 0, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("expected the actor's single row, got total=%d len=%d", total, len(rows))
	}
	row := rows[0]
	if row.Action != models.AuditDocumentCreated {
		t.Errorf("unexpected action %s", row.Action)
	}
	if row.IPAddress != "10.0.0.1" || row.RequestID != "req-1" {
		t.Errorf("request metadata not persisted: %+v", row)
	}
	if row.Details["classification"] != "private" {
		t.Errorf("details not persisted: %+v", row.Details)
	}
}

func TestAuditService_Export(t *testing.T) {
	db := setupServiceTestDB(t)
	store := newFakeStore()
	audit := NewAuditService(db, store)

	actor := createUser(t, db, "actor@test.com")
	for i := 0; i < 3; i++ {
		audit.LogAsync(AuditEntry{
			ActorID:    &actor.ID,
			Action:     models.AuditFileDownloaded,
			ObjectType: models.AuditObjectFile,
		})
	}
	waitForAuditRows(t, audit, 3)

	audit.export()

	store.mu.Lock()
	objects := make(map[string][]byte, len(store.objects))
	for name, data := range store.objects {
		objects[name] = data
	}
	store.mu.Unlock()

	if len(objects) != 1 {
		t.Fatalf("expected one exported object, got %d", len(objects))
	}
	for name, data := range objects {
		if !strings.HasPrefix(name, "audit-logs/") || !strings.HasSuffix(name, ".ndjson") {
			t.Errorf("unexpected object name %s", name)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Errorf("expected 3 NDJSON lines, got %d", len(lines))
		}
	}

	var cursor models.AuditExportCursor
	if err := db.First(&cursor).Error; err != nil {
		t.Fatalf("cursor missing after export: %v", err)
	}
	if cursor.ExportedCount != 3 {
		t.Errorf("expected cursor count 3, got %d", cursor.ExportedCount)
	}

	// Nothing new since the cursor advanced, so a second run is a no-op.
	audit.export()
	store.mu.Lock()
	count := len(store.objects)
	store.mu.Unlock()
	if count != 1 {
		t.Errorf("expected no second object, got %d", count)
	}
}
