package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/seguro/backend/internal/models"
)

func createDocumentViaAPI(t *testing.T, env *testEnv, token, title, classification string) map[string]any {
	t.Helper()
	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/documents/", map[string]any{
		"title":          title,
		"classification": classification,
	}, authHeaders(token))
	assertStatus(t, resp, http.StatusCreated)
	return dataField(t, decodeJSONMap(t, resp))
}

func documentID(t *testing.T, data map[string]any) string {
	t.Helper()
	doc, ok := data["document"].(map[string]any)
	if !ok {
		t.Fatalf("expected document object, got %+v", data)
	}
	id, ok := doc["id"].(string)
	if !ok {
		t.Fatalf("expected document id, got %+v", doc)
	}
	return id
}

func TestDocumentsCreate(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env.db, "owner@test.com", "password123")

	t.Run("private document", func(t *testing.T) {
		data := createDocumentViaAPI(t, env, token, "Notes", "private")
		if _, ok := data["restrictedPassword"]; ok {
			t.Error("unexpected restricted password")
		}
		if _, ok := data["publicToken"]; ok {
			t.Error("unexpected public token")
		}
	})

	t.Run("restricted document returns one-time password", func(t *testing.T) {
		data := createDocumentViaAPI(t, env, token, "Vault", "restricted")
		password, _ := data["restrictedPassword"].(string)
		if password == "" {
			t.Fatal("expected a generated password")
		}

		// The password is never served again, even through an open gate.
		id := documentID(t, data)
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/documents/"+id+"/verify-password", map[string]any{
			"password": password,
		}, authHeaders(token))
		assertStatus(t, resp, http.StatusOK)
		gate := dataField(t, decodeJSONMap(t, resp))
		gateToken, _ := gate["gateToken"].(string)

		headers := authHeaders(token)
		headers["X-Gate-Token"] = gateToken
		resp = performRequest(t, env.app, http.MethodGet, "/api/documents/"+id, nil, headers)
		assertStatus(t, resp, http.StatusOK)
		detail := dataField(t, decodeJSONMap(t, resp))
		if _, ok := detail["restrictedPassword"]; ok {
			t.Error("restricted password retrievable after creation")
		}
	})

	t.Run("public document returns permanent token", func(t *testing.T) {
		data := createDocumentViaAPI(t, env, token, "Handbook", "public")
		if publicToken, _ := data["publicToken"].(string); publicToken == "" {
			t.Error("expected a public token")
		}
	})

	t.Run("unknown classification rejected", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/documents/", map[string]any{
			"title":          "X",
			"classification": "topsecret",
		}, authHeaders(token))
		assertStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("requires auth", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/documents/", map[string]any{
			"title":          "X",
			"classification": "private",
		}, nil)
		assertStatus(t, resp, http.StatusUnauthorized)
	})
}

func TestDocumentsGetAndUpdate(t *testing.T) {
	env := setupTestEnv(t)
	owner, ownerToken := createTestUser(t, env.db, "owner@test.com", "password123")
	grantee, granteeToken := createTestUser(t, env.db, "grantee@test.com", "password123")
	_ = owner

	data := createDocumentViaAPI(t, env, ownerToken, "Shared Notes", "private")
	id := documentID(t, data)

	t.Run("stranger gets 403", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/documents/"+id, nil, authHeaders(granteeToken))
		assertStatus(t, resp, http.StatusForbidden)
	})

	t.Run("view grant opens read but not edit", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/documents/"+id+"/grants", map[string]any{
			"granteeID":   grantee.ID.String(),
			"permissions": map[string]any{"canView": true},
		}, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusCreated)

		resp = performRequest(t, env.app, http.MethodGet, "/api/documents/"+id, nil, authHeaders(granteeToken))
		assertStatus(t, resp, http.StatusOK)
		detail := dataField(t, decodeJSONMap(t, resp))
		perms, _ := detail["permissions"].(map[string]any)
		if perms["canView"] != true || perms["canEdit"] == true {
			t.Errorf("unexpected permissions %+v", perms)
		}

		resp = performJSONRequest(t, env.app, http.MethodPut, "/api/documents/"+id, map[string]any{
			"title": "Hijacked",
		}, authHeaders(granteeToken))
		assertStatus(t, resp, http.StatusForbidden)
	})

	t.Run("owner updates title, classification immutable", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut, "/api/documents/"+id, map[string]any{
			"title": "Renamed",
		}, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusOK)

		var doc models.Document
		if err := env.db.First(&doc, "id = ?", id).Error; err != nil {
			t.Fatalf("reload failed: %v", err)
		}
		if doc.Title != "Renamed" {
			t.Errorf("title not updated: %s", doc.Title)
		}
		if doc.Classification != models.ClassificationPrivate {
			t.Errorf("classification changed: %s", doc.Classification)
		}
	})

	t.Run("shared listing shows the grant", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/documents/shared", nil, authHeaders(granteeToken))
		assertStatus(t, resp, http.StatusOK)
		body := decodeJSONMap(t, resp)
		entries, ok := body["data"].([]any)
		if !ok || len(entries) != 1 {
			t.Fatalf("expected one shared entry, got %+v", body["data"])
		}
	})
}

func TestDocumentsDelete(t *testing.T) {
	env := setupTestEnv(t)
	_, ownerToken := createTestUser(t, env.db, "owner@test.com", "password123")
	grantee, granteeToken := createTestUser(t, env.db, "grantee@test.com", "password123")

	data := createDocumentViaAPI(t, env, ownerToken, "Doomed", "private")
	id := documentID(t, data)

	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/documents/"+id+"/grants", map[string]any{
		"granteeID":   grantee.ID.String(),
		"permissions": map[string]any{"canView": true},
	}, authHeaders(ownerToken))
	assertStatus(t, resp, http.StatusCreated)

	t.Run("non-owner cannot delete", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodDelete, "/api/documents/"+id, nil, authHeaders(granteeToken))
		assertStatus(t, resp, http.StatusForbidden)
	})

	t.Run("owner deletes and access evaporates", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodDelete, "/api/documents/"+id, nil, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusOK)

		resp = performRequest(t, env.app, http.MethodGet, "/api/documents/"+id, nil, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusNotFound)

		resp = performRequest(t, env.app, http.MethodGet, "/api/documents/shared", nil, authHeaders(granteeToken))
		assertStatus(t, resp, http.StatusOK)
		body := decodeJSONMap(t, resp)
		if entries, ok := body["data"].([]any); ok && len(entries) != 0 {
			t.Errorf("deleted document still listed as shared: %+v", entries)
		}
	})
}

func TestDocumentsList(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env.db, "owner@test.com", "password123")

	for i := 0; i < 3; i++ {
		createDocumentViaAPI(t, env, token, "Doc", "private")
	}

	resp := performRequest(t, env.app, http.MethodGet, "/api/documents/?page=1&limit=2", nil, authHeaders(token))
	assertStatus(t, resp, http.StatusOK)
	body := decodeJSONMap(t, resp)
	entries, ok := body["data"].([]any)
	if !ok || len(entries) != 2 {
		t.Fatalf("expected page of 2, got %+v", body["data"])
	}
	pagination, _ := body["pagination"].(map[string]any)
	if pagination["total"] != float64(3) {
		t.Errorf("expected total 3, got %v", pagination["total"])
	}
}

func TestRestrictedGateFlow(t *testing.T) {
	env := setupTestEnv(t)
	_, ownerToken := createTestUser(t, env.db, "owner@test.com", "password123")
	grantee, granteeToken := createTestUser(t, env.db, "grantee@test.com", "password123")

	data := createDocumentViaAPI(t, env, ownerToken, "Vault", "restricted")
	id := documentID(t, data)
	password, _ := data["restrictedPassword"].(string)
	if password == "" {
		t.Fatal("expected a generated password")
	}

	t.Run("grants on restricted documents rejected", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/documents/"+id+"/grants", map[string]any{
			"granteeID":   grantee.ID.String(),
			"permissions": map[string]any{"canView": true},
		}, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusUnprocessableEntity)
	})

	t.Run("owner locked out without the gate", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/documents/"+id, nil, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusForbidden)
		body := decodeJSONMap(t, resp)
		if body["error"] != "document password verification required" {
			t.Errorf("expected the gate hint, got %v", body["error"])
		}
	})

	t.Run("stale grant gets a plain denial", func(t *testing.T) {
		docID := uuid.MustParse(id)
		grant := models.DocumentGrant{
			DocumentID: docID,
			GranteeID:  grantee.ID,
			CanView:    true,
			Via:        models.GrantViaDirect,
		}
		if err := env.db.Create(&grant).Error; err != nil {
			t.Fatalf("failed seeding grant: %v", err)
		}

		resp := performRequest(t, env.app, http.MethodGet, "/api/documents/"+id, nil, authHeaders(granteeToken))
		assertStatus(t, resp, http.StatusForbidden)
		body := decodeJSONMap(t, resp)
		if body["error"] != "insufficient permissions" {
			t.Errorf("expected a plain denial, got %v", body["error"])
		}
	})

	t.Run("non-owner cannot even try the password", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/documents/"+id+"/verify-password", map[string]any{
			"password": password,
		}, authHeaders(granteeToken))
		assertStatus(t, resp, http.StatusForbidden)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/documents/"+id+"/verify-password", map[string]any{
			"password": password + "x",
		}, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusForbidden)
	})

	t.Run("gate token opens the document for the owner", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/documents/"+id+"/verify-password", map[string]any{
			"password": password,
		}, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusOK)
		gate := dataField(t, decodeJSONMap(t, resp))
		gateToken, _ := gate["gateToken"].(string)
		if gateToken == "" {
			t.Fatal("expected a gate token")
		}

		headers := authHeaders(ownerToken)
		headers["X-Gate-Token"] = gateToken
		resp = performRequest(t, env.app, http.MethodGet, "/api/documents/"+id, nil, headers)
		assertStatus(t, resp, http.StatusOK)
		detail := dataField(t, decodeJSONMap(t, resp))
		if detail["gateOpen"] != true {
			t.Error("expected gateOpen true")
		}
	})

	t.Run("gate token is bound to its document", func(t *testing.T) {
		other := createDocumentViaAPI(t, env, ownerToken, "Other Vault", "restricted")
		otherID := documentID(t, other)

		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/documents/"+id+"/verify-password", map[string]any{
			"password": password,
		}, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusOK)
		gate := dataField(t, decodeJSONMap(t, resp))
		gateToken, _ := gate["gateToken"].(string)

		headers := authHeaders(ownerToken)
		headers["X-Gate-Token"] = gateToken
		resp = performRequest(t, env.app, http.MethodGet, "/api/documents/"+otherID, nil, headers)
		assertStatus(t, resp, http.StatusForbidden)
	})

	t.Run("verify rejected on non-restricted documents", func(t *testing.T) {
		plain := createDocumentViaAPI(t, env, ownerToken, "Plain", "private")
		plainID := documentID(t, plain)
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/documents/"+plainID+"/verify-password", map[string]any{
			"password": "anything",
		}, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusBadRequest)
	})

	// Restricted documents reject share links outright.
	t.Run("share link creation rejected", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/documents/"+id+"/links", map[string]any{
			"permissions": map[string]any{"canView": true},
		}, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusUnprocessableEntity)
	})
}
