package handlers

import (
	"net/http"
	"testing"
)

func TestGrantsLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	_, ownerToken := createTestUser(t, env.db, "owner@test.com", "password123")
	grantee, granteeToken := createTestUser(t, env.db, "grantee@test.com", "password123")

	data := createDocumentViaAPI(t, env, ownerToken, "Shared", "private")
	id := documentID(t, data)

	t.Run("non-sharer cannot manage grants", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/documents/"+id+"/grants", map[string]any{
			"granteeID":   grantee.ID.String(),
			"permissions": map[string]any{"canView": true},
		}, authHeaders(granteeToken))
		assertStatus(t, resp, http.StatusForbidden)
	})

	t.Run("owner creates a grant", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/documents/"+id+"/grants", map[string]any{
			"granteeID":   grantee.ID.String(),
			"permissions": map[string]any{"canView": true, "canDownload": true},
		}, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusCreated)
		grant := dataField(t, decodeJSONMap(t, resp))
		if grant["via"] != "direct" {
			t.Errorf("expected direct provenance, got %v", grant["via"])
		}
	})

	t.Run("view dependency violation maps to 422", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/documents/"+id+"/grants", map[string]any{
			"granteeID":   grantee.ID.String(),
			"permissions": map[string]any{"canDownload": true},
		}, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusUnprocessableEntity)
	})

	t.Run("put replaces the pair's permissions", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut, "/api/documents/"+id+"/grants/"+grantee.ID.String(), map[string]any{
			"permissions": map[string]any{"canView": true},
		}, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusCreated)
		grant := dataField(t, decodeJSONMap(t, resp))
		if grant["canDownload"] == true {
			t.Error("expected download cleared by replacement")
		}
	})

	t.Run("list shows the grant with grantee preloaded", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/documents/"+id+"/grants", nil, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusOK)
		body := decodeJSONMap(t, resp)
		grants, ok := body["data"].([]any)
		if !ok || len(grants) != 1 {
			t.Fatalf("expected one grant, got %+v", body["data"])
		}
		grant := grants[0].(map[string]any)
		granteeObj, _ := grant["grantee"].(map[string]any)
		if granteeObj["email"] != "grantee@test.com" {
			t.Errorf("expected grantee preloaded, got %+v", grant)
		}
	})

	t.Run("revoke cuts access and repeats harmlessly", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodDelete, "/api/documents/"+id+"/grants/"+grantee.ID.String(), nil, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusOK)

		resp = performRequest(t, env.app, http.MethodGet, "/api/documents/"+id, nil, authHeaders(granteeToken))
		assertStatus(t, resp, http.StatusForbidden)

		resp = performRequest(t, env.app, http.MethodDelete, "/api/documents/"+id+"/grants/"+grantee.ID.String(), nil, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusOK)
	})

	t.Run("revoked pair needs an explicit reactivate", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/documents/"+id+"/grants", map[string]any{
			"granteeID":   grantee.ID.String(),
			"permissions": map[string]any{"canView": true},
		}, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusForbidden)

		resp = performJSONRequest(t, env.app, http.MethodPost, "/api/documents/"+id+"/grants", map[string]any{
			"granteeID":   grantee.ID.String(),
			"permissions": map[string]any{"canView": true},
			"reactivate":  true,
		}, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusCreated)
	})

	t.Run("revoke all reports the count", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodDelete, "/api/documents/"+id+"/grants", nil, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusOK)
		data := dataField(t, decodeJSONMap(t, resp))
		if data["revokedCount"] != float64(1) {
			t.Errorf("expected revokedCount 1, got %v", data["revokedCount"])
		}
	})
}

// A grantee holding can_share may delegate access without owning the
// document.
func TestGrantsDelegatedSharing(t *testing.T) {
	env := setupTestEnv(t)
	_, ownerToken := createTestUser(t, env.db, "owner@test.com", "password123")
	sharer, sharerToken := createTestUser(t, env.db, "sharer@test.com", "password123")
	third, _ := createTestUser(t, env.db, "third@test.com", "password123")

	data := createDocumentViaAPI(t, env, ownerToken, "Delegated", "private")
	id := documentID(t, data)

	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/documents/"+id+"/grants", map[string]any{
		"granteeID":   sharer.ID.String(),
		"permissions": map[string]any{"canView": true, "canShare": true},
	}, authHeaders(ownerToken))
	assertStatus(t, resp, http.StatusCreated)

	resp = performJSONRequest(t, env.app, http.MethodPost, "/api/documents/"+id+"/grants", map[string]any{
		"granteeID":   third.ID.String(),
		"permissions": map[string]any{"canView": true},
	}, authHeaders(sharerToken))
	assertStatus(t, resp, http.StatusCreated)
}
