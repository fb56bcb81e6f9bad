package handlers

import (
	"bytes"
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/seguro/backend/internal/middleware"
	"github.com/seguro/backend/internal/models"
	"github.com/seguro/backend/internal/services"
	"github.com/seguro/backend/pkg/logger"
	"github.com/seguro/backend/pkg/utils"
	"gorm.io/gorm"
)

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	store *memStore
}

var testSetupOnce sync.Once

// memStore is an in-memory ObjectStore so handler tests run without MinIO.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Upload(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectName] = data
	return nil
}

func (m *memStore) Download(_ context.Context, objectName string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[objectName]
	if !ok {
		return nil, fmt.Errorf("object %s not found", objectName)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Delete(_ context.Context, objectName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectName)
	return nil
}

func (m *memStore) PresignedGetURL(_ context.Context, objectName string, expiry time.Duration, _ string, _ string) (string, error) {
	return "http://storage.test/" + objectName + "?expires=" + expiry.String(), nil
}

// identityTransform stands in for the watermark service: it prefixes the
// content so tests can tell transformed bytes from originals.
type identityTransform struct {
	prefix string
	calls  int
}

func (tr *identityTransform) Transform(_ context.Context, _, _ string, content io.Reader) (io.ReadCloser, error) {
	tr.calls++
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(append([]byte(tr.prefix), data...))), nil
}

func setupTestEnv(t *testing.T) *testEnv {
	env, _ := setupTestEnvWithTransform(t)
	return env
}

func setupTestEnvWithTransform(t *testing.T) (*testEnv, *identityTransform) {
	t.Helper()

	testSetupOnce.Do(func() {
		gosqlite.MustRegisterScalarFunction("NOW", 0, func(ctx *gosqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			return time.Now().UTC(), nil
		})
		logger.Init()
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	err = db.AutoMigrate(
		&models.User{},
		&models.Document{},
		&models.DocumentVersion{},
		&models.DocumentGrant{},
		&models.ShareLink{},
		&models.ShareLinkRecipient{},
		&models.RestrictedSecret{},
		&models.PublicDocLink{},
		&models.AuditLog{},
		&models.AuditExportCursor{},
	)
	if err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	store := newMemStore()
	transform := &identityTransform{prefix: "WM:"}

	auditService := services.NewAuditService(db, nil)
	restrictedService := services.NewRestrictedService(db)
	accessService := services.NewAccessService(db)
	documentService := services.NewDocumentService(db, auditService)
	grantService := services.NewGrantService(db, auditService)
	linkService := services.NewLinkService(db, auditService)
	versionService := services.NewVersionService(db, store, transform, auditService)

	authHandler := NewAuthHandler(db)
	documentsHandler := NewDocumentsHandler(db, documentService, accessService, restrictedService, grantService)
	grantsHandler := NewGrantsHandler(db, documentService, grantService, accessService)
	linksHandler := NewLinksHandler(db, documentService, linkService, accessService)
	versionsHandler := NewVersionsHandler(db, documentService, versionService, accessService)
	publicHandler := NewPublicHandler(documentService, versionService)
	auditHandler := NewAuditHandler(auditService)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{BodyLimit: 100 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)
	authRoutes.Put("/password", authMiddleware.RequireAuth, authHandler.ChangePassword)

	publicRoutes := api.Group("/public/documents")
	publicRoutes.Get("/:token", publicHandler.Get)
	publicRoutes.Get("/:token/download", publicHandler.Download)

	docRoutes := api.Group("/documents", authMiddleware.RequireAuth)
	docRoutes.Post("/", documentsHandler.Create)
	docRoutes.Get("/", documentsHandler.List)
	docRoutes.Get("/shared", documentsHandler.SharedWithMe)
	docRoutes.Post("/:id/verify-password", documentsHandler.VerifyPassword)
	docRoutes.Post("/:id/versions", versionsHandler.Upload)
	docRoutes.Get("/:id/versions", versionsHandler.List)
	docRoutes.Get("/:id/download", versionsHandler.Download)
	docRoutes.Get("/:id/download-url", versionsHandler.DownloadURL)
	docRoutes.Post("/:id/grants", grantsHandler.Upsert)
	docRoutes.Get("/:id/grants", grantsHandler.List)
	docRoutes.Put("/:id/grants/:granteeID", grantsHandler.Upsert)
	docRoutes.Delete("/:id/grants/:granteeID", grantsHandler.Revoke)
	docRoutes.Delete("/:id/grants", grantsHandler.RevokeAll)
	docRoutes.Post("/:id/links", linksHandler.Create)
	docRoutes.Get("/:id/links", linksHandler.ListForDocument)
	docRoutes.Get("/:id", documentsHandler.Get)
	docRoutes.Put("/:id", documentsHandler.Update)
	docRoutes.Delete("/:id", documentsHandler.Delete)

	linkRoutes := api.Group("/links", authMiddleware.RequireAuth)
	linkRoutes.Post("/activate", linksHandler.Activate)
	linkRoutes.Post("/:id/recipients", linksHandler.AddRecipient)
	linkRoutes.Get("/:id/recipients", linksHandler.ListRecipients)
	linkRoutes.Delete("/:id/recipients/:recipientID", linksHandler.RevokeRecipient)
	linkRoutes.Delete("/:id", linksHandler.Revoke)

	api.Get("/audit-log", authMiddleware.RequireAuth, auditHandler.ListMine)

	return &testEnv{app: app, db: db, store: store}, transform
}

func createTestUser(t *testing.T, db *gorm.DB, email, password string) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     "Test User",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return user, token
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func dataField(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object in response, got %+v", body)
	}
	return data
}
