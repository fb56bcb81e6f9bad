package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/seguro/backend/internal/models"
	"gorm.io/gorm"
)

type VersionService struct {
	DB        *gorm.DB
	Storage   ObjectStore
	Transform Transformer
	Audit     *AuditService
}

func NewVersionService(db *gorm.DB, store ObjectStore, transform Transformer, audit *AuditService) *VersionService {
	return &VersionService{DB: db, Storage: store, Transform: transform, Audit: audit}
}

// CreateVersion stores a new file revision for the document. Confidential
// uploads pass through the watermark transform first; the recorded size and
// digest describe the stored bytes.
func (s *VersionService) CreateVersion(ctx context.Context, meta RequestMeta, doc *models.Document, filename, mimeType string, content io.Reader) (*models.DocumentVersion, error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", ErrValidation)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	if RequiresTransform(doc.Classification) {
		transformed, err := s.Transform.Transform(ctx, filename, mimeType, content)
		if err != nil {
			return nil, fmt.Errorf("watermark transform: %w", err)
		}
		defer transformed.Close()
		content = transformed
	}

	var buf bytes.Buffer
	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(&buf, hasher), content)
	if err != nil {
		return nil, err
	}
	digest := hex.EncodeToString(hasher.Sum(nil))

	var version models.DocumentVersion
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxVersion int
		row := tx.Model(&models.DocumentVersion{}).
			Where("document_id = ?", doc.ID).
			Select("COALESCE(MAX(version_num), 0)")
		if err := row.Scan(&maxVersion).Error; err != nil {
			return err
		}

		version = models.DocumentVersion{
			DocumentID:  doc.ID,
			VersionNum:  maxVersion + 1,
			Filename:    filename,
			MimeType:    mimeType,
			SizeBytes:   size,
			SHA256:      digest,
			StoragePath: fmt.Sprintf("%s/v%d/%s", doc.ID.String(), maxVersion+1, uuid.New().String()),
		}

		if err := s.Storage.Upload(ctx, version.StoragePath, &buf, size, mimeType); err != nil {
			return err
		}
		return tx.Create(&version).Error
	})
	if err != nil {
		return nil, err
	}

	s.Audit.LogAsync(AuditEntry{
		ActorID:    meta.ActorID,
		Action:     models.AuditFileUploaded,
		ObjectType: models.AuditObjectFile,
		ObjectID:   &version.ID,
		Details: map[string]interface{}{
			"document_id": doc.ID.String(),
			"version_num": version.VersionNum,
			"size_bytes":  size,
			"sha256":      digest,
		},
		IPAddress: meta.IPAddress,
		RequestID: meta.RequestID,
	})

	return &version, nil
}

func (s *VersionService) LatestVersion(ctx context.Context, documentID uuid.UUID) (*models.DocumentVersion, error) {
	var version models.DocumentVersion
	err := s.DB.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("version_num DESC").
		First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &version, nil
}

func (s *VersionService) GetVersion(ctx context.Context, documentID uuid.UUID, versionNum int) (*models.DocumentVersion, error) {
	var version models.DocumentVersion
	err := s.DB.WithContext(ctx).
		Where("document_id = ? AND version_num = ?", documentID, versionNum).
		First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &version, nil
}

func (s *VersionService) ListVersions(ctx context.Context, documentID uuid.UUID) ([]models.DocumentVersion, error) {
	var versions []models.DocumentVersion
	err := s.DB.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("version_num DESC").
		Find(&versions).Error
	return versions, err
}

// Open streams the stored bytes of a version.
func (s *VersionService) Open(ctx context.Context, version *models.DocumentVersion) (io.ReadCloser, error) {
	return s.Storage.Download(ctx, version.StoragePath)
}

// DownloadURL returns a short-lived presigned URL forcing an attachment
// disposition with the original filename.
func (s *VersionService) DownloadURL(ctx context.Context, version *models.DocumentVersion, expiry time.Duration) (string, error) {
	disposition := fmt.Sprintf("attachment; filename=%q", version.Filename)
	return s.Storage.PresignedGetURL(ctx, version.StoragePath, expiry, version.MimeType, disposition)
}

// RecordDownload emits the audit row for a completed download.
func (s *VersionService) RecordDownload(meta RequestMeta, doc *models.Document, version *models.DocumentVersion) {
	s.Audit.LogAsync(AuditEntry{
		ActorID:    meta.ActorID,
		Action:     models.AuditFileDownloaded,
		ObjectType: models.AuditObjectFile,
		ObjectID:   &version.ID,
		Details: map[string]interface{}{
			"document_id": doc.ID.String(),
			"version_num": version.VersionNum,
		},
		IPAddress: meta.IPAddress,
		RequestID: meta.RequestID,
	})
}
