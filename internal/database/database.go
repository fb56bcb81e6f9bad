package database

import (
	"fmt"

	"github.com/seguro/backend/internal/config"
	"github.com/seguro/backend/internal/models"
	"github.com/seguro/backend/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := seedAdminUser(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates every table. The CHECK constraints back up the
// application-level use caps at the storage layer.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
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
	); err != nil {
		return err
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	constraints := `
DO $$
BEGIN
  IF NOT EXISTS (
    SELECT 1
    FROM pg_constraint
    WHERE conname = 'share_link_uses_check'
  ) THEN
    ALTER TABLE share_links
    ADD CONSTRAINT share_link_uses_check
    CHECK (max_uses <= 0 OR uses_count <= max_uses);
  END IF;

  IF NOT EXISTS (
    SELECT 1
    FROM pg_constraint
    WHERE conname = 'recipient_uses_check'
  ) THEN
    ALTER TABLE share_link_recipients
    ADD CONSTRAINT recipient_uses_check
    CHECK (max_uses IS NULL OR uses_count <= max_uses);
  END IF;
END $$;`

	return db.Exec(constraints).Error
}

func seedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword("admin123")
	if err != nil {
		return err
	}

	admin := models.User{
		Email:           "admin@seguro.local",
		PasswordHash:    hash,
		FullName:        "System Admin",
		IsSecurityAdmin: true,
	}

	return db.Create(&admin).Error
}
