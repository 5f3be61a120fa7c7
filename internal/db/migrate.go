package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/product_catalog/internal/models"
)

// Migrate creates or updates the schema and seeds the product permissions.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Permission{},
		&models.Product{},
		&models.RefreshToken{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	perms := make([]models.Permission, len(models.DefaultPermissions))
	copy(perms, models.DefaultPermissions)
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "codename"}}, DoNothing: true}).
		Create(&perms).Error; err != nil {
		return fmt.Errorf("seed permissions: %w", err)
	}
	if err := backfillFolded(ctx, db); err != nil {
		return fmt.Errorf("backfill folded text: %w", err)
	}
	return nil
}

const backfillBatch = 500

// backfillFolded fills the folded search columns of rows written before they existed.
func backfillFolded(ctx context.Context, db *gorm.DB) error {
	for {
		var batch []models.Product
		if err := db.WithContext(ctx).
			Where("title_folded = '' AND title <> ''").
			Order("id ASC").
			Limit(backfillBatch).
			Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		for i := range batch {
			batch[i].Fold()
			if err := db.WithContext(ctx).
				Model(&models.Product{}).
				Where("id = ?", batch[i].ID).
				UpdateColumns(map[string]any{
					"title_folded":   batch[i].TitleFolded,
					"content_folded": batch[i].ContentFolded,
				}).Error; err != nil {
				return err
			}
		}
	}
}
