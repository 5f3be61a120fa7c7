package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/product_catalog/internal/identity"
	"github.com/Skotchmaster/product_catalog/internal/models"
	"github.com/Skotchmaster/product_catalog/internal/search"
)

func (r *GormRepo) ListProducts(ctx context.Context, caller *identity.Caller, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Scopes(search.OwnerScope(caller)).
		Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Scopes(search.OwnerScope(caller)).
		Preload("User").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, caller *identity.Caller, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).
		Scopes(search.OwnerScope(caller)).
		Preload("User").
		Where("id = ?", id).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	items := make([]models.Product, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.DB.WithContext(ctx).
		Preload("User").
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Preload("User").First(prod, prod.ID).Error
}

// SaveProduct writes every column of prod, including zero values.
func (r *GormRepo) SaveProduct(ctx context.Context, prod *models.Product) error {
	prod.Fold()
	return r.DB.WithContext(ctx).
		Model(prod).
		Updates(map[string]any{
			"title":          prod.Title,
			"content":        prod.Content,
			"price":          prod.Price,
			"public":         prod.Public,
			"user_id":        prod.UserID,
			"title_folded":   prod.TitleFolded,
			"content_folded": prod.ContentFolded,
		}).Error
}

// DeleteProduct removes the product visible to caller and returns it as it was.
func (r *GormRepo) DeleteProduct(ctx context.Context, caller *identity.Caller, id uint) (*models.Product, error) {
	var prod models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(search.OwnerScope(caller)).
			Preload("User").
			Where("id = ?", id).
			First(&prod).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Product{}, prod.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &prod, nil
}

func (r *GormRepo) SearchProducts(ctx context.Context, query string, caller *identity.Caller, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Scopes(search.Scope(query, caller)).
		Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if total == 0 {
		return 0, items, nil
	}

	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Scopes(search.Scope(query, caller)).
		Preload("User").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

// CountProductsByOwner returns the number of products per owner id.
func (r *GormRepo) CountProductsByOwner(ctx context.Context, ownerIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		UserID uint
		Total  int64
	}
	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Select("user_id, COUNT(*) AS total").
		Where("user_id IN ?", ownerIDs).
		Group("user_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.UserID] = row.Total
	}
	return counts, nil
}

// EachProduct walks every product in id order, batch rows at a time.
func (r *GormRepo) EachProduct(ctx context.Context, batch int, fn func([]models.Product) error) error {
	var items []models.Product
	return r.DB.WithContext(ctx).
		Order("id ASC").
		FindInBatches(&items, batch, func(_ *gorm.DB, _ int) error {
			return fn(items)
		}).Error
}
