package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var prod models.Product
	err := r.DB.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Variants.Sizes", sizesByPosition).
		First(&prod, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &prod, nil
}

func (r *GormRepo) GetVariant(ctx context.Context, id uuid.UUID) (*models.Variant, error) {
	var v models.Variant
	err := r.DB.WithContext(ctx).
		Preload("Product").
		Preload("Sizes", sizesByPosition).
		First(&v, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Omit("Variants").Create(prod).Error
}

// SaveProduct writes the scalar product columns only.
func (r *GormRepo) SaveProduct(ctx context.Context, prod *models.Product) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", prod.ID).Updates(map[string]any{
		"name":        prod.Name,
		"description": prod.Description,
		"price":       prod.Price,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateVariant inserts the variant together with its size rows.
func (r *GormRepo) CreateVariant(ctx context.Context, v *models.Variant) error {
	return r.DB.WithContext(ctx).Omit("Product").Create(v).Error
}
