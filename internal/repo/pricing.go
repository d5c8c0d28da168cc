package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

// SaleFor returns the sale mapping of a product, or nil when it has none.
func (r *GormRepo) SaleFor(ctx context.Context, productID uuid.UUID) (*models.SaleProduct, error) {
	var sp models.SaleProduct
	err := r.DB.WithContext(ctx).First(&sp, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func (r *GormRepo) SalesFor(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*models.SaleProduct, error) {
	out := make(map[uuid.UUID]*models.SaleProduct, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	var rows []models.SaleProduct
	if err := r.DB.WithContext(ctx).Where("product_id IN ?", productIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ProductID] = &rows[i]
	}
	return out, nil
}

func (r *GormRepo) ListDiscountLevels(ctx context.Context, activeOnly bool) ([]models.DiscountLevel, error) {
	q := r.DB.WithContext(ctx).Model(&models.DiscountLevel{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var levels []models.DiscountLevel
	if err := q.Order("discount_percent ASC").Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *GormRepo) DiscountLevelExists(ctx context.Context, percent int) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.DiscountLevel{}).Where("discount_percent = ?", percent).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) CreateDiscountLevel(ctx context.Context, level *models.DiscountLevel) error {
	return r.DB.WithContext(ctx).Create(level).Error
}

func (r *GormRepo) DeleteDiscountLevel(ctx context.Context, percent int) error {
	res := r.DB.WithContext(ctx).Where("discount_percent = ?", percent).Delete(&models.DiscountLevel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) CountSalesWithPercent(ctx context.Context, percent int) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.SaleProduct{}).Where("discount_percent = ?", percent).Count(&n).Error
	return n, err
}

func (r *GormRepo) ListSaleProducts(ctx context.Context, activeOnly bool) ([]models.SaleProduct, error) {
	q := r.DB.WithContext(ctx).Preload("Product")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []models.SaleProduct
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormRepo) CreateSaleProduct(ctx context.Context, sp *models.SaleProduct) error {
	return r.DB.WithContext(ctx).Omit("Product").Create(sp).Error
}

func (r *GormRepo) SaveSaleProduct(ctx context.Context, sp *models.SaleProduct) error {
	res := r.DB.WithContext(ctx).Model(&models.SaleProduct{}).Where("product_id = ?", sp.ProductID).Updates(map[string]any{
		"discount_percent": sp.DiscountPercent,
		"starts_at":        sp.StartsAt,
		"ends_at":          sp.EndsAt,
		"is_active":        sp.IsActive,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteSaleProduct(ctx context.Context, productID uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.SaleProduct{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
