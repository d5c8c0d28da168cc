package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) ListCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	return r.listCart(r.DB.WithContext(ctx), userID)
}

// LockCart is ListCart with the caller's lines held FOR UPDATE until the
// surrounding transaction ends. SQLite ignores the clause and serializes
// writers instead.
func (r *GormRepo) LockCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	return r.listCart(r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (r *GormRepo) listCart(db *gorm.DB, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := db.
		Preload("Variant").
		Preload("Variant.Product").
		Preload("Variant.Sizes", sizesByPosition).
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CountCart(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// AddToCart merges item into the caller's line for (variant, size) in one
// statement and returns the stored line. Two identical adds never produce two
// lines.
func (r *GormRepo) AddToCart(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	db := r.DB.WithContext(ctx)

	err := db.Omit("Variant").Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "variant_id"}, {Name: "size"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": time.Now().UTC(),
		}),
	}).Create(item).Error
	if err != nil {
		return nil, err
	}

	var stored models.CartItem
	if err := db.Where("user_id = ? AND variant_id = ? AND size = ?", item.UserID, item.VariantID, item.Size).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *GormRepo) GetCartItem(ctx context.Context, id, userID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).
		Preload("Variant").
		Preload("Variant.Product").
		Preload("Variant.Sizes", sizesByPosition).
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) SetCartQuantity(ctx context.Context, id, userID uuid.UUID, qty int) error {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"quantity": qty})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, id, userID uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

// RemoveCartLines deletes the given lines of one user's cart and reports how
// many were still there.
func (r *GormRepo) RemoveCartLines(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.DB.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
