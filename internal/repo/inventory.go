package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

func sizesByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("size ASC")
}

// Stock returns the current stock of a variant.
func (r *GormRepo) Stock(ctx context.Context, variantID uuid.UUID) (domain.StockView, error) {
	var v models.Variant
	if err := r.DB.WithContext(ctx).Preload("Sizes", sizesByPosition).First(&v, "id = ?", variantID).Error; err != nil {
		return domain.StockView{}, err
	}
	return v.StockView(), nil
}

func (r *GormRepo) hasSizeRows(ctx context.Context, variantID uuid.UUID) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.VariantSize{}).Where("variant_id = ?", variantID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Decrement takes qty units of size in a single conditional update. When no
// row satisfies amount >= qty nothing changes and a StockError wrapping
// domain.ErrInsufficientStock is returned.
func (r *GormRepo) Decrement(ctx context.Context, variantID uuid.UUID, size string, qty int) error {
	if qty <= 0 {
		return domain.Invalid("quantity", "must be at least 1")
	}

	sized, err := r.hasSizeRows(ctx, variantID)
	if err != nil {
		return err
	}

	db := r.DB.WithContext(ctx)
	var res *gorm.DB
	if sized {
		res = db.Model(&models.VariantSize{}).
			Where("variant_id = ? AND size = ? AND amount >= ?", variantID, size, qty).
			UpdateColumn("amount", gorm.Expr("amount - ?", qty))
	} else {
		res = db.Model(&models.Variant{}).
			Where("id = ? AND size = ? AND amount >= ?", variantID, size, qty).
			UpdateColumn("amount", gorm.Expr("amount - ?", qty))
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	view, err := r.Stock(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.InsufficientStock(variantID, size, qty, 0)
		}
		return err
	}
	return domain.InsufficientStock(variantID, size, qty, view.Available(size))
}

// Restore puts qty units of size back, recreating the size row if it was
// removed after the order was placed.
func (r *GormRepo) Restore(ctx context.Context, variantID uuid.UUID, size string, qty int) error {
	if qty <= 0 {
		return nil
	}

	sized, err := r.hasSizeRows(ctx, variantID)
	if err != nil {
		return err
	}

	db := r.DB.WithContext(ctx)
	if !sized {
		res := db.Model(&models.Variant{}).
			Where("id = ? AND size = ?", variantID, size).
			UpdateColumn("amount", gorm.Expr("amount + ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}
	}

	row := models.VariantSize{VariantID: variantID, Size: size, Amount: qty}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "variant_id"}, {Name: "size"}},
		DoUpdates: clause.Assignments(map[string]any{"amount": gorm.Expr("variant_sizes.amount + excluded.amount")}),
	}).Create(&row).Error
}

// SetStock overwrites the amount held for size. A variant still on the legacy
// pair keeps using it when size matches; otherwise it moves to size rows and
// the legacy stock is carried over as its own row.
func (r *GormRepo) SetStock(ctx context.Context, variantID uuid.UUID, size string, amount int) error {
	if amount < 0 {
		return domain.Invalid("amount", "must not be negative")
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v models.Variant
		if err := tx.Preload("Sizes").First(&v, "id = ?", variantID).Error; err != nil {
			return err
		}

		if len(v.Sizes) == 0 && size == v.Size {
			return tx.Model(&models.Variant{}).Where("id = ?", variantID).UpdateColumn("amount", amount).Error
		}

		if len(v.Sizes) == 0 && v.Size != "" {
			legacy := models.VariantSize{VariantID: variantID, Size: v.Size, Amount: v.Amount}
			if err := tx.Create(&legacy).Error; err != nil {
				return fmt.Errorf("carry legacy stock: %w", err)
			}
		}

		row := models.VariantSize{VariantID: variantID, Size: size, Amount: amount, Position: len(v.Sizes) + 1}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "variant_id"}, {Name: "size"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount"}),
		}).Create(&row).Error
	})
}
