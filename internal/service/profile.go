package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type ProfileService struct {
	Store Store
}

type ProfileUpdate struct {
	Phone   *string
	Address *string
}

// Get returns the caller's profile. A caller with no row yet gets an empty
// profile rather than an error.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	u, err := s.Store.GetProfile(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.User{ID: userID, Role: tokens.RoleUser}, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (*models.User, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var out *models.User
	err := s.Store.InTx(ctx, func(tx Store) error {
		u, err := tx.GetProfile(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			u = &models.User{ID: userID, Role: tokens.RoleUser}
		} else if err != nil {
			return err
		}
		if upd.Phone != nil {
			u.Phone = strings.TrimSpace(*upd.Phone)
		}
		if upd.Address != nil {
			u.Address = strings.TrimSpace(*upd.Address)
		}
		if err := tx.UpsertProfile(ctx, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
