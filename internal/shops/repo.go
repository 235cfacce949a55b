package shops

import (
	"context"
	"errors"

	"github.com/angelmondragon/wishlist-backend/internal/repo"
	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Store persists shop rows.
type Store interface {
	WithTx(tx *gorm.DB) Store
	FindByDomain(ctx context.Context, shopDomain string) (*models.Shop, error)
	Create(ctx context.Context, shop *models.Shop) error
	UpdateSettings(ctx context.Context, shopDomain, settings string) error
}

type repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to shop operations.
func NewRepository(db *gorm.DB) Store {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Store {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Base.WithTx(tx)}
}

// FindByDomain returns nil without error when the shop has no row yet.
func (r *repository) FindByDomain(ctx context.Context, shopDomain string) (*models.Shop, error) {
	var shop models.Shop
	err := r.DB(ctx).Where("shop_domain = ?", shopDomain).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *repository) Create(ctx context.Context, shop *models.Shop) error {
	now := r.Now()
	shop.CreatedAt = now
	shop.UpdatedAt = now
	return r.DB(ctx).Create(shop).Error
}

func (r *repository) UpdateSettings(ctx context.Context, shopDomain, settings string) error {
	res := r.DB(ctx).
		Model(&models.Shop{}).
		Where("shop_domain = ?", shopDomain).
		Updates(map[string]any{"settings": settings, "updated_at": r.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
