package wishlist

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/wishlist-backend/internal/repo"
	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the durable wishlist record store. Errors are returned as-is.
type Store interface {
	WithTx(tx *gorm.DB) Store
	FindItem(ctx context.Context, key ItemKey) (*models.WishlistItem, error)
	UpsertItem(ctx context.Context, params UpsertParams) error
	DeleteItem(ctx context.Context, key ItemKey) (int64, error)
	ListItems(ctx context.Context, shop, customerID string) ([]models.WishlistItem, error)
	MarkAddedToCart(ctx context.Context, shop string, filter CartFilter) (int64, error)
	CountItems(ctx context.Context, shop string, since time.Time) (int64, error)
	CountAddedToCart(ctx context.Context, shop string, since time.Time) (int64, error)
	TopProducts(ctx context.Context, shop string, since time.Time, limit int) ([]ProductCount, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a wishlist store bound to the provided database.
func NewRepository(db *gorm.DB) Store {
	return &repository{Base: repo.NewBase(db)}
}

// NewRepositoryWithClock is NewRepository with a fixed time source.
func NewRepositoryWithClock(db *gorm.DB, clock repo.Clock) Store {
	return &repository{Base: repo.NewBase(db).WithClock(clock)}
}

func (r *repository) WithTx(tx *gorm.DB) Store {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Base.WithTx(tx)}
}

// FindItem returns nil without error when no row matches.
func (r *repository) FindItem(ctx context.Context, key ItemKey) (*models.WishlistItem, error) {
	var item models.WishlistItem
	err := r.keyed(ctx, key).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpsertItem inserts the row or, on a key conflict, refreshes its variant,
// title, image, price and updated_at. created_at, handle and added_to_cart_at
// are left untouched.
func (r *repository) UpsertItem(ctx context.Context, params UpsertParams) error {
	now := r.Now()
	row := models.WishlistItem{
		ShopDomain:    params.ShopDomain,
		CustomerID:    params.CustomerID,
		ProductID:     params.ProductID,
		VariantID:     params.VariantID,
		ProductTitle:  params.Title,
		ProductImage:  nullableString(params.Image),
		ProductHandle: params.Handle,
		ProductPrice:  params.Price,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	return r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "shop_domain"}, {Name: "customer_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"variant_id":    row.VariantID,
				"product_title": row.ProductTitle,
				"product_image": row.ProductImage,
				"product_price": row.ProductPrice,
				"updated_at":    now,
			}),
		}).
		Create(&row).
		Error
}

// DeleteItem removes every row matching key and reports how many were removed.
func (r *repository) DeleteItem(ctx context.Context, key ItemKey) (int64, error) {
	res := r.keyed(ctx, key).Delete(&models.WishlistItem{})
	return res.RowsAffected, res.Error
}

// ListItems returns the customer's rows, newest first.
func (r *repository) ListItems(ctx context.Context, shop, customerID string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.DB(ctx).
		Where("shop_domain = ? AND customer_id = ?", shop, customerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).
		Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// MarkAddedToCart stamps added_to_cart_at on every row matching filter.
func (r *repository) MarkAddedToCart(ctx context.Context, shop string, filter CartFilter) (int64, error) {
	query := r.DB(ctx).
		Model(&models.WishlistItem{}).
		Where("shop_domain = ? AND product_id = ?", shop, filter.ProductID)
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.VariantID != nil {
		query = query.Where("variant_id = ?", *filter.VariantID)
	}

	res := query.UpdateColumn("added_to_cart_at", r.Now())
	return res.RowsAffected, res.Error
}

// CountItems counts rows created at or after since. A zero since counts all rows.
func (r *repository) CountItems(ctx context.Context, shop string, since time.Time) (int64, error) {
	var count int64
	err := r.windowed(ctx, shop, since).Count(&count).Error
	return count, err
}

// CountAddedToCart counts windowed rows that have been added to a cart. The
// window applies to created_at, not to when the cart event happened.
func (r *repository) CountAddedToCart(ctx context.Context, shop string, since time.Time) (int64, error) {
	var count int64
	err := r.windowed(ctx, shop, since).
		Where("added_to_cart_at IS NOT NULL").
		Count(&count).
		Error
	return count, err
}

// TopProducts groups windowed rows by product, most saved first. Ties are
// ordered by product id.
func (r *repository) TopProducts(ctx context.Context, shop string, since time.Time, limit int) ([]ProductCount, error) {
	var rows []ProductCount
	query := r.windowed(ctx, shop, since).
		Select("product_id, product_title, product_image, COUNT(*) AS item_count").
		Group("product_id, product_title, product_image").
		Order("item_count DESC").
		Order("product_id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) keyed(ctx context.Context, key ItemKey) *gorm.DB {
	return r.DB(ctx).Where(
		"shop_domain = ? AND customer_id = ? AND product_id = ?",
		key.ShopDomain, key.CustomerID, key.ProductID,
	)
}

func (r *repository) windowed(ctx context.Context, shop string, since time.Time) *gorm.DB {
	query := r.DB(ctx).Model(&models.WishlistItem{}).Where("shop_domain = ?", shop)
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since.UTC())
	}
	return query
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
