package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WishlistItem is one product saved by one customer of one shop.
// (shop_domain, customer_id, product_id) is unique.
type WishlistItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ShopDomain    string          `gorm:"column:shop_domain;not null;uniqueIndex:wishlist_items_shop_customer_product_key,priority:1;index:wishlist_items_shop_created_idx,priority:1"`
	CustomerID    string          `gorm:"column:customer_id;not null;uniqueIndex:wishlist_items_shop_customer_product_key,priority:2"`
	ProductID     string          `gorm:"column:product_id;not null;uniqueIndex:wishlist_items_shop_customer_product_key,priority:3"`
	VariantID     string          `gorm:"column:variant_id;not null"`
	ProductTitle  string          `gorm:"column:product_title;not null"`
	ProductImage  *string         `gorm:"column:product_image"`
	ProductHandle string          `gorm:"column:product_handle;not null"`
	ProductPrice  decimal.Decimal `gorm:"column:product_price;type:numeric(12,2);not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;not null;index:wishlist_items_shop_created_idx,priority:2"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;not null"`
	AddedToCartAt *time.Time      `gorm:"column:added_to_cart_at"`
}

func (WishlistItem) TableName() string { return "wishlist_items" }

// BeforeCreate assigns the primary key so inserts do not depend on a
// database-side uuid generator.
func (w *WishlistItem) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
