package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shop holds per-merchant configuration. Settings is a JSON document.
type Shop struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ShopDomain string    `gorm:"column:shop_domain;not null;uniqueIndex:shops_shop_domain_key"`
	Settings   string    `gorm:"column:settings;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Shop) TableName() string { return "shops" }

func (s *Shop) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// All lists every model owned by the service, in creation order.
func All() []any {
	return []any{&WishlistItem{}, &Shop{}}
}
