package shops

import (
	"context"
	"errors"

	"github.com/angelmondragon/wishlist-backend/pkg/db"
	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
	"github.com/angelmondragon/wishlist-backend/pkg/logger"
	"gorm.io/gorm"
)

const shopDomainConstraint = "shops_shop_domain_key"

var errShopDomainRequired = errors.New("shop domain is required")

// TxRunner executes fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the settings service.
type ServiceParams struct {
	Store  Store
	Tx     TxRunner
	Logger *logger.Logger
}

// Service reads and writes per-shop settings.
type Service interface {
	// Get returns the shop's settings, creating the shop with defaults on
	// first access. Failures are logged and answered with the defaults.
	Get(ctx context.Context, shopDomain string) Settings
	Update(ctx context.Context, shopDomain string, update SettingsUpdate) (Settings, error)
}

type service struct {
	store Store
	tx    TxRunner
	logg  *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "shop store is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{store: params.Store, tx: params.Tx, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, shopDomain string) Settings {
	ctx = s.logg.WithShopDomain(ctx, shopDomain)
	if shopDomain == "" {
		s.logg.Error(ctx, "shops.settings_lookup_failed", errShopDomainRequired)
		return DefaultSettings()
	}

	shop, err := s.ensure(ctx, s.store, shopDomain)
	if err != nil {
		s.logg.Error(ctx, "shops.settings_lookup_failed", err)
		return DefaultSettings()
	}

	settings, err := ParseSettings(shop.Settings)
	if err != nil {
		s.logg.Error(ctx, "shops.settings_parse_failed", err)
	}
	return settings
}

func (s *service) Update(ctx context.Context, shopDomain string, update SettingsUpdate) (Settings, error) {
	if shopDomain == "" {
		return Settings{}, pkgerrors.New(pkgerrors.CodeValidation, "Shop domain is required")
	}

	var updated Settings
	err := s.withTx(ctx, func(store Store) error {
		shop, err := s.ensure(ctx, store, shopDomain)
		if err != nil {
			return err
		}
		current, err := ParseSettings(shop.Settings)
		if err != nil {
			s.logg.Warn(s.logg.WithShopDomain(ctx, shopDomain), "shops.settings_parse_failed")
		}
		updated = update.Apply(current)

		encoded, err := updated.Encode()
		if err != nil {
			return err
		}
		return store.UpdateSettings(ctx, shopDomain, encoded)
	})
	if err != nil {
		return Settings{}, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "Failed to save settings")
	}
	return updated, nil
}

// ensure loads the shop row, creating it with default settings when absent.
// A concurrent create is resolved by reading the winner's row.
func (s *service) ensure(ctx context.Context, store Store, shopDomain string) (*models.Shop, error) {
	shop, err := store.FindByDomain(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	if shop != nil {
		return shop, nil
	}

	encoded, err := DefaultSettings().Encode()
	if err != nil {
		return nil, err
	}
	shop = &models.Shop{ShopDomain: shopDomain, Settings: encoded}
	if err := store.Create(ctx, shop); err != nil {
		if !db.IsUniqueViolation(err, shopDomainConstraint) {
			return nil, err
		}
		existing, findErr := store.FindByDomain(ctx, shopDomain)
		if findErr != nil {
			return nil, findErr
		}
		if existing == nil {
			return nil, err
		}
		return existing, nil
	}

	s.logg.Info(ctx, "shops.created_with_defaults")
	return shop, nil
}

func (s *service) withTx(ctx context.Context, fn func(store Store) error) error {
	if s.tx == nil {
		return fn(s.store)
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return fn(s.store.WithTx(tx))
	})
}
