package wishlist

import (
	"context"

	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
	"github.com/angelmondragon/wishlist-backend/pkg/logger"
	"github.com/angelmondragon/wishlist-backend/pkg/metrics"
)

// Public messages for wishlist failures.
const (
	MsgUnauthorized   = "Unauthorized access"
	MsgAddFailed      = "Database operation failed"
	MsgRemoveFailed   = "Error removing from wishlist"
	MsgProductIDMiss  = "Product ID required"
	MsgCartProductID  = "Product ID is required"
	MsgCartTrackError = "Failed to track add to cart event"
)

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Store   Store
	Events  EventPublisher
	Metrics *metrics.Metrics
	Logger  *logger.Logger
}

// Service exposes business rules for wishlist management.
type Service interface {
	Add(ctx context.Context, shop, customerID string, product *Product) ([]ItemView, error)
	Remove(ctx context.Context, shop, customerID, productID string) ([]ItemView, error)
	List(ctx context.Context, params ListParams) (ListResult, error)
	MarkAddedToCart(ctx context.Context, shop string, filter CartFilter) (int64, error)
}

type service struct {
	store   Store
	events  EventPublisher
	metrics *metrics.Metrics
	logg    *logger.Logger
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wishlist store is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		store:   params.Store,
		events:  params.Events,
		metrics: params.Metrics,
		logg:    logg,
	}, nil
}

// Authorize rejects a request whose storefront identity differs from the
// customer being acted on. Guests (empty loggedInCustomerID) pass.
func Authorize(loggedInCustomerID, customerID string) error {
	if loggedInCustomerID != "" && loggedInCustomerID != customerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, MsgUnauthorized)
	}
	return nil
}

// Add creates or refreshes the customer's entry for product and returns the
// updated wishlist.
func (s *service) Add(ctx context.Context, shop, customerID string, product *Product) ([]ItemView, error) {
	params, err := product.normalize(shop, customerID)
	if err != nil {
		s.metrics.IncOperation("add", metrics.OutcomeFailure)
		return nil, err
	}

	if err := s.store.UpsertItem(ctx, params); err != nil {
		s.metrics.IncOperation("add", metrics.OutcomeFailure)
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, MsgAddFailed)
	}

	items, err := s.snapshot(ctx, shop, customerID)
	if err != nil {
		s.metrics.IncOperation("add", metrics.OutcomeFailure)
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, MsgAddFailed)
	}

	s.metrics.IncOperation("add", metrics.OutcomeSuccess)
	s.publish(ctx, EventItemAdded, shop, customerID, itemEvent{
		ShopDomain: shop,
		CustomerID: customerID,
		ProductID:  params.ProductID,
		VariantID:  params.VariantID,
		Price:      FormatPrice(params.Price),
	})
	return items, nil
}

// Remove deletes the customer's entry for productID, if any, and returns the
// updated wishlist.
func (s *service) Remove(ctx context.Context, shop, customerID, productID string) ([]ItemView, error) {
	if productID == "" {
		s.metrics.IncOperation("remove", metrics.OutcomeFailure)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, MsgProductIDMiss)
	}

	removed, err := s.store.DeleteItem(ctx, ItemKey{ShopDomain: shop, CustomerID: customerID, ProductID: productID})
	if err != nil {
		s.metrics.IncOperation("remove", metrics.OutcomeFailure)
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, MsgRemoveFailed)
	}

	items, err := s.snapshot(ctx, shop, customerID)
	if err != nil {
		s.metrics.IncOperation("remove", metrics.OutcomeFailure)
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, MsgRemoveFailed)
	}

	s.metrics.IncOperation("remove", metrics.OutcomeSuccess)
	if removed > 0 {
		s.publish(ctx, EventItemRemoved, shop, customerID, itemEvent{
			ShopDomain: shop,
			CustomerID: customerID,
			ProductID:  productID,
		})
	}
	return items, nil
}

// List returns the customer's wishlist. Storage failures degrade to an empty
// list carrying the failure message; only authorization errors are returned.
func (s *service) List(ctx context.Context, params ListParams) (ListResult, error) {
	if err := Authorize(params.LoggedInCustomerID, params.CustomerID); err != nil {
		s.metrics.IncOperation("list", metrics.OutcomeFailure)
		return ListResult{}, err
	}

	items, err := s.snapshot(ctx, params.ShopDomain, params.CustomerID)
	if err != nil {
		s.metrics.IncOperation("list", metrics.OutcomeDegraded)
		s.logg.Error(ctx, "wishlist.list_degraded", err)
		return ListResult{Items: []ItemView{}, DatabaseError: err.Error()}, nil
	}

	s.metrics.IncOperation("list", metrics.OutcomeSuccess)
	return ListResult{Items: items}, nil
}

// MarkAddedToCart stamps the matching rows and reports how many were touched.
func (s *service) MarkAddedToCart(ctx context.Context, shop string, filter CartFilter) (int64, error) {
	if filter.ProductID == "" {
		s.metrics.IncOperation("add_to_cart", metrics.OutcomeFailure)
		return 0, pkgerrors.New(pkgerrors.CodeValidation, MsgCartProductID)
	}

	updated, err := s.store.MarkAddedToCart(ctx, shop, filter)
	if err != nil {
		s.metrics.IncOperation("add_to_cart", metrics.OutcomeFailure)
		return 0, pkgerrors.Wrap(pkgerrors.CodeStorage, err, MsgCartTrackError)
	}

	event := cartEvent{
		ShopDomain:   shop,
		ProductID:    filter.ProductID,
		UpdatedCount: updated,
	}
	if filter.CustomerID != nil {
		event.CustomerID = *filter.CustomerID
	}
	if filter.VariantID != nil {
		event.VariantID = *filter.VariantID
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"product_id":    event.ProductID,
		"variant_id":    event.VariantID,
		"updated_count": updated,
	})
	s.logg.Info(logCtx, "wishlist.added_to_cart")

	s.metrics.IncOperation("add_to_cart", metrics.OutcomeSuccess)
	if updated > 0 {
		s.publish(ctx, EventAddedToCart, shop, event.CustomerID, event)
	}
	return updated, nil
}

func (s *service) snapshot(ctx context.Context, shop, customerID string) ([]ItemView, error) {
	rows, err := s.store.ListItems(ctx, shop, customerID)
	if err != nil {
		return nil, err
	}
	return ToViews(rows), nil
}

func (s *service) publish(ctx context.Context, eventType, shop, customerID string, data any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, eventType, eventAttributes(shop, customerID), data); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "event_type", eventType), "wishlist.event_publish_failed", err)
	}
}
