package wishlist

import "context"

// Activity event types published after successful writes.
const (
	EventItemAdded   = "wishlist.item_added"
	EventItemRemoved = "wishlist.item_removed"
	EventAddedToCart = "wishlist.added_to_cart"
)

// EventPublisher delivers activity events. Failures never fail the operation.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, attributes map[string]string, data any) error
}

type itemEvent struct {
	ShopDomain string `json:"shopDomain"`
	CustomerID string `json:"customerId"`
	ProductID  string `json:"productId"`
	VariantID  string `json:"variantId,omitempty"`
	Price      string `json:"price,omitempty"`
}

type cartEvent struct {
	ShopDomain   string `json:"shopDomain"`
	ProductID    string `json:"productId"`
	CustomerID   string `json:"customerId,omitempty"`
	VariantID    string `json:"variantId,omitempty"`
	UpdatedCount int64  `json:"updatedCount"`
}

func eventAttributes(shop, customerID string) map[string]string {
	return map[string]string{
		"shop_domain": shop,
		"customer_id": customerID,
	}
}
