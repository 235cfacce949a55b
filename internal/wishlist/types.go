package wishlist

import (
	"time"

	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
)

// ItemKey identifies one wishlist row.
type ItemKey struct {
	ShopDomain string
	CustomerID string
	ProductID  string
}

// UpsertParams carries the normalized values written by an add.
type UpsertParams struct {
	ItemKey
	VariantID string
	Title     string
	Image     string
	Handle    string
	Price     Price
}

// CartFilter selects the rows touched by an add-to-cart event. Nil optional
// fields widen the match: without a customer every customer's row for the
// product is marked, without a variant every variant is.
type CartFilter struct {
	ProductID  string
	CustomerID *string
	VariantID  *string
}

// NewCartFilter builds a filter, treating blank optional ids as absent.
func NewCartFilter(productID, customerID, variantID string) CartFilter {
	filter := CartFilter{ProductID: productID}
	if customerID != "" {
		filter.CustomerID = &customerID
	}
	if variantID != "" {
		filter.VariantID = &variantID
	}
	return filter
}

// ProductCount is one row of the top-products aggregate.
type ProductCount struct {
	ProductID string  `gorm:"column:product_id"`
	Title     string  `gorm:"column:product_title"`
	Image     *string `gorm:"column:product_image"`
	Count     int64   `gorm:"column:item_count"`
}

// ItemView is the wire shape of a wishlist entry.
type ItemView struct {
	ID            string     `json:"id"`
	VariantID     string     `json:"variantId"`
	Title         string     `json:"title"`
	Image         string     `json:"image"`
	Handle        string     `json:"handle"`
	Price         string     `json:"price"`
	AddedAt       time.Time  `json:"addedAt"`
	AddedToCartAt *time.Time `json:"addedToCartAt"`
}

// ListParams identifies whose wishlist is requested and by whom.
// LoggedInCustomerID is the storefront identity, empty for guests.
type ListParams struct {
	ShopDomain         string
	CustomerID         string
	LoggedInCustomerID string
}

// ListResult is a wishlist snapshot. DatabaseError is set when storage failed
// and Items was replaced by an empty list.
type ListResult struct {
	Items         []ItemView
	DatabaseError string
}

// ToViews renders stored rows into their wire shape.
func ToViews(rows []models.WishlistItem) []ItemView {
	views := make([]ItemView, 0, len(rows))
	for _, row := range rows {
		views = append(views, ToView(row))
	}
	return views
}

func ToView(row models.WishlistItem) ItemView {
	view := ItemView{
		ID:        row.ProductID,
		VariantID: row.VariantID,
		Title:     row.ProductTitle,
		Handle:    row.ProductHandle,
		Price:     FormatPrice(row.ProductPrice),
		AddedAt:   row.CreatedAt.UTC(),
	}
	if row.ProductImage != nil {
		view.Image = *row.ProductImage
	}
	if row.AddedToCartAt != nil {
		at := row.AddedToCartAt.UTC()
		view.AddedToCartAt = &at
	}
	return view
}
