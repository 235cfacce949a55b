package wishlist

import (
	"bytes"
	"encoding/json"
	"strings"

	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
	"github.com/angelmondragon/wishlist-backend/pkg/types"
	"github.com/shopspring/decimal"
)

var minorUnitsPerMajor = decimal.NewFromInt(100)

// Price is an amount in major currency units.
type Price = decimal.Decimal

// Product is the storefront product payload sent on add. Price is in minor
// units (cents) and may arrive as a number or a numeric string.
type Product struct {
	ID            types.ExternalID `json:"id"`
	Title         string           `json:"title"`
	Handle        string           `json:"handle"`
	Price         decimal.Decimal  `json:"price"`
	FeaturedImage ImageRef         `json:"featured_image"`
	Images        []ImageRef       `json:"images"`
	Variants      []Variant        `json:"variants"`
}

type Variant struct {
	ID types.ExternalID `json:"id"`
}

// ImageRef accepts either an image URL string or an object carrying the URL
// under "src" or "url".
type ImageRef string

// UnmarshalJSON implements json.Unmarshaler.
func (r *ImageRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*r = ImageRef(s)
		return nil
	}
	var obj struct {
		Src string `json:"src"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return err
	}
	if obj.Src != "" {
		*r = ImageRef(obj.Src)
	} else {
		*r = ImageRef(obj.URL)
	}
	return nil
}

// normalize validates the payload and converts it to storable values.
func (p *Product) normalize(shop, customerID string) (UpsertParams, error) {
	if p == nil || p.ID.IsZero() {
		return UpsertParams{}, pkgerrors.New(pkgerrors.CodeValidation, "Product data required")
	}
	if len(p.Variants) == 0 || p.Variants[0].ID.IsZero() {
		return UpsertParams{}, pkgerrors.New(pkgerrors.CodeValidation, "Product variant required")
	}
	if p.Price.IsNegative() {
		return UpsertParams{}, pkgerrors.New(pkgerrors.CodeValidation, "Product price must be non-negative")
	}

	return UpsertParams{
		ItemKey: ItemKey{
			ShopDomain: shop,
			CustomerID: customerID,
			ProductID:  p.ID.String(),
		},
		VariantID: p.Variants[0].ID.String(),
		Title:     p.Title,
		Image:     p.imageURL(),
		Handle:    p.Handle,
		Price:     MinorToMajor(p.Price),
	}, nil
}

// imageURL prefers the featured image and falls back to the first listed one.
func (p *Product) imageURL() string {
	if src := strings.TrimSpace(string(p.FeaturedImage)); src != "" {
		return absoluteURL(src)
	}
	if len(p.Images) > 0 {
		if src := strings.TrimSpace(string(p.Images[0])); src != "" {
			return absoluteURL(src)
		}
	}
	return ""
}

func absoluteURL(src string) string {
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	return src
}

// MinorToMajor converts minor currency units to major units with two decimals.
func MinorToMajor(minor decimal.Decimal) Price {
	return minor.Div(minorUnitsPerMajor).Round(2)
}

// FormatPrice renders a stored price with exactly two decimals.
func FormatPrice(p Price) string {
	return p.StringFixed(2)
}
