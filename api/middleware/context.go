package middleware

import "context"

type contextKey string

const (
	ctxShopDomain         contextKey = "shop_domain"
	ctxLoggedInCustomerID contextKey = "logged_in_customer_id"
)

// ShopDomainFromContext returns the shop resolved for the request, if any.
func ShopDomainFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxShopDomain).(string); ok {
		return v
	}
	return ""
}

// LoggedInCustomerIDFromContext returns the storefront customer forwarded by
// the app proxy. Empty for guests.
func LoggedInCustomerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxLoggedInCustomerID).(string); ok {
		return v
	}
	return ""
}

// WithShopDomain injects the shop domain into the context.
func WithShopDomain(ctx context.Context, shop string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxShopDomain, shop)
}

// WithLoggedInCustomerID injects the storefront customer into the context.
func WithLoggedInCustomerID(ctx context.Context, customerID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxLoggedInCustomerID, customerID)
}
