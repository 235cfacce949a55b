package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/wishlist-backend/api/responses"
	"github.com/angelmondragon/wishlist-backend/api/validators"
	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
	"github.com/angelmondragon/wishlist-backend/pkg/logger"
)

const (
	shopQueryParam     = "shop"
	loggedInQueryParam = "logged_in_customer_id"
)

// StorefrontContext resolves the shop and the logged-in storefront customer
// from the app proxy query string.
func StorefrontContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			shop := strings.ToLower(validators.QueryString(r, shopQueryParam))
			if shop == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Shop parameter required"))
				return
			}
			loggedIn := validators.QueryString(r, loggedInQueryParam)

			ctx := WithShopDomain(r.Context(), shop)
			ctx = WithLoggedInCustomerID(ctx, loggedIn)
			if logg != nil {
				ctx = logg.WithShopDomain(ctx, shop)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
