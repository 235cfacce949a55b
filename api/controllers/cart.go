package controllers

import (
	"fmt"
	"net/http"

	"github.com/angelmondragon/wishlist-backend/api/middleware"
	"github.com/angelmondragon/wishlist-backend/api/responses"
	"github.com/angelmondragon/wishlist-backend/api/validators"
	"github.com/angelmondragon/wishlist-backend/internal/wishlist"
	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
	"github.com/angelmondragon/wishlist-backend/pkg/logger"
	"github.com/angelmondragon/wishlist-backend/pkg/types"
)

type addToCartRequest struct {
	ProductID  types.ExternalID `json:"productId"`
	CustomerID types.ExternalID `json:"customerId"`
	VariantID  types.ExternalID `json:"variantId"`
}

type addToCartResponse struct {
	types.SuccessEnvelope
	UpdatedCount int64  `json:"updatedCount"`
	Message      string `json:"message"`
}

// WishlistAddToCart records that a saved product was added to a cart.
func WishlistAddToCart(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		var payload addToCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payload.ProductID.IsZero() {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, wishlist.MsgCartProductID))
			return
		}

		loggedIn := middleware.LoggedInCustomerIDFromContext(ctx)
		if err := wishlist.Authorize(loggedIn, payload.CustomerID.String()); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		filter := wishlist.NewCartFilter(payload.ProductID.String(), payload.CustomerID.String(), payload.VariantID.String())
		updated, err := svc.MarkAddedToCart(ctx, middleware.ShopDomainFromContext(ctx), filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, addToCartResponse{
			SuccessEnvelope: types.OK(),
			UpdatedCount:    updated,
			Message:         fmt.Sprintf("Successfully tracked %d item(s) as added to cart", updated),
		})
	}
}

// MethodNotAllowed answers any method a route does not serve.
func MethodNotAllowed(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeMethodNotAllowed, "Method not allowed"))
	}
}
