package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/wishlist-backend/api/middleware"
	"github.com/angelmondragon/wishlist-backend/api/responses"
	"github.com/angelmondragon/wishlist-backend/api/validators"
	"github.com/angelmondragon/wishlist-backend/internal/wishlist"
	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
	"github.com/angelmondragon/wishlist-backend/pkg/logger"
	"github.com/angelmondragon/wishlist-backend/pkg/types"
)

type wishlistResponse struct {
	types.SuccessEnvelope
	Wishlist      []wishlist.ItemView `json:"wishlist"`
	DatabaseError string              `json:"databaseError,omitempty"`
}

type addWishlistItemRequest struct {
	Product *wishlist.Product `json:"product"`
}

type removeWishlistItemRequest struct {
	ProductID types.ExternalID `json:"productId"`
}

func newWishlistResponse(items []wishlist.ItemView) wishlistResponse {
	if items == nil {
		items = []wishlist.ItemView{}
	}
	return wishlistResponse{SuccessEnvelope: types.OK(), Wishlist: items}
}

// WishlistList returns a customer's wishlist. Storage failures answer 200
// with an empty list and the failure message.
func WishlistList(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		result, err := svc.List(ctx, wishlist.ListParams{
			ShopDomain:         middleware.ShopDomainFromContext(ctx),
			CustomerID:         customerParam(r),
			LoggedInCustomerID: middleware.LoggedInCustomerIDFromContext(ctx),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp := newWishlistResponse(result.Items)
		resp.DatabaseError = result.DatabaseError
		responses.WriteSuccess(w, resp)
	}
}

// WishlistAddItem saves a product to the customer's wishlist.
func WishlistAddItem(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		var payload addWishlistItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items, err := svc.Add(ctx, middleware.ShopDomainFromContext(ctx), customerParam(r), payload.Product)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newWishlistResponse(items))
	}
}

// WishlistRemoveItem removes a product from the customer's wishlist.
// Removing a product that is not saved succeeds with the unchanged list.
func WishlistRemoveItem(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		var payload removeWishlistItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items, err := svc.Remove(ctx, middleware.ShopDomainFromContext(ctx), customerParam(r), payload.ProductID.String())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newWishlistResponse(items))
	}
}

func customerParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "customerId"))
}
