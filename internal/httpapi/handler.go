package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"booktime-be/internal/address"
	"booktime-be/internal/basket"
	"booktime-be/internal/catalog"
	"booktime-be/internal/notification"
	"booktime-be/internal/order"
	"booktime-be/internal/user"
	"booktime-be/internal/utils"
)

// basketCookie carries the anonymous shopping session. The value is an
// opaque token, not the basket id.
const basketCookie = "basket_token"

type Handler struct {
	users     user.Service
	catalog   catalog.Service
	baskets   basket.Service
	orders    order.Service
	addresses address.Service
	notifier  notification.Dispatcher
}

func NewHandler(
	users user.Service,
	catalogSvc catalog.Service,
	baskets basket.Service,
	orders order.Service,
	addresses address.Service,
	notifier notification.Dispatcher,
) *Handler {
	return &Handler{
		users:     users,
		catalog:   catalogSvc,
		baskets:   baskets,
		orders:    orders,
		addresses: addresses,
		notifier:  notifier,
	}
}

// sessionToken returns the visitor's basket token, minting and setting a
// cookie when the request carries none.
func (h *Handler) sessionToken(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(basketCookie); err == nil && c.Value != "" {
		return c.Value
	}

	token := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     basketCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(30 * 24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

// peekSessionToken returns the token without minting one. Reads that find
// no cookie have no basket to show.
func peekSessionToken(r *http.Request) string {
	if c, err := r.Cookie(basketCookie); err == nil {
		return c.Value
	}
	return ""
}

// writeServiceError maps domain errors onto HTTP statuses. Anything
// unmapped is a 500 with a generic message.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, basket.ErrInvalidProduct),
		errors.Is(err, basket.ErrInvalidQuantity),
		errors.Is(err, order.ErrEmptyBasketCheckout),
		errors.Is(err, order.ErrAddressOwnershipMismatch),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, address.ErrInvalidAddressID):
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)

	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, address.ErrNotAuthenticated):
		utils.WriteJSONError(w, err.Error(), http.StatusUnauthorized)

	case errors.Is(err, order.ErrNotAuthorized):
		utils.WriteJSONError(w, err.Error(), http.StatusForbidden)

	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrTagNotFound),
		errors.Is(err, basket.ErrBasketNotFound),
		errors.Is(err, basket.ErrLineNotFound),
		errors.Is(err, address.ErrAddressNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, user.ErrUserNotFound):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)

	case errors.Is(err, basket.ErrBasketAlreadyConverted):
		utils.WriteJSONError(w, "your basket has already been checked out", http.StatusConflict)

	case errors.Is(err, user.ErrEmailExists),
		errors.Is(err, order.ErrConcurrentModification):
		utils.WriteJSONError(w, err.Error(), http.StatusConflict)

	default:
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}
