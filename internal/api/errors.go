package api

import (
	"errors"
	"net/http"

	"github.com/example/b2b-marketplace/internal/auth"
	"github.com/example/b2b-marketplace/internal/command"
	"github.com/example/b2b-marketplace/internal/domain/cart"
	"github.com/example/b2b-marketplace/internal/domain/order"
	"github.com/example/b2b-marketplace/internal/domain/product"
	"github.com/example/b2b-marketplace/internal/domain/user"
	"github.com/example/b2b-marketplace/internal/infrastructure/store"
)

// statusForError maps domain errors to HTTP status codes. Anything not
// recognized is an infrastructure failure and surfaces as a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, order.ErrForbidden),
		errors.Is(err, product.ErrNotOwner),
		errors.Is(err, product.ErrNotModerator),
		errors.Is(err, user.ErrUserDeactivated):
		return http.StatusForbidden

	case errors.Is(err, store.ErrVersionConflict):
		return http.StatusConflict

	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrMissingShippingAddress),
		errors.Is(err, order.ErrMissingFulfillment),
		errors.Is(err, product.ErrInvalidName),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrMissingIndustry),
		errors.Is(err, product.ErrInvalidStatus),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidProduct),
		errors.Is(err, cart.ErrItemNotInCart),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrInvalidName),
		errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrMissingIndustry),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, command.ErrEmptyCart):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// respondDomainError writes err with its mapped status. Infrastructure
// errors are kept opaque to the client.
func respondDomainError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	respondJSON(w, status, map[string]string{"error": message})
}
