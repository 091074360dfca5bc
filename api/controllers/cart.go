package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tmaseko/veldmarket-backend/api/responses"
	"github.com/tmaseko/veldmarket-backend/api/validators"
	"github.com/tmaseko/veldmarket-backend/internal/cart"
	pkgerrors "github.com/tmaseko/veldmarket-backend/pkg/errors"
	"github.com/tmaseko/veldmarket-backend/pkg/logger"
)

// CartSessionHeader carries the anonymous cart session token. The server
// mints one on first use and echoes it back on every cart response.
const CartSessionHeader = "X-Cart-Session"

type cartView struct {
	Items      []cart.Line `json:"items"`
	Open       bool        `json:"open"`
	TotalItems int         `json:"total_items"`
	TotalCents int         `json:"total_cents"`
}

type cartAddRequest struct {
	ProductID      uuid.UUID `json:"product_id" validate:"required"`
	Title          string    `json:"title" validate:"required"`
	UnitPriceCents int       `json:"unit_price_cents" validate:"gte=0"`
	Color          string    `json:"color,omitempty"`
	Size           string    `json:"size,omitempty"`
	Qty            int       `json:"qty,omitempty"`
}

type cartItemKeyRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Color     string    `json:"color,omitempty"`
	Qty       int       `json:"qty,omitempty"`
}

func (req cartAddRequest) toLine() cart.Line {
	return cart.Line{
		ProductID:      req.ProductID,
		Title:          validators.SanitizeString(req.Title, 200),
		UnitPriceCents: req.UnitPriceCents,
		Color:          strings.TrimSpace(req.Color),
		Size:           strings.TrimSpace(req.Size),
		Qty:            req.Qty,
	}
}

// CartFetch returns the session cart, minting a session token when absent.
func CartFetch(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if store == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		token := cartSessionToken(w, r)
		state, err := store.Load(ctx, token)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, viewOf(state))
	}
}

// CartAdd merges a line into the cart and returns a user-facing notice.
func CartAdd(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if store == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		var req cartAddRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		token := cartSessionToken(w, r)
		line := req.toLine()
		state, err := store.Mutate(ctx, token, func(s cart.State) cart.State {
			return cart.Add(s, line)
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"cart":   viewOf(state),
			"notice": fmt.Sprintf("%s added to your cart", line.Title),
		})
	}
}

// CartUpdateItem sets the quantity for a line; qty <= 0 removes it.
func CartUpdateItem(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if store == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		var req cartItemKeyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		token := cartSessionToken(w, r)
		key := cart.Key{ProductID: req.ProductID, Color: strings.TrimSpace(req.Color)}
		state, err := store.Mutate(ctx, token, func(s cart.State) cart.State {
			return cart.SetQuantity(s, key, req.Qty)
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, viewOf(state))
	}
}

// CartRemoveItem drops a keyed line from the cart.
func CartRemoveItem(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if store == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		var req cartItemKeyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		token := cartSessionToken(w, r)
		key := cart.Key{ProductID: req.ProductID, Color: strings.TrimSpace(req.Color)}
		state, err := store.Mutate(ctx, token, func(s cart.State) cart.State {
			return cart.Remove(s, key)
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, viewOf(state))
	}
}

// CartClear empties the cart but keeps the drawer flag.
func CartClear(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if store == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		token := cartSessionToken(w, r)
		state, err := store.Mutate(ctx, token, cart.Clear)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, viewOf(state))
	}
}

// CartToggle flips the cart drawer visibility flag.
func CartToggle(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if store == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		token := cartSessionToken(w, r)
		state, err := store.Mutate(ctx, token, cart.Toggle)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, viewOf(state))
	}
}

func cartSessionToken(w http.ResponseWriter, r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get(CartSessionHeader))
	if token == "" {
		token = uuid.NewString()
	}
	w.Header().Set(CartSessionHeader, token)
	return token
}

func viewOf(state cart.State) cartView {
	items := state.Items
	if items == nil {
		items = []cart.Line{}
	}
	return cartView{
		Items:      items,
		Open:       state.Open,
		TotalItems: cart.TotalItems(state),
		TotalCents: cart.TotalCents(state),
	}
}
