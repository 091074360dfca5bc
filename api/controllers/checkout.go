package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tmaseko/veldmarket-backend/api/middleware"
	"github.com/tmaseko/veldmarket-backend/api/responses"
	"github.com/tmaseko/veldmarket-backend/api/validators"
	"github.com/tmaseko/veldmarket-backend/internal/checkout"
	"github.com/tmaseko/veldmarket-backend/internal/orders"
	pkgerrors "github.com/tmaseko/veldmarket-backend/pkg/errors"
	"github.com/tmaseko/veldmarket-backend/pkg/logger"
)

type checkoutRequest struct {
	Delivery orders.DeliveryDetails `json:"delivery" validate:"required"`
}

// Checkout snapshots the session cart into a pending order and returns the
// signed PayFast redirect payload.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		sessionToken := r.Header.Get(CartSessionHeader)

		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Execute(ctx, userID, sessionToken, req.Delivery)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			ctx = logg.WithField(ctx, "order_id", result.Order.ID.String())
			logg.Info(ctx, "checkout completed")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
