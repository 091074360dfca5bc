package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/tmaseko/veldmarket-backend/api/responses"
	pkgerrors "github.com/tmaseko/veldmarket-backend/pkg/errors"
	"github.com/tmaseko/veldmarket-backend/pkg/logger"
	"github.com/tmaseko/veldmarket-backend/pkg/payfast"
)

// ITNProcessor applies a parsed PayFast notification to the order book.
type ITNProcessor interface {
	Process(ctx context.Context, n *payfast.Notification) error
}

// ITNVerifier is the slice of the gateway client used to check signatures.
type ITNVerifier interface {
	Passphrase() string
	VerifyNotification(n *payfast.Notification) error
}

// PayFastITN receives PayFast's form-encoded instant transaction
// notifications. Expected conditions (bad signature, malformed or unknown
// ids, non-complete statuses) are acknowledged with a plain 200 so the
// gateway stops retrying; only internal failures surface as errors.
func PayFastITN(svc ITNProcessor, client ITNVerifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read notification body"))
			return
		}

		notification, err := payfast.ParseNotification(string(body))
		if err != nil {
			if logg != nil {
				ctx = logg.WithField(ctx, "parse_error", err.Error())
				logg.Warn(ctx, "discarding malformed payfast notification")
			}
			writeITNAck(w)
			return
		}

		if client != nil && client.Passphrase() != "" {
			if err := client.VerifyNotification(notification); err != nil {
				if logg != nil {
					ctx = logg.WithField(ctx, "pf_payment_id", notification.PfPaymentID)
					logg.Warn(ctx, "discarding payfast notification with bad signature")
				}
				writeITNAck(w)
				return
			}
		}

		if err := svc.Process(ctx, notification); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeITNAck(w)
	}
}

func writeITNAck(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
