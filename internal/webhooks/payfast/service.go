package payfast

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/tmaseko/veldmarket-backend/internal/orders"
	pkgerrors "github.com/tmaseko/veldmarket-backend/pkg/errors"
	"github.com/tmaseko/veldmarket-backend/pkg/logger"
	gateway "github.com/tmaseko/veldmarket-backend/pkg/payfast"
)

type orderService interface {
	MarkPaid(ctx context.Context, orderID uuid.UUID, paymentID string) (*orders.OrderDTO, error)
}

// ServiceParams groups dependencies for the ITN handler.
type ServiceParams struct {
	Orders orderService
	Logger *logger.Logger
}

// Service applies Instant Transaction Notifications to orders. Every outcome
// short of an internal failure is a no-op so the gateway never retries forever.
type Service struct {
	orders orderService
	logger *logger.Logger
}

// NewService builds the ITN service with the required dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order service is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Service{orders: params.Orders, logger: params.Logger}, nil
}

// Process inspects one parsed notification. Only COMPLETE payments with a
// resolvable order id transition anything; everything else is logged and
// dropped so duplicate or junk deliveries stay harmless.
func (s *Service) Process(ctx context.Context, n *gateway.Notification) error {
	if n == nil {
		return nil
	}

	ctx = s.logger.WithFields(ctx, map[string]any{
		"pf_payment_id":  n.PfPaymentID,
		"payment_status": n.PaymentStatus,
	})

	if !n.IsComplete() {
		s.logger.Info(ctx, "ignoring non-complete payment notification")
		return nil
	}

	orderID, ok := resolveOrderID(n)
	if !ok {
		s.logger.Warn(ctx, "complete notification without a usable order id")
		return nil
	}

	if _, err := s.orders.MarkPaid(ctx, orderID, n.PfPaymentID); err != nil {
		if domainErr := pkgerrors.As(err); domainErr != nil && domainErr.Code() == pkgerrors.CodeNotFound {
			s.logger.Warn(s.logger.WithField(ctx, "order_id", orderID.String()), "notification references unknown order")
			return nil
		}
		return err
	}

	return nil
}

// resolveOrderID prefers the custom order reference and falls back to the
// merchant payment id, which checkout also sets to the order id.
func resolveOrderID(n *gateway.Notification) (uuid.UUID, bool) {
	for _, candidate := range []string{n.OrderRef, n.PaymentID} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if id, err := uuid.Parse(candidate); err == nil && id != uuid.Nil {
			return id, true
		}
	}
	return uuid.Nil, false
}
