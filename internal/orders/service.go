package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmaseko/veldmarket-backend/pkg/db/models"
	pkgerrors "github.com/tmaseko/veldmarket-backend/pkg/errors"
	"github.com/tmaseko/veldmarket-backend/pkg/logger"
)

type repository interface {
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.Order, int64, string, error)
	ListAll(ctx context.Context, cursor string, limit int) ([]models.Order, int64, string, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, paymentID string) (*models.Order, error)
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	OrderRepo repository
	Logger    *logger.Logger
}

// Service exposes read and payment-transition operations over orders.
// Order creation happens inside the checkout flow, not here.
type Service interface {
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	ListOrders(ctx context.Context, userID uuid.UUID, cursor string, limit int) (ListPage, error)
	ListAllOrders(ctx context.Context, cursor string, limit int) (ListPage, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, paymentID string) (*OrderDTO, error)
}

type service struct {
	orderRepo repository
	logger    *logger.Logger
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.OrderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		orderRepo: params.OrderRepo,
		logger:    params.Logger,
	}, nil
}

// GetOrder loads one order scoped to its owner.
func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID {
		// Do not leak existence of other users' orders.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return DTOFromModel(order), nil
}

// ListOrders returns one cursor page of the caller's order history.
func (s *service) ListOrders(ctx context.Context, userID uuid.UUID, cursor string, limit int) (ListPage, error) {
	if userID == uuid.Nil {
		return ListPage{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	records, total, nextCursor, err := s.orderRepo.ListByUser(ctx, userID, cursor, limit)
	if err != nil {
		return ListPage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return buildPage(records, total, nextCursor), nil
}

// ListAllOrders returns one cursor page across every order. Role checks live
// in the route middleware.
func (s *service) ListAllOrders(ctx context.Context, cursor string, limit int) (ListPage, error) {
	records, total, nextCursor, err := s.orderRepo.ListAll(ctx, cursor, limit)
	if err != nil {
		return ListPage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list all orders")
	}
	return buildPage(records, total, nextCursor), nil
}

// MarkPaid transitions the order to paid, keeping the first recorded payment
// id. Safe to call repeatedly for the same order.
func (s *service) MarkPaid(ctx context.Context, orderID uuid.UUID, paymentID string) (*OrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	order, err := s.orderRepo.MarkPaid(ctx, orderID, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
	}

	ctx = s.logger.WithFields(ctx, map[string]any{
		"order_id":   order.ID.String(),
		"payment_id": paymentID,
	})
	s.logger.Info(ctx, "order marked paid")

	return DTOFromModel(order), nil
}

func buildPage(records []models.Order, total int64, nextCursor string) ListPage {
	page := ListPage{
		Orders:     make([]OrderDTO, 0, len(records)),
		Total:      total,
		NextCursor: nextCursor,
	}
	for i := range records {
		page.Orders = append(page.Orders, *DTOFromModel(&records[i]))
	}
	return page
}
