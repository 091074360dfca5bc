package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmaseko/veldmarket-backend/internal/cart"
	"github.com/tmaseko/veldmarket-backend/internal/orders"
	"github.com/tmaseko/veldmarket-backend/pkg/db/models"
	pkgerrors "github.com/tmaseko/veldmarket-backend/pkg/errors"
	"github.com/tmaseko/veldmarket-backend/pkg/logger"
	"github.com/tmaseko/veldmarket-backend/pkg/payfast"
)

type cartStore interface {
	Load(ctx context.Context, sessionToken string) (cart.State, error)
	Delete(ctx context.Context, sessionToken string) error
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

type orderCreator interface {
	WithTx(tx *gorm.DB) *orders.Repository
}

type transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gateway interface {
	BuildCheckout(ctx context.Context, params payfast.CheckoutParams) (*payfast.CheckoutPayload, error)
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	CartStore cartStore
	UserRepo  userLoader
	OrderRepo orderCreator
	DB        transactor
	Gateway   gateway
	Logger    *logger.Logger
}

// Result bundles the persisted order with the signed gateway redirect.
type Result struct {
	Order   *orders.OrderDTO         `json:"order"`
	Payment *payfast.CheckoutPayload `json:"payment"`
}

// Service turns a session cart into a pending order plus a payment redirect.
type Service interface {
	Execute(ctx context.Context, userID uuid.UUID, sessionToken string, delivery orders.DeliveryDetails) (*Result, error)
}

type service struct {
	cartStore cartStore
	userRepo  userLoader
	orderRepo orderCreator
	db        transactor
	gateway   gateway
	logger    *logger.Logger
}

// NewService builds a checkout service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.CartStore == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart store is required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	if params.OrderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db transactor is required")
	}
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment gateway is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		cartStore: params.CartStore,
		userRepo:  params.UserRepo,
		orderRepo: params.OrderRepo,
		db:        params.DB,
		gateway:   params.Gateway,
		logger:    params.Logger,
	}, nil
}

// Execute snapshots the cart into a pending order inside a transaction,
// clears the cart, and returns the signed PayFast redirect. The cart clear
// happens after commit so a failed order leaves the cart intact.
func (s *service) Execute(ctx context.Context, userID uuid.UUID, sessionToken string, delivery orders.DeliveryDetails) (*Result, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if strings.TrimSpace(sessionToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session token is required")
	}

	state, err := s.cartStore.Load(ctx, sessionToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(state.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	firstName, lastName := "", ""
	if profile, err := s.userRepo.FindProfile(ctx, userID); err == nil {
		firstName, lastName = profile.FirstName, profile.LastName
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	input := orders.NewOrderInput{
		UserID:   userID,
		Delivery: delivery,
		Items:    snapshotItems(state.Items),
	}

	var order *models.Order
	if err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.orderRepo.WithTx(tx).Create(ctx, input)
		if err != nil {
			return err
		}
		order = created
		return nil
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	payload, err := s.gateway.BuildCheckout(ctx, payfast.CheckoutParams{
		PaymentID:   order.ID.String(),
		AmountCents: int64(order.TotalCents),
		ItemName:    itemName(state.Items),
		FirstName:   firstName,
		LastName:    lastName,
		Email:       user.Email,
		OrderRef:    order.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.cartStore.Delete(ctx, sessionToken); err != nil {
		// The order exists either way; log and carry on.
		s.logger.Warn(s.logger.WithField(ctx, "order_id", order.ID.String()), "clearing cart after checkout failed")
	}

	s.logger.Info(s.logger.WithFields(ctx, map[string]any{
		"order_id":    order.ID.String(),
		"total_cents": order.TotalCents,
		"items":       len(order.Items),
	}), "checkout executed")

	return &Result{Order: orders.DTOFromModel(order), Payment: payload}, nil
}

func snapshotItems(lines []cart.Line) []orders.NewOrderItem {
	items := make([]orders.NewOrderItem, 0, len(lines))
	for _, line := range lines {
		item := orders.NewOrderItem{
			Title:          line.Title,
			UnitPriceCents: line.UnitPriceCents,
			Qty:            line.Qty,
		}
		if line.ProductID != uuid.Nil {
			id := line.ProductID
			item.ProductID = &id
		}
		if line.Color != "" {
			color := line.Color
			item.Color = &color
		}
		if line.Size != "" {
			size := line.Size
			item.Size = &size
		}
		items = append(items, item)
	}
	return items
}

// itemName summarizes the cart for the gateway's item_name field.
func itemName(lines []cart.Line) string {
	if len(lines) == 1 {
		return lines[0].Title
	}
	return fmt.Sprintf("%s and %d more", lines[0].Title, len(lines)-1)
}
