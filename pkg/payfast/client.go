package payfast

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tmaseko/veldmarket-backend/pkg/config"
	pkgerrors "github.com/tmaseko/veldmarket-backend/pkg/errors"
	"github.com/tmaseko/veldmarket-backend/pkg/logger"
)

const (
	sandboxProcessURL = "https://sandbox.payfast.co.za/eng/process"
	liveProcessURL    = "https://www.payfast.co.za/eng/process"

	// PaymentStatusComplete is the ITN status that marks an order as paid.
	PaymentStatusComplete = "COMPLETE"
)

var (
	errMerchantIDRequired  = errors.New("payfast merchant id is required")
	errMerchantKeyRequired = errors.New("payfast merchant key is required")
	errLoggerRequired      = errors.New("payfast logger is required")
)

// Client builds signed PayFast checkout payloads and validates ITN posts.
type Client struct {
	merchantID  string
	merchantKey string
	passphrase  string
	sandbox     bool
	returnURL   string
	cancelURL   string
	notifyURL   string
	logger      *logger.Logger
}

// CheckoutParams carries the order data needed to build a process redirect.
type CheckoutParams struct {
	PaymentID   string
	AmountCents int64
	ItemName    string
	FirstName   string
	LastName    string
	Email       string
	OrderRef    string
}

// CheckoutPayload is the signed form the storefront posts to PayFast.
type CheckoutPayload struct {
	ProcessURL string  `json:"process_url"`
	Fields     []Field `json:"fields"`
	Signature  string  `json:"signature"`
}

// NewClient validates credentials and returns a PayFast client.
func NewClient(ctx context.Context, cfg config.PayFastConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	merchantID := strings.TrimSpace(cfg.MerchantID)
	if merchantID == "" {
		return nil, errMerchantIDRequired
	}
	merchantKey := strings.TrimSpace(cfg.MerchantKey)
	if merchantKey == "" {
		return nil, errMerchantKeyRequired
	}

	c := &Client{
		merchantID:  merchantID,
		merchantKey: merchantKey,
		passphrase:  strings.TrimSpace(cfg.Passphrase),
		sandbox:     cfg.Sandbox,
		returnURL:   strings.TrimSpace(cfg.ReturnURL),
		cancelURL:   strings.TrimSpace(cfg.CancelURL),
		notifyURL:   strings.TrimSpace(cfg.NotifyURL),
		logger:      logg,
	}

	logg.Info(logg.WithField(ctx, "sandbox", c.sandbox), "payfast client initialized")
	return c, nil
}

// ProcessURL returns the gateway endpoint for the configured environment.
func (c *Client) ProcessURL() string {
	if c == nil || c.sandbox {
		return sandboxProcessURL
	}
	return liveProcessURL
}

// Passphrase returns the configured signing passphrase.
func (c *Client) Passphrase() string {
	if c == nil {
		return ""
	}
	return c.passphrase
}

// BuildCheckout assembles and signs the ordered PayFast form fields.
func (c *Client) BuildCheckout(ctx context.Context, params CheckoutParams) (*CheckoutPayload, error) {
	if strings.TrimSpace(params.PaymentID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}
	if params.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	itemName := strings.TrimSpace(params.ItemName)
	if itemName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}

	fields := []Field{
		{Name: "merchant_id", Value: c.merchantID},
		{Name: "merchant_key", Value: c.merchantKey},
		{Name: "return_url", Value: c.returnURL},
		{Name: "cancel_url", Value: c.cancelURL},
		{Name: "notify_url", Value: c.notifyURL},
		{Name: "name_first", Value: strings.TrimSpace(params.FirstName)},
		{Name: "name_last", Value: strings.TrimSpace(params.LastName)},
		{Name: "email_address", Value: strings.TrimSpace(params.Email)},
		{Name: "m_payment_id", Value: strings.TrimSpace(params.PaymentID)},
		{Name: "amount", Value: FormatAmount(params.AmountCents)},
		{Name: "item_name", Value: itemName},
		{Name: "custom_str2", Value: strings.TrimSpace(params.OrderRef)},
	}

	signature := Sign(fields, c.passphrase)

	c.logger.Info(c.logger.WithFields(ctx, map[string]any{
		"m_payment_id": params.PaymentID,
		"amount":       FormatAmount(params.AmountCents),
		"sandbox":      c.sandbox,
	}), "payfast checkout payload built")

	return &CheckoutPayload{
		ProcessURL: c.ProcessURL(),
		Fields:     fields,
		Signature:  signature,
	}, nil
}

// FormatAmount renders cents as the rand string PayFast expects, e.g. "149.90".
func FormatAmount(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// ParseAmount converts a PayFast amount string back into cents.
func ParseAmount(value string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
