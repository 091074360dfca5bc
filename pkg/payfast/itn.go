package payfast

import (
	"net/url"
	"strings"

	pkgerrors "github.com/tmaseko/veldmarket-backend/pkg/errors"
)

// Notification is the subset of an Instant Transaction Notification the
// platform acts on.
type Notification struct {
	PaymentID     string
	PfPaymentID   string
	PaymentStatus string
	ItemName      string
	AmountGross   string
	OrderRef      string
	Signature     string

	// Fields preserves the post body ordering, signature excluded, so the
	// signature can be recomputed exactly as PayFast built it.
	Fields []Field
}

// IsComplete reports whether the notification marks a successful payment.
func (n *Notification) IsComplete() bool {
	return n != nil && n.PaymentStatus == PaymentStatusComplete
}

// ParseNotification decodes a raw ITN post body. The body is parsed by hand
// rather than via url.Values because field order feeds the signature check.
func ParseNotification(rawBody string) (*Notification, error) {
	rawBody = strings.TrimSpace(rawBody)
	if rawBody == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "empty notification body")
	}

	n := &Notification{}
	for _, pair := range strings.Split(rawBody, "&") {
		if pair == "" {
			continue
		}
		name, encoded, _ := strings.Cut(pair, "=")
		value, err := url.QueryUnescape(encoded)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed notification field")
		}

		switch name {
		case "signature":
			n.Signature = value
			continue
		case "m_payment_id":
			n.PaymentID = value
		case "pf_payment_id":
			n.PfPaymentID = value
		case "payment_status":
			n.PaymentStatus = value
		case "item_name":
			n.ItemName = value
		case "amount_gross":
			n.AmountGross = value
		case "custom_str2":
			n.OrderRef = value
		}
		n.Fields = append(n.Fields, Field{Name: name, Value: value})
	}

	return n, nil
}

// VerifyNotification checks the ITN signature against the client passphrase.
func (c *Client) VerifyNotification(n *Notification) error {
	if n == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification is required")
	}
	if n.Signature == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "notification signature missing")
	}
	if !VerifySignature(n.Fields, c.passphrase, n.Signature) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "notification signature mismatch")
	}
	return nil
}
