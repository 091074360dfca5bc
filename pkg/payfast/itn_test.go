package payfast

import (
	"strings"
	"testing"
)

func buildITNBody(passphrase string, fields []Field) string {
	var parts []string
	for _, f := range fields {
		parts = append(parts, f.Name+"="+encode(f.Value))
	}
	parts = append(parts, "signature="+Sign(fields, passphrase))
	return strings.Join(parts, "&")
}

func TestParseNotificationExtractsFields(t *testing.T) {
	fields := []Field{
		{Name: "m_payment_id", Value: "ord-42"},
		{Name: "pf_payment_id", Value: "1089250"},
		{Name: "payment_status", Value: "COMPLETE"},
		{Name: "item_name", Value: "VeldMarket order ord-42"},
		{Name: "amount_gross", Value: "199.00"},
		{Name: "custom_str2", Value: "ord-42"},
	}
	body := buildITNBody("jt7NOE43FZPn", fields)

	n, err := ParseNotification(body)
	if err != nil {
		t.Fatalf("ParseNotification returned error: %v", err)
	}

	if n.PaymentID != "ord-42" {
		t.Fatalf("PaymentID = %q", n.PaymentID)
	}
	if n.PfPaymentID != "1089250" {
		t.Fatalf("PfPaymentID = %q", n.PfPaymentID)
	}
	if !n.IsComplete() {
		t.Fatal("expected IsComplete to be true")
	}
	if n.OrderRef != "ord-42" {
		t.Fatalf("OrderRef = %q", n.OrderRef)
	}
	if n.Signature == "" {
		t.Fatal("expected signature to be captured")
	}
	if len(n.Fields) != len(fields) {
		t.Fatalf("Fields length = %d, want %d", len(n.Fields), len(fields))
	}
}

func TestParseNotificationRejectsEmptyBody(t *testing.T) {
	if _, err := ParseNotification("   "); err == nil {
		t.Fatal("expected error for empty body")
	}
}

func TestVerifyNotification(t *testing.T) {
	client := testClient(t, "jt7NOE43FZPn")

	fields := []Field{
		{Name: "m_payment_id", Value: "ord-42"},
		{Name: "payment_status", Value: "COMPLETE"},
		{Name: "amount_gross", Value: "199.00"},
	}
	body := buildITNBody(client.Passphrase(), fields)

	n, err := ParseNotification(body)
	if err != nil {
		t.Fatalf("ParseNotification returned error: %v", err)
	}
	if err := client.VerifyNotification(n); err != nil {
		t.Fatalf("VerifyNotification rejected a valid post: %v", err)
	}

	n.Signature = "0123456789abcdef0123456789abcdef"
	if err := client.VerifyNotification(n); err == nil {
		t.Fatal("expected signature mismatch error")
	}

	n.Signature = ""
	if err := client.VerifyNotification(n); err == nil {
		t.Fatal("expected missing signature error")
	}
}

func TestNotificationStatusGate(t *testing.T) {
	n := &Notification{PaymentStatus: "CANCELLED"}
	if n.IsComplete() {
		t.Fatal("CANCELLED must not count as complete")
	}
}
