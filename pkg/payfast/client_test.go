package payfast

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"testing"

	"github.com/tmaseko/veldmarket-backend/pkg/config"
	"github.com/tmaseko/veldmarket-backend/pkg/logger"
)

func testClient(t *testing.T, passphrase string) *Client {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := NewClient(context.Background(), config.PayFastConfig{
		MerchantID:  "10000100",
		MerchantKey: "46f0cd694581a",
		Passphrase:  passphrase,
		Sandbox:     true,
		ReturnURL:   "https://shop.example/checkout/success",
		CancelURL:   "https://shop.example/checkout/cancel",
		NotifyURL:   "https://shop.example/api/webhooks/payfast",
	}, logg)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	if _, err := NewClient(context.Background(), config.PayFastConfig{MerchantKey: "k"}, logg); err == nil {
		t.Fatal("expected error when merchant id is missing")
	}
	if _, err := NewClient(context.Background(), config.PayFastConfig{MerchantID: "id"}, logg); err == nil {
		t.Fatal("expected error when merchant key is missing")
	}
	if _, err := NewClient(context.Background(), config.PayFastConfig{MerchantID: "id", MerchantKey: "k"}, nil); err == nil {
		t.Fatal("expected error when logger is nil")
	}
}

func TestProcessURLPerEnvironment(t *testing.T) {
	sandbox := testClient(t, "")
	if got := sandbox.ProcessURL(); got != "https://sandbox.payfast.co.za/eng/process" {
		t.Fatalf("sandbox process url = %q", got)
	}

	sandbox.sandbox = false
	if got := sandbox.ProcessURL(); got != "https://www.payfast.co.za/eng/process" {
		t.Fatalf("live process url = %q", got)
	}
}

func TestBuildCheckoutSignsOrderedFields(t *testing.T) {
	client := testClient(t, "jt7NOE43FZPn")

	payload, err := client.BuildCheckout(context.Background(), CheckoutParams{
		PaymentID:   "ord-123",
		AmountCents: 14990,
		ItemName:    "VeldMarket order ord-123",
		FirstName:   "Thandi",
		Email:       "thandi@example.com",
		OrderRef:    "ord-123",
	})
	if err != nil {
		t.Fatalf("BuildCheckout returned error: %v", err)
	}

	if payload.ProcessURL != "https://sandbox.payfast.co.za/eng/process" {
		t.Fatalf("unexpected process url %q", payload.ProcessURL)
	}

	var amount, paymentID string
	for _, f := range payload.Fields {
		switch f.Name {
		case "amount":
			amount = f.Value
		case "m_payment_id":
			paymentID = f.Value
		}
	}
	if amount != "149.90" {
		t.Fatalf("amount = %q, want 149.90", amount)
	}
	if paymentID != "ord-123" {
		t.Fatalf("m_payment_id = %q", paymentID)
	}

	if got := Sign(payload.Fields, client.Passphrase()); got != payload.Signature {
		t.Fatalf("signature mismatch: payload %q recomputed %q", payload.Signature, got)
	}
}

func TestBuildCheckoutValidation(t *testing.T) {
	client := testClient(t, "")

	if _, err := client.BuildCheckout(context.Background(), CheckoutParams{AmountCents: 100, ItemName: "x"}); err == nil {
		t.Fatal("expected error for missing payment id")
	}
	if _, err := client.BuildCheckout(context.Background(), CheckoutParams{PaymentID: "p", ItemName: "x"}); err == nil {
		t.Fatal("expected error for non-positive amount")
	}
	if _, err := client.BuildCheckout(context.Background(), CheckoutParams{PaymentID: "p", AmountCents: 100}); err == nil {
		t.Fatal("expected error for missing item name")
	}
}

func TestSignMatchesManualDigest(t *testing.T) {
	fields := []Field{
		{Name: "merchant_id", Value: "10000100"},
		{Name: "amount", Value: "100.00"},
		{Name: "item_name", Value: "Test Item"},
	}

	sum := md5.Sum([]byte("merchant_id=10000100&amount=100.00&item_name=Test+Item&passphrase=secret"))
	want := hex.EncodeToString(sum[:])

	if got := Sign(fields, "secret"); got != want {
		t.Fatalf("Sign = %q, want %q", got, want)
	}
	if !VerifySignature(fields, "secret", want) {
		t.Fatal("VerifySignature rejected a valid signature")
	}
	if VerifySignature(fields, "secret", "deadbeef") {
		t.Fatal("VerifySignature accepted a bogus signature")
	}
}

func TestSignSkipsEmptyValues(t *testing.T) {
	withEmpty := []Field{
		{Name: "merchant_id", Value: "10000100"},
		{Name: "name_last", Value: ""},
		{Name: "amount", Value: "10.00"},
	}
	without := []Field{
		{Name: "merchant_id", Value: "10000100"},
		{Name: "amount", Value: "10.00"},
	}
	if Sign(withEmpty, "") != Sign(without, "") {
		t.Fatal("empty fields should not affect the signature")
	}
}

func TestAmountRoundTrip(t *testing.T) {
	if got := FormatAmount(9); got != "0.09" {
		t.Fatalf("FormatAmount(9) = %q", got)
	}
	if got := FormatAmount(100000); got != "1000.00" {
		t.Fatalf("FormatAmount(100000) = %q", got)
	}

	cents, err := ParseAmount("149.90")
	if err != nil {
		t.Fatalf("ParseAmount returned error: %v", err)
	}
	if cents != 14990 {
		t.Fatalf("ParseAmount = %d, want 14990", cents)
	}

	if _, err := ParseAmount("not-a-number"); err == nil {
		t.Fatal("expected error for invalid amount")
	}
}
