package payfast

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"net/url"
	"strings"
)

// Field is a single name/value pair in a PayFast payload. Order matters:
// PayFast signs fields in the order they appear in the form, not sorted.
type Field struct {
	Name  string
	Value string
}

// Sign computes the MD5 signature over the ordered fields. Empty values are
// skipped and the passphrase, when set, is appended last. Values are encoded
// the PHP urlencode way (spaces become '+', uppercase hex).
func Sign(fields []Field, passphrase string) string {
	var b strings.Builder
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(f.Name)
		b.WriteByte('=')
		b.WriteString(encode(f.Value))
	}
	if passphrase != "" {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString("passphrase=")
		b.WriteString(encode(passphrase))
	}

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// VerifySignature recomputes the signature over the ordered fields and
// compares it to the provided one in constant time.
func VerifySignature(fields []Field, passphrase, provided string) bool {
	expected := Sign(fields, passphrase)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(provided))) == 1
}

func encode(value string) string {
	escaped := url.QueryEscape(value)
	// QueryEscape already uses '+' for spaces and uppercase hex, matching
	// PayFast's expected encoding.
	return escaped
}
