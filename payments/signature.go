package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrMissingSecret means the signing secret is not configured. Callers must
// treat this as a server misconfiguration and reject the request; payloads are
// never processed unsigned.
var ErrMissingSecret = errors.New("payment signature secret is not configured")

// ErrSignatureMismatch means the supplied signature does not match the one
// computed from the payload.
var ErrSignatureMismatch = errors.New("payment signature mismatch")

func ComputeSignature(message []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature checks the signature header sent by the gateway
// against an HMAC-SHA256 of the exact raw request body.
func VerifyWebhookSignature(body []byte, signature, secret string) error {
	if secret == "" {
		return ErrMissingSecret
	}
	expected := ComputeSignature(body, secret)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

// VerifyPaymentSignature checks the signature returned to the client after
// checkout, computed over "<gatewayOrderID>|<paymentID>".
func VerifyPaymentSignature(gatewayOrderID, paymentID, signature, secret string) error {
	if secret == "" {
		return ErrMissingSecret
	}
	expected := ComputeSignature([]byte(gatewayOrderID+"|"+paymentID), secret)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}
