package payments

import (
	"errors"
	"testing"
)

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1"}}}}`)

	t.Run("accepts a valid signature", func(t *testing.T) {
		sig := ComputeSignature(body, secret)
		if err := VerifyWebhookSignature(body, sig, secret); err != nil {
			t.Errorf("expected valid signature, got %v", err)
		}
	})

	t.Run("rejects a signature over a tampered body", func(t *testing.T) {
		sig := ComputeSignature(body, secret)
		tampered := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_2"}}}}`)
		err := VerifyWebhookSignature(tampered, sig, secret)
		if !errors.Is(err, ErrSignatureMismatch) {
			t.Errorf("expected ErrSignatureMismatch, got %v", err)
		}
	})

	t.Run("rejects a signature computed with the wrong secret", func(t *testing.T) {
		sig := ComputeSignature(body, "another_secret")
		err := VerifyWebhookSignature(body, sig, secret)
		if !errors.Is(err, ErrSignatureMismatch) {
			t.Errorf("expected ErrSignatureMismatch, got %v", err)
		}
	})

	t.Run("refuses to verify without a secret", func(t *testing.T) {
		sig := ComputeSignature(body, secret)
		err := VerifyWebhookSignature(body, sig, "")
		if !errors.Is(err, ErrMissingSecret) {
			t.Errorf("expected ErrMissingSecret, got %v", err)
		}
	})
}

func TestVerifyPaymentSignature(t *testing.T) {
	secret := "key_secret_test"

	t.Run("accepts the canonical order|payment string", func(t *testing.T) {
		sig := ComputeSignature([]byte("order_abc|pay_xyz"), secret)
		if err := VerifyPaymentSignature("order_abc", "pay_xyz", sig, secret); err != nil {
			t.Errorf("expected valid signature, got %v", err)
		}
	})

	t.Run("rejects a swapped payment id", func(t *testing.T) {
		sig := ComputeSignature([]byte("order_abc|pay_xyz"), secret)
		err := VerifyPaymentSignature("order_abc", "pay_other", sig, secret)
		if !errors.Is(err, ErrSignatureMismatch) {
			t.Errorf("expected ErrSignatureMismatch, got %v", err)
		}
	})

	t.Run("refuses to verify without a secret", func(t *testing.T) {
		err := VerifyPaymentSignature("order_abc", "pay_xyz", "sig", "")
		if !errors.Is(err, ErrMissingSecret) {
			t.Errorf("expected ErrMissingSecret, got %v", err)
		}
	})
}
