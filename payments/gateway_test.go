package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_CreateOrder(t *testing.T) {
	t.Run("posts amount in minor units and returns the gateway order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/orders" {
				t.Errorf("expected /v1/orders, got %s", r.URL.Path)
			}
			user, pass, ok := r.BasicAuth()
			if !ok || user != "rzp_test_key" || pass != "rzp_test_secret" {
				t.Errorf("unexpected basic auth: %s/%s", user, pass)
			}

			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body["amount"].(float64) != 125050 {
				t.Errorf("expected amount 125050, got %v", body["amount"])
			}
			if body["currency"].(string) != "INR" {
				t.Errorf("expected currency INR, got %v", body["currency"])
			}

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"order_gw1","amount":125050,"currency":"INR","receipt":"rcpt_1","status":"created"}`))
		}))
		defer server.Close()

		t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
		t.Setenv("RAZORPAY_KEY_SECRET", "rzp_test_secret")
		t.Setenv("RAZORPAY_BASE_URL", server.URL)

		client, err := NewClient()
		if err != nil {
			t.Fatalf("failed to build client: %v", err)
		}

		order, err := client.CreateOrder(context.Background(), 125050, "INR", "rcpt_1")
		if err != nil {
			t.Fatalf("CreateOrder failed: %v", err)
		}
		if order.ID != "order_gw1" {
			t.Errorf("expected order id order_gw1, got %s", order.ID)
		}
	})

	t.Run("surfaces non-200 responses as errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"description":"bad key"}}`))
		}))
		defer server.Close()

		t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
		t.Setenv("RAZORPAY_KEY_SECRET", "bad")
		t.Setenv("RAZORPAY_BASE_URL", server.URL)

		client, err := NewClient()
		if err != nil {
			t.Fatalf("failed to build client: %v", err)
		}

		if _, err := client.CreateOrder(context.Background(), 100, "INR", "rcpt_2"); err == nil {
			t.Error("expected error for 401 response")
		}
	})

	t.Run("fails fast without credentials", func(t *testing.T) {
		t.Setenv("RAZORPAY_KEY_ID", "")
		t.Setenv("RAZORPAY_KEY_SECRET", "")
		if _, err := NewClient(); err == nil {
			t.Error("expected error when credentials are unset")
		}
	})
}
