package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func signPayload(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	client := NewRazorpayClient("rzp_test_key", "secret123")

	t.Run("valid signature", func(t *testing.T) {
		sig := signPayload("secret123", "order_abc", "pay_xyz")
		if err := client.VerifySignature("order_abc", "pay_xyz", sig); err != nil {
			t.Fatalf("VerifySignature failed: %v", err)
		}
	})

	t.Run("tampered signature", func(t *testing.T) {
		err := client.VerifySignature("order_abc", "pay_xyz", "deadbeef")
		if !errors.Is(err, ErrSignatureInvalid) {
			t.Fatalf("expected ErrSignatureInvalid, got %v", err)
		}
	})

	t.Run("signature for a different payment", func(t *testing.T) {
		sig := signPayload("secret123", "order_abc", "pay_other")
		err := client.VerifySignature("order_abc", "pay_xyz", sig)
		if !errors.Is(err, ErrSignatureInvalid) {
			t.Fatalf("expected ErrSignatureInvalid, got %v", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		sig := signPayload("othersecret", "order_abc", "pay_xyz")
		err := client.VerifySignature("order_abc", "pay_xyz", sig)
		if !errors.Is(err, ErrSignatureInvalid) {
			t.Fatalf("expected ErrSignatureInvalid, got %v", err)
		}
	})
}

func TestCreateOrder(t *testing.T) {
	t.Run("successful order", func(t *testing.T) {
		var got createOrderRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/orders" {
				t.Errorf("path = %s, want /v1/orders", r.URL.Path)
			}
			user, pass, ok := r.BasicAuth()
			if !ok || user != "rzp_test_key" || pass != "secret123" {
				t.Error("missing or wrong basic auth credentials")
			}
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Fatalf("failed to decode order request: %v", err)
			}
			json.NewEncoder(w).Encode(Order{
				ID:       "order_abc",
				Amount:   got.Amount,
				Currency: got.Currency,
				Receipt:  got.Receipt,
				Status:   "created",
			})
		}))
		defer server.Close()

		client := NewRazorpayClient("rzp_test_key", "secret123")
		client.baseURL = server.URL

		order, err := client.CreateOrder(context.Background(), 53050, "INR", map[string]string{"bill_id": "7"})
		if err != nil {
			t.Fatalf("CreateOrder failed: %v", err)
		}
		if order.ID != "order_abc" || order.Amount != 53050 || order.Currency != "INR" {
			t.Errorf("order = %+v", order)
		}
		if got.Amount != 53050 || got.Currency != "INR" || got.PaymentCapture != 1 {
			t.Errorf("request payload = %+v", got)
		}
		if got.Receipt == "" {
			t.Error("expected a generated receipt")
		}
		if got.Notes["bill_id"] != "7" {
			t.Errorf("notes = %v, want bill_id 7", got.Notes)
		}
	})

	t.Run("gateway rejects the order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"description":"Authentication failed"}}`))
		}))
		defer server.Close()

		client := NewRazorpayClient("bad_key", "bad_secret")
		client.baseURL = server.URL

		_, err := client.CreateOrder(context.Background(), 100, "INR", nil)
		if err == nil {
			t.Fatal("expected an error from a rejected order")
		}
		var httpErr *httpError
		if !errors.As(err, &httpErr) {
			t.Fatalf("expected httpError, got %T: %v", err, err)
		}
		if httpErr.Status != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", httpErr.Status, http.StatusUnauthorized)
		}
	})
}
