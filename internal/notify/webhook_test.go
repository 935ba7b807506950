package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWebhook_Send(t *testing.T) {
	var got Message
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhook(srv.URL, time.Second)
	msg := &Message{
		Lead:     Lead{Name: "Ana", WhatsApp: "5531999999999"},
		Campaign: Campaign{Slug: "sabor-de-minas", ValidityDays: 30},
		Prize:    Prize{ID: "p1", Name: "Casquinha Grátis"},
		Template: "{premio}",
		Message:  "Casquinha Grátis",
	}
	if err := n.Send(context.Background(), msg); err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if contentType != "application/json" {
		t.Errorf("Expected JSON content type, got %q", contentType)
	}
	if got != *msg {
		t.Errorf("Webhook received %+v, want %+v", got, *msg)
	}
}

func TestWebhook_SendStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhook(srv.URL, time.Second).Send(context.Background(), &Message{})
	if err == nil {
		t.Fatal("Expected an error for a non-2xx response, but got nil")
	}
}

func TestNewWebhook_BlankURL(t *testing.T) {
	if _, ok := NewWebhook("   ", 0).(Noop); !ok {
		t.Error("Expected Noop notifier for a blank URL")
	}
}
