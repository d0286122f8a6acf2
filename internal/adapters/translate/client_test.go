package translate_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"hoteldir/internal/adapters/translate"
)

func TestClient_Translate_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["source"] != "es" || in["target"] != "en" || in["q"] != "Cerca del parque" {
			t.Errorf("unexpected request: %+v", in)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"translations": []map[string]string{{"translatedText": "Near the park &amp; lake"}}},
		})
	}))
	defer ts.Close()

	cl, err := translate.New(ts.URL, "test-key", time.Second, 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got, err := cl.Translate(context.Background(), "Cerca del parque", "es", "en")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != "Near the park & lake" {
		t.Fatalf("got %q", got)
	}
}

func TestClient_Translate_NoRetryOn5xx(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	cl, _ := translate.New(ts.URL, "k", time.Second, 100)
	if _, err := cl.Translate(context.Background(), "hola", "es", "en"); err == nil {
		t.Fatalf("expected error for 503")
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected a single attempt, got %d", n)
	}
}

func TestClient_Translate_StatusMapping(t *testing.T) {
	for status, want := range map[int]error{
		http.StatusForbidden:       translate.ErrUnauthorized,
		http.StatusTooManyRequests: translate.ErrQuota,
	} {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(status) }))
		cl, _ := translate.New(ts.URL, "k", time.Second, 100)
		_, err := cl.Translate(context.Background(), "hola", "es", "en")
		ts.Close()
		if !errors.Is(err, want) {
			t.Fatalf("status %d: got %v, want %v", status, err, want)
		}
	}
}

func TestClient_Translate_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer ts.Close()

	cl, _ := translate.New(ts.URL, "k", 50*time.Millisecond, 100)
	if _, err := cl.Translate(context.Background(), "hola", "es", "en"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
