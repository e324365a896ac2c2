package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAppAccessTokenIsCached(t *testing.T) {
	tokenFetches := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v3/tenant_access_token/internal", func(w http.ResponseWriter, r *http.Request) {
		tokenFetches++
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": 0, "tenant_access_token": "tok-1", "expire": 7200,
		})
	})
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("unexpected authorization header %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 0})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := New(srv.URL, "app", "secret", 5*time.Second)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := client.Do(ctx, http.MethodGet, "/ping", nil, nil, nil, "ping"); err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
	}
	if tokenFetches != 1 {
		t.Fatalf("expected 1 token fetch, got %d", tokenFetches)
	}
}

func TestNonZeroCodeBecomesAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v3/tenant_access_token/internal", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": 0, "tenant_access_token": "tok", "expire": 7200,
		})
	})
	mux.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 99991, "msg": "app ticket invalid"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := New(srv.URL, "app", "secret", 5*time.Second)
	err := client.Do(context.Background(), http.MethodGet, "/boom", nil, nil, nil, "boom call")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != 99991 || apiErr.Msg != "app ticket invalid" {
		t.Fatalf("unexpected error contents: %+v", apiErr)
	}
	if apiErr.Action != "boom call" {
		t.Fatalf("unexpected action %q", apiErr.Action)
	}
}

func TestDoDecodesPayload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v3/tenant_access_token/internal", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": 0, "tenant_access_token": "tok", "expire": 7200,
		})
	})
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"data": map[string]any{"value": "hello"},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := New(srv.URL, "app", "secret", 5*time.Second)
	var out struct {
		Data struct {
			Value string `json:"value"`
		} `json:"data"`
	}
	if err := client.Do(context.Background(), http.MethodGet, "/data", nil, nil, &out, "fetch data"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if out.Data.Value != "hello" {
		t.Fatalf("unexpected payload %q", out.Data.Value)
	}
}
