package refresher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestListUserIDs_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/api/v1/pipeline/users" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "test-key" {
			t.Errorf("missing or wrong API key header")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"user_ids": []string{"u-1", "u-2"}})
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", "test-key", server.Client())
	ids, err := c.ListUserIDs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "u-1" || ids[1] != "u-2" {
		t.Errorf("unexpected ids %v", ids)
	}
}

func TestListUserIDs_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewClient(server.URL, "bad-key", server.Client())
	_, err := c.ListUserIDs(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if want := "unexpected status 401"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q should contain %q", err.Error(), want)
	}
	if IsTemporary(err) {
		t.Error("401 should not be temporary")
	}
}

func TestGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/api/v1/recommendations/users/u-1/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected a request id")
		}
		_, _ = w.Write([]byte(`{"status":"ok","recommendations":[{"rank":1},{"rank":2}]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", server.Client())
	resp, err := c.Generate(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "ok" || len(resp.Recommendations) != 2 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestGenerate_ServiceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", server.Client())
	_, err := c.Generate(context.Background(), "u-1")
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected StatusError 503, got %v", err)
	}
	if !IsTemporary(err) {
		t.Error("503 should be temporary")
	}
}

func TestGenerate_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient(url, "test-key", &http.Client{})
	_, err := c.Generate(context.Background(), "u-1")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !IsTemporary(err) {
		t.Errorf("connection errors should be temporary, got %v", err)
	}
}

func TestIsTemporary(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"503", &StatusError{StatusCode: http.StatusServiceUnavailable}, true},
		{"429", &StatusError{StatusCode: http.StatusTooManyRequests}, true},
		{"404", &StatusError{StatusCode: http.StatusNotFound}, false},
		{"500", &StatusError{StatusCode: http.StatusInternalServerError}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTemporary(tt.err); got != tt.want {
				t.Errorf("IsTemporary() = %v, want %v", got, tt.want)
			}
		})
	}
}
