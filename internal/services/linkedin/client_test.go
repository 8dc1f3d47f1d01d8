package linkedin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vidscribe/internal/services"
)

func TestProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer token-1" {
			t.Errorf("unexpected auth %q", auth)
		}
		if v := r.Header.Get("X-Restli-Protocol-Version"); v != "2.0.0" {
			t.Errorf("unexpected restli version %q", v)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id":                 "abc123",
			"localizedFirstName": "Ada",
			"localizedLastName":  "Lovelace",
		})
	}))
	defer server.Close()

	client, err := NewClient(Config{AccessToken: "token-1", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	profile, err := client.Profile(context.Background())
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.URN() != "urn:li:person:abc123" {
		t.Fatalf("unexpected urn %q", profile.URN())
	}
	if profile.DisplayName() != "Ada Lovelace" {
		t.Fatalf("unexpected name %q", profile.DisplayName())
	}
}

func TestCreatePost(t *testing.T) {
	var gotPayload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/ugcPosts" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "urn:li:share:42"})
	}))
	defer server.Close()

	client, err := NewClient(Config{AccessToken: "token-1", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	postID, err := client.CreatePost(context.Background(), "urn:li:person:abc123", "transcript excerpt")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if postID != "urn:li:share:42" {
		t.Fatalf("unexpected post id %q", postID)
	}
	if gotPayload["author"] != "urn:li:person:abc123" {
		t.Fatalf("unexpected author %v", gotPayload["author"])
	}
	if gotPayload["lifecycleState"] != "PUBLISHED" {
		t.Fatalf("unexpected lifecycle %v", gotPayload["lifecycleState"])
	}
}

func TestCreatePostRejectsEmptyText(t *testing.T) {
	client, err := NewClient(Config{AccessToken: "token-1"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.CreatePost(context.Background(), "urn:li:person:x", "   "); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestDoSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient(Config{AccessToken: "token-1", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.Profile(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected status in error, got %v", err)
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error for missing token")
	}
}
