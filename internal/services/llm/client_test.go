package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"vidscribe/internal/services"
)

func completionBody(t *testing.T, content string) []byte {
	t.Helper()
	payload := map[string]any{
		"choices": []map[string]any{
			{
				"message":       map[string]any{"content": content},
				"finish_reason": "stop",
			},
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal completion body: %v", err)
	}
	return raw
}

func TestCompleteJSONSendsPromptAndHeaders(t *testing.T) {
	var gotAuth, gotTitle string
	var gotBody chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTitle = r.Header.Get("X-Title")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write(completionBody(t, `{"summary":"ok"}`))
	}))
	defer server.Close()

	client := NewClient(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Title:   "vidscribe",
	})

	content, err := client.CompleteJSON(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if content != `{"summary":"ok"}` {
		t.Fatalf("unexpected content: %q", content)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotTitle != "vidscribe" {
		t.Fatalf("unexpected title header: %q", gotTitle)
	}
	if gotBody.Model != "test-model" {
		t.Fatalf("unexpected model: %q", gotBody.Model)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" || gotBody.Messages[1].Content != "user prompt" {
		t.Fatalf("unexpected messages: %#v", gotBody.Messages)
	}
	if gotBody.ResponseFormat["type"] != jsonResponseType {
		t.Fatalf("expected json response format, got %#v", gotBody.ResponseFormat)
	}
}

func TestCompleteJSONRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "upstream overloaded", http.StatusInternalServerError)
			return
		}
		w.Write(completionBody(t, `{"ok":true}`))
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)

	content, err := client.CompleteJSON(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if content != `{"ok":true}` {
		t.Fatalf("unexpected content: %q", content)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
	if len(slept) != 1 {
		t.Fatalf("expected one backoff sleep, got %v", slept)
	}
}

func TestCompleteJSONHonorsRetryAfter(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "3")
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		w.Write(completionBody(t, `{}`))
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)

	if _, err := client.CompleteJSON(context.Background(), "sys", "user"); err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if len(slept) != 1 || slept[0] != 3*time.Second {
		t.Fatalf("expected Retry-After delay of 3s, got %v", slept)
	}
}

func TestCompleteJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad api key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"},
		WithSleeper(func(time.Duration) {}),
	)

	_, err := client.CompleteJSON(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected single call for 401, got %d", calls.Load())
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected status in error, got %v", err)
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionBody(t, "```json\n{\"ok\": true}\n```"))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestDecodeLLMJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	cases := []struct {
		label   string
		content string
		want    string
		wantErr bool
	}{
		{label: "plain", content: `{"name":"alice"}`, want: "alice"},
		{label: "fenced", content: "```json\n{\"name\":\"bob\"}\n```", want: "bob"},
		{label: "prose wrapped", content: "Here you go: {\"name\":\"carol\"} hope that helps", want: "carol"},
		{label: "empty", content: "   ", wantErr: true},
		{label: "not json", content: "no structured data here", wantErr: true},
	}
	for _, tc := range cases {
		var got payload
		err := DecodeLLMJSON(tc.content, &got)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tc.label)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", tc.label, err)
		}
		if got.Name != tc.want {
			t.Fatalf("%s: got %q want %q", tc.label, got.Name, tc.want)
		}
	}
}
