package openai

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stupiduntilnot/codemate/internal/conversation"
)

func testClient(chatURL, imageURL string) *Client {
	return NewClient("test-key", chatURL, imageURL, "test-chat-model", "test-image-model", 5*time.Second)
}

func TestChatCompletion_Success(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Hello!"}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := testClient(server.URL, server.URL)
	content, err := client.ChatCompletion([]conversation.Turn{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "hi"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if content != "Hello!" {
		t.Fatalf("expected 'Hello!', got %q", content)
	}
	if gotReq.Model != "test-chat-model" {
		t.Errorf("unexpected model: %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("unexpected messages: %+v", gotReq.Messages)
	}
	if gotReq.MaxTokens != 1000 {
		t.Errorf("unexpected max_tokens: %d", gotReq.MaxTokens)
	}
}

func TestChatCompletion_RateLimitClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	client := testClient(server.URL, server.URL)
	_, err := client.ChatCompletion([]conversation.Turn{{Role: "user", Content: "hi"}})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Kind != KindRateLimited {
		t.Fatalf("expected rate_limited, got %s", apiErr.Kind)
	}
}

func TestChatCompletion_AuthClassified(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		client := testClient(server.URL, server.URL)
		_, err := client.ChatCompletion([]conversation.Turn{{Role: "user", Content: "hi"}})
		server.Close()

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("status %d: expected APIError, got %v", status, err)
		}
		if apiErr.Kind != KindAuthFailed {
			t.Fatalf("status %d: expected auth_failed, got %s", status, apiErr.Kind)
		}
	}
}

func TestChatCompletion_ServerErrorIsOther(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(server.URL, server.URL)
	_, err := client.ChatCompletion([]conversation.Turn{{Role: "user", Content: "hi"}})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Kind != KindOther {
		t.Fatalf("expected other, got %s", apiErr.Kind)
	}
}

func TestChatCompletion_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := testClient(server.URL, server.URL)
	_, err := client.ChatCompletion([]conversation.Turn{{Role: "user", Content: "hi"}})
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestGenerateImage_Success(t *testing.T) {
	var gotReq imageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		resp := map[string]any{
			"data": []map[string]any{
				{"url": "https://img.example/out.png"},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := testClient(server.URL, server.URL)
	url, err := client.GenerateImage("a cat, high quality, detailed", "1024x1024")
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://img.example/out.png" {
		t.Fatalf("unexpected url: %q", url)
	}
	if gotReq.Model != "test-image-model" {
		t.Errorf("unexpected model: %q", gotReq.Model)
	}
	if gotReq.N != 1 {
		t.Errorf("expected exactly one image requested, got n=%d", gotReq.N)
	}
	if gotReq.Size != "1024x1024" {
		t.Errorf("unexpected size: %q", gotReq.Size)
	}
}

func TestGenerateImage_NoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := testClient(server.URL, server.URL)
	_, err := client.GenerateImage("a cat", "512x512")
	if err == nil {
		t.Fatal("expected error for empty data")
	}
}
