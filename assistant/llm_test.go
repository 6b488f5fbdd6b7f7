package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/assetflow/assetflow_backend/utils"
)

func completionBody(content string) string {
	b, _ := json.Marshal(chatResponse{Choices: []struct {
		Message chatMessage `json:"message"`
	}{{Message: chatMessage{Role: "assistant", Content: content}}}})
	return string(b)
}

func TestInterpret(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(completionBody(`{"action":"search_device","query":"SN-42","reply":"Looking it up."}`)))
	}))
	defer server.Close()

	client := NewLLMClientWith(server.URL, "key", "test-model", server.Client())
	action, err := client.Interpret(context.Background(), nil, "where is SN-42?")
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if action.Name != ActionSearchDevice || action.Query != "SN-42" {
		t.Errorf("action = %+v", action)
	}
}

func TestInterpretRetriesOn503(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(completionBody(`{"action":"greeting","reply":"Hi"}`)))
	}))
	defer server.Close()

	client := NewLLMClientWith(server.URL, "key", "test-model", server.Client())
	action, err := client.Interpret(context.Background(), nil, "hello")
	if err != nil {
		t.Fatalf("Interpret after retries: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if action.Name != ActionGreeting {
		t.Errorf("action = %+v", action)
	}
}

func TestInterpretGivesUpAfterThree503s(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewLLMClientWith(server.URL, "key", "test-model", server.Client())
	_, err := client.Interpret(context.Background(), nil, "hello")
	if !errors.Is(err, utils.ErrorExternalError) {
		t.Fatalf("err = %v, want external-error", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestInterpretBadRequestNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewLLMClientWith(server.URL, "key", "test-model", server.Client())
	_, err := client.Interpret(context.Background(), nil, "hello")
	if !errors.Is(err, utils.ErrorExternalError) {
		t.Fatalf("err = %v, want external-error", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestInterpretProseBecomesUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("I'm not sure what you mean.")))
	}))
	defer server.Close()

	client := NewLLMClientWith(server.URL, "key", "test-model", server.Client())
	action, err := client.Interpret(context.Background(), nil, "???")
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if action.Name != ActionUnknown || action.Reply == "" {
		t.Errorf("action = %+v", action)
	}
}
