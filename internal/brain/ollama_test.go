package brain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func chatServer(t *testing.T, status int, content string, seen *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" || r.Method != "POST" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if seen != nil {
			json.NewDecoder(r.Body).Decode(seen)
		}
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte("model not found"))
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"model":   "llama3.2",
			"message": map[string]string{"role": "assistant", "content": content},
			"done":    true,
		})
	}))
}

func TestOllamaGenerate(t *testing.T) {
	var body map[string]interface{}
	srv := chatServer(t, http.StatusOK, "hello", &body)
	defer srv.Close()

	p := NewOllamaProvider(srv.URL+"/", "", time.Second, 0)
	resp, err := p.Generate(context.Background(), Request{
		SystemPrompt: "sys",
		UserPrompt:   "hi",
		MaxTokens:    64,
		JSON:         true,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Content != "hello" || resp.Model != "llama3.2" {
		t.Errorf("unexpected response %+v", resp)
	}

	if body["model"] != DefaultOllamaModel {
		t.Errorf("expected default model, got %v", body["model"])
	}
	if body["format"] != "json" {
		t.Errorf("expected json format, got %v", body["format"])
	}
	if msgs, _ := body["messages"].([]interface{}); len(msgs) != 2 {
		t.Errorf("expected system and user messages, got %v", body["messages"])
	}
	if opts, _ := body["options"].(map[string]interface{}); opts["num_predict"] != float64(64) {
		t.Errorf("expected num_predict 64, got %v", body["options"])
	}
}

func TestOllamaErrorStatus(t *testing.T) {
	srv := chatServer(t, http.StatusNotFound, "", nil)
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing", time.Second, 0).Generate(context.Background(), Request{UserPrompt: "hi"})
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestOllamaRateLimit(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "ok", nil)
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "m", time.Second, 20) // one call per 50ms
	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := p.Generate(context.Background(), Request{UserPrompt: "hi"}); err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("expected calls to be spaced, took %v", elapsed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Generate(ctx, Request{UserPrompt: "hi"}); err == nil {
		t.Error("expected error on cancelled context")
	}
}
