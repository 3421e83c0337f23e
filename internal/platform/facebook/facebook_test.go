package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(nil)
	if err != nil {
		t.Fatalf("parse config failed: %v", err)
	}
	if cfg.BaseURL != defaultBaseURL {
		t.Fatalf("base url want default got %s", cfg.BaseURL)
	}
	if cfg.TimeoutMS <= 0 {
		t.Fatalf("timeout should have a positive default")
	}

	cfg, err = ParseConfig(map[string]interface{}{
		"base_url":   "https://graph.example.com/v19.0/",
		"timeout_ms": 500,
	})
	if err != nil {
		t.Fatalf("parse config failed: %v", err)
	}
	if cfg.BaseURL != "https://graph.example.com/v19.0" {
		t.Fatalf("trailing slash should be trimmed, got %s", cfg.BaseURL)
	}
}

func TestCreatePostText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected post request, got %s", r.Method)
		}
		if !strings.HasSuffix(r.URL.Path, "/12345/feed") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form failed: %v", err)
		}
		if r.PostFormValue("message") != "hello world" {
			t.Fatalf("message want hello world got %s", r.PostFormValue("message"))
		}
		if r.PostFormValue("access_token") != "token-1" {
			t.Fatalf("access token not forwarded")
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": "12345_67890"})
	}))
	defer server.Close()

	cfg := &Config{BaseURL: server.URL, TimeoutMS: 2000}
	result, err := CreatePost(context.Background(), cfg, CreateInput{
		PageID:      "12345",
		AccessToken: "token-1",
		Message:     "hello world",
	})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	if result.PostID != "12345_67890" {
		t.Fatalf("post id want 12345_67890 got %s", result.PostID)
	}
}

func TestCreatePostWithMediaUsesPhotosEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/12345/photos") {
			t.Fatalf("media post should hit photos endpoint, got %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form failed: %v", err)
		}
		if r.PostFormValue("url") != "https://cdn.example.com/a.jpg" {
			t.Fatalf("media url not forwarded")
		}
		if r.PostFormValue("caption") != "look at this" {
			t.Fatalf("caption want look at this got %s", r.PostFormValue("caption"))
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": "987", "post_id": "12345_987"})
	}))
	defer server.Close()

	cfg := &Config{BaseURL: server.URL, TimeoutMS: 2000}
	result, err := CreatePost(context.Background(), cfg, CreateInput{
		PageID:      "12345",
		AccessToken: "token-1",
		Message:     "look at this",
		MediaURLs:   []string{"https://cdn.example.com/a.jpg"},
	})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	if result.PostID != "12345_987" {
		t.Fatalf("post id want 12345_987 got %s", result.PostID)
	}
}

func TestCreatePostExpiredTokenError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"message": "Error validating access token",
				"code":    190,
			},
		})
	}))
	defer server.Close()

	cfg := &Config{BaseURL: server.URL, TimeoutMS: 2000}
	_, err := CreatePost(context.Background(), cfg, CreateInput{
		PageID:      "12345",
		AccessToken: "expired",
		Message:     "hello",
	})
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected token invalid error, got %v", err)
	}
}

func TestCreatePostRequiresInput(t *testing.T) {
	cfg := &Config{BaseURL: "https://graph.example.com", TimeoutMS: 2000}
	if _, err := CreatePost(context.Background(), cfg, CreateInput{AccessToken: "t", Message: "m"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("missing page id should fail config validation, got %v", err)
	}
	if _, err := CreatePost(context.Background(), cfg, CreateInput{PageID: "1", Message: "m"}); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("missing token should fail token validation, got %v", err)
	}
}
