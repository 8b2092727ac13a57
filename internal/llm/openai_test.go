// internal/llm/openai_test.go
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func completionBody(content string) string {
	return `{"choices": [{"message": {"content": "` + content + `"}}]}`
}

func newTestClient(url string) *Client {
	return NewClient(ClientConfig{
		APIKey:  "test-key",
		Model:   "test-model",
		BaseURL: url,
		Timeout: 5 * time.Second,
	})
}

func TestComplete(t *testing.T) {
	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(completionBody("  a fine argument  ")))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Complete(context.Background(), Request{
		System:      "be a scientist",
		Prompt:      "argue",
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "a fine argument" {
		t.Errorf("content = %q", got)
	}

	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Errorf("messages = %+v", captured.Messages)
	}
	if captured.Model != "test-model" || captured.Temperature != 0.7 {
		t.Errorf("request = %+v", captured)
	}
}

func TestCompleteRetriesRateLimit(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(completionBody("after backoff")))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Complete(context.Background(), Request{Prompt: "argue"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "after backoff" {
		t.Errorf("content = %q", got)
	}
	if calls != 2 {
		t.Errorf("server saw %d calls, want 2", calls)
	}
}

func TestCompleteErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantKind ErrorKind
	}{
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			wantKind: KindRefused,
		},
		{
			name: "refusal field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"choices": [{"message": {"content": "", "refusal": "cannot comply"}}]}`))
			},
			wantKind: KindRefused,
		},
		{
			name: "api error payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error": {"message": "billing hard limit", "type": "insufficient_quota"}}`))
			},
			wantKind: KindRefused,
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"choices": []}`))
			},
			wantKind: KindMalformed,
		},
		{
			name: "empty completion",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(completionBody("   ")))
			},
			wantKind: KindMalformed,
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
			wantKind: KindMalformed,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantKind: KindMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newTestClient(srv.URL).Complete(context.Background(), Request{Prompt: "argue"})
			var genErr *GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("want GenerationError, got %v", err)
			}
			if genErr.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", genErr.Kind, tt.wantKind)
			}
		})
	}
}

func TestCompleteTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the client hanging up;
		// otherwise the request context never cancels and Close hangs
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{
		APIKey:  "test-key",
		Model:   "test-model",
		BaseURL: srv.URL,
		Timeout: 50 * time.Millisecond,
	})

	_, err := c.Complete(context.Background(), Request{Prompt: "argue"})
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("want GenerationError, got %v", err)
	}
	if genErr.Kind != KindTimeout {
		t.Errorf("kind = %s, want %s", genErr.Kind, KindTimeout)
	}
}

func TestGenerationErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &GenerationError{Kind: KindTimeout, Err: inner}
	if !errors.Is(err, inner) {
		t.Error("GenerationError does not unwrap")
	}
	if err.Error() == "" {
		t.Error("empty error string")
	}
}
