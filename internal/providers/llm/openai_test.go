package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"worker/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Parallel()
	if _, err := NewClient(Options{}); err != ErrMissingAPIKey {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestCompleteSendsJSONMode(t *testing.T) {
	t.Parallel()
	var captured chatRequest
	client, err := NewClient(Options{
		APIKey: "test-key",
		Model:  "gpt-4o-mini",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("authorization = %q", got)
			}
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Errorf("decode request: %v", err)
			}
			return jsonResponse(http.StatusOK, `{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	content, err := client.Complete(context.Background(), CompletionRequest{
		System:      "system prompt",
		User:        "user prompt",
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if content != `{"ok":true}` {
		t.Fatalf("content = %q", content)
	}
	if captured.Model != "gpt-4o-mini" {
		t.Fatalf("model = %q", captured.Model)
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Fatalf("response_format = %+v, want json_object", captured.ResponseFormat)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Fatalf("messages = %+v", captured.Messages)
	}
}

func TestCompleteErrorsAreProviderKind(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		resp *http.Response
	}{
		{name: "http_error", resp: jsonResponse(http.StatusTooManyRequests, `{"error":"rate limited"}`)},
		{name: "no_choices", resp: jsonResponse(http.StatusOK, `{"choices":[]}`)},
		{name: "empty_content", resp: jsonResponse(http.StatusOK, `{"choices":[{"message":{"content":"  "}}]}`)},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			client, err := NewClient(Options{
				APIKey: "test-key",
				HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
					return tc.resp, nil
				})},
			})
			if err != nil {
				t.Fatalf("NewClient returned error: %v", err)
			}
			_, err = client.Complete(context.Background(), CompletionRequest{User: "prompt"})
			if err == nil {
				t.Fatal("expected error")
			}
			if kind := domain.KindOf(err); kind != domain.KindProvider {
				t.Fatalf("kind = %q, want %q", kind, domain.KindProvider)
			}
		})
	}
}
