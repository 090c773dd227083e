package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dtnitsch/geo-audit/models"
)

func testRequest() models.AuditRequest {
	title := "Acme"
	return models.AuditRequest{
		TargetLabel: "Acme Inc",
		Domain:      models.DomainInfo{Host: "www.acme.com", RegistrableDomain: "acme.com", Subdomain: "www", PublicSuffix: "com"},
		Pages:       []models.PageSignal{{URL: "https://www.acme.com", Title: &title, SchemaBlockCount: 1}},
		Model:       "gpt-4o-mini",
		Credentials: "sk-test",
	}
}

func newDispatcher(ts *httptest.Server) *Dispatcher {
	return NewDispatcher(Options{
		BaseURL:    ts.URL + "/v1",
		HTTPClient: ts.Client(),
	})
}

func TestDispatch_Success(t *testing.T) {
	var gotPath, gotAuth string
	var body map[string]any

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"REPORT"}}]}`)
	}))
	defer ts.Close()

	report, err := newDispatcher(ts).Dispatch(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if report != "REPORT" {
		t.Errorf("report = %q, want REPORT", report)
	}
	if gotPath != "/v1/chat/completions" {
		t.Errorf("path = %q, want /v1/chat/completions", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q, want Bearer sk-test", gotAuth)
	}
	if body["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v, want gpt-4o-mini", body["model"])
	}
	if body["max_tokens"] != float64(models.DefaultMaxTokens) {
		t.Errorf("max_tokens = %v, want %d", body["max_tokens"], models.DefaultMaxTokens)
	}
	if body["temperature"] != 0.3 {
		t.Errorf("temperature = %v, want 0.3", body["temperature"])
	}
	if stream, ok := body["stream"]; ok && stream != false {
		t.Errorf("stream = %v, want false or absent", stream)
	}

	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(msgs))
	}
	first, _ := msgs[0].(map[string]any)
	second, _ := msgs[1].(map[string]any)
	if first["role"] != "system" || second["role"] != "user" {
		t.Errorf("roles = %v/%v, want system/user", first["role"], second["role"])
	}
	if content, _ := second["content"].(string); !strings.Contains(content, "Company: Acme Inc") {
		t.Errorf("user prompt missing target label: %q", content)
	}
}

func TestDispatch_TemperatureAlwaysSent(t *testing.T) {
	zero := float32(0)
	tests := []struct {
		name        string
		temperature *float32
		check       func(float64) bool
	}{
		{name: "default", temperature: nil, check: func(v float64) bool { return v == models.DefaultTemperature }},
		{name: "explicit zero", temperature: &zero, check: func(v float64) bool { return v > 0 && v < 1e-30 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				raw, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(raw, &body)
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"REPORT"}}]}`)
			}))
			defer ts.Close()

			d := NewDispatcher(Options{BaseURL: ts.URL + "/v1", HTTPClient: ts.Client(), Temperature: tt.temperature})
			if _, err := d.Dispatch(context.Background(), testRequest()); err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			raw, ok := body["temperature"]
			if !ok {
				t.Fatalf("request body has no temperature: %v", body)
			}
			v, _ := raw.(float64)
			if !tt.check(v) {
				t.Errorf("temperature = %v", raw)
			}
		})
	}
}

func TestDispatch_RateLimitedCarriesStatus(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "json error body", body: `{"error":{"message":"Rate limit reached","type":"rate_limit_error"}}`},
		{name: "plain text body", body: `too many requests`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer ts.Close()

			report, err := newDispatcher(ts).Dispatch(context.Background(), testRequest())
			if report != "" {
				t.Errorf("report = %q, want empty on failure", report)
			}
			var derr *DispatchError
			if !errors.As(err, &derr) {
				t.Fatalf("error = %v, want *DispatchError", err)
			}
			if derr.StatusCode != http.StatusTooManyRequests {
				t.Errorf("StatusCode = %d, want 429", derr.StatusCode)
			}
			if derr.Message == "" {
				t.Error("Message is empty, want diagnostic")
			}
		})
	}
}

func TestDispatch_MalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<html>gateway</html>`},
		{name: "no choices", body: `{"choices":[]}`},
		{name: "empty content", body: `{"choices":[{"message":{"content":""}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, tt.body)
			}))
			defer ts.Close()

			_, err := newDispatcher(ts).Dispatch(context.Background(), testRequest())
			var derr *DispatchError
			if !errors.As(err, &derr) {
				t.Fatalf("error = %v, want *DispatchError", err)
			}
			if derr.StatusCode != http.StatusOK {
				t.Errorf("StatusCode = %d, want 200", derr.StatusCode)
			}
		})
	}
}

func TestDispatch_NetworkErrorHasNoStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	d := newDispatcher(ts)
	ts.Close()

	_, err := d.Dispatch(context.Background(), testRequest())
	var derr *DispatchError
	if !errors.As(err, &derr) {
		t.Fatalf("error = %v, want *DispatchError", err)
	}
	if derr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", derr.StatusCode)
	}
}

func TestDispatch_MissingCredentials(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	req := testRequest()
	req.Credentials = ""
	_, err := newDispatcher(ts).Dispatch(context.Background(), req)
	if !errors.Is(err, ErrCredentialMissing) {
		t.Errorf("error = %v, want ErrCredentialMissing", err)
	}
	if called {
		t.Error("endpoint was called without credentials")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate(strings.Repeat("x", 20), 5); got != "xxxxx..." {
		t.Errorf("truncate() = %q, want xxxxx...", got)
	}
}
