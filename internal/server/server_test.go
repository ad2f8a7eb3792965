package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-mdrender"
	"github.com/alnah/go-mdrender/internal/assets"
	"github.com/alnah/go-mdrender/internal/config"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type panicRenderer struct{}

func (panicRenderer) Render(string) string { panic("boom") }

func testLogger() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger, err := NewLogger("debug", "text", &buf)
	if err != nil {
		panic(err)
	}
	return logger, &buf
}

func newTestServer(t *testing.T, r Renderer, mutate func(*config.ServerConfig)) *Server {
	t.Helper()

	cfg := config.DefaultConfig().Server
	if mutate != nil {
		mutate(&cfg)
	}
	logger, _ := testLogger()

	s, err := New(r, Options{Config: cfg, Logger: logger, Version: "test"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ---------------------------------------------------------------------------
// Page
// ---------------------------------------------------------------------------

func TestHandlePage_Get(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, mdrender.MustNewRenderer(mdrender.DefaultPolicy()), nil)
	rec := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{"<textarea", "Welcome to the LLM Text Renderer", `\(y = h(x)\)`, "test"} {
		if !strings.Contains(body, want) {
			t.Errorf("GET / missing %q", want)
		}
	}
	if strings.Contains(body, "<h1 id=") {
		t.Error("GET / should not render the sample")
	}
}

func TestHandlePage_Post(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, mdrender.MustNewRenderer(mdrender.DefaultPolicy()), nil)

	tests := []struct {
		name         string
		form         url.Values
		wantContains []string
		wantNot      []string
	}{
		{
			name:         "renders markdown",
			form:         url.Values{"text": {"# Title\n\n**bold**"}},
			wantContains: []string{`<h1 id="title">Title</h1>`, "<strong>bold</strong>"},
		},
		{
			name:         "raw text echoed escaped",
			form:         url.Values{"text": {"<script>alert(1)</script>hi"}},
			wantContains: []string{"&lt;script&gt;alert(1)&lt;/script&gt;hi"},
			wantNot:      []string{"<script>alert(1)"},
		},
		{
			name:         "missing field renders empty",
			form:         url.Values{"other": {"x"}},
			wantContains: []string{`<div class="markdown-body"></div>`},
		},
		{
			name:         "math delimiters reach the page",
			form:         url.Values{"text": {`\(a=b\)`}},
			wantContains: []string{`<p>\(a=b\)</p>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := do(t, s.Handler(), req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			body := rec.Body.String()
			for _, want := range tt.wantContains {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q", want)
				}
			}
			for _, notWant := range tt.wantNot {
				if strings.Contains(body, notWant) {
					t.Errorf("body should not contain %q", notWant)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// API
// ---------------------------------------------------------------------------

func TestHandleAPI(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, mdrender.MustNewRenderer(mdrender.DefaultPolicy()), nil)

	tests := []struct {
		name     string
		body     string
		wantHTML string
	}{
		{"bold and math", `{"text": "**hi** $x=1$"}`, "<p><strong>hi</strong> $x=1$</p>\n"},
		{"missing text", `{}`, ""},
		{"non-string text", `{"text": 42}`, ""},
		{"null text", `{"text": null}`, ""},
		{"malformed JSON", `{"text": `, ""},
		{"array body", `["text"]`, ""},
		{"empty body", ``, ""},
		{"script removed", `{"text": "<script>alert(1)</script>hello"}`, "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := do(t, s.Handler(), req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}

			var got apiResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
			}
			if got.HTML != tt.wantHTML {
				t.Errorf("html = %q, want %q", got.HTML, tt.wantHTML)
			}
		})
	}
}

func TestHandleAPI_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, mdrender.MustNewRenderer(mdrender.DefaultPolicy()), nil)
	rec := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/api/render", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, mdrender.MustNewRenderer(mdrender.DefaultPolicy()), func(c *config.ServerConfig) {
		c.MaxBodyBytes = 64
	})
	big := strings.Repeat("a", 1024)

	t.Run("api", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(`{"text":"`+big+`"}`))
		if rec := do(t, s.Handler(), req); rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", rec.Code)
		}
	})

	t.Run("form", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("text="+big))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if rec := do(t, s.Handler(), req); rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", rec.Code)
		}
	})
}

// ---------------------------------------------------------------------------
// Health, metrics, errors
// ---------------------------------------------------------------------------

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, mdrender.MustNewRenderer(mdrender.DefaultPolicy()), nil)
	rec := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Errorf("GET /healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, mdrender.MustNewRenderer(mdrender.DefaultPolicy()), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(`{"text":"hi"}`))
	_ = do(t, s.Handler(), req)

	rec := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`mdrender_render_total{endpoint="api"} 1`,
		"mdrender_render_duration_seconds",
		"mdrender_input_bytes",
		`mdrender_http_requests_total{code="200",method="POST"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestMetricsDisabled(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, mdrender.MustNewRenderer(mdrender.DefaultPolicy()), func(c *config.ServerConfig) {
		c.Metrics = false
	})
	if s.Metrics() != nil {
		t.Error("Metrics() should be nil when disabled")
	}

	rec := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	// Rendering still works without metrics.
	req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(`{"text":"x"}`))
	if rec := do(t, s.Handler(), req); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, mdrender.MustNewRenderer(mdrender.DefaultPolicy()), nil)
	rec := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRecoversFromPanic(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, panicRenderer{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(`{"text":"x"}`))
	rec := do(t, s.Handler(), req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRequestLogging(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	s, err := New(mdrender.MustNewRenderer(mdrender.DefaultPolicy()), Options{
		Config: config.DefaultConfig().Server,
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Reference-Id", "ref-123")
	_ = do(t, s.Handler(), req)

	out := buf.String()
	for _, want := range []string{"request served", "path=/healthz", "status=200", "X-Reference-Id=ref-123"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

// ---------------------------------------------------------------------------
// Construction and lifecycle
// ---------------------------------------------------------------------------

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, Options{}); !errors.Is(err, ErrNilRenderer) {
		t.Errorf("New(nil) error = %v, want ErrNilRenderer", err)
	}

	_, err := New(mdrender.MustNewRenderer(mdrender.DefaultPolicy()), Options{
		Page: &assets.Page{Template: "{{.Broken"},
	})
	if !errors.Is(err, ErrTemplate) {
		t.Errorf("New(bad template) error = %v, want ErrTemplate", err)
	}
}

func TestNew_CustomPage(t *testing.T) {
	t.Parallel()

	s, err := New(mdrender.MustNewRenderer(mdrender.DefaultPolicy()), Options{
		Config: config.DefaultConfig().Server,
		Page:   &assets.Page{Template: "<pre>{{.Raw}}</pre>|{{.Rendered}}", Sample: "a < b"},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	rec := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got := rec.Body.String(); got != "<pre>a &lt; b</pre>|" {
		t.Errorf("GET / = %q", got)
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, mdrender.MustNewRenderer(mdrender.DefaultPolicy()), nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		cancel()
		t.Fatalf("GET /healthz: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "ok\n" {
		t.Errorf("body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil", err)
		}
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level, format string
		wantErr       bool
	}{
		{"info", "text", false},
		{"debug", "json", false},
		{"warn", "", false},
		{"loud", "text", true},
		{"info", "xml", true},
	}
	for _, tt := range tests {
		_, err := NewLogger(tt.level, tt.format, io.Discard)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewLogger(%q, %q) error = %v, wantErr %v", tt.level, tt.format, err, tt.wantErr)
		}
	}
}

func TestNewLogger_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewLogger("info", "json", &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.WithField("k", "v").Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "hello" || entry["k"] != "v" {
		t.Errorf("entry = %v", entry)
	}
}
