package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, Output: &buf})
	l.Info("hello")
	if !strings.Contains(buf.String(), "component=http") {
		t.Fatalf("missing component in %q", buf.String())
	}

	buf.Reset()
	l.With(FieldRequestID, "req-7").WithComponent(ComponentBackend).
		LogError(context.Background(), "boom", errors.New("disk"), OpAppend, nil)
	out := buf.String()
	for _, want := range []string{"component=backend", "request_id=req-7", "error=disk", "operation=append"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
	if strings.Contains(out, "component=http") {
		t.Errorf("the previous component must be replaced, got %q", out)
	}
}

func TestMiddlewareCarriesLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, Output: &buf}).
		With(NewFields().WithRequestID("req-42").ToSlice()...)

	h := Middleware(base)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			LogRecordsSaved(r.Context(), "Gekookt", "Beide", 2, "sqlite:1-2")
		}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))

	out := buf.String()
	for _, want := range []string{"request_id=req-42", "activity=Gekookt", "records=2", "row_ref=sqlite:1-2"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("unexpected fallback logger %+v", l)
	}
}
