package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/heartmarshall/folio/pkg/ctxutil"
)

const internalBody = `{"error":"internal server error","code":"INTERNAL"}`

func TestRecovery(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantCode int
		wantBody string
		wantLog  []string
	}{
		{
			name:     "no panic",
			handler:  func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) },
			wantCode: http.StatusAccepted,
		},
		{
			name:     "panic with string",
			handler:  func(http.ResponseWriter, *http.Request) { panic("ledger exploded") },
			wantCode: http.StatusInternalServerError,
			wantBody: internalBody,
			wantLog:  []string{"panic recovered", "ledger exploded", "req-42", "stack="},
		},
		{
			name: "panic after the response started",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"partial":`))
				panic("mid-write")
			},
			wantCode: http.StatusCreated,
			wantBody: `{"partial":`,
			wantLog:  []string{"mid-write"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			req := httptest.NewRequest(http.MethodPost, "/v1/books", nil)
			req = req.WithContext(ctxutil.WithRequestID(req.Context(), "req-42"))
			rec := httptest.NewRecorder()
			Recovery(logger)(tt.handler).ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
			for _, want := range tt.wantLog {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("log missing %q: %s", want, buf.String())
				}
			}
			if len(tt.wantLog) == 0 && buf.Len() != 0 {
				t.Errorf("unexpected log output: %s", buf.String())
			}
		})
	}
}

func TestRecovery_SetsJSONContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	Recovery(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestRecovery_RepanicsOnAbort(t *testing.T) {
	handler := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	})

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("recovered %v, want http.ErrAbortHandler", rec)
		}
	}()
	Recovery(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	t.Error("expected panic to propagate")
}
