package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/heartmarshall/folio/pkg/ctxutil"
)

// Recovery returns middleware that turns a handler panic into a logged
// stack trace and an INTERNAL error body. When the handler had already
// started the response only the log is written. http.ErrAbortHandler is
// re-raised so the server aborts the connection.
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				attrs := []any{
					slog.Any("error", rec),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
				}
				if signer, ok := ctxutil.SignerFromCtx(r.Context()); ok {
					attrs = append(attrs, slog.String("signer", signer.String()))
				}
				logger.ErrorContext(r.Context(), "panic recovered", attrs...)

				if rw.wroteHeader {
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal server error","code":"INTERNAL"}`))
			}()
			next.ServeHTTP(rw, r)
		})
	}
}
