package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error  string       `json:"error"`
	Code   string       `json:"code"`
	Fields []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// decode reads a JSON body into v. Unknown fields are rejected.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return false
	}
	return true
}

// pathAddress parses the named path segment as an address.
func pathAddress(w http.ResponseWriter, r *http.Request, name string) (address.Address, bool) {
	addr, err := address.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s", name), "BAD_REQUEST")
		return address.Zero, false
	}
	return addr, true
}

// classify maps an error to its HTTP status and stable code.
func classify(err error) (int, string) {
	code := domain.Code(err)
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, orDefault(code, "VALIDATION")
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, orDefault(code, "UNAUTHENTICATED")
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, orDefault(code, "FORBIDDEN")
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, orDefault(code, "NOT_FOUND")
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, orDefault(code, "ALREADY_EXISTS")
	case errors.Is(err, domain.ErrArithmetic):
		return http.StatusUnprocessableEntity, orDefault(code, "ARITHMETIC")
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func orDefault(code, fallback string) string {
	if code == "" {
		return fallback
	}
	return code
}

// handleError writes err as an error response. Internal errors are logged
// and their message is not disclosed.
func handleError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, status, "internal server error", code)
		return
	}

	resp := errorResponse{Error: err.Error(), Code: code}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		for _, fe := range ve.Errors {
			resp.Fields = append(resp.Fields, fieldError{Field: fe.Field, Message: fe.Message})
		}
	}
	writeJSON(w, status, resp)
}
