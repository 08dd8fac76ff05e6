// Package httputil provides utility functions for HTTP servers.
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starquake/kioskquiz/internal/logging"
)

const (
	base10    = 10
	int64Size = 64
)

// ErrMissingPathValue is returned when a required path value is empty.
var ErrMissingPathValue = errors.New("missing path value")

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// IDFromString parses an int64 ID from the given string.
func IDFromString(pathValue string) (int64, error) {
	if pathValue == "" {
		return 0, ErrMissingPathValue
	}
	id, err := strconv.ParseInt(pathValue, base10, int64Size)
	if err != nil {
		return 0, fmt.Errorf("error parsing %q: %w", pathValue, err)
	}

	return id, nil
}

// ParseIDFromPath parses an int64 ID from the path value with the given name.
// It returns the parsed ID and true if the parsing was successful.
// It writes a 400 JSON error if the path value is missing or cannot be parsed.
func ParseIDFromPath(w http.ResponseWriter, r *http.Request, logger *slog.Logger, name string) (int64, bool) {
	id, err := IDFromString(r.PathValue(name))
	if err != nil {
		msg := "invalid " + name
		logger.WarnContext(r.Context(), msg, logging.ErrAttr(err))
		Error(w, logger, r, http.StatusBadRequest, msg)

		return 0, false
	}

	return id, true
}

// EncodeJSON encodes v to JSON, sets status, and writes it to w.
func EncodeJSON[T any](w http.ResponseWriter, statusCode int, v T) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}

	return nil
}

// DecodeJSON decodes JSON from r.
func DecodeJSON[T any](r *http.Request) (T, error) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, fmt.Errorf("failed to decode json: %w", err)
	}

	return v, nil
}

// Error writes msg as a JSON error response with the given status.
func Error(w http.ResponseWriter, logger *slog.Logger, r *http.Request, statusCode int, msg string) {
	if err := EncodeJSON(w, statusCode, ErrorResponse{Error: msg}); err != nil {
		logger.ErrorContext(r.Context(), "error encoding error response", logging.ErrAttr(err))
	}
}
