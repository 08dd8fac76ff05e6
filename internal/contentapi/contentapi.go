// Package contentapi provides the HTTP handlers for quiz content, answer statistics and exhibit materials.
package contentapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/starquake/kioskquiz/internal/httputil"
	"github.com/starquake/kioskquiz/internal/logging"
	"github.com/starquake/kioskquiz/internal/material"
	"github.com/starquake/kioskquiz/internal/quiz"
)

// writeStoreError maps a store error to its status code and writes it as a JSON error.
func writeStoreError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	switch {
	case errors.Is(err, quiz.ErrUnknownType), errors.Is(err, quiz.ErrQuizNotFound):
		httputil.Error(w, logger, r, http.StatusNotFound, "Quiz not found")
	case errors.Is(err, quiz.ErrQuestionNotFound):
		httputil.Error(w, logger, r, http.StatusNotFound, "Question not found")
	case errors.Is(err, material.ErrMaterialNotFound):
		httputil.Error(w, logger, r, http.StatusNotFound, "Material not found")
	case errors.Is(err, material.ErrIDConflict):
		httputil.Error(w, logger, r, http.StatusBadRequest, err.Error())
	default:
		logger.ErrorContext(r.Context(), msg, logging.ErrAttr(err))
		httputil.Error(w, logger, r, http.StatusInternalServerError, msg)
	}
}

// parseType reads the quiz type from the path. Unknown types are reported as a missing quiz.
func parseType(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (quiz.Type, bool) {
	t, err := quiz.ParseType(r.PathValue("type"))
	if err != nil {
		httputil.Error(w, logger, r, http.StatusNotFound, "Quiz not found")

		return "", false
	}

	return t, true
}

func encode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, statusCode int, v T) {
	if err := httputil.EncodeJSON(w, statusCode, v); err != nil {
		logger.ErrorContext(r.Context(), "error encoding response", logging.ErrAttr(err))
	}
}
