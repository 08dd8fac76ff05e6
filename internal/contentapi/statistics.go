package contentapi

import (
	"log/slog"
	"net/http"

	"github.com/starquake/kioskquiz/internal/httputil"
	"github.com/starquake/kioskquiz/internal/quiz"
	"github.com/starquake/kioskquiz/internal/stats"
)

// HandleStatisticsRecord records one kiosk answer and returns the updated entry.
// Returns 400 if the body is malformed, names an unknown quiz type or a negative option.
func HandleStatisticsRecord(logger *slog.Logger, statsStore stats.Store) http.Handler {
	type recordRequest struct {
		QuizType       string `json:"quizType"`
		QuestionID     *int64 `json:"questionId"`
		SelectedAnswer *int   `json:"selectedAnswer"`
		IsCorrect      bool   `json:"isCorrect"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		req, err := httputil.DecodeJSON[recordRequest](r)
		if err != nil {
			logger.WarnContext(ctx, "error decoding recordRequest", slog.Any("err", err))
			httputil.Error(w, logger, r, http.StatusBadRequest, "Invalid answer")

			return
		}
		t, err := quiz.ParseType(req.QuizType)
		if err != nil {
			httputil.Error(w, logger, r, http.StatusBadRequest, "Unknown quiz type")

			return
		}
		if req.QuestionID == nil || req.SelectedAnswer == nil || *req.SelectedAnswer < 0 {
			httputil.Error(w, logger, r, http.StatusBadRequest, "questionId and selectedAnswer are required")

			return
		}

		e, err := statsStore.RecordAnswer(ctx, stats.Answer{
			QuizType:       t,
			QuestionID:     *req.QuestionID,
			SelectedAnswer: *req.SelectedAnswer,
			IsCorrect:      req.IsCorrect,
		})
		if err != nil {
			writeStoreError(w, r, logger, "Failed to save statistics", err)

			return
		}

		encode(w, r, logger, http.StatusOK, e)
	})
}

// HandleStatisticsList returns every statistics entry.
func HandleStatisticsList(logger *slog.Logger, statsStore stats.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entries, err := statsStore.List(r.Context())
		if err != nil {
			writeStoreError(w, r, logger, "Failed to load statistics", err)

			return
		}

		encode(w, r, logger, http.StatusOK, entries)
	})
}

// HandleStatisticsSummary returns the overall and per quiz totals.
func HandleStatisticsSummary(logger *slog.Logger, statsStore stats.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entries, err := statsStore.List(r.Context())
		if err != nil {
			writeStoreError(w, r, logger, "Failed to load statistics", err)

			return
		}

		encode(w, r, logger, http.StatusOK, stats.Summarize(entries))
	})
}
