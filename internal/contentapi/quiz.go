package contentapi

import (
	"log/slog"
	"net/http"

	"github.com/starquake/kioskquiz/internal/httputil"
	"github.com/starquake/kioskquiz/internal/quiz"
)

// HandleQuizGet returns the whole quiz document.
// Returns 404 if the quiz type is unknown or the quiz has no document yet.
func HandleQuizGet(logger *slog.Logger, quizStore quiz.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t, ok := parseType(w, r, logger)
		if !ok {
			return
		}

		qz, err := quizStore.GetQuiz(r.Context(), t)
		if err != nil {
			writeStoreError(w, r, logger, "Failed to load quiz", err)

			return
		}

		encode(w, r, logger, http.StatusOK, qz)
	})
}

// HandleQuizReplace overwrites the whole quiz document with the request body and echoes it back.
func HandleQuizReplace(logger *slog.Logger, quizStore quiz.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t, ok := parseType(w, r, logger)
		if !ok {
			return
		}

		qz, err := httputil.DecodeJSON[*quiz.Quiz](r)
		if err != nil || qz == nil {
			logger.WarnContext(r.Context(), "error decoding quiz", slog.Any("err", err))
			httputil.Error(w, logger, r, http.StatusBadRequest, "Invalid quiz")

			return
		}
		if qz.Questions == nil {
			qz.Questions = []*quiz.Question{}
		}
		for _, qs := range qz.Questions {
			if qs != nil {
				warnInvalid(r, logger, t, qs)
			}
		}

		saved, err := quizStore.ReplaceQuiz(r.Context(), t, qz)
		if err != nil {
			writeStoreError(w, r, logger, "Failed to update quiz", err)

			return
		}

		encode(w, r, logger, http.StatusOK, saved)
	})
}

// HandleQuestionGet returns a single question.
func HandleQuestionGet(logger *slog.Logger, quizStore quiz.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t, ok := parseType(w, r, logger)
		if !ok {
			return
		}
		id, ok := httputil.ParseIDFromPath(w, r, logger, "id")
		if !ok {
			return
		}

		qs, err := quizStore.GetQuestion(r.Context(), t, id)
		if err != nil {
			writeStoreError(w, r, logger, "Failed to load question", err)

			return
		}

		encode(w, r, logger, http.StatusOK, qs)
	})
}

// HandleQuestionCreate appends a question to the quiz and returns it with its new ID.
// An id in the request body is ignored.
func HandleQuestionCreate(logger *slog.Logger, quizStore quiz.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t, ok := parseType(w, r, logger)
		if !ok {
			return
		}

		p, err := httputil.DecodeJSON[quiz.QuestionPatch](r)
		if err != nil {
			logger.WarnContext(r.Context(), "error decoding question", slog.Any("err", err))
			httputil.Error(w, logger, r, http.StatusBadRequest, "Invalid question")

			return
		}

		qs, err := quizStore.AddQuestion(r.Context(), t, p)
		if err != nil {
			writeStoreError(w, r, logger, "Failed to create question", err)

			return
		}
		warnInvalid(r, logger, t, qs)

		encode(w, r, logger, http.StatusOK, qs)
	})
}

// HandleQuestionUpdate merges the fields present in the request body into the question.
func HandleQuestionUpdate(logger *slog.Logger, quizStore quiz.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t, ok := parseType(w, r, logger)
		if !ok {
			return
		}
		id, ok := httputil.ParseIDFromPath(w, r, logger, "id")
		if !ok {
			return
		}

		p, err := httputil.DecodeJSON[quiz.QuestionPatch](r)
		if err != nil {
			logger.WarnContext(r.Context(), "error decoding question", slog.Any("err", err))
			httputil.Error(w, logger, r, http.StatusBadRequest, "Invalid question")

			return
		}

		qs, err := quizStore.UpdateQuestion(r.Context(), t, id, p)
		if err != nil {
			writeStoreError(w, r, logger, "Failed to update question", err)

			return
		}
		warnInvalid(r, logger, t, qs)

		encode(w, r, logger, http.StatusOK, qs)
	})
}

// HandleQuestionDelete removes the question and its statistics.
func HandleQuestionDelete(logger *slog.Logger, quizStore quiz.Store) http.Handler {
	type deleteResponse struct {
		Success bool `json:"success"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t, ok := parseType(w, r, logger)
		if !ok {
			return
		}
		id, ok := httputil.ParseIDFromPath(w, r, logger, "id")
		if !ok {
			return
		}

		if err := quizStore.DeleteQuestion(r.Context(), t, id); err != nil {
			writeStoreError(w, r, logger, "Failed to delete question", err)

			return
		}

		encode(w, r, logger, http.StatusOK, deleteResponse{Success: true})
	})
}

// warnInvalid logs the problems the admin editor would have reported. The question is stored regardless.
func warnInvalid(r *http.Request, logger *slog.Logger, t quiz.Type, qs *quiz.Question) {
	problems := qs.Valid(t)
	if len(problems) == 0 {
		return
	}
	logger.WarnContext(
		r.Context(),
		"question stored with problems",
		slog.String("quizType", string(t)),
		slog.Int64("questionId", qs.ID),
		slog.Any("problems", problems),
	)
}
