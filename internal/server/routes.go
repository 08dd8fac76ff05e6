package server

import (
	"log/slog"
	"net/http"

	"github.com/starquake/kioskquiz/internal/auth"
	"github.com/starquake/kioskquiz/internal/contentapi"
	"github.com/starquake/kioskquiz/internal/httputil"
	"github.com/starquake/kioskquiz/internal/store"
)

// AddRoutes registers the API routes and the front end on mux.
// Routes that change content require an admin token when tokens is enabled.
func AddRoutes(
	mux *http.ServeMux,
	logger *slog.Logger,
	stores *store.Stores,
	tokens *auth.Tokens,
	client http.Handler,
) {
	admin := func(h http.Handler) http.Handler {
		return auth.RequireAdmin(logger, tokens, h)
	}

	mux.Handle("GET /api/quiz/{type}", contentapi.HandleQuizGet(logger, stores.Quizzes))
	mux.Handle("PUT /api/quiz/{type}", admin(contentapi.HandleQuizReplace(logger, stores.Quizzes)))
	mux.Handle("GET /api/quiz/{type}/question/{id}", contentapi.HandleQuestionGet(logger, stores.Quizzes))
	mux.Handle("POST /api/quiz/{type}/question", admin(contentapi.HandleQuestionCreate(logger, stores.Quizzes)))
	mux.Handle("PUT /api/quiz/{type}/question/{id}", admin(contentapi.HandleQuestionUpdate(logger, stores.Quizzes)))
	mux.Handle("DELETE /api/quiz/{type}/question/{id}", admin(contentapi.HandleQuestionDelete(logger, stores.Quizzes)))

	mux.Handle("POST /api/statistics", contentapi.HandleStatisticsRecord(logger, stores.Stats))
	mux.Handle("GET /api/statistics", contentapi.HandleStatisticsList(logger, stores.Stats))
	mux.Handle("GET /api/statistics/summary", contentapi.HandleStatisticsSummary(logger, stores.Stats))

	mux.Handle("GET /api/materials", contentapi.HandleMaterialList(logger, stores.Materials))
	mux.Handle("POST /api/materials", admin(contentapi.HandleMaterialCreate(logger, stores.Materials)))
	mux.Handle("GET /api/materials/{id}", contentapi.HandleMaterialGet(logger, stores.Materials))
	mux.Handle("PUT /api/materials/{id}", admin(contentapi.HandleMaterialUpdate(logger, stores.Materials)))
	mux.Handle("DELETE /api/materials/{id}", admin(contentapi.HandleMaterialDelete(logger, stores.Materials)))

	mux.Handle("POST /api/admin/login", contentapi.HandleLogin(logger, tokens))

	mux.Handle("/api/", handleAPINotFound(logger))
	mux.Handle("/", client)
}

func handleAPINotFound(logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.Error(w, logger, r, http.StatusNotFound, "Not found")
	})
}
