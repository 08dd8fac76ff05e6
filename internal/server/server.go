// Package server contains everything related to the Server
package server

import (
	"log/slog"
	"net/http"

	"github.com/starquake/kioskquiz/internal/auth"
	"github.com/starquake/kioskquiz/internal/store"
)

// NewServer creates a new server. client serves the front end for every path the API does not claim.
func NewServer(logger *slog.Logger, stores *store.Stores, tokens *auth.Tokens, client http.Handler) http.Handler {
	mux := http.NewServeMux()
	AddRoutes(mux, logger, stores, tokens, client)
	var handler http.Handler = mux
	handler = recoverPanics(logger, handler)
	handler = logRequests(logger, handler)

	return handler
}
