package contentapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/starquake/kioskquiz/internal/auth"
	"github.com/starquake/kioskquiz/internal/httputil"
)

// HandleLogin exchanges the admin password for a bearer token.
// Returns 404 when admin authentication is disabled and 401 for a wrong password.
func HandleLogin(logger *slog.Logger, tokens *auth.Tokens) http.Handler {
	type loginRequest struct {
		Password string `json:"password"`
	}

	type loginResponse struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		req, err := httputil.DecodeJSON[loginRequest](r)
		if err != nil {
			logger.WarnContext(ctx, "error decoding loginRequest", slog.Any("err", err))
			httputil.Error(w, logger, r, http.StatusBadRequest, "Invalid login request")

			return
		}

		token, expiresAt, err := tokens.Login(req.Password)
		switch {
		case errors.Is(err, auth.ErrDisabled):
			httputil.Error(w, logger, r, http.StatusNotFound, "Admin login is disabled")

			return
		case errors.Is(err, auth.ErrInvalidPassword):
			logger.WarnContext(ctx, "admin login failed")
			httputil.Error(w, logger, r, http.StatusUnauthorized, "Invalid password")

			return
		case err != nil:
			writeStoreError(w, r, logger, "Failed to log in", err)

			return
		}

		logger.InfoContext(ctx, "admin logged in")
		encode(w, r, logger, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt})
	})
}
