package httpx

import (
	"database/sql"
	"errors"
	"net/http"

	authmw "github.com/campushq/examgate/internal/auth/middleware"
	"github.com/campushq/examgate/internal/roster"
)

// LoginHandler checks credentials against the roster and issues a
// bearer token carrying the user's role.
func LoginHandler(db *sql.DB, authSvc *authmw.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f loginForm
		if !decodeJSON(w, r, &f) {
			return
		}
		u, err := roster.Authenticate(r.Context(), db, f.Username, f.Password)
		if err != nil {
			if errors.Is(err, roster.ErrBadCredentials) {
				writeJSON(w, http.StatusUnauthorized, errBody{Error: "invalid credentials"})
				return
			}
			writeErr(w, err)
			return
		}
		tok, err := authSvc.IssueJWT(u.ID, u.Role)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"access_token": tok,
			"user_id":      u.ID,
			"role":         u.Role,
		})
	}
}
