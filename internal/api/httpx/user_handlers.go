package httpx

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/campushq/examgate/internal/audit"
	"github.com/campushq/examgate/internal/roster"
)

// BulkUpsertUsersHandler creates or updates roster records from a JSON
// array. New users must ship a password.
func BulkUpsertUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []roster.User
		if !decodeJSON(w, r, &rows) {
			return
		}
		if len(rows) == 0 {
			writeJSON(w, http.StatusOK, map[string]int{"inserted": 0, "updated": 0})
			return
		}
		ins, upd, err := roster.Upsert(r.Context(), db, rows)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errBody{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"inserted": ins, "updated": upd})
	}
}

func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := roster.List(r.Context(), db, r.URL.Query().Get("role"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

// ListEventsHandler returns the newest audit events for one exam.
func ListEventsHandler(log *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		events, err := log.ListByExam(r.Context(), chi.URLParam(r, "examID"), limit)
		if err != nil {
			writeErr(w, err)
			return
		}
		if events == nil {
			events = []audit.Event{}
		}
		writeJSON(w, http.StatusOK, events)
	}
}
