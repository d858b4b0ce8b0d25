// Package httpx is the JSON API over the exam service: auth, exam and
// question management, the access gate, submissions, manual grading,
// finalization, and release-gated results.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	authmw "github.com/campushq/examgate/internal/auth/middleware"
	"github.com/campushq/examgate/internal/exam"
)

// subject is the authenticated user id from the verified token.
func subject(r *http.Request) string {
	return authmw.SubjectFromContext(r.Context())
}

type errBody struct {
	Error      string   `json:"error"`
	Violations []string `json:"violations,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the domain error taxonomy onto status codes: absent
// records 404, format and validation problems 400, a write past the
// deadline or after finalization 403, an at-most-once operation
// repeated 409. Validation responses carry the full violation list.
func writeErr(w http.ResponseWriter, err error) {
	var (
		nf *exam.NotFoundError
		fe *exam.FormatError
		ve *exam.ValidationError
		lv *exam.LockViolation
		sc *exam.StateConflict
	)
	switch {
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errBody{Error: nf.Error()})
	case errors.As(err, &fe):
		writeJSON(w, http.StatusBadRequest, errBody{Error: fe.Error()})
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errBody{Error: "validation failed", Violations: ve.Violations})
	case errors.As(err, &lv):
		writeJSON(w, http.StatusForbidden, errBody{Error: lv.Error()})
	case errors.As(err, &sc):
		writeJSON(w, http.StatusConflict, errBody{Error: sc.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errBody{Error: "internal error"})
	}
}

// decodeJSON parses the body into v and runs its Validate method when
// it has one. A validation failure surfaces as a 400 with the message.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "bad json: " + err.Error()})
		return false
	}
	if f, ok := v.(interface{ Validate() error }); ok {
		if err := f.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, errBody{Error: err.Error()})
			return false
		}
	}
	return true
}
