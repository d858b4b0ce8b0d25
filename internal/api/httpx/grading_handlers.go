package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campushq/examgate/internal/exam"
)

// GradingStatusHandler reports whether grading writes are still
// permitted for this exam.
func GradingStatusHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lc, err := svc.GradingStatus(r.Context(), chi.URLParam(r, "examID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, lc)
	}
}

// RecordGradesHandler stores manual short-answer marks for one
// submission. 403 once the deadline passed or the exam is finalized;
// 400 with every offending mark when any single one is invalid.
func RecordGradesHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f gradesForm
		if !decodeJSON(w, r, &f) {
			return
		}
		grades := make([]exam.ManualGrade, 0, len(f.Grades))
		for _, g := range f.Grades {
			grades = append(grades, exam.ManualGrade{Ref: g.Ref, Awarded: g.Awarded, Feedback: g.Feedback})
		}
		sub, err := svc.RecordGrades(r.Context(),
			chi.URLParam(r, "examID"), chi.URLParam(r, "studentID"), grades, subject(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

// FinalizeHandler locks grading permanently and snapshots the class
// statistics. Repeating it is a 409.
func FinalizeHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := svc.Finalize(r.Context(), chi.URLParam(r, "examID"), subject(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func StatisticsHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Statistics(r.Context(), chi.URLParam(r, "examID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// ResultHandler returns the caller's own result, masked until release.
func ResultHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.StudentResult(r.Context(), chi.URLParam(r, "examID"), subject(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}
