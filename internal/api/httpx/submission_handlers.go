package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campushq/examgate/internal/exam"
)

// AccessHandler answers "can I enter this exam right now" for the
// calling student. Computed fresh on every call.
func AccessHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		check, err := svc.Access(r.Context(), chi.URLParam(r, "examID"), subject(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, check)
	}
}

// SubmitHandler records the caller's one-shot submission. The MCQ part
// is scored before the response returns; a second submit is a 409.
func SubmitHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f submitForm
		if !decodeJSON(w, r, &f) {
			return
		}
		sub, err := svc.Submit(r.Context(), chi.URLParam(r, "examID"), subject(r), f.Answers, f.AutoSubmitted)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sub)
	}
}

// submissionSummary is the lecturer's grading-progress line.
type submissionSummary struct {
	StudentID     string  `json:"student_id"`
	SubmittedAt   int64   `json:"submitted_at"`
	AutoSubmitted bool    `json:"auto_submitted"`
	MCQGraded     bool    `json:"mcq_graded"`
	SAGraded      bool    `json:"sa_graded"`
	FullyGraded   bool    `json:"fully_graded"`
	Percentage    float64 `json:"overall_percentage"`
}

func ListSubmissionsHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subs, err := svc.ListSubmissions(r.Context(), chi.URLParam(r, "examID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]submissionSummary, 0, len(subs))
		for _, s := range subs {
			out = append(out, submissionSummary{
				StudentID:     s.StudentID,
				SubmittedAt:   s.SubmittedAt,
				AutoSubmitted: s.AutoSubmitted,
				MCQGraded:     s.MCQGraded,
				SAGraded:      s.SAGraded,
				FullyGraded:   s.FullyGraded(),
				Percentage:    s.OverallPercentage,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GetSubmissionHandler returns one student's full submission, answers
// and grading state included, for the grading screen.
func GetSubmissionHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := svc.GetSubmission(r.Context(), chi.URLParam(r, "examID"), chi.URLParam(r, "studentID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}
