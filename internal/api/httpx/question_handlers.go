package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campushq/examgate/internal/exam"
	"github.com/campushq/examgate/internal/rbac"
)

// ListQuestionsHandler returns the question catalog. Correct options
// and sample answers are stripped unless the caller may manage
// questions.
func ListQuestionsHandler(svc *exam.Service) http.HandlerFunc {
	checker := rbac.NewChecker(nil)
	return func(w http.ResponseWriter, r *http.Request) {
		includeKeys := checker.Has(rbac.RoleFromContext(r.Context()), "question:manage")
		qs, err := svc.ListQuestions(r.Context(), chi.URLParam(r, "examID"), includeKeys)
		if err != nil {
			writeErr(w, err)
			return
		}
		if qs == nil {
			qs = []exam.Question{}
		}
		writeJSON(w, http.StatusOK, qs)
	}
}

func AddQuestionHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f questionForm
		if !decodeJSON(w, r, &f) {
			return
		}
		q, err := svc.AddQuestion(r.Context(), exam.Question{
			ExamID:        chi.URLParam(r, "examID"),
			Type:          exam.QuestionType(f.Type),
			Text:          f.Text,
			Marks:         f.Marks,
			OptionA:       f.OptionA,
			OptionB:       f.OptionB,
			OptionC:       f.OptionC,
			OptionD:       f.OptionD,
			CorrectOption: f.CorrectOption,
			SampleAnswer:  f.SampleAnswer,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

func DeleteQuestionHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.DeleteQuestion(r.Context(), chi.URLParam(r, "examID"), chi.URLParam(r, "questionID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
