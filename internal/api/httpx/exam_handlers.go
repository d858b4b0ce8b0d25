package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/campushq/examgate/internal/exam"
	"github.com/campushq/examgate/internal/rbac"
)

type examResponse struct {
	Exam     exam.Exam                `json:"exam"`
	Warnings []exam.ScheduleViolation `json:"warnings,omitempty"`
}

// ListExamsHandler lists exams. Students only ever see published ones,
// whatever filter they ask for.
func ListExamsHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opts := exam.ListOpts{
			Status: exam.Status(q.Get("status")),
			Q:      q.Get("q"),
		}
		if v := q.Get("limit"); v != "" {
			opts.Limit, _ = strconv.Atoi(v)
		}
		if v := q.Get("offset"); v != "" {
			opts.Offset, _ = strconv.Atoi(v)
		}
		if rbac.RoleFromContext(r.Context()) == rbac.RoleStudent {
			opts.Status = exam.StatusPublished
		}
		out, err := svc.ListExams(r.Context(), opts)
		if err != nil {
			writeErr(w, err)
			return
		}
		if out == nil {
			out = []exam.Exam{}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func CreateExamHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f examForm
		if !decodeJSON(w, r, &f) {
			return
		}
		e, warnings, err := svc.CreateExam(r.Context(), exam.Exam{
			Title:           f.Title,
			Description:     f.Description,
			Instructions:    f.Instructions,
			ExamDate:        f.ExamDate,
			StartTime:       f.StartTime,
			EndTime:         f.EndTime,
			DurationMinutes: f.DurationMinutes,
			CreatedBy:       subject(r),
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, examResponse{Exam: e, Warnings: warnings})
	}
}

// GetExamHandler returns one exam. Drafts stay invisible to students.
func GetExamHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "examID")
		e, err := svc.GetExam(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		if rbac.RoleFromContext(r.Context()) == rbac.RoleStudent && e.Status != exam.StatusPublished {
			writeErr(w, &exam.NotFoundError{Kind: "exam", ID: id})
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func UpdateExamHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f examForm
		if !decodeJSON(w, r, &f) {
			return
		}
		e, warnings, err := svc.UpdateExamInfo(r.Context(), exam.Exam{
			ID:              chi.URLParam(r, "examID"),
			Title:           f.Title,
			Description:     f.Description,
			Instructions:    f.Instructions,
			ExamDate:        f.ExamDate,
			StartTime:       f.StartTime,
			EndTime:         f.EndTime,
			DurationMinutes: f.DurationMinutes,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, examResponse{Exam: e, Warnings: warnings})
	}
}

func PublishExamHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := svc.PublishExam(r.Context(), chi.URLParam(r, "examID"), subject(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

type scheduleResponse struct {
	Exam       exam.Exam                `json:"exam"`
	Violations []exam.ScheduleViolation `json:"violations,omitempty"`
}

// SetScheduleHandler stores the grading deadline and release moment
// after the cross-field rules pass. The 400 on failure carries the
// full ordered violation list, warnings included.
func SetScheduleHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f scheduleForm
		if !decodeJSON(w, r, &f) {
			return
		}
		e, violations, err := svc.SetSchedule(r.Context(), chi.URLParam(r, "examID"), exam.Schedule{
			GradingDeadlineDate: f.GradingDeadlineDate,
			GradingDeadlineTime: f.GradingDeadlineTime,
			ResultReleaseDate:   f.ResultReleaseDate,
			ResultReleaseTime:   f.ResultReleaseTime,
		}, subject(r))
		if err != nil {
			if len(violations) > 0 {
				writeJSON(w, http.StatusBadRequest, struct {
					Error      string                   `json:"error"`
					Violations []exam.ScheduleViolation `json:"violations"`
				}{"schedule validation failed", violations})
				return
			}
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, scheduleResponse{Exam: e, Violations: violations})
	}
}
