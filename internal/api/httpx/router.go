package httpx

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"github.com/campushq/examgate/internal/audit"
	authmw "github.com/campushq/examgate/internal/auth/middleware"
	"github.com/campushq/examgate/internal/exam"
	"github.com/campushq/examgate/internal/rbac"
)

// Deps is everything the API needs wired in.
type Deps struct {
	Service *exam.Service
	DB      *sql.DB
	Auth    *authmw.AuthService
	Audit   *audit.Log
}

// Routes builds the /api route table: a public login, then the
// JWT-protected surface with per-route RBAC.
func Routes(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Post("/auth/login", LoginHandler(d.DB, d.Auth))

	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(d.Auth))

		pr.With(rbac.Require("exam:view")).Get("/exams", ListExamsHandler(d.Service))
		pr.With(rbac.Require("exam:create")).Post("/exams", CreateExamHandler(d.Service))
		pr.With(rbac.Require("exam:view")).Get("/exams/{examID}", GetExamHandler(d.Service))
		pr.With(rbac.Require("exam:create")).Put("/exams/{examID}", UpdateExamHandler(d.Service))
		pr.With(rbac.Require("exam:publish")).Post("/exams/{examID}/publish", PublishExamHandler(d.Service))
		pr.With(rbac.Require("exam:schedule")).Put("/exams/{examID}/schedule", SetScheduleHandler(d.Service))

		pr.With(rbac.Require("exam:view")).Get("/exams/{examID}/questions", ListQuestionsHandler(d.Service))
		pr.With(rbac.Require("question:manage")).Post("/exams/{examID}/questions", AddQuestionHandler(d.Service))
		pr.With(rbac.Require("question:manage")).Delete("/exams/{examID}/questions/{questionID}", DeleteQuestionHandler(d.Service))

		pr.With(rbac.Require("exam:access")).Get("/exams/{examID}/access", AccessHandler(d.Service))
		pr.With(rbac.Require("submission:create")).Post("/exams/{examID}/submissions", SubmitHandler(d.Service))
		pr.With(rbac.Require("submission:view-all")).Get("/exams/{examID}/submissions", ListSubmissionsHandler(d.Service))
		pr.With(rbac.Require("submission:view-all")).Get("/exams/{examID}/submissions/{studentID}", GetSubmissionHandler(d.Service))

		pr.With(rbac.RequireAny("grading:write", "submission:view-all")).
			Get("/exams/{examID}/grading-status", GradingStatusHandler(d.Service))
		pr.With(rbac.Require("grading:write")).
			Put("/exams/{examID}/submissions/{studentID}/grades", RecordGradesHandler(d.Service))
		pr.With(rbac.Require("exam:finalize")).Post("/exams/{examID}/finalize", FinalizeHandler(d.Service))
		pr.With(rbac.Require("statistics:view")).Get("/exams/{examID}/statistics", StatisticsHandler(d.Service))
		pr.With(rbac.Require("result:view-own")).Get("/exams/{examID}/result", ResultHandler(d.Service))

		pr.With(rbac.Require("audit:view")).Get("/exams/{examID}/events", ListEventsHandler(d.Audit))

		pr.With(rbac.Require("users:bulk_upsert")).Post("/users/bulk", BulkUpsertUsersHandler(d.DB))
		pr.With(rbac.Require("users:list")).Get("/users", ListUsersHandler(d.DB))
	})

	return r
}
