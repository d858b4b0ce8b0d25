package exam

import (
	"context"

	"github.com/campushq/examgate/internal/grading"
)

// ListOpts filters an exam listing.
type ListOpts struct {
	Status Status // optional: only this status
	Q      string // optional: title substring
	Limit  int
	Offset int
}

// ManualGrade is one lecturer-entered short-answer mark, keyed by
// question ref.
type ManualGrade struct {
	Ref      string  `json:"ref"`
	Awarded  float64 `json:"awarded"`
	Feedback string  `json:"feedback,omitempty"`
}

// Store is the persistence boundary for exams, questions and
// submissions. Implementations must enforce the two at-most-once
// invariants at the write itself rather than by check-then-act:
// submission uniqueness per (exam_id, student_id), and finalize-once.
// Question writes for one exam are serialized so renumbering keeps
// question_no dense.
type Store interface {
	CreateExam(ctx context.Context, e Exam) error
	GetExam(ctx context.Context, id string) (Exam, error)
	ListExams(ctx context.Context, opts ListOpts) ([]Exam, error)
	// UpdateExamInfo rewrites the descriptive and timing fields of a
	// draft exam. Status, finalization and schedule are untouched.
	UpdateExamInfo(ctx context.Context, e Exam) (Exam, error)
	// PublishExam flips draft -> published exactly once.
	PublishExam(ctx context.Context, id string) (Exam, error)
	SetSchedule(ctx context.Context, examID string, sch Schedule) (Exam, error)
	// FinalizeExam sets results_finalized exactly once; a second call
	// returns StateConflict even under concurrent callers.
	FinalizeExam(ctx context.Context, examID, by string, at int64, stats *grading.Statistics) (Exam, error)

	// AddQuestion assigns the next dense question_no for its type.
	AddQuestion(ctx context.Context, q Question) (Question, error)
	ListQuestions(ctx context.Context, examID string) ([]Question, error)
	// DeleteQuestion removes one question and renumbers the remainder
	// of its type densely from 1, as one unit.
	DeleteQuestion(ctx context.Context, examID, questionID string) error

	CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
	GetSubmission(ctx context.Context, examID, studentID string) (Submission, error)
	ListSubmissions(ctx context.Context, examID string) ([]Submission, error)
	// UpdateSubmissionGrading rewrites the grading fields of an
	// existing submission; answers and identity are immutable.
	UpdateSubmissionGrading(ctx context.Context, sub Submission) (Submission, error)
}
