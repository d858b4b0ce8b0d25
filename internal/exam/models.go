// Package exam holds the records and temporal rules of the examination
// lifecycle: the access window, the grading deadline, finalization, and
// result release. All date and time-of-day fields cross the boundary as
// "YYYY-MM-DD" / "HH:MM" strings and are interpreted in the service's
// fixed timezone.
package exam

import (
	"fmt"

	"github.com/campushq/examgate/internal/grading"
)

// Status is the publication state of an exam. Draft exams are invisible
// to students; publishing is one-way.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// QuestionType discriminates the two grading paths.
type QuestionType string

const (
	TypeMCQ         QuestionType = "mcq"
	TypeShortAnswer QuestionType = "short_answer"
)

// Date and time-of-day layouts used at every boundary. Anything else is
// rejected with a FormatError.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Question struct {
	ID         string       `json:"id"`
	ExamID     string       `json:"exam_id"`
	Type       QuestionType `json:"type"`
	QuestionNo int          `json:"question_no"` // dense 1..N per type
	Text       string       `json:"text"`
	Marks      float64      `json:"marks"`

	// MCQ only
	OptionA       string `json:"option_a,omitempty"`
	OptionB       string `json:"option_b,omitempty"`
	OptionC       string `json:"option_c,omitempty"`
	OptionD       string `json:"option_d,omitempty"`
	CorrectOption string `json:"correct_option,omitempty"` // "A".."D"

	// Short answer only
	SampleAnswer string `json:"sample_answer,omitempty"`
}

// Ref is the stable key a student's answer is stored under, derived
// from type and number, e.g. "mcq:3" or "sa:1". Renumbering a question
// changes its ref, which is why deletes renumber transactionally and
// regrading tooling exists.
func (q Question) Ref() string {
	return QuestionRef(q.Type, q.QuestionNo)
}

// QuestionRef builds the answer-map key for a (type, number) pair.
func QuestionRef(t QuestionType, no int) string {
	prefix := "mcq"
	if t == TypeShortAnswer {
		prefix = "sa"
	}
	return fmt.Sprintf("%s:%d", prefix, no)
}

// Schedule is the optional grading-deadline / result-release pair on an
// exam. Empty strings mean "not configured".
type Schedule struct {
	GradingDeadlineDate string `json:"grading_deadline_date,omitempty"`
	GradingDeadlineTime string `json:"grading_deadline_time,omitempty"`
	ResultReleaseDate   string `json:"result_release_date,omitempty"`
	ResultReleaseTime   string `json:"result_release_time,omitempty"`
}

type Exam struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Instructions string `json:"instructions,omitempty"`

	ExamDate        string `json:"exam_date"`  // YYYY-MM-DD
	StartTime       string `json:"start_time"` // HH:MM
	EndTime         string `json:"end_time,omitempty"`
	DurationMinutes int    `json:"duration_minutes"`

	Status Status `json:"status"`

	Schedule

	ResultsFinalized bool                `json:"results_finalized"`
	FinalizedAt      int64               `json:"finalized_at,omitempty"` // unix seconds
	FinalizedBy      string              `json:"finalized_by,omitempty"`
	Statistics       *grading.Statistics `json:"statistics,omitempty"`

	CreatedBy string `json:"created_by,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

// HasGradingDeadline reports whether a grading deadline is configured.
// Without one, grading stays open indefinitely.
func (e Exam) HasGradingDeadline() bool {
	return e.GradingDeadlineDate != ""
}

// HasReleaseDate reports whether a result release moment is configured.
// Without one, results stay hidden.
func (e Exam) HasReleaseDate() bool {
	return e.ResultReleaseDate != ""
}

type Submission struct {
	ID            string            `json:"id"`
	ExamID        string            `json:"exam_id"`
	StudentID     string            `json:"student_id"`
	Answers       map[string]string `json:"answers"` // question ref -> raw text
	SubmittedAt   int64             `json:"submitted_at"`
	AutoSubmitted bool              `json:"auto_submitted"`

	MCQResult *grading.MCQResult                  `json:"mcq_result,omitempty"`
	SAGrades  map[string]grading.ShortAnswerGrade `json:"sa_grades,omitempty"`

	MCQScore          float64 `json:"mcq_score"`
	MCQTotal          float64 `json:"mcq_total"`
	SAObtained        float64 `json:"sa_obtained"`
	SATotal           float64 `json:"sa_total_marks"`
	OverallObtained   float64 `json:"overall_obtained"`
	OverallTotal      float64 `json:"overall_total_marks"`
	OverallPercentage float64 `json:"overall_percentage"`

	MCQGraded bool `json:"mcq_graded"`
	SAGraded  bool `json:"sa_graded"`
}

// FullyGraded reports whether both paths are complete; finalization
// requires this for every submission.
func (s Submission) FullyGraded() bool {
	return s.MCQGraded && s.SAGraded
}

// recombine refreshes the derived overall fields from the per-path
// totals.
func (s *Submission) recombine() {
	c := grading.Combine(s.MCQScore, s.MCQTotal, s.SAObtained, s.SATotal)
	s.OverallObtained = c.ObtainedMarks
	s.OverallTotal = c.TotalMarks
	s.OverallPercentage = c.Percentage
}
