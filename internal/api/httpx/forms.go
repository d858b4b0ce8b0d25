package httpx

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/campushq/examgate/internal/exam"
)

// Request forms. Each carries its own Validate so malformed input is
// rejected before it reaches the service; cross-field schedule rules
// stay in the exam package, this layer only checks shape.

type loginForm struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (f loginForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Username, validation.Required, validation.Length(1, 100)),
		validation.Field(&f.Password, validation.Required),
	)
}

type examForm struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Instructions    string `json:"instructions"`
	ExamDate        string `json:"exam_date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (f examForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&f.ExamDate, validation.Required, validation.Date(exam.DateLayout)),
		validation.Field(&f.StartTime, validation.Required, validation.Date(exam.TimeLayout)),
		validation.Field(&f.EndTime, validation.Date(exam.TimeLayout)),
		validation.Field(&f.DurationMinutes, validation.Required, validation.Min(1)),
	)
}

type questionForm struct {
	Type          string  `json:"type"`
	Text          string  `json:"text"`
	Marks         float64 `json:"marks"`
	OptionA       string  `json:"option_a"`
	OptionB       string  `json:"option_b"`
	OptionC       string  `json:"option_c"`
	OptionD       string  `json:"option_d"`
	CorrectOption string  `json:"correct_option"`
	SampleAnswer  string  `json:"sample_answer"`
}

func (f questionForm) Validate() error {
	isMCQ := f.Type == string(exam.TypeMCQ)
	return validation.ValidateStruct(&f,
		validation.Field(&f.Type, validation.Required,
			validation.In(string(exam.TypeMCQ), string(exam.TypeShortAnswer))),
		validation.Field(&f.Text, validation.Required),
		validation.Field(&f.Marks, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&f.CorrectOption,
			validation.When(isMCQ, validation.Required, validation.In("A", "B", "C", "D", "a", "b", "c", "d"))),
	)
}

type scheduleForm struct {
	GradingDeadlineDate string `json:"grading_deadline_date"`
	GradingDeadlineTime string `json:"grading_deadline_time"`
	ResultReleaseDate   string `json:"result_release_date"`
	ResultReleaseTime   string `json:"result_release_time"`
}

func (f scheduleForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.GradingDeadlineDate, validation.Date(exam.DateLayout)),
		validation.Field(&f.GradingDeadlineTime, validation.Date(exam.TimeLayout),
			validation.When(f.GradingDeadlineDate == "", validation.Empty)),
		validation.Field(&f.ResultReleaseDate, validation.Date(exam.DateLayout)),
		validation.Field(&f.ResultReleaseTime, validation.Date(exam.TimeLayout),
			validation.When(f.ResultReleaseDate == "", validation.Empty)),
	)
}

type submitForm struct {
	Answers       map[string]string `json:"answers"`
	AutoSubmitted bool              `json:"auto_submitted"`
}

func (f submitForm) Validate() error {
	// an empty map is a legitimate submission: every question unanswered
	return validation.ValidateStruct(&f,
		validation.Field(&f.Answers, validation.NotNil),
	)
}

type gradeItemForm struct {
	Ref      string  `json:"ref"`
	Awarded  float64 `json:"awarded"`
	Feedback string  `json:"feedback"`
}

func (f gradeItemForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Ref, validation.Required),
		validation.Field(&f.Awarded, validation.Min(0.0)),
	)
}

type gradesForm struct {
	Grades []gradeItemForm `json:"grades"`
}

func (f gradesForm) Validate() error {
	// slice elements validate themselves through their own Validate
	return validation.ValidateStruct(&f,
		validation.Field(&f.Grades, validation.Required),
	)
}
