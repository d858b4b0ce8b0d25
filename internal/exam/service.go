package exam

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campushq/examgate/internal/audit"
	"github.com/campushq/examgate/internal/clock"
	"github.com/campushq/examgate/internal/grading"
)

// Service wires the temporal gates, the grading engine and the store
// into the operations the API and the admin CLI expose. All timing
// decisions are computed on demand against the injected clock; nothing
// is scheduled.
type Service struct {
	store  Store
	clock  *clock.Fixed
	grace  time.Duration
	logger *slog.Logger
	audit  *audit.Log

	// serializes question catalog writes per exam
	qmu keyedMutex
}

func NewService(store Store, clk *clock.Fixed, graceMinutes int, logger *slog.Logger, aud *audit.Log) *Service {
	if graceMinutes <= 0 {
		graceMinutes = DefaultGraceMinutes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		clock:  clk,
		grace:  time.Duration(graceMinutes) * time.Minute,
		logger: logger,
		audit:  aud,
	}
}

// --- Exams ---

// CreateExam stores a new draft exam. Returns warning-class schedule
// violations (duration vs end_time divergence) alongside the exam; they
// never block creation.
func (s *Service) CreateExam(ctx context.Context, e Exam) (Exam, []ScheduleViolation, error) {
	// a fresh exam can only enter the world as an unfinalized draft
	e.Status = StatusDraft
	e.ResultsFinalized = false
	e.FinalizedAt = 0
	e.FinalizedBy = ""
	e.Statistics = nil
	e.CreatedAt = s.clock.Now().Unix()

	if e.DurationMinutes <= 0 {
		return Exam{}, nil, &ValidationError{Violations: []string{"duration_minutes must be positive"}}
	}
	if _, err := ComputeWindow(e, s.clock.Location(), s.grace); err != nil {
		return Exam{}, nil, err
	}
	var warnings []ScheduleViolation
	if w, err := DurationConsistency(e, s.clock.Location()); err != nil {
		return Exam{}, nil, err
	} else if w != nil {
		warnings = append(warnings, *w)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := s.store.CreateExam(ctx, e); err != nil {
		return Exam{}, nil, err
	}
	s.audit.Record(ctx, "exam.created", e.ID, e.CreatedBy, map[string]any{"title": e.Title, "exam_date": e.ExamDate})
	s.logger.Info("exam created", "exam_id", e.ID, "title", e.Title, "exam_date", e.ExamDate)
	return e, warnings, nil
}

// UpdateExamInfo edits the descriptive and timing fields of a draft.
// Published and finalized exams are immutable here: changing a live
// window out from under students is never allowed.
func (s *Service) UpdateExamInfo(ctx context.Context, e Exam) (Exam, []ScheduleViolation, error) {
	cur, err := s.store.GetExam(ctx, e.ID)
	if err != nil {
		return Exam{}, nil, err
	}
	if cur.ResultsFinalized {
		return Exam{}, nil, &LockViolation{Reason: "results finalized"}
	}
	if cur.Status != StatusDraft {
		return Exam{}, nil, &StateConflict{Reason: "published exam cannot be edited"}
	}
	if e.DurationMinutes <= 0 {
		return Exam{}, nil, &ValidationError{Violations: []string{"duration_minutes must be positive"}}
	}
	if _, err := ComputeWindow(e, s.clock.Location(), s.grace); err != nil {
		return Exam{}, nil, err
	}
	var warnings []ScheduleViolation
	if w, err := DurationConsistency(e, s.clock.Location()); err != nil {
		return Exam{}, nil, err
	} else if w != nil {
		warnings = append(warnings, *w)
	}
	updated, err := s.store.UpdateExamInfo(ctx, e)
	if err != nil {
		return Exam{}, nil, err
	}
	return updated, warnings, nil
}

func (s *Service) GetExam(ctx context.Context, id string) (Exam, error) {
	return s.store.GetExam(ctx, id)
}

func (s *Service) ListExams(ctx context.Context, opts ListOpts) ([]Exam, error) {
	return s.store.ListExams(ctx, opts)
}

// PublishExam flips draft -> published, once.
func (s *Service) PublishExam(ctx context.Context, id, actor string) (Exam, error) {
	e, err := s.store.PublishExam(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	s.audit.Record(ctx, "exam.published", id, actor, nil)
	s.logger.Info("exam published", "exam_id", id)
	return e, nil
}

// SetSchedule runs the cross-field validator and, when no blocking
// violation is found, stores the grading deadline and release moment.
// The returned violations always carry the full ordered list, warnings
// included, whether or not the update was applied.
func (s *Service) SetSchedule(ctx context.Context, examID string, sch Schedule, actor string) (Exam, []ScheduleViolation, error) {
	e, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return Exam{}, nil, err
	}
	if e.ResultsFinalized {
		return Exam{}, nil, &LockViolation{Reason: "results finalized"}
	}
	endDate, endTime, err := e.EndStrings(s.clock.Location())
	if err != nil {
		return Exam{}, nil, err
	}
	vs, err := ValidateSchedule(ScheduleInput{
		ExamEndDate:  endDate,
		ExamEndTime:  endTime,
		DeadlineDate: sch.GradingDeadlineDate,
		DeadlineTime: sch.GradingDeadlineTime,
		ReleaseDate:  sch.ResultReleaseDate,
		ReleaseTime:  sch.ResultReleaseTime,
	}, s.clock.Now(), s.clock.Location())
	if err != nil {
		return Exam{}, nil, err
	}
	if HasBlocking(vs) {
		msgs := make([]string, len(vs))
		for i, v := range vs {
			msgs[i] = v.Message
		}
		return Exam{}, vs, &ValidationError{Violations: msgs}
	}
	updated, err := s.store.SetSchedule(ctx, examID, sch)
	if err != nil {
		return Exam{}, nil, err
	}
	s.audit.Record(ctx, "exam.schedule_updated", examID, actor, sch)
	s.logger.Info("exam schedule updated", "exam_id", examID,
		"grading_deadline", sch.GradingDeadlineDate+" "+sch.GradingDeadlineTime,
		"result_release", sch.ResultReleaseDate+" "+sch.ResultReleaseTime)
	return updated, vs, nil
}

// --- Access ---

// Access classifies entry for one student right now, overlaying the
// submitted status when their submission already exists.
func (s *Service) Access(ctx context.Context, examID, studentID string) (AccessCheck, error) {
	e, err := s.store.GetExam(ctx, examID)
	if err != nil {
		if IsNotFound(err) {
			return AccessCheck{Status: AccessNotFound}, nil
		}
		return AccessCheck{}, err
	}
	check, err := CheckAccess(&e, s.clock.Now(), s.clock.Location(), s.grace)
	if err != nil {
		return AccessCheck{}, err
	}
	if _, err := s.store.GetSubmission(ctx, examID, studentID); err == nil {
		return AccessCheck{Status: AccessSubmitted}, nil
	} else if !IsNotFound(err) {
		return AccessCheck{}, err
	}
	return check, nil
}

// --- Questions ---

// AddQuestion appends a question, assigning the next dense number for
// its type. Open until finalization, even on published exams.
func (s *Service) AddQuestion(ctx context.Context, q Question) (Question, error) {
	unlock := s.qmu.lock(q.ExamID)
	defer unlock()

	e, err := s.store.GetExam(ctx, q.ExamID)
	if err != nil {
		return Question{}, err
	}
	if e.ResultsFinalized {
		return Question{}, &LockViolation{Reason: "results finalized"}
	}
	if err := validateQuestion(&q); err != nil {
		return Question{}, err
	}
	added, err := s.store.AddQuestion(ctx, q)
	if err != nil {
		return Question{}, err
	}
	s.audit.Record(ctx, "question.added", q.ExamID, "", map[string]any{"question_id": added.ID, "ref": added.Ref()})
	return added, nil
}

// DeleteQuestion removes a question and renumbers its type densely.
// Serialized per exam; stored answer keys like "mcq:3" shift meaning
// when later numbers close the gap, which regrade tooling repairs.
func (s *Service) DeleteQuestion(ctx context.Context, examID, questionID string) error {
	unlock := s.qmu.lock(examID)
	defer unlock()

	e, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return err
	}
	if e.ResultsFinalized {
		return &LockViolation{Reason: "results finalized"}
	}
	if err := s.store.DeleteQuestion(ctx, examID, questionID); err != nil {
		return err
	}
	s.audit.Record(ctx, "question.deleted", examID, "", map[string]any{"question_id": questionID})
	return nil
}

// ListQuestions returns the catalog in (type, number) order. Without
// includeKeys the correct options and sample answers are stripped, for
// serving to students.
func (s *Service) ListQuestions(ctx context.Context, examID string, includeKeys bool) ([]Question, error) {
	qs, err := s.store.ListQuestions(ctx, examID)
	if err != nil {
		return nil, err
	}
	if !includeKeys {
		for i := range qs {
			qs[i].CorrectOption = ""
			qs[i].SampleAnswer = ""
		}
	}
	return qs, nil
}

func validateQuestion(q *Question) error {
	var violations []string
	if q.Marks <= 0 {
		violations = append(violations, "marks must be positive")
	}
	switch q.Type {
	case TypeMCQ:
		opt := grading.NormalizeChoice(q.CorrectOption)
		switch opt {
		case "A", "B", "C", "D":
			q.CorrectOption = opt
		default:
			violations = append(violations, "correct_option must be A, B, C or D")
		}
	case TypeShortAnswer:
		// sample answer is reference material for graders, optional
	default:
		violations = append(violations, fmt.Sprintf("unknown question type %q", q.Type))
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// --- Submissions ---

// Submit records a student's one-shot submission and runs the
// automatic scorer synchronously. autoSubmitted marks that the exam
// page's countdown, not the student, fired the submit; acceptance is
// the same either way: the window must be open.
func (s *Service) Submit(ctx context.Context, examID, studentID string, answers map[string]string, autoSubmitted bool) (Submission, error) {
	e, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return Submission{}, err
	}
	now := s.clock.Now()
	check, err := CheckAccess(&e, now, s.clock.Location(), s.grace)
	if err != nil {
		return Submission{}, err
	}
	switch check.Status {
	case AccessActive:
		// open
	case AccessNotPublished:
		// drafts stay invisible to students
		return Submission{}, &NotFoundError{Kind: "exam", ID: examID}
	case AccessBeforeStart:
		return Submission{}, &ValidationError{Violations: []string{"exam has not started yet"}}
	default:
		return Submission{}, &ValidationError{Violations: []string{"exam has ended"}}
	}

	questions, err := s.store.ListQuestions(ctx, examID)
	if err != nil {
		return Submission{}, err
	}
	if answers == nil {
		answers = map[string]string{}
	}

	mcqRes := grading.ScoreMCQ(mcqViews(questions), answers)
	saRefs, saTotal := shortAnswerShape(questions)

	sub := Submission{
		ExamID:        examID,
		StudentID:     studentID,
		Answers:       answers,
		SubmittedAt:   now.Unix(),
		AutoSubmitted: autoSubmitted,
		MCQResult:     &mcqRes,
		MCQScore:      mcqRes.ObtainedMarks,
		MCQTotal:      mcqRes.TotalMarks,
		SATotal:       saTotal,
		MCQGraded:     true,
		SAGraded:      len(saRefs) == 0, // vacuously complete without short answers
	}
	sub.recombine()

	created, err := s.store.CreateSubmission(ctx, sub)
	if err != nil {
		return Submission{}, err
	}
	s.audit.Record(ctx, "submission.created", examID, studentID, map[string]any{
		"auto_submitted": autoSubmitted,
		"mcq_score":      created.MCQScore,
		"mcq_total":      created.MCQTotal,
	})
	s.logger.Info("submission recorded", "exam_id", examID, "student_id", studentID,
		"auto_submitted", autoSubmitted, "mcq_score", created.MCQScore)
	return created, nil
}

func (s *Service) GetSubmission(ctx context.Context, examID, studentID string) (Submission, error) {
	return s.store.GetSubmission(ctx, examID, studentID)
}

func (s *Service) ListSubmissions(ctx context.Context, examID string) ([]Submission, error) {
	return s.store.ListSubmissions(ctx, examID)
}

// --- Grading ---

// GradingStatus reports whether grading writes are still permitted.
func (s *Service) GradingStatus(ctx context.Context, examID string) (LockCheck, error) {
	e, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return LockCheck{}, err
	}
	return GradingLock(e, s.clock.Now(), s.clock.Location())
}

// RecordGrades stores manual short-answer marks for one submission.
// Rejected wholesale when the deadline has passed or the exam is
// finalized, and when any single mark is invalid: grades are never
// applied partially.
func (s *Service) RecordGrades(ctx context.Context, examID, studentID string, grades []ManualGrade, gradedBy string) (Submission, error) {
	e, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return Submission{}, err
	}
	lc, err := GradingLock(e, s.clock.Now(), s.clock.Location())
	if err != nil {
		return Submission{}, err
	}
	if lc.IsLocked {
		return Submission{}, &LockViolation{Reason: lc.Message}
	}
	sub, err := s.store.GetSubmission(ctx, examID, studentID)
	if err != nil {
		return Submission{}, err
	}
	questions, err := s.store.ListQuestions(ctx, examID)
	if err != nil {
		return Submission{}, err
	}
	saByRef := map[string]Question{}
	for _, q := range questions {
		if q.Type == TypeShortAnswer {
			saByRef[q.Ref()] = q
		}
	}

	var violations []string
	for _, g := range grades {
		q, ok := saByRef[g.Ref]
		if !ok {
			violations = append(violations, fmt.Sprintf("%s: no such short-answer question", g.Ref))
			continue
		}
		if err := grading.CheckAwarded(g.Awarded, q.Marks); err != nil {
			violations = append(violations, fmt.Sprintf("%s: %v", g.Ref, err))
		}
	}
	if len(violations) > 0 {
		return Submission{}, &ValidationError{Violations: violations}
	}

	if sub.SAGrades == nil {
		sub.SAGrades = map[string]grading.ShortAnswerGrade{}
	}
	gradedAt := s.clock.Now().Unix()
	for _, g := range grades {
		q := saByRef[g.Ref]
		sub.SAGrades[g.Ref] = grading.ShortAnswerGrade{
			Ref:      g.Ref,
			Awarded:  g.Awarded,
			Max:      q.Marks,
			Feedback: g.Feedback,
			GradedBy: gradedBy,
			GradedAt: gradedAt,
		}
	}
	saRefs, saTotal := shortAnswerShape(questions)
	sub.SAObtained = grading.SumAwarded(sub.SAGrades)
	sub.SATotal = saTotal
	sub.SAGraded = grading.ShortAnswerComplete(saRefs, sub.SAGrades)
	sub.recombine()

	updated, err := s.store.UpdateSubmissionGrading(ctx, sub)
	if err != nil {
		return Submission{}, err
	}
	s.audit.Record(ctx, "grades.updated", examID, gradedBy, map[string]any{
		"student_id": studentID,
		"graded":     len(grades),
		"sa_graded":  updated.SAGraded,
	})
	s.logger.Info("manual grades recorded", "exam_id", examID, "student_id", studentID,
		"graded_by", gradedBy, "count", len(grades), "sa_complete", updated.SAGraded)
	return updated, nil
}

// maxUngradedListed caps the students named in a finalize rejection;
// the leading violation always carries the exact count.
const maxUngradedListed = 10

// Finalize locks an exam's grading permanently and snapshots class
// statistics. One-way: the store's conditional write guarantees
// at-most-once even under concurrent calls.
func (s *Service) Finalize(ctx context.Context, examID, by string) (Exam, error) {
	e, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return Exam{}, err
	}
	if e.ResultsFinalized {
		return Exam{}, &StateConflict{Reason: "exam already finalized"}
	}
	subs, err := s.store.ListSubmissions(ctx, examID)
	if err != nil {
		return Exam{}, err
	}
	if len(subs) == 0 {
		return Exam{}, &ValidationError{Violations: []string{"no submissions to finalize"}}
	}

	var ungraded []string
	for _, sub := range subs {
		if !sub.FullyGraded() {
			ungraded = append(ungraded, sub.StudentID)
		}
	}
	if len(ungraded) > 0 {
		violations := []string{fmt.Sprintf("%d of %d submissions are not fully graded", len(ungraded), len(subs))}
		for i, student := range ungraded {
			if i == maxUngradedListed {
				violations = append(violations, fmt.Sprintf("... and %d more", len(ungraded)-maxUngradedListed))
				break
			}
			violations = append(violations, fmt.Sprintf("student %s has ungraded answers", student))
		}
		return Exam{}, &ValidationError{Violations: violations}
	}

	percentages := make([]float64, len(subs))
	for i, sub := range subs {
		percentages[i] = sub.OverallPercentage
	}
	stats := grading.Aggregate(percentages)

	finalized, err := s.store.FinalizeExam(ctx, examID, by, s.clock.Now().Unix(), &stats)
	if err != nil {
		return Exam{}, err
	}
	s.audit.Record(ctx, "exam.finalized", examID, by, map[string]any{
		"students": stats.TotalStudents,
		"mean":     stats.Mean,
	})
	s.logger.Info("exam finalized", "exam_id", examID, "by", by,
		"students", stats.TotalStudents, "mean", stats.Mean)
	return finalized, nil
}

// Statistics returns the snapshot taken at finalization.
func (s *Service) Statistics(ctx context.Context, examID string) (*grading.Statistics, error) {
	e, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	if !e.ResultsFinalized || e.Statistics == nil {
		return nil, &StateConflict{Reason: "exam not finalized"}
	}
	return e.Statistics, nil
}

// --- Results ---

// ResultView is the student-facing result. Score fields are pointers:
// nil means withheld, because zero is a real score and must never be
// read as "hidden".
type ResultView struct {
	ExamID        string `json:"exam_id"`
	ExamTitle     string `json:"exam_title"`
	StudentID     string `json:"student_id"`
	SubmittedAt   int64  `json:"submitted_at"`
	AutoSubmitted bool   `json:"auto_submitted"`
	Released      bool   `json:"released"`
	Status        string `json:"status"` // released | pending

	ObtainedMarks *float64 `json:"obtained_marks"`
	TotalMarks    *float64 `json:"total_marks"`
	Percentage    *float64 `json:"percentage"`
	Letter        *string  `json:"letter"`
	Passed        *bool    `json:"passed"`
}

// StudentResult builds the release-gated view of one student's own
// result.
func (s *Service) StudentResult(ctx context.Context, examID, studentID string) (ResultView, error) {
	e, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return ResultView{}, err
	}
	sub, err := s.store.GetSubmission(ctx, examID, studentID)
	if err != nil {
		return ResultView{}, err
	}
	released, err := Released(e, s.clock.Now(), s.clock.Location())
	if err != nil {
		return ResultView{}, err
	}
	view := ResultView{
		ExamID:        e.ID,
		ExamTitle:     e.Title,
		StudentID:     sub.StudentID,
		SubmittedAt:   sub.SubmittedAt,
		AutoSubmitted: sub.AutoSubmitted,
		Released:      released,
		Status:        "pending",
	}
	if !released {
		return view, nil
	}
	c := grading.Combine(sub.MCQScore, sub.MCQTotal, sub.SAObtained, sub.SATotal)
	view.Status = "released"
	view.ObtainedMarks = &sub.OverallObtained
	view.TotalMarks = &sub.OverallTotal
	view.Percentage = &sub.OverallPercentage
	view.Letter = &c.Letter
	view.Passed = &c.Passed
	return view, nil
}

// --- Repair ---

// Regrade reruns the automatic scorer and recombines totals for every
// submission on an exam: the repair path after question renumbering.
// Refused once finalized.
func (s *Service) Regrade(ctx context.Context, examID string) (int, error) {
	e, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return 0, err
	}
	if e.ResultsFinalized {
		return 0, &LockViolation{Reason: "results finalized"}
	}
	questions, err := s.store.ListQuestions(ctx, examID)
	if err != nil {
		return 0, err
	}
	subs, err := s.store.ListSubmissions(ctx, examID)
	if err != nil {
		return 0, err
	}
	mcqQs := mcqViews(questions)
	saRefs, saTotal := shortAnswerShape(questions)

	for _, sub := range subs {
		res := grading.ScoreMCQ(mcqQs, sub.Answers)
		sub.MCQResult = &res
		sub.MCQScore = res.ObtainedMarks
		sub.MCQTotal = res.TotalMarks
		sub.SAObtained = grading.SumAwarded(sub.SAGrades)
		sub.SATotal = saTotal
		sub.SAGraded = grading.ShortAnswerComplete(saRefs, sub.SAGrades)
		sub.recombine()
		if _, err := s.store.UpdateSubmissionGrading(ctx, sub); err != nil {
			return 0, err
		}
	}
	s.audit.Record(ctx, "exam.regraded", examID, "", map[string]any{"submissions": len(subs)})
	s.logger.Info("exam regraded", "exam_id", examID, "submissions", len(subs))
	return len(subs), nil
}

// --- helpers ---

func mcqViews(questions []Question) []grading.MCQQuestion {
	var out []grading.MCQQuestion
	for _, q := range questions {
		if q.Type == TypeMCQ {
			out = append(out, grading.MCQQuestion{Ref: q.Ref(), Marks: q.Marks, CorrectOption: q.CorrectOption})
		}
	}
	return out
}

func shortAnswerShape(questions []Question) (refs []string, total float64) {
	for _, q := range questions {
		if q.Type == TypeShortAnswer {
			refs = append(refs, q.Ref())
			total += q.Marks
		}
	}
	return refs, total
}

// keyedMutex hands out one mutex per key. Entries are never reclaimed;
// the key space is the set of exams touched by this process.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = map[string]*sync.Mutex{}
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m.Unlock
}
