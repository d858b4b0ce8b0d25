package exam

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/campushq/examgate/internal/clock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture drives a Service over the in-memory store with a movable
// clock. The seeded exam runs 2025-03-10 09:00 for 60 minutes, so the
// window closes at 10:05 with the 5 minute grace.
type fixture struct {
	t    *testing.T
	svc  *Service
	now  time.Time
	exam Exam
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{t: t, now: at(t, "2025-03-09", "12:00")}
	clk := clock.NewFixedAt(180, func() time.Time { return f.now })
	f.svc = NewService(NewMemStore(), clk, 5, testLogger(), nil)

	e, warnings, err := f.svc.CreateExam(context.Background(), Exam{
		Title:           "Networks Midterm",
		ExamDate:        "2025-03-10",
		StartTime:       "09:00",
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected create warnings: %v", warnings)
	}
	f.exam = e
	return f
}

func (f *fixture) addMCQ(marks float64, correct string) Question {
	f.t.Helper()
	q, err := f.svc.AddQuestion(context.Background(), Question{
		ExamID: f.exam.ID, Type: TypeMCQ, Text: "pick one", Marks: marks, CorrectOption: correct,
	})
	if err != nil {
		f.t.Fatalf("add mcq: %v", err)
	}
	return q
}

func (f *fixture) addSA(marks float64) Question {
	f.t.Helper()
	q, err := f.svc.AddQuestion(context.Background(), Question{
		ExamID: f.exam.ID, Type: TypeShortAnswer, Text: "explain", Marks: marks,
	})
	if err != nil {
		f.t.Fatalf("add short answer: %v", err)
	}
	return q
}

func (f *fixture) publish() {
	f.t.Helper()
	if _, err := f.svc.PublishExam(context.Background(), f.exam.ID, "lect-1"); err != nil {
		f.t.Fatalf("publish: %v", err)
	}
}

func (f *fixture) intoWindow() {
	f.now = at(f.t, "2025-03-10", "09:30")
}

func (f *fixture) submit(student string, answers map[string]string) Submission {
	f.t.Helper()
	sub, err := f.svc.Submit(context.Background(), f.exam.ID, student, answers, false)
	if err != nil {
		f.t.Fatalf("submit for %s: %v", student, err)
	}
	return sub
}

func TestSubmitScoresMCQImmediately(t *testing.T) {
	f := newFixture(t)
	f.addMCQ(2, "A")
	f.addMCQ(2, "B")
	f.addMCQ(1, "C")
	f.publish()
	f.intoWindow()

	sub := f.submit("stu-1", map[string]string{"mcq:1": "a", "mcq:2": "C"})

	if sub.MCQScore != 2 || sub.MCQTotal != 5 {
		t.Fatalf("mcq = %v/%v, want 2/5", sub.MCQScore, sub.MCQTotal)
	}
	if !sub.MCQGraded {
		t.Fatal("mcq path is graded at submission time")
	}
	if !sub.SAGraded {
		t.Fatal("no short answers means vacuously graded")
	}
	if sub.OverallPercentage != 40 {
		t.Fatalf("overall = %v, want 40", sub.OverallPercentage)
	}
	if sub.MCQResult == nil || sub.MCQResult.UnansweredCount != 1 {
		t.Fatalf("per-question result missing or wrong: %+v", sub.MCQResult)
	}
}

func TestSubmitWithShortAnswers(t *testing.T) {
	f := newFixture(t)
	f.addMCQ(5, "A")
	f.addSA(10)
	f.publish()
	f.intoWindow()

	sub := f.submit("stu-1", map[string]string{"mcq:1": "A", "sa:1": "because the handshake..."})
	if sub.SAGraded {
		t.Fatal("ungraded short answer cannot be complete")
	}
	if sub.SATotal != 10 {
		t.Fatalf("sa total = %v, want 10", sub.SATotal)
	}
	// overall counts the ungraded short answer as 0 so far
	if sub.OverallObtained != 5 || sub.OverallTotal != 15 {
		t.Fatalf("overall = %v/%v, want 5/15", sub.OverallObtained, sub.OverallTotal)
	}
}

func TestSubmitDuplicateConflicts(t *testing.T) {
	f := newFixture(t)
	f.addMCQ(1, "A")
	f.publish()
	f.intoWindow()
	f.submit("stu-1", map[string]string{"mcq:1": "A"})

	_, err := f.svc.Submit(context.Background(), f.exam.ID, "stu-1", nil, false)
	if !IsStateConflict(err) {
		t.Fatalf("second submit should conflict, got %v", err)
	}
}

func TestSubmitOutsideWindow(t *testing.T) {
	f := newFixture(t)
	f.addMCQ(1, "A")
	f.publish()

	f.now = at(t, "2025-03-10", "08:59")
	if _, err := f.svc.Submit(context.Background(), f.exam.ID, "stu-1", nil, false); !IsValidation(err) {
		t.Fatalf("before start: want ValidationError, got %v", err)
	}

	f.now = at(t, "2025-03-10", "10:06")
	if _, err := f.svc.Submit(context.Background(), f.exam.ID, "stu-1", nil, false); !IsValidation(err) {
		t.Fatalf("after hard end: want ValidationError, got %v", err)
	}
}

func TestSubmitDraftExamHidden(t *testing.T) {
	f := newFixture(t)
	f.addMCQ(1, "A")
	f.intoWindow()
	if _, err := f.svc.Submit(context.Background(), f.exam.ID, "stu-1", nil, false); !IsNotFound(err) {
		t.Fatalf("draft exam should look absent to students, got %v", err)
	}
}

func TestSubmitAutoFlagRecorded(t *testing.T) {
	f := newFixture(t)
	f.addMCQ(1, "A")
	f.publish()
	f.intoWindow()

	sub, err := f.svc.Submit(context.Background(), f.exam.ID, "stu-1", map[string]string{"mcq:1": "B"}, true)
	if err != nil {
		t.Fatalf("auto submit: %v", err)
	}
	if !sub.AutoSubmitted {
		t.Fatal("auto_submitted flag lost")
	}
}

func TestAccessOverlaysSubmitted(t *testing.T) {
	f := newFixture(t)
	f.addMCQ(1, "A")
	f.publish()
	f.intoWindow()

	before, err := f.svc.Access(context.Background(), f.exam.ID, "stu-1")
	if err != nil {
		t.Fatalf("access: %v", err)
	}
	if before.Status != AccessActive || !before.CanAccess {
		t.Fatalf("pre-submission access = %+v", before)
	}

	f.submit("stu-1", map[string]string{"mcq:1": "A"})
	after, err := f.svc.Access(context.Background(), f.exam.ID, "stu-1")
	if err != nil {
		t.Fatalf("access: %v", err)
	}
	if after.Status != AccessSubmitted || after.CanAccess {
		t.Fatalf("post-submission access = %+v", after)
	}
}

func TestAccessUnknownExam(t *testing.T) {
	f := newFixture(t)
	check, err := f.svc.Access(context.Background(), "nope", "stu-1")
	if err != nil {
		t.Fatalf("access: %v", err)
	}
	if check.Status != AccessNotFound {
		t.Fatalf("status = %s, want not_found", check.Status)
	}
}

func TestRecordGradesCompletesShortAnswerPath(t *testing.T) {
	f := newFixture(t)
	f.addMCQ(5, "A")
	f.addSA(10)
	f.addSA(5)
	f.publish()
	f.intoWindow()
	f.submit("stu-1", map[string]string{"mcq:1": "A", "sa:1": "x", "sa:2": "y"})

	f.now = at(t, "2025-03-11", "10:00")

	partial, err := f.svc.RecordGrades(context.Background(), f.exam.ID, "stu-1",
		[]ManualGrade{{Ref: "sa:1", Awarded: 7.5, Feedback: "decent"}}, "lect-1")
	if err != nil {
		t.Fatalf("record grades: %v", err)
	}
	if partial.SAGraded {
		t.Fatal("one of two short answers graded is not complete")
	}
	if partial.SAObtained != 7.5 {
		t.Fatalf("sa obtained = %v, want 7.5", partial.SAObtained)
	}

	full, err := f.svc.RecordGrades(context.Background(), f.exam.ID, "stu-1",
		[]ManualGrade{{Ref: "sa:2", Awarded: 5}}, "lect-1")
	if err != nil {
		t.Fatalf("record grades: %v", err)
	}
	if !full.SAGraded {
		t.Fatal("all short answers graded should be complete")
	}
	if full.OverallObtained != 17.5 || full.OverallTotal != 20 {
		t.Fatalf("overall = %v/%v, want 17.5/20", full.OverallObtained, full.OverallTotal)
	}
	if full.OverallPercentage != 87.5 {
		t.Fatalf("percentage = %v, want 87.5", full.OverallPercentage)
	}
}

func TestRecordGradesAggregatesViolations(t *testing.T) {
	f := newFixture(t)
	f.addSA(10)
	f.publish()
	f.intoWindow()
	f.submit("stu-1", map[string]string{"sa:1": "x"})

	_, err := f.svc.RecordGrades(context.Background(), f.exam.ID, "stu-1", []ManualGrade{
		{Ref: "sa:1", Awarded: 10.55}, // two decimals and over max
		{Ref: "sa:9", Awarded: 1},     // no such question
	}, "lect-1")
	if !IsValidation(err) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	ve := err.(*ValidationError)
	if len(ve.Violations) != 2 {
		t.Fatalf("want both violations reported together, got %v", ve.Violations)
	}

	// nothing was applied
	sub, err := f.svc.GetSubmission(context.Background(), f.exam.ID, "stu-1")
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	if len(sub.SAGrades) != 0 {
		t.Fatalf("partial grades must not persist: %+v", sub.SAGrades)
	}
}

func TestRecordGradesAfterDeadlineLocked(t *testing.T) {
	f := newFixture(t)
	f.addSA(10)
	f.publish()
	f.intoWindow()
	f.submit("stu-1", map[string]string{"sa:1": "x"})

	if _, _, err := f.svc.SetSchedule(context.Background(), f.exam.ID, Schedule{
		GradingDeadlineDate: "2025-03-12", GradingDeadlineTime: "17:00",
	}, "lect-1"); err != nil {
		t.Fatalf("set schedule: %v", err)
	}

	f.now = at(t, "2025-03-12", "17:01")
	_, err := f.svc.RecordGrades(context.Background(), f.exam.ID, "stu-1",
		[]ManualGrade{{Ref: "sa:1", Awarded: 5}}, "lect-1")
	if !IsLockViolation(err) {
		t.Fatalf("past deadline: want LockViolation, got %v", err)
	}
}

func TestGradingStatusBoundaryShape(t *testing.T) {
	f := newFixture(t)
	lc, err := f.svc.GradingStatus(context.Background(), f.exam.ID)
	if err != nil {
		t.Fatalf("grading status: %v", err)
	}
	if lc.IsLocked || lc.Message != "no deadline set" {
		t.Fatalf("no deadline should fail open: %+v", lc)
	}
}

func TestFinalizeHappyPath(t *testing.T) {
	f := newFixture(t)
	f.addMCQ(10, "A")
	f.publish()
	f.intoWindow()
	f.submit("stu-1", map[string]string{"mcq:1": "A"})
	f.submit("stu-2", map[string]string{"mcq:1": "B"})
	f.submit("stu-3", map[string]string{})

	f.now = at(t, "2025-03-11", "10:00")
	e, err := f.svc.Finalize(context.Background(), f.exam.ID, "lect-1")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !e.ResultsFinalized || e.FinalizedBy != "lect-1" {
		t.Fatalf("finalize flags wrong: %+v", e)
	}
	if e.Statistics == nil || e.Statistics.TotalStudents != 3 {
		t.Fatalf("statistics snapshot wrong: %+v", e.Statistics)
	}
}

func TestFinalizeTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	f.addMCQ(10, "A")
	f.publish()
	f.intoWindow()
	f.submit("stu-1", map[string]string{"mcq:1": "A"})

	f.now = at(t, "2025-03-11", "10:00")
	first, err := f.svc.Finalize(context.Background(), f.exam.ID, "lect-1")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if _, err := f.svc.Finalize(context.Background(), f.exam.ID, "lect-2"); !IsStateConflict(err) {
		t.Fatalf("second finalize: want StateConflict, got %v", err)
	}
	// statistics were not recomputed or re-attributed
	e, err := f.svc.GetExam(context.Background(), f.exam.ID)
	if err != nil {
		t.Fatalf("get exam: %v", err)
	}
	if e.FinalizedBy != "lect-1" || e.FinalizedAt != first.FinalizedAt {
		t.Fatalf("second call must not overwrite finalization: %+v", e)
	}
}

func TestFinalizeRequiresFullGrading(t *testing.T) {
	f := newFixture(t)
	f.addMCQ(5, "A")
	f.addSA(10)
	f.publish()
	f.intoWindow()
	f.submit("stu-1", map[string]string{"mcq:1": "A", "sa:1": "x"})
	f.submit("stu-2", map[string]string{"mcq:1": "A", "sa:1": "y"})
	f.submit("stu-3", map[string]string{"mcq:1": "A", "sa:1": "z"})

	f.now = at(t, "2025-03-11", "10:00")
	for _, stu := range []string{"stu-1", "stu-2"} {
		if _, err := f.svc.RecordGrades(context.Background(), f.exam.ID, stu,
			[]ManualGrade{{Ref: "sa:1", Awarded: 8}}, "lect-1"); err != nil {
			t.Fatalf("grade %s: %v", stu, err)
		}
	}

	_, err := f.svc.Finalize(context.Background(), f.exam.ID, "lect-1")
	if !IsValidation(err) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	ve := err.(*ValidationError)
	if !strings.Contains(ve.Violations[0], "1 of 3") {
		t.Fatalf("leading violation should carry the exact count, got %q", ve.Violations[0])
	}
	found := false
	for _, v := range ve.Violations {
		if strings.Contains(v, "stu-3") {
			found = true
		}
	}
	if !found {
		t.Fatalf("offending student not named: %v", ve.Violations)
	}

	// grade the last one and finalize cleanly
	if _, err := f.svc.RecordGrades(context.Background(), f.exam.ID, "stu-3",
		[]ManualGrade{{Ref: "sa:1", Awarded: 2}}, "lect-1"); err != nil {
		t.Fatalf("grade stu-3: %v", err)
	}
	e, err := f.svc.Finalize(context.Background(), f.exam.ID, "lect-1")
	if err != nil {
		t.Fatalf("finalize after full grading: %v", err)
	}
	if e.Statistics.TotalStudents != 3 {
		t.Fatalf("total_students = %d, want 3", e.Statistics.TotalStudents)
	}
}

func TestFinalizeTruncatesLongOffenderList(t *testing.T) {
	f := newFixture(t)
	f.addSA(10)
	f.publish()
	f.intoWindow()
	for i := 0; i < 14; i++ {
		f.submit(strings.Repeat("s", 1)+string(rune('a'+i)), map[string]string{"sa:1": "x"})
	}

	f.now = at(t, "2025-03-11", "10:00")
	_, err := f.svc.Finalize(context.Background(), f.exam.ID, "lect-1")
	if !IsValidation(err) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	ve := err.(*ValidationError)
	if !strings.Contains(ve.Violations[0], "14 of 14") {
		t.Fatalf("exact count lost: %q", ve.Violations[0])
	}
	// leading count + 10 named + tail marker
	if len(ve.Violations) != 12 {
		t.Fatalf("display list should truncate at 10 names, got %d entries: %v", len(ve.Violations), ve.Violations)
	}
	if !strings.Contains(ve.Violations[11], "and 4 more") {
		t.Fatalf("tail marker missing: %q", ve.Violations[11])
	}
}

func TestFinalizeNoSubmissions(t *testing.T) {
	f := newFixture(t)
	f.publish()
	if _, err := f.svc.Finalize(context.Background(), f.exam.ID, "lect-1"); !IsValidation(err) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestRecordGradesAfterFinalizeLocked(t *testing.T) {
	f := newFixture(t)
	f.addMCQ(10, "A")
	f.publish()
	f.intoWindow()
	f.submit("stu-1", map[string]string{"mcq:1": "A"})

	f.now = at(t, "2025-03-11", "10:00")
	if _, err := f.svc.Finalize(context.Background(), f.exam.ID, "lect-1"); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	_, err := f.svc.RecordGrades(context.Background(), f.exam.ID, "stu-1",
		[]ManualGrade{{Ref: "sa:1", Awarded: 1}}, "lect-1")
	if !IsLockViolation(err) {
		t.Fatalf("finalized exam must reject grading with LockViolation, got %v", err)
	}
}

func TestStudentResultMaskedUntilRelease(t *testing.T) {
	f := newFixture(t)
	f.addMCQ(10, "A")
	f.publish()
	f.intoWindow()
	f.submit("stu-1", map[string]string{"mcq:1": "B"}) // a real zero score

	if _, _, err := f.svc.SetSchedule(context.Background(), f.exam.ID, Schedule{
		GradingDeadlineDate: "2025-03-12", GradingDeadlineTime: "17:00",
		ResultReleaseDate: "2025-03-14", ResultReleaseTime: "09:00",
	}, "lect-1"); err != nil {
		t.Fatalf("set schedule: %v", err)
	}

	f.now = at(t, "2025-03-14", "08:59")
	hidden, err := f.svc.StudentResult(context.Background(), f.exam.ID, "stu-1")
	if err != nil {
		t.Fatalf("student result: %v", err)
	}
	if hidden.Released || hidden.Status != "pending" {
		t.Fatalf("result should be pending: %+v", hidden)
	}
	if hidden.Percentage != nil || hidden.ObtainedMarks != nil || hidden.Letter != nil {
		t.Fatal("masked result must carry nil scores, never zero")
	}

	f.now = at(t, "2025-03-14", "09:00")
	shown, err := f.svc.StudentResult(context.Background(), f.exam.ID, "stu-1")
	if err != nil {
		t.Fatalf("student result: %v", err)
	}
	if !shown.Released || shown.Status != "released" {
		t.Fatalf("result should be released: %+v", shown)
	}
	if shown.Percentage == nil || *shown.Percentage != 0 {
		t.Fatalf("released zero score must read as a real 0, got %v", shown.Percentage)
	}
	if shown.Letter == nil || *shown.Letter != "F" {
		t.Fatalf("letter = %v, want F", shown.Letter)
	}
}

func TestStudentResultNoReleaseDateStaysHidden(t *testing.T) {
	f := newFixture(t)
	f.addMCQ(10, "A")
	f.publish()
	f.intoWindow()
	f.submit("stu-1", map[string]string{"mcq:1": "A"})

	f.now = at(t, "2025-06-01", "12:00") // far in the future
	view, err := f.svc.StudentResult(context.Background(), f.exam.ID, "stu-1")
	if err != nil {
		t.Fatalf("student result: %v", err)
	}
	if view.Released {
		t.Fatal("without a release date results never open")
	}
}

func TestStatisticsOnlyAfterFinalize(t *testing.T) {
	f := newFixture(t)
	f.addMCQ(10, "A")
	f.publish()
	f.intoWindow()
	f.submit("stu-1", map[string]string{"mcq:1": "A"})

	if _, err := f.svc.Statistics(context.Background(), f.exam.ID); !IsStateConflict(err) {
		t.Fatalf("stats before finalize: want StateConflict, got %v", err)
	}
	f.now = at(t, "2025-03-11", "10:00")
	if _, err := f.svc.Finalize(context.Background(), f.exam.ID, "lect-1"); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	st, err := f.svc.Statistics(context.Background(), f.exam.ID)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if st.TotalStudents != 1 || st.Mean != 100 {
		t.Fatalf("snapshot wrong: %+v", st)
	}
}

func TestQuestionNumberingAndRenumbering(t *testing.T) {
	f := newFixture(t)
	q1 := f.addMCQ(1, "A")
	q2 := f.addMCQ(1, "B")
	q3 := f.addMCQ(1, "C")
	s1 := f.addSA(5)

	if q1.QuestionNo != 1 || q2.QuestionNo != 2 || q3.QuestionNo != 3 {
		t.Fatalf("mcq numbering = %d,%d,%d", q1.QuestionNo, q2.QuestionNo, q3.QuestionNo)
	}
	if s1.QuestionNo != 1 {
		t.Fatalf("short answer numbering starts at 1 per type, got %d", s1.QuestionNo)
	}

	if err := f.svc.DeleteQuestion(context.Background(), f.exam.ID, q2.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	qs, err := f.svc.ListQuestions(context.Background(), f.exam.ID, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var mcqNos []int
	for _, q := range qs {
		if q.Type == TypeMCQ {
			mcqNos = append(mcqNos, q.QuestionNo)
		}
	}
	if len(mcqNos) != 2 || mcqNos[0] != 1 || mcqNos[1] != 2 {
		t.Fatalf("renumbering not dense: %v", mcqNos)
	}
}

func TestRegradeRepairsAfterRenumbering(t *testing.T) {
	f := newFixture(t)
	q1 := f.addMCQ(1, "A") // mcq:1
	f.addMCQ(1, "B")       // mcq:2
	f.publish()
	f.intoWindow()
	// student answers mcq:1 wrong, mcq:2 right
	f.submit("stu-1", map[string]string{"mcq:1": "C", "mcq:2": "B"})

	// deleting question 1 renumbers the old mcq:2 to mcq:1; stored
	// answer keys now point at shifted questions
	if err := f.svc.DeleteQuestion(context.Background(), f.exam.ID, q1.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	n, err := f.svc.Regrade(context.Background(), f.exam.ID)
	if err != nil {
		t.Fatalf("regrade: %v", err)
	}
	if n != 1 {
		t.Fatalf("regraded %d submissions, want 1", n)
	}
	sub, err := f.svc.GetSubmission(context.Background(), f.exam.ID, "stu-1")
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	// the old mcq:1 answer "C" now grades against the surviving
	// question whose correct option is B
	if sub.MCQTotal != 1 {
		t.Fatalf("mcq total = %v, want 1 after deletion", sub.MCQTotal)
	}
}

func TestRegradeRefusedAfterFinalize(t *testing.T) {
	f := newFixture(t)
	f.addMCQ(1, "A")
	f.publish()
	f.intoWindow()
	f.submit("stu-1", map[string]string{"mcq:1": "A"})
	f.now = at(t, "2025-03-11", "10:00")
	if _, err := f.svc.Finalize(context.Background(), f.exam.ID, "lect-1"); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if _, err := f.svc.Regrade(context.Background(), f.exam.ID); !IsLockViolation(err) {
		t.Fatalf("regrade after finalize: want LockViolation, got %v", err)
	}
}

func TestSetScheduleRejectsBlockingViolations(t *testing.T) {
	f := newFixture(t)
	_, vs, err := f.svc.SetSchedule(context.Background(), f.exam.ID, Schedule{
		GradingDeadlineDate: "2025-03-10", GradingDeadlineTime: "09:30", // before exam end
	}, "lect-1")
	if !IsValidation(err) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if len(vs) == 0 {
		t.Fatal("violations should accompany the rejection")
	}
	// nothing stored
	e, err := f.svc.GetExam(context.Background(), f.exam.ID)
	if err != nil {
		t.Fatalf("get exam: %v", err)
	}
	if e.HasGradingDeadline() {
		t.Fatalf("rejected schedule must not persist: %+v", e.Schedule)
	}
}

func TestSetScheduleKeepsWarnings(t *testing.T) {
	f := newFixture(t)
	_, vs, err := f.svc.SetSchedule(context.Background(), f.exam.ID, Schedule{
		GradingDeadlineDate: "2025-03-26", GradingDeadlineTime: "10:00", // 16 days: warning only
		ResultReleaseDate:   "2025-03-27", ResultReleaseTime: "10:00",
	}, "lect-1")
	if err != nil {
		t.Fatalf("warnings alone must not block: %v", err)
	}
	if len(vs) != 1 || vs[0].Rule != "long_grading_period" || vs[0].Severity != SeverityWarning {
		t.Fatalf("expected the long grading period warning, got %v", vs)
	}
	e, err := f.svc.GetExam(context.Background(), f.exam.ID)
	if err != nil {
		t.Fatalf("get exam: %v", err)
	}
	if !e.HasGradingDeadline() {
		t.Fatal("schedule with only warnings should persist")
	}
}

func TestCreateExamWarnsOnDurationMismatch(t *testing.T) {
	f := newFixture(t)
	_, warnings, err := f.svc.CreateExam(context.Background(), Exam{
		Title:           "Mismatched",
		ExamDate:        "2025-04-01",
		StartTime:       "09:00",
		EndTime:         "10:00",
		DurationMinutes: 90,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(warnings) != 1 || warnings[0].Rule != "duration_mismatch" {
		t.Fatalf("expected duration mismatch warning, got %v", warnings)
	}
}

func TestCreateExamRejectsBadFormats(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.CreateExam(context.Background(), Exam{
		Title: "Bad", ExamDate: "01/04/2025", StartTime: "09:00", DurationMinutes: 60,
	})
	if !IsFormat(err) {
		t.Fatalf("want FormatError, got %v", err)
	}
}

func TestUpdateExamInfoDraftOnly(t *testing.T) {
	f := newFixture(t)
	f.publish()
	e := f.exam
	e.Title = "Renamed"
	if _, _, err := f.svc.UpdateExamInfo(context.Background(), e); !IsStateConflict(err) {
		t.Fatalf("editing a published exam should conflict, got %v", err)
	}
}

func TestPublishTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	f.publish()
	if _, err := f.svc.PublishExam(context.Background(), f.exam.ID, "lect-1"); !IsStateConflict(err) {
		t.Fatal("second publish should conflict")
	}
}

func TestAddQuestionValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AddQuestion(context.Background(), Question{
		ExamID: f.exam.ID, Type: TypeMCQ, Text: "q", Marks: 0, CorrectOption: "E",
	})
	if !IsValidation(err) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	ve := err.(*ValidationError)
	if len(ve.Violations) != 2 {
		t.Fatalf("both violations together, got %v", ve.Violations)
	}
}

func TestAddQuestionAfterFinalizeLocked(t *testing.T) {
	f := newFixture(t)
	f.addMCQ(1, "A")
	f.publish()
	f.intoWindow()
	f.submit("stu-1", map[string]string{"mcq:1": "A"})
	f.now = at(t, "2025-03-11", "10:00")
	if _, err := f.svc.Finalize(context.Background(), f.exam.ID, "lect-1"); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if _, err := f.svc.AddQuestion(context.Background(), Question{
		ExamID: f.exam.ID, Type: TypeMCQ, Text: "late", Marks: 1, CorrectOption: "A",
	}); !IsLockViolation(err) {
		t.Fatalf("catalog is locked after finalize, got %v", err)
	}
}
