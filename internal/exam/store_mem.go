package exam

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/campushq/examgate/internal/grading"
)

// memStore keeps everything behind one RWMutex, which also serializes
// question renumbering. Used by tests and the dev profile.
type memStore struct {
	mu          sync.RWMutex
	exams       map[string]Exam
	questions   map[string][]Question   // examID -> questions
	submissions map[string][]Submission // examID -> submissions
}

func NewMemStore() Store {
	return &memStore{
		exams:       map[string]Exam{},
		questions:   map[string][]Question{},
		submissions: map[string][]Submission{},
	}
}

func (m *memStore) CreateExam(_ context.Context, e Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	m.exams[e.ID] = e
	return nil
}

func (m *memStore) GetExam(_ context.Context, id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, &NotFoundError{Kind: "exam", ID: id}
	}
	return e, nil
}

func (m *memStore) ListExams(_ context.Context, opts ListOpts) ([]Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Exam, 0, len(m.exams))
	for _, e := range m.exams {
		if opts.Status != "" && e.Status != opts.Status {
			continue
		}
		if opts.Q != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(opts.Q)) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExamDate != out[j].ExamDate {
			return out[i].ExamDate < out[j].ExamDate
		}
		return out[i].ID < out[j].ID
	})
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return []Exam{}, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *memStore) UpdateExamInfo(_ context.Context, e Exam) (Exam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.exams[e.ID]
	if !ok {
		return Exam{}, &NotFoundError{Kind: "exam", ID: e.ID}
	}
	cur.Title = e.Title
	cur.Description = e.Description
	cur.Instructions = e.Instructions
	cur.ExamDate = e.ExamDate
	cur.StartTime = e.StartTime
	cur.EndTime = e.EndTime
	cur.DurationMinutes = e.DurationMinutes
	m.exams[cur.ID] = cur
	return cur, nil
}

func (m *memStore) PublishExam(_ context.Context, id string) (Exam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, &NotFoundError{Kind: "exam", ID: id}
	}
	if e.Status == StatusPublished {
		return Exam{}, &StateConflict{Reason: "exam already published"}
	}
	e.Status = StatusPublished
	m.exams[id] = e
	return e, nil
}

func (m *memStore) SetSchedule(_ context.Context, examID string, sch Schedule) (Exam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exams[examID]
	if !ok {
		return Exam{}, &NotFoundError{Kind: "exam", ID: examID}
	}
	e.Schedule = sch
	m.exams[examID] = e
	return e, nil
}

func (m *memStore) FinalizeExam(_ context.Context, examID, by string, at int64, stats *grading.Statistics) (Exam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exams[examID]
	if !ok {
		return Exam{}, &NotFoundError{Kind: "exam", ID: examID}
	}
	// conditional write: the flag flips exactly once
	if e.ResultsFinalized {
		return Exam{}, &StateConflict{Reason: "exam already finalized"}
	}
	e.ResultsFinalized = true
	e.FinalizedAt = at
	e.FinalizedBy = by
	e.Statistics = stats
	m.exams[examID] = e
	return e, nil
}

func (m *memStore) AddQuestion(_ context.Context, q Question) (Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exams[q.ExamID]; !ok {
		return Question{}, &NotFoundError{Kind: "exam", ID: q.ExamID}
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	next := 1
	for _, existing := range m.questions[q.ExamID] {
		if existing.Type == q.Type {
			next++
		}
	}
	q.QuestionNo = next
	m.questions[q.ExamID] = append(m.questions[q.ExamID], q)
	return q, nil
}

func (m *memStore) ListQuestions(_ context.Context, examID string) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.exams[examID]; !ok {
		return nil, &NotFoundError{Kind: "exam", ID: examID}
	}
	qs := append([]Question(nil), m.questions[examID]...)
	sort.Slice(qs, func(i, j int) bool {
		if qs[i].Type != qs[j].Type {
			return qs[i].Type < qs[j].Type
		}
		return qs[i].QuestionNo < qs[j].QuestionNo
	})
	return qs, nil
}

func (m *memStore) DeleteQuestion(_ context.Context, examID, questionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	qs := m.questions[examID]
	idx := -1
	for i, q := range qs {
		if q.ID == questionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &NotFoundError{Kind: "question", ID: questionID}
	}
	deleted := qs[idx]
	qs = append(qs[:idx], qs[idx+1:]...)
	// renumber the deleted question's type densely from 1, keeping order
	no := 0
	for i := range qs {
		if qs[i].Type == deleted.Type {
			no++
			qs[i].QuestionNo = no
		}
	}
	m.questions[examID] = qs
	return nil
}

func (m *memStore) CreateSubmission(_ context.Context, sub Submission) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exams[sub.ExamID]; !ok {
		return Submission{}, &NotFoundError{Kind: "exam", ID: sub.ExamID}
	}
	// uniqueness check and insert under one lock
	for _, existing := range m.submissions[sub.ExamID] {
		if existing.StudentID == sub.StudentID {
			return Submission{}, &StateConflict{Reason: "submission already exists for this student"}
		}
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	m.submissions[sub.ExamID] = append(m.submissions[sub.ExamID], sub)
	return sub, nil
}

func (m *memStore) GetSubmission(_ context.Context, examID, studentID string) (Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.submissions[examID] {
		if s.StudentID == studentID {
			return s, nil
		}
	}
	return Submission{}, &NotFoundError{Kind: "submission", ID: examID + "/" + studentID}
}

func (m *memStore) ListSubmissions(_ context.Context, examID string) ([]Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.exams[examID]; !ok {
		return nil, &NotFoundError{Kind: "exam", ID: examID}
	}
	out := append([]Submission(nil), m.submissions[examID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

func (m *memStore) UpdateSubmissionGrading(_ context.Context, sub Submission) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.submissions[sub.ExamID]
	for i, s := range subs {
		if s.StudentID == sub.StudentID {
			s.MCQResult = sub.MCQResult
			s.SAGrades = sub.SAGrades
			s.MCQScore = sub.MCQScore
			s.MCQTotal = sub.MCQTotal
			s.SAObtained = sub.SAObtained
			s.SATotal = sub.SATotal
			s.OverallObtained = sub.OverallObtained
			s.OverallTotal = sub.OverallTotal
			s.OverallPercentage = sub.OverallPercentage
			s.MCQGraded = sub.MCQGraded
			s.SAGraded = sub.SAGraded
			subs[i] = s
			return s, nil
		}
	}
	return Submission{}, &NotFoundError{Kind: "submission", ID: sub.ExamID + "/" + sub.StudentID}
}
