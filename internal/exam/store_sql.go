package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/campushq/examgate/internal/grading"
)

// SQLStore persists exams, questions and submissions over database/sql.
// Queries use $1 placeholders, which both the pgx stdlib driver and
// modernc sqlite accept. The at-most-once invariants live in the
// statements themselves: a unique index on (exam_id, student_id) guards
// submissions, and finalize/publish are conditional updates.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

const examColumns = `id,title,description,instructions,exam_date,start_time,end_time,duration_minutes,status,
	grading_deadline_date,grading_deadline_time,result_release_date,result_release_time,
	results_finalized,finalized_at,finalized_by,statistics_json,created_by,created_at`

func scanExam(row interface{ Scan(...any) error }) (Exam, error) {
	var (
		e           Exam
		status      string
		finalizedAt sql.NullInt64
		statsJSON   string
	)
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Instructions, &e.ExamDate, &e.StartTime, &e.EndTime,
		&e.DurationMinutes, &status,
		&e.GradingDeadlineDate, &e.GradingDeadlineTime, &e.ResultReleaseDate, &e.ResultReleaseTime,
		&e.ResultsFinalized, &finalizedAt, &e.FinalizedBy, &statsJSON, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return Exam{}, err
	}
	e.Status = Status(status)
	if finalizedAt.Valid {
		e.FinalizedAt = finalizedAt.Int64
	}
	if statsJSON != "" {
		var st grading.Statistics
		if err := json.Unmarshal([]byte(statsJSON), &st); err != nil {
			return Exam{}, fmt.Errorf("decode exam statistics: %w", err)
		}
		e.Statistics = &st
	}
	return e, nil
}

func (s *SQLStore) CreateExam(ctx context.Context, e Exam) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO exams
		(id,title,description,instructions,exam_date,start_time,end_time,duration_minutes,status,
		 grading_deadline_date,grading_deadline_time,result_release_date,result_release_time,
		 results_finalized,finalized_by,statistics_json,created_by,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		e.ID, e.Title, e.Description, e.Instructions, e.ExamDate, e.StartTime, e.EndTime, e.DurationMinutes, string(e.Status),
		e.GradingDeadlineDate, e.GradingDeadlineTime, e.ResultReleaseDate, e.ResultReleaseTime,
		false, "", "", e.CreatedBy, e.CreatedAt)
	return err
}

func (s *SQLStore) GetExam(ctx context.Context, id string) (Exam, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+examColumns+` FROM exams WHERE id=$1`, id)
	e, err := scanExam(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Exam{}, &NotFoundError{Kind: "exam", ID: id}
	}
	return e, err
}

func (s *SQLStore) ListExams(ctx context.Context, opts ListOpts) ([]Exam, error) {
	q := `SELECT ` + examColumns + ` FROM exams`
	var (
		conds []string
		args  []any
	)
	if opts.Status != "" {
		args = append(args, string(opts.Status))
		conds = append(conds, fmt.Sprintf("status=$%d", len(args)))
	}
	if opts.Q != "" {
		args = append(args, "%"+strings.ToLower(opts.Q)+"%")
		conds = append(conds, fmt.Sprintf("LOWER(title) LIKE $%d", len(args)))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY exam_date, id"
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateExamInfo(ctx context.Context, e Exam) (Exam, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE exams SET
		title=$1, description=$2, instructions=$3, exam_date=$4, start_time=$5, end_time=$6, duration_minutes=$7
		WHERE id=$8`,
		e.Title, e.Description, e.Instructions, e.ExamDate, e.StartTime, e.EndTime, e.DurationMinutes, e.ID)
	if err != nil {
		return Exam{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Exam{}, &NotFoundError{Kind: "exam", ID: e.ID}
	}
	return s.GetExam(ctx, e.ID)
}

func (s *SQLStore) PublishExam(ctx context.Context, id string) (Exam, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE exams SET status=$1 WHERE id=$2 AND status=$3`,
		string(StatusPublished), id, string(StatusDraft))
	if err != nil {
		return Exam{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// lost either to a missing row or to an earlier publish
		if _, err := s.GetExam(ctx, id); err != nil {
			return Exam{}, err
		}
		return Exam{}, &StateConflict{Reason: "exam already published"}
	}
	return s.GetExam(ctx, id)
}

func (s *SQLStore) SetSchedule(ctx context.Context, examID string, sch Schedule) (Exam, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE exams SET
		grading_deadline_date=$1, grading_deadline_time=$2, result_release_date=$3, result_release_time=$4
		WHERE id=$5`,
		sch.GradingDeadlineDate, sch.GradingDeadlineTime, sch.ResultReleaseDate, sch.ResultReleaseTime, examID)
	if err != nil {
		return Exam{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Exam{}, &NotFoundError{Kind: "exam", ID: examID}
	}
	return s.GetExam(ctx, examID)
}

func (s *SQLStore) FinalizeExam(ctx context.Context, examID, by string, at int64, stats *grading.Statistics) (Exam, error) {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return Exam{}, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE exams SET
		results_finalized=$1, finalized_at=$2, finalized_by=$3, statistics_json=$4
		WHERE id=$5 AND results_finalized=$6`,
		true, at, by, string(statsJSON), examID, false)
	if err != nil {
		return Exam{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.GetExam(ctx, examID); err != nil {
			return Exam{}, err
		}
		return Exam{}, &StateConflict{Reason: "exam already finalized"}
	}
	return s.GetExam(ctx, examID)
}

const questionColumns = `id,exam_id,type,question_no,text,marks,option_a,option_b,option_c,option_d,correct_option,sample_answer`

func scanQuestion(row interface{ Scan(...any) error }) (Question, error) {
	var (
		q   Question
		typ string
	)
	err := row.Scan(&q.ID, &q.ExamID, &typ, &q.QuestionNo, &q.Text, &q.Marks,
		&q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectOption, &q.SampleAnswer)
	if err != nil {
		return Question{}, err
	}
	q.Type = QuestionType(typ)
	return q, nil
}

func (s *SQLStore) AddQuestion(ctx context.Context, q Question) (Question, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Question{}, err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM exams WHERE id=$1`, q.ExamID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, &NotFoundError{Kind: "exam", ID: q.ExamID}
		}
		return Question{}, err
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(question_no),0)+1 FROM questions WHERE exam_id=$1 AND type=$2`,
		q.ExamID, string(q.Type)).Scan(&q.QuestionNo); err != nil {
		return Question{}, err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO questions
		(id,exam_id,type,question_no,text,marks,option_a,option_b,option_c,option_d,correct_option,sample_answer)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		q.ID, q.ExamID, string(q.Type), q.QuestionNo, q.Text, q.Marks,
		q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectOption, q.SampleAnswer)
	if err != nil {
		return Question{}, err
	}
	if err := tx.Commit(); err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) ListQuestions(ctx context.Context, examID string) ([]Question, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM exams WHERE id=$1`, examID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Kind: "exam", ID: examID}
		}
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE exam_id=$1 ORDER BY type, question_no`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// DeleteQuestion removes the row and renumbers the remaining questions
// of the same type inside one transaction. Renumbering ascends so the
// (exam_id, type, question_no) unique index stays satisfied throughout.
func (s *SQLStore) DeleteQuestion(ctx context.Context, examID, questionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var typ string
	err = tx.QueryRowContext(ctx,
		`SELECT type FROM questions WHERE id=$1 AND exam_id=$2`, questionID, examID).Scan(&typ)
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Kind: "question", ID: questionID}
	}
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, questionID); err != nil {
		return err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM questions WHERE exam_id=$1 AND type=$2 ORDER BY question_no`, examID, typ)
	if err != nil {
		return err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for i, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`UPDATE questions SET question_no=$1 WHERE id=$2`, i+1, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const submissionColumns = `id,exam_id,student_id,answers_json,submitted_at,auto_submitted,
	mcq_result_json,sa_grades_json,mcq_score,mcq_total,sa_obtained,sa_total,
	overall_obtained,overall_total,overall_percentage,mcq_graded,sa_graded`

func scanSubmission(row interface{ Scan(...any) error }) (Submission, error) {
	var (
		sub         Submission
		answersJSON string
		mcqJSON     string
		saJSON      string
	)
	err := row.Scan(&sub.ID, &sub.ExamID, &sub.StudentID, &answersJSON, &sub.SubmittedAt, &sub.AutoSubmitted,
		&mcqJSON, &saJSON, &sub.MCQScore, &sub.MCQTotal, &sub.SAObtained, &sub.SATotal,
		&sub.OverallObtained, &sub.OverallTotal, &sub.OverallPercentage, &sub.MCQGraded, &sub.SAGraded)
	if err != nil {
		return Submission{}, err
	}
	if err := json.Unmarshal([]byte(answersJSON), &sub.Answers); err != nil {
		return Submission{}, fmt.Errorf("decode submission answers: %w", err)
	}
	if mcqJSON != "" {
		var r grading.MCQResult
		if err := json.Unmarshal([]byte(mcqJSON), &r); err != nil {
			return Submission{}, fmt.Errorf("decode mcq result: %w", err)
		}
		sub.MCQResult = &r
	}
	if saJSON != "" {
		if err := json.Unmarshal([]byte(saJSON), &sub.SAGrades); err != nil {
			return Submission{}, fmt.Errorf("decode short-answer grades: %w", err)
		}
	}
	return sub, nil
}

func marshalGradingBlobs(sub Submission) (mcqJSON, saJSON string, err error) {
	if sub.MCQResult != nil {
		buf, err := json.Marshal(sub.MCQResult)
		if err != nil {
			return "", "", err
		}
		mcqJSON = string(buf)
	}
	if len(sub.SAGrades) > 0 {
		buf, err := json.Marshal(sub.SAGrades)
		if err != nil {
			return "", "", err
		}
		saJSON = string(buf)
	}
	return mcqJSON, saJSON, nil
}

func (s *SQLStore) CreateSubmission(ctx context.Context, sub Submission) (Submission, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM exams WHERE id=$1`, sub.ExamID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, &NotFoundError{Kind: "exam", ID: sub.ExamID}
		}
		return Submission{}, err
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	answersJSON, err := json.Marshal(sub.Answers)
	if err != nil {
		return Submission{}, err
	}
	mcqJSON, saJSON, err := marshalGradingBlobs(sub)
	if err != nil {
		return Submission{}, err
	}
	// the unique index is the arbiter under concurrent double submits
	res, err := s.db.ExecContext(ctx, `INSERT INTO submissions
		(id,exam_id,student_id,answers_json,submitted_at,auto_submitted,
		 mcq_result_json,sa_grades_json,mcq_score,mcq_total,sa_obtained,sa_total,
		 overall_obtained,overall_total,overall_percentage,mcq_graded,sa_graded)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (exam_id, student_id) DO NOTHING`,
		sub.ID, sub.ExamID, sub.StudentID, string(answersJSON), sub.SubmittedAt, sub.AutoSubmitted,
		mcqJSON, saJSON, sub.MCQScore, sub.MCQTotal, sub.SAObtained, sub.SATotal,
		sub.OverallObtained, sub.OverallTotal, sub.OverallPercentage, sub.MCQGraded, sub.SAGraded)
	if err != nil {
		return Submission{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Submission{}, &StateConflict{Reason: "submission already exists for this student"}
	}
	return sub, nil
}

func (s *SQLStore) GetSubmission(ctx context.Context, examID, studentID string) (Submission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE exam_id=$1 AND student_id=$2`, examID, studentID)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, &NotFoundError{Kind: "submission", ID: examID + "/" + studentID}
	}
	return sub, err
}

func (s *SQLStore) ListSubmissions(ctx context.Context, examID string) ([]Submission, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM exams WHERE id=$1`, examID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Kind: "exam", ID: examID}
		}
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE exam_id=$1 ORDER BY student_id`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateSubmissionGrading(ctx context.Context, sub Submission) (Submission, error) {
	mcqJSON, saJSON, err := marshalGradingBlobs(sub)
	if err != nil {
		return Submission{}, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE submissions SET
		mcq_result_json=$1, sa_grades_json=$2, mcq_score=$3, mcq_total=$4, sa_obtained=$5, sa_total=$6,
		overall_obtained=$7, overall_total=$8, overall_percentage=$9, mcq_graded=$10, sa_graded=$11
		WHERE exam_id=$12 AND student_id=$13`,
		mcqJSON, saJSON, sub.MCQScore, sub.MCQTotal, sub.SAObtained, sub.SATotal,
		sub.OverallObtained, sub.OverallTotal, sub.OverallPercentage, sub.MCQGraded, sub.SAGraded,
		sub.ExamID, sub.StudentID)
	if err != nil {
		return Submission{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Submission{}, &NotFoundError{Kind: "submission", ID: sub.ExamID + "/" + sub.StudentID}
	}
	return s.GetSubmission(ctx, sub.ExamID, sub.StudentID)
}
