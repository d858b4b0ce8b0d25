package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:examgate.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/examgate?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  display_name TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'student',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS exams (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  instructions TEXT NOT NULL DEFAULT '',
  exam_date TEXT NOT NULL,
  start_time TEXT NOT NULL,
  end_time TEXT NOT NULL DEFAULT '',
  duration_minutes INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  grading_deadline_date TEXT NOT NULL DEFAULT '',
  grading_deadline_time TEXT NOT NULL DEFAULT '',
  result_release_date TEXT NOT NULL DEFAULT '',
  result_release_time TEXT NOT NULL DEFAULT '',
  results_finalized INTEGER NOT NULL DEFAULT 0,
  finalized_at INTEGER,
  finalized_by TEXT NOT NULL DEFAULT '',
  statistics_json TEXT NOT NULL DEFAULT '',
  created_by TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  type TEXT NOT NULL,
  question_no INTEGER NOT NULL,
  text TEXT NOT NULL,
  marks REAL NOT NULL,
  option_a TEXT NOT NULL DEFAULT '',
  option_b TEXT NOT NULL DEFAULT '',
  option_c TEXT NOT NULL DEFAULT '',
  option_d TEXT NOT NULL DEFAULT '',
  correct_option TEXT NOT NULL DEFAULT '',
  sample_answer TEXT NOT NULL DEFAULT '',
  UNIQUE (exam_id, type, question_no)
);

CREATE TABLE IF NOT EXISTS submissions (
  id TEXT PRIMARY KEY,
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL,
  answers_json TEXT NOT NULL,
  submitted_at INTEGER NOT NULL,
  auto_submitted INTEGER NOT NULL DEFAULT 0,
  mcq_result_json TEXT NOT NULL DEFAULT '',
  sa_grades_json TEXT NOT NULL DEFAULT '',
  mcq_score REAL NOT NULL DEFAULT 0,
  mcq_total REAL NOT NULL DEFAULT 0,
  sa_obtained REAL NOT NULL DEFAULT 0,
  sa_total REAL NOT NULL DEFAULT 0,
  overall_obtained REAL NOT NULL DEFAULT 0,
  overall_total REAL NOT NULL DEFAULT 0,
  overall_percentage REAL NOT NULL DEFAULT 0,
  mcq_graded INTEGER NOT NULL DEFAULT 0,
  sa_graded INTEGER NOT NULL DEFAULT 0,
  UNIQUE (exam_id, student_id)
);

CREATE TABLE IF NOT EXISTS audit_events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  kind TEXT NOT NULL,
  exam_id TEXT NOT NULL DEFAULT '',
  actor_id TEXT NOT NULL DEFAULT '',
  data TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  display_name TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'student',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS exams (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  instructions TEXT NOT NULL DEFAULT '',
  exam_date TEXT NOT NULL,
  start_time TEXT NOT NULL,
  end_time TEXT NOT NULL DEFAULT '',
  duration_minutes INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  grading_deadline_date TEXT NOT NULL DEFAULT '',
  grading_deadline_time TEXT NOT NULL DEFAULT '',
  result_release_date TEXT NOT NULL DEFAULT '',
  result_release_time TEXT NOT NULL DEFAULT '',
  results_finalized BOOLEAN NOT NULL DEFAULT FALSE,
  finalized_at BIGINT,
  finalized_by TEXT NOT NULL DEFAULT '',
  statistics_json TEXT NOT NULL DEFAULT '',
  created_by TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  type TEXT NOT NULL,
  question_no INTEGER NOT NULL,
  text TEXT NOT NULL,
  marks DOUBLE PRECISION NOT NULL,
  option_a TEXT NOT NULL DEFAULT '',
  option_b TEXT NOT NULL DEFAULT '',
  option_c TEXT NOT NULL DEFAULT '',
  option_d TEXT NOT NULL DEFAULT '',
  correct_option TEXT NOT NULL DEFAULT '',
  sample_answer TEXT NOT NULL DEFAULT '',
  UNIQUE (exam_id, type, question_no)
);

CREATE TABLE IF NOT EXISTS submissions (
  id TEXT PRIMARY KEY,
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL,
  answers_json TEXT NOT NULL,
  submitted_at BIGINT NOT NULL,
  auto_submitted BOOLEAN NOT NULL DEFAULT FALSE,
  mcq_result_json TEXT NOT NULL DEFAULT '',
  sa_grades_json TEXT NOT NULL DEFAULT '',
  mcq_score DOUBLE PRECISION NOT NULL DEFAULT 0,
  mcq_total DOUBLE PRECISION NOT NULL DEFAULT 0,
  sa_obtained DOUBLE PRECISION NOT NULL DEFAULT 0,
  sa_total DOUBLE PRECISION NOT NULL DEFAULT 0,
  overall_obtained DOUBLE PRECISION NOT NULL DEFAULT 0,
  overall_total DOUBLE PRECISION NOT NULL DEFAULT 0,
  overall_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
  mcq_graded BOOLEAN NOT NULL DEFAULT FALSE,
  sa_graded BOOLEAN NOT NULL DEFAULT FALSE,
  UNIQUE (exam_id, student_id)
);

CREATE TABLE IF NOT EXISTS audit_events (
  id BIGSERIAL PRIMARY KEY,
  kind TEXT NOT NULL,
  exam_id TEXT NOT NULL DEFAULT '',
  actor_id TEXT NOT NULL DEFAULT '',
  data TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL
);
`
