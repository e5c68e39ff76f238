package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps sessions in SQLite. With the default in-memory DSN the
// data lives only as long as the process, same as MemoryStore.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewSQLiteStore opens dsn and creates the tables if they don't exist.
func NewSQLiteStore(dsn string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger, now: time.Now}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		interview_type TEXT NOT NULL,
		role TEXT NOT NULL,
		experience_level TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		questions_asked INTEGER NOT NULL DEFAULT 0,
		total_score INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		score INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, id);
	`
	_, err := db.Exec(schema)
	return err
}

// SetClock replaces the time source. Intended for tests.
func (s *SQLiteStore) SetClock(now func() time.Time) {
	s.now = now
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, interviewType InterviewType, role string, level ExperienceLevel) (string, error) {
	now := s.now()
	for {
		id := uuid.New().String()
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO sessions (id, interview_type, role, experience_level, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			id, string(interviewType), role, string(level), now.UnixNano(),
		)
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("insert session: %w", err)
		}
		s.logger.Info("created session", "session_id", id, "interview_type", interviewType)
		return id, nil
	}
}

// Get reads the session row and its turns in one transaction so the snapshot
// never mixes counters and turns from different writes.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	sess, err := loadSession(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT question, answer, score, created_at FROM turns WHERE session_id = ? ORDER BY id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t  Turn
			ts int64
		)
		if err := rows.Scan(&t.Question, &t.Answer, &t.Score, &ts); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		t.Timestamp = time.Unix(0, ts)
		sess.History = append(sess.History, t)
		sess.Scores = append(sess.Scores, t.Score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("close turns: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return sess, nil
}

func loadSession(ctx context.Context, tx *sql.Tx, id string) (*Session, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT id, interview_type, role, experience_level, created_at, questions_asked, total_score
		 FROM sessions WHERE id = ?`,
		id,
	)

	var (
		sess    Session
		created int64
	)
	err := row.Scan(&sess.ID, &sess.InterviewType, &sess.Role, &sess.ExperienceLevel, &created, &sess.QuestionsAsked, &sess.TotalScore)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	sess.CreatedAt = time.Unix(0, created)
	sess.Scores = []int{}
	sess.History = []Turn{}
	return &sess, nil
}

func (s *SQLiteStore) RecordTurn(ctx context.Context, id string, score int, question, answer string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET questions_asked = questions_asked + 1, total_score = total_score + ? WHERE id = ?`,
		score, id,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		s.logger.Warn("record turn for unknown session ignored", "session_id", id, "score", score)
		return ErrSessionNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO turns (session_id, question, answer, score, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, question, answer, score, s.now().UnixNano(),
	); err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	s.logger.Info("session updated", "session_id", id, "score", score)
	return nil
}

func (s *SQLiteStore) Stats(ctx context.Context, id string) (*Stats, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return StatsOf(sess), nil
}

func (s *SQLiteStore) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := s.now().Add(-maxAge).UnixNano()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM turns WHERE session_id IN (SELECT id FROM sessions WHERE created_at < ?)`,
		cutoff,
	); err != nil {
		return 0, fmt.Errorf("delete turns: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	if removed > 0 {
		s.logger.Info("cleaned up sessions", "count", removed)
	}
	return int(removed), nil
}
