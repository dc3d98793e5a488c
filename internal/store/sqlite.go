package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/kwararru/shell/internal/shared/id"
	"github.com/kwararru/shell/internal/shared/types"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// SQLite is a Store backed by a SQLite database file
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
// ":memory:" gives a private in-memory database.
func OpenSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *SQLite) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS study_sessions (
		id        TEXT PRIMARY KEY,
		subject   TEXT NOT NULL,
		duration  INTEGER NOT NULL DEFAULT 0,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_subject   ON study_sessions(subject);
	CREATE INDEX IF NOT EXISTS idx_sessions_timestamp ON study_sessions(timestamp);

	CREATE TABLE IF NOT EXISTS quiz_results (
		id              TEXT PRIMARY KEY,
		subject         TEXT NOT NULL,
		score           INTEGER NOT NULL,
		total_questions INTEGER NOT NULL,
		correct_answers INTEGER NOT NULL,
		completed_at    TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_quiz_subject      ON quiz_results(subject);
	CREATE INDEX IF NOT EXISTS idx_quiz_completed_at ON quiz_results(completed_at);

	CREATE TABLE IF NOT EXISTS flashcard_decks (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		subject          TEXT NOT NULL,
		cards            TEXT NOT NULL DEFAULT '[]',
		created_at       TEXT NOT NULL,
		last_reviewed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_decks_name    ON flashcard_decks(name);
	CREATE INDEX IF NOT EXISTS idx_decks_subject ON flashcard_decks(subject);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// Timestamps are stored as fixed-width UTC text so they sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func (s *SQLite) AddSession(ctx context.Context, sess types.StudySession) (string, error) {
	sess.ID = id.NewStudySessionID().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO study_sessions (id, subject, duration, timestamp) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.Subject, sess.Duration, formatTime(sess.Timestamp))
	if err != nil {
		return "", unavailable("add_session", err)
	}
	return sess.ID, nil
}

func (s *SQLite) ListSessions(ctx context.Context, limit int) ([]types.StudySession, error) {
	q := `SELECT id, subject, duration, timestamp FROM study_sessions ORDER BY timestamp DESC, id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.querySessions(ctx, "list_sessions", q, args...)
}

func (s *SQLite) SessionsBySubject(ctx context.Context, subject string) ([]types.StudySession, error) {
	return s.querySessions(ctx, "sessions_by_subject",
		`SELECT id, subject, duration, timestamp FROM study_sessions
		 WHERE subject = ? ORDER BY timestamp DESC, id DESC`, subject)
}

func (s *SQLite) querySessions(ctx context.Context, op, q string, args ...any) ([]types.StudySession, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable(op, err)
	}
	defer rows.Close()

	out := []types.StudySession{}
	for rows.Next() {
		var (
			sess types.StudySession
			ts   string
		)
		if err := rows.Scan(&sess.ID, &sess.Subject, &sess.Duration, &ts); err != nil {
			return nil, unavailable(op, err)
		}
		if sess.Timestamp, err = parseTime(ts); err != nil {
			return nil, unavailable(op, err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(op, err)
	}
	return out, nil
}

func (s *SQLite) AddQuizResult(ctx context.Context, r types.QuizResult) (string, error) {
	r.ID = id.NewQuizResultID().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quiz_results (id, subject, score, total_questions, correct_answers, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Subject, r.Score, r.TotalQuestions, r.CorrectAnswers, formatTime(r.CompletedAt))
	if err != nil {
		return "", unavailable("add_quiz_result", err)
	}
	return r.ID, nil
}

func (s *SQLite) ListQuizResults(ctx context.Context, limit int) ([]types.QuizResult, error) {
	q := `SELECT id, subject, score, total_questions, correct_answers, completed_at
	      FROM quiz_results ORDER BY completed_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryQuizzes(ctx, "list_quiz_results", q, args...)
}

func (s *SQLite) QuizResultsBySubject(ctx context.Context, subject string) ([]types.QuizResult, error) {
	return s.queryQuizzes(ctx, "quiz_results_by_subject",
		`SELECT id, subject, score, total_questions, correct_answers, completed_at
		 FROM quiz_results WHERE subject = ? ORDER BY completed_at DESC, id DESC`, subject)
}

func (s *SQLite) queryQuizzes(ctx context.Context, op, q string, args ...any) ([]types.QuizResult, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable(op, err)
	}
	defer rows.Close()

	out := []types.QuizResult{}
	for rows.Next() {
		var (
			r  types.QuizResult
			ts string
		)
		if err := rows.Scan(&r.ID, &r.Subject, &r.Score, &r.TotalQuestions, &r.CorrectAnswers, &ts); err != nil {
			return nil, unavailable(op, err)
		}
		if r.CompletedAt, err = parseTime(ts); err != nil {
			return nil, unavailable(op, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(op, err)
	}
	return out, nil
}

func (s *SQLite) AddDeck(ctx context.Context, d types.Deck) (string, error) {
	cards, err := encodeCards(d.Cards)
	if err != nil {
		return "", fmt.Errorf("encode cards: %w", err)
	}

	d.ID = id.NewDeckID().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO flashcard_decks (id, name, subject, cards, created_at, last_reviewed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Subject, cards, formatTime(d.CreatedAt), nullableTime(d.LastReviewedAt))
	if err != nil {
		return "", unavailable("add_deck", err)
	}
	return d.ID, nil
}

func (s *SQLite) ListDecks(ctx context.Context) ([]types.Deck, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, subject, cards, created_at, last_reviewed_at
		 FROM flashcard_decks ORDER BY id`)
	if err != nil {
		return nil, unavailable("list_decks", err)
	}
	defer rows.Close()

	out := []types.Deck{}
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, unavailable("list_decks", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list_decks", err)
	}
	return out, nil
}

func (s *SQLite) GetDeck(ctx context.Context, deckID string) (types.Deck, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, subject, cards, created_at, last_reviewed_at
		 FROM flashcard_decks WHERE id = ?`, deckID)

	d, err := scanDeck(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Deck{}, notFound("deck", deckID)
	}
	if err != nil {
		return types.Deck{}, unavailable("get_deck", err)
	}
	return d, nil
}

func (s *SQLite) UpdateDeck(ctx context.Context, d types.Deck) error {
	cards, err := encodeCards(d.Cards)
	if err != nil {
		return fmt.Errorf("encode cards: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE flashcard_decks
		 SET name = ?, subject = ?, cards = ?, created_at = ?, last_reviewed_at = ?
		 WHERE id = ?`,
		d.Name, d.Subject, cards, formatTime(d.CreatedAt), nullableTime(d.LastReviewedAt), d.ID)
	if err != nil {
		return unavailable("update_deck", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("update_deck", err)
	}
	if n == 0 {
		return notFound("deck", d.ID)
	}
	return nil
}

func (s *SQLite) DeleteDeck(ctx context.Context, deckID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM flashcard_decks WHERE id = ?`, deckID); err != nil {
		return unavailable("delete_deck", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDeck(row scanner) (types.Deck, error) {
	var (
		d        types.Deck
		cards    string
		created  string
		reviewed sql.NullString
	)
	if err := row.Scan(&d.ID, &d.Name, &d.Subject, &cards, &created, &reviewed); err != nil {
		return d, err
	}

	var err error
	if d.Cards, err = decodeCards(cards); err != nil {
		return d, fmt.Errorf("decode cards of %s: %w", d.ID, err)
	}
	if d.CreatedAt, err = parseTime(created); err != nil {
		return d, err
	}
	if reviewed.Valid {
		t, err := parseTime(reviewed.String)
		if err != nil {
			return d, err
		}
		d.LastReviewedAt = &t
	}
	return d, nil
}

func encodeCards(cards []types.Flashcard) (string, error) {
	if cards == nil {
		cards = []types.Flashcard{}
	}
	return sonic.MarshalString(cards)
}

func decodeCards(raw string) ([]types.Flashcard, error) {
	cards := []types.Flashcard{}
	if err := sonic.UnmarshalString(raw, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
