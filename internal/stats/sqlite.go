package stats

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starquake/kioskquiz/internal/database"
	"github.com/starquake/kioskquiz/internal/logging"
	"github.com/starquake/kioskquiz/internal/quiz"
)

const (
	getEntrySQL = `SELECT total_answers, correct_answers, answer_stats FROM statistics
WHERE quiz_type = ? AND question_id = ?`
	upsertEntrySQL = `INSERT INTO statistics (quiz_type, question_id, total_answers, correct_answers, answer_stats, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (quiz_type, question_id) DO UPDATE SET
    total_answers = excluded.total_answers,
    correct_answers = excluded.correct_answers,
    answer_stats = excluded.answer_stats,
    updated_at = excluded.updated_at`
	listEntriesSQL = `SELECT quiz_type, question_id, total_answers, correct_answers, answer_stats FROM statistics
ORDER BY rowid`
	deleteEntrySQL = `DELETE FROM statistics WHERE quiz_type = ? AND question_id = ?`
)

// SQLiteStore keeps entries in the statistics table of a SQLite database.
// The accuracy column is not stored; it is derived when an entry is read.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger

	mu sync.Mutex
}

// NewSQLiteStore creates a new SQLiteStore. The database must be migrated.
func NewSQLiteStore(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	return &SQLiteStore{db: db, logger: logger}
}

// Ping checks the connection to the database.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// RecordAnswer adds a to the entry of its question inside a transaction.
func (s *SQLiteStore) RecordAnswer(ctx context.Context, a Answer) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var e *Entry
	err := database.ExecTx(ctx, s.db, func(tx *sql.Tx) error {
		var txErr error
		e, txErr = getEntry(ctx, tx, a.QuizType, a.QuestionID)
		if txErr != nil {
			return txErr
		}

		e.Record(a.SelectedAnswer, a.IsCorrect)

		return putEntry(ctx, tx, e)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "error recording answer", logging.ErrAttr(err))

		return nil, fmt.Errorf("failed to record answer: %w", err)
	}

	return e, nil
}

// List returns all entries in the order they were first recorded.
func (s *SQLiteStore) List(ctx context.Context) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, listEntriesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list statistics: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.ErrorContext(ctx, "error closing statistics rows", logging.ErrAttr(closeErr))
		}
	}()

	entries := make([]*Entry, 0)
	for rows.Next() {
		var (
			quizType    string
			answerStats string
		)
		e := &Entry{}
		if err = rows.Scan(&quizType, &e.QuestionID, &e.TotalAnswers, &e.CorrectAnswers, &answerStats); err != nil {
			return nil, fmt.Errorf("failed to scan statistics row: %w", err)
		}
		e.QuizType = quiz.Type(quizType)
		if err = json.Unmarshal([]byte(answerStats), &e.AnswerStats); err != nil {
			return nil, fmt.Errorf("failed to decode answer stats of %s question %d: %w", quizType, e.QuestionID, err)
		}
		e.Accuracy = Accuracy(e.CorrectAnswers, e.TotalAnswers)
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate statistics rows: %w", err)
	}

	return entries, nil
}

// DeleteForQuestion removes the entry of the given question.
func (s *SQLiteStore) DeleteForQuestion(ctx context.Context, t quiz.Type, questionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, deleteEntrySQL, string(t), questionID); err != nil {
		return fmt.Errorf("failed to delete statistics for %s question %d: %w", t, questionID, err)
	}

	return nil
}

func getEntry(ctx context.Context, tx *sql.Tx, t quiz.Type, questionID int64) (*Entry, error) {
	e := NewEntry(t, questionID)

	var answerStats string
	err := tx.QueryRowContext(ctx, getEntrySQL, string(t), questionID).
		Scan(&e.TotalAnswers, &e.CorrectAnswers, &answerStats)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, nil
		}

		return nil, fmt.Errorf("failed to get statistics of %s question %d: %w", t, questionID, err)
	}
	if err = json.Unmarshal([]byte(answerStats), &e.AnswerStats); err != nil {
		return nil, fmt.Errorf("failed to decode answer stats of %s question %d: %w", t, questionID, err)
	}

	return e, nil
}

func putEntry(ctx context.Context, tx *sql.Tx, e *Entry) error {
	answerStats, err := json.Marshal(e.AnswerStats)
	if err != nil {
		return fmt.Errorf("failed to encode answer stats: %w", err)
	}

	_, err = tx.ExecContext(
		ctx,
		upsertEntrySQL,
		string(e.QuizType),
		e.QuestionID,
		e.TotalAnswers,
		e.CorrectAnswers,
		string(answerStats),
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save statistics of %s question %d: %w", e.QuizType, e.QuestionID, err)
	}

	return nil
}
