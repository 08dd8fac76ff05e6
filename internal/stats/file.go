package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/starquake/kioskquiz/internal/jsonfile"
	"github.com/starquake/kioskquiz/internal/logging"
	"github.com/starquake/kioskquiz/internal/quiz"
)

// FileStore keeps all entries in a single JSON array file.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu sync.Mutex
}

// NewFileStore creates a FileStore backed by the file at path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Ping checks that the directory of the statistics file is accessible.
func (s *FileStore) Ping(_ context.Context) error {
	dir := filepath.Dir(s.path)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("failed to stat statistics directory %s: %w", dir, err)
	}

	return nil
}

// RecordAnswer adds a to the entry of its question and returns the updated entry.
func (s *FileStore) RecordAnswer(ctx context.Context, a Answer) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(entries, func(e *Entry) bool { return e.Matches(a.QuizType, a.QuestionID) })
	var e *Entry
	if i < 0 {
		e = NewEntry(a.QuizType, a.QuestionID)
		entries = append(entries, e)
	} else {
		e = entries[i]
	}
	e.Record(a.SelectedAnswer, a.IsCorrect)

	if err = s.save(ctx, entries); err != nil {
		return nil, err
	}
	s.logger.DebugContext(
		ctx,
		"answer recorded",
		slog.String("quizType", string(a.QuizType)),
		slog.Int64("questionId", a.QuestionID),
		slog.Int("totalAnswers", e.TotalAnswers),
	)

	return e, nil
}

// List returns all entries in file order.
func (s *FileStore) List(ctx context.Context) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// DeleteForQuestion removes the entry of the given question. A missing file is left missing.
func (s *FileStore) DeleteForQuestion(ctx context.Context, t quiz.Type, questionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := jsonfile.Exists(s.path)
	if err != nil {
		return fmt.Errorf("failed to check statistics file: %w", err)
	}
	if !ok {
		return nil
	}

	entries, err := s.load(ctx)
	if err != nil {
		return err
	}
	entries = slices.DeleteFunc(entries, func(e *Entry) bool { return e.Matches(t, questionID) })

	return s.save(ctx, entries)
}

func (s *FileStore) load(ctx context.Context) ([]*Entry, error) {
	var entries []*Entry
	if err := jsonfile.Read(s.path, &entries); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*Entry{}, nil
		}
		s.logger.ErrorContext(ctx, "error reading statistics", slog.String("path", s.path), logging.ErrAttr(err))

		return nil, fmt.Errorf("failed to read statistics: %w", err)
	}
	if entries == nil {
		entries = []*Entry{}
	}

	return slices.DeleteFunc(entries, func(e *Entry) bool { return e == nil }), nil
}

func (s *FileStore) save(ctx context.Context, entries []*Entry) error {
	if err := jsonfile.Write(s.path, entries); err != nil {
		s.logger.ErrorContext(ctx, "error writing statistics", slog.String("path", s.path), logging.ErrAttr(err))

		return fmt.Errorf("failed to write statistics: %w", err)
	}

	return nil
}
