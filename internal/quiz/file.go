package quiz

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
)

// Locator tells a store where the document of each quiz type lives.
type Locator interface {
	QuizPath(t Type) string
}

// FileStore stores each quiz as a pretty-printed JSON file.
// Read-modify-write cycles are serialized per quiz type.
type FileStore struct {
	paths  Locator
	stats  StatsRemover
	logger *slog.Logger

	locks map[Type]*sync.Mutex
}

// NewFileStore creates a new FileStore. stats receives the cascade when a question is deleted.
func NewFileStore(paths Locator, stats StatsRemover, logger *slog.Logger) *FileStore {
	locks := make(map[Type]*sync.Mutex, len(Types))
	for _, t := range Types {
		locks[t] = &sync.Mutex{}
	}

	return &FileStore{paths: paths, stats: stats, logger: logger, locks: locks}
}

// Ping checks that the directories holding the quiz files are accessible.
func (s *FileStore) Ping(_ context.Context) error {
	for _, t := range Types {
		dir := filepath.Dir(s.paths.QuizPath(t))
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("failed to stat data directory %s: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("failed to use data directory %s: %w", dir, os.ErrInvalid)
		}
	}

	return nil
}

// GetQuiz returns the quiz of type t. Returns ErrQuizNotFound when its file does not exist.
func (s *FileStore) GetQuiz(ctx context.Context, t Type) (*Quiz, error) {
	unlock := s.lock(t)
	defer unlock()

	return s.load(ctx, t)
}

// ReplaceQuiz overwrites the quiz of type t with qz.
func (s *FileStore) ReplaceQuiz(ctx context.Context, t Type, qz *Quiz) (*Quiz, error) {
	unlock := s.lock(t)
	defer unlock()

	if err := s.save(ctx, t, qz); err != nil {
		return nil, err
	}

	return qz, nil
}

// GetQuestion returns the question with the given ID from the quiz of type t.
func (s *FileStore) GetQuestion(ctx context.Context, t Type, id int64) (*Question, error) {
	unlock := s.lock(t)
	defer unlock()

	qz, err := s.load(ctx, t)
	if err != nil {
		return nil, err
	}

	i := indexOf(qz, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s question %d", ErrQuestionNotFound, t, id)
	}

	return qz.Questions[i], nil
}

// AddQuestion appends a question built from p to the quiz of type t.
// A quiz without a file yet starts out empty.
func (s *FileStore) AddQuestion(ctx context.Context, t Type, p QuestionPatch) (*Question, error) {
	unlock := s.lock(t)
	defer unlock()

	qz, err := s.load(ctx, t)
	if err != nil {
		if !errors.Is(err, ErrQuizNotFound) {
			return nil, err
		}
		qz = &Quiz{Questions: []*Question{}}
	}

	qs := &Question{ID: NextQuestionID(qz)}
	p.Apply(qs)
	qz.Questions = append(qz.Questions, qs)

	if err = s.save(ctx, t, qz); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "question added", slog.String("quizType", string(t)), slog.Int64("questionId", qs.ID))

	return qs, nil
}

// UpdateQuestion merges p into the question with the given ID. Nothing is written when the question does not exist.
func (s *FileStore) UpdateQuestion(ctx context.Context, t Type, id int64, p QuestionPatch) (*Question, error) {
	unlock := s.lock(t)
	defer unlock()

	qz, err := s.load(ctx, t)
	if err != nil {
		return nil, err
	}

	i := indexOf(qz, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s question %d", ErrQuestionNotFound, t, id)
	}

	qs := qz.Questions[i]
	p.Apply(qs)
	qs.ID = id

	if err = s.save(ctx, t, qz); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "question updated", slog.String("quizType", string(t)), slog.Int64("questionId", id))

	return qs, nil
}

// DeleteQuestion removes the question with the given ID and then its statistics.
// The statistics go first so that a question later created with the same ID starts with none.
func (s *FileStore) DeleteQuestion(ctx context.Context, t Type, id int64) error {
	unlock := s.lock(t)
	defer unlock()

	qz, err := s.load(ctx, t)
	if err != nil {
		return err
	}

	i := indexOf(qz, id)
	if i < 0 {
		return fmt.Errorf("%w: %s question %d", ErrQuestionNotFound, t, id)
	}
	qz.Questions = slices.Delete(qz.Questions, i, i+1)

	if s.stats != nil {
		if err = s.stats.DeleteForQuestion(ctx, t, id); err != nil {
			return fmt.Errorf("failed to delete statistics for %s question %d: %w", t, id, err)
		}
	}

	if err = s.save(ctx, t, qz); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "question deleted", slog.String("quizType", string(t)), slog.Int64("questionId", id))

	return nil
}

func (s *FileStore) lock(t Type) func() {
	mu, ok := s.locks[t]
	if !ok {
		// Unknown types never reach the disk, see load and save.
		return func() {}
	}
	mu.Lock()

	return mu.Unlock
}

func (s *FileStore) load(ctx context.Context, t Type) (*Quiz, error) {
	if _, ok := s.locks[t]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	path := s.paths.QuizPath(t)
	qz := &Quiz{}
	if err := jsonfile.Read(path, qz); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrQuizNotFound, t)
		}
		s.logger.ErrorContext(ctx, "error reading quiz", slog.String("path", path), logging.ErrAttr(err))

		return nil, fmt.Errorf("failed to read quiz %s: %w", t, err)
	}

	return qz, nil
}

func (s *FileStore) save(ctx context.Context, t Type, qz *Quiz) error {
	if _, ok := s.locks[t]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	path := s.paths.QuizPath(t)
	if err := jsonfile.Write(path, qz); err != nil {
		s.logger.ErrorContext(ctx, "error writing quiz", slog.String("path", path), logging.ErrAttr(err))

		return fmt.Errorf("failed to write quiz %s: %w", t, err)
	}

	return nil
}

func indexOf(qz *Quiz, id int64) int {
	return slices.IndexFunc(qz.Questions, func(qs *Question) bool { return qs != nil && qs.ID == id })
}
