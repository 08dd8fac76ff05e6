// Package datadir knows where the JSON documents of the kiosk live.
package datadir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/starquake/kioskquiz/internal/jsonfile"
	"github.com/starquake/kioskquiz/internal/quiz"
)

const (
	statisticsFile = "statistics.json"
	materialsFile  = "materials.json"
	quizFileSuffix = "-quiz.json"
)

// ErrNoCandidates is returned by Resolve when it is called without any directory.
var ErrNoCandidates = errors.New("no data directory candidates")

// Layout maps documents to files inside Dir.
type Layout struct {
	Dir string
}

// QuizPath returns the path of the quiz document of type t, e.g. tools-quiz.json.
func (l Layout) QuizPath(t quiz.Type) string {
	return filepath.Join(l.Dir, string(t)+quizFileSuffix)
}

// StatisticsPath returns the path of the statistics document.
func (l Layout) StatisticsPath() string {
	return filepath.Join(l.Dir, statisticsFile)
}

// MaterialsPath returns the path of the materials document.
func (l Layout) MaterialsPath() string {
	return filepath.Join(l.Dir, materialsFile)
}

// Resolve returns a Layout for the first candidate that is an existing directory.
// When none exists the first candidate is used, so that Init can create it.
func Resolve(candidates ...string) (Layout, error) {
	if len(candidates) == 0 {
		return Layout{}, ErrNoCandidates
	}

	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			return Layout{Dir: dir}, nil
		}
	}

	return Layout{Dir: candidates[0]}, nil
}

// Init creates the data directory and an empty materials document if they do not exist yet.
// Quiz documents are seeded by hand and statistics are created on the first answer.
func (l Layout) Init() error {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil { //nolint:gosec // The data directory is shared with the front end build.
		return fmt.Errorf("failed to create data directory %s: %w", l.Dir, err)
	}

	ok, err := jsonfile.Exists(l.MaterialsPath())
	if err != nil {
		return fmt.Errorf("failed to check materials file: %w", err)
	}
	if ok {
		return nil
	}

	if err = jsonfile.Write(l.MaterialsPath(), []any{}); err != nil {
		return fmt.Errorf("failed to create materials file: %w", err)
	}

	return nil
}
