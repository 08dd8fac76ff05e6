// Package stats aggregates kiosk answers into per-question statistics.
//
// There is one [Entry] per quiz type and question ID. It is created on the
// first answer to a question and updated on every answer after that. The
// accuracy is always derived from the counts.
package stats

import (
	"context"
	"fmt"
	"strconv"

	"github.com/starquake/kioskquiz/internal/quiz"
)

const optionKeyPrefix = "option_"

// Answer is a single answer given at the kiosk.
type Answer struct {
	QuizType       quiz.Type `json:"quizType"`
	QuestionID     int64     `json:"questionId"`
	SelectedAnswer int       `json:"selectedAnswer"`
	IsCorrect      bool      `json:"isCorrect"`
}

// Entry is the aggregate of all answers given to one question.
type Entry struct {
	QuizType       quiz.Type      `json:"quizType"`
	QuestionID     int64          `json:"questionId"`
	TotalAnswers   int            `json:"totalAnswers"`
	CorrectAnswers int            `json:"correctAnswers"`
	AnswerStats    map[string]int `json:"answerStats"`
	Accuracy       string         `json:"accuracy"`
}

// NewEntry returns an empty entry for a question.
func NewEntry(t quiz.Type, questionID int64) *Entry {
	return &Entry{
		QuizType:    t,
		QuestionID:  questionID,
		AnswerStats: make(map[string]int),
		Accuracy:    Accuracy(0, 0),
	}
}

// Record adds one answer to the entry.
func (e *Entry) Record(selectedAnswer int, isCorrect bool) {
	e.TotalAnswers++
	if isCorrect {
		e.CorrectAnswers++
	}
	if e.AnswerStats == nil {
		e.AnswerStats = make(map[string]int)
	}
	e.AnswerStats[OptionKey(selectedAnswer)]++
	e.Accuracy = Accuracy(e.CorrectAnswers, e.TotalAnswers)
}

// Matches reports whether the entry belongs to the given question.
func (e *Entry) Matches(t quiz.Type, questionID int64) bool {
	return e.QuizType == t && e.QuestionID == questionID
}

// OptionKey returns the AnswerStats key for the answer at index i.
func OptionKey(i int) string {
	return optionKeyPrefix + strconv.Itoa(i)
}

// Accuracy formats correct/total as a percentage with two decimals.
// Halves are rounded up, so 1 of 32 gives "3.13". Zero answers give "0.00".
func Accuracy(correct, total int) string {
	if total <= 0 {
		return "0.00"
	}
	//nolint:mnd // Hundredths of a percent.
	hundredths := (20000*int64(correct) + int64(total)) / (2 * int64(total))

	return fmt.Sprintf("%d.%02d", hundredths/100, hundredths%100) //nolint:mnd // Split into whole and fraction.
}

// Store represents a store for statistics.
type Store interface {
	// Ping checks that the backing storage is reachable.
	Ping(ctx context.Context) error
	// RecordAnswer adds an answer to the entry of its question, creating it if needed.
	RecordAnswer(ctx context.Context, a Answer) (*Entry, error)
	// List returns every entry. It returns an empty slice when nothing was recorded yet.
	List(ctx context.Context) ([]*Entry, error)
	// DeleteForQuestion removes the entry of a question if there is one.
	DeleteForQuestion(ctx context.Context, t quiz.Type, questionID int64) error
}

// Totals sums up answers over a set of entries.
type Totals struct {
	Questions      int    `json:"totalQuestions"`
	TotalAnswers   int    `json:"totalAnswers"`
	CorrectAnswers int    `json:"correctAnswers"`
	Accuracy       string `json:"accuracy"`
}

// Summary holds the overall totals and the totals per quiz type.
type Summary struct {
	Overall Totals               `json:"overall"`
	ByType  map[quiz.Type]Totals `json:"byType"`
}

// Summarize computes the totals shown on the admin statistics page.
// Every known quiz type is present in ByType, even without answers.
func Summarize(entries []*Entry) Summary {
	byType := make(map[quiz.Type]Totals, len(quiz.Types))
	for _, t := range quiz.Types {
		byType[t] = Totals{}
	}

	var overall Totals
	for _, e := range entries {
		overall.add(e)
		tt := byType[e.QuizType]
		tt.add(e)
		byType[e.QuizType] = tt
	}

	overall.Accuracy = Accuracy(overall.CorrectAnswers, overall.TotalAnswers)
	for t, tt := range byType {
		tt.Accuracy = Accuracy(tt.CorrectAnswers, tt.TotalAnswers)
		byType[t] = tt
	}

	return Summary{Overall: overall, ByType: byType}
}

func (t *Totals) add(e *Entry) {
	t.Questions++
	t.TotalAnswers += e.TotalAnswers
	t.CorrectAnswers += e.CorrectAnswers
}
