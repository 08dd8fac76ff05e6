// Package quiz provides the quiz decks and a store for them.
// Each deck is a single JSON document on disk; see [FileStore].
package quiz

import (
	"context"
	"errors"
	"fmt"
)

// Type identifies one of the fixed quiz decks.
type Type string

const (
	// Tools is the deck about sculpting tools. Its questions use the Task field.
	Tools Type = "tools"
	// Sculptors is the deck about sculptors and their works. Its questions use the Work field.
	Sculptors Type = "sculptors"
)

// Types lists every known quiz type.
//
//nolint:gochecknoglobals // Fixed set of decks.
var Types = []Type{Tools, Sculptors}

var (
	// ErrUnknownType is returned when a quiz type is not one of [Types].
	ErrUnknownType = errors.New("unknown quiz type")
	// ErrQuizNotFound is returned when a quiz document does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound is returned when a question is not found in its quiz.
	ErrQuestionNotFound = errors.New("question not found")
)

// ParseType converts s into a Type.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Quiz is a quiz document.
type Quiz struct {
	Title     string      `json:"title"`
	Subtitle  string      `json:"subtitle"`
	Questions []*Question `json:"questions"`
}

// Question is a question in a quiz. Exactly one answer is expected to be correct.
type Question struct {
	ID             int64    `json:"id"`
	Task           string   `json:"task,omitempty"`
	Work           string   `json:"work,omitempty"`
	Image          string   `json:"image,omitempty"`
	Answers        []Answer `json:"answers"`
	AdditionalInfo string   `json:"additionalInfo,omitempty"`
}

// Answer is one of the options of a question.
type Answer struct {
	Text        string `json:"text"`
	Correct     bool   `json:"correct"`
	Image       string `json:"image,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

// Valid checks the question the way the admin editor does.
// Stores do not call it; the front end is responsible for sending valid questions.
func (q *Question) Valid(t Type) map[string]string {
	problems := make(map[string]string)
	if t == Tools && q.Task == "" {
		problems["task"] = "Task is required"
	}
	if t == Sculptors && q.Work == "" {
		problems["work"] = "Work is required"
	}
	if len(q.Answers) < 2 { //nolint:mnd // Two options is the least a quiz question can offer.
		problems["answers"] = "At least 2 answers are required"
	}
	correct := 0
	for _, a := range q.Answers {
		if a.Correct {
			correct++
		}
	}
	if correct != 1 {
		problems["correct"] = "Exactly one answer must be correct"
	}

	return problems
}

// QuestionPatch holds the fields of a question to change. Nil fields are left untouched.
// The question ID cannot be patched.
type QuestionPatch struct {
	Task           *string   `json:"task"`
	Work           *string   `json:"work"`
	Image          *string   `json:"image"`
	Answers        *[]Answer `json:"answers"`
	AdditionalInfo *string   `json:"additionalInfo"`
}

// Apply copies the set fields of p onto q.
func (p QuestionPatch) Apply(q *Question) {
	if p.Task != nil {
		q.Task = *p.Task
	}
	if p.Work != nil {
		q.Work = *p.Work
	}
	if p.Image != nil {
		q.Image = *p.Image
	}
	if p.Answers != nil {
		q.Answers = *p.Answers
	}
	if p.AdditionalInfo != nil {
		q.AdditionalInfo = *p.AdditionalInfo
	}
}

// NextQuestionID returns the ID a new question in qz gets: one more than the highest existing ID.
func NextQuestionID(qz *Quiz) int64 {
	var highest int64
	for _, qs := range qz.Questions {
		if qs != nil && qs.ID > highest {
			highest = qs.ID
		}
	}

	return highest + 1
}

// Store represents a store for quizzes.
type Store interface {
	// Ping checks that the backing storage is reachable.
	Ping(ctx context.Context) error
	// GetQuiz returns the quiz document of the given type.
	GetQuiz(ctx context.Context, t Type) (*Quiz, error)
	// ReplaceQuiz overwrites the whole quiz document.
	ReplaceQuiz(ctx context.Context, t Type, qz *Quiz) (*Quiz, error)
	// GetQuestion returns a question by its ID.
	GetQuestion(ctx context.Context, t Type, id int64) (*Question, error)
	// AddQuestion appends a new question and assigns its ID.
	AddQuestion(ctx context.Context, t Type, p QuestionPatch) (*Question, error)
	// UpdateQuestion merges p into an existing question.
	UpdateQuestion(ctx context.Context, t Type, id int64, p QuestionPatch) (*Question, error)
	// DeleteQuestion removes a question and its statistics.
	DeleteQuestion(ctx context.Context, t Type, id int64) error
}

// StatsRemover removes the statistics of a deleted question.
type StatsRemover interface {
	DeleteForQuestion(ctx context.Context, t Type, questionID int64) error
}
