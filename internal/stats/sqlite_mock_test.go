package stats_test

import (
	"bytes"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/starquake/kioskquiz/internal/logging"
	"github.com/starquake/kioskquiz/internal/quiz"
	"github.com/starquake/kioskquiz/internal/stats"
)

func newMockStore(t *testing.T) (*stats.SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() {
		mock.ExpectClose()
		if err = db.Close(); err != nil {
			t.Errorf("error closing db: %v", err)
		}
		if err = mock.ExpectationsWereMet(); err != nil {
			t.Errorf("there were unfulfilled expectations: %s", err)
		}
	})

	buf := bytes.Buffer{}

	return stats.NewSQLiteStore(db, logging.NewLogger(&buf)), mock
}

func TestSQLiteStore_RecordAnswer_MockTesting(t *testing.T) {
	t.Parallel()

	t.Run("begin fails", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStore(t)
		testError := errors.New("begin error")
		mock.ExpectBegin().WillReturnError(testError)

		_, err := s.RecordAnswer(t.Context(), stats.Answer{QuizType: quiz.Tools, QuestionID: 1})
		if !errors.Is(err, testError) {
			t.Errorf("got error %v, want %v", err, testError)
		}
	})

	t.Run("select fails", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStore(t)
		testError := errors.New("select error")
		mock.ExpectBegin()
		mock.ExpectQuery(stats.GetEntrySQL).WithArgs("tools", int64(1)).WillReturnError(testError)
		mock.ExpectRollback()

		_, err := s.RecordAnswer(t.Context(), stats.Answer{QuizType: quiz.Tools, QuestionID: 1})
		if !errors.Is(err, testError) {
			t.Errorf("got error %v, want %v", err, testError)
		}
	})

	t.Run("stored answer stats are not JSON", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(stats.GetEntrySQL).
			WithArgs("sculptors", int64(4)).
			WillReturnRows(sqlmock.NewRows([]string{"total_answers", "correct_answers", "answer_stats"}).
				AddRow(2, 1, "not json"))
		mock.ExpectRollback()

		_, err := s.RecordAnswer(t.Context(), stats.Answer{QuizType: quiz.Sculptors, QuestionID: 4})
		if err == nil {
			t.Fatal("expected an error, but got nil")
		}
	})

	t.Run("upsert fails", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStore(t)
		testError := errors.New("upsert error")
		mock.ExpectBegin()
		mock.ExpectQuery(stats.GetEntrySQL).WithArgs("tools", int64(1)).WillReturnError(sql.ErrNoRows)
		mock.ExpectExec(stats.UpsertEntrySQL).
			WithArgs("tools", int64(1), 1, 0, `{"option_2":1}`, sqlmock.AnyArg()).
			WillReturnError(testError)
		mock.ExpectRollback()

		_, err := s.RecordAnswer(t.Context(), stats.Answer{QuizType: quiz.Tools, QuestionID: 1, SelectedAnswer: 2})
		if !errors.Is(err, testError) {
			t.Errorf("got error %v, want %v", err, testError)
		}
	})

	t.Run("commit fails", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStore(t)
		testError := errors.New("commit error")
		mock.ExpectBegin()
		mock.ExpectQuery(stats.GetEntrySQL).
			WithArgs("tools", int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"total_answers", "correct_answers", "answer_stats"}).
				AddRow(1, 1, `{"option_0":1}`))
		mock.ExpectExec(stats.UpsertEntrySQL).
			WithArgs("tools", int64(1), 2, 2, `{"option_0":2}`, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit().WillReturnError(testError)

		_, err := s.RecordAnswer(t.Context(), stats.Answer{QuizType: quiz.Tools, QuestionID: 1, IsCorrect: true})
		if !errors.Is(err, testError) {
			t.Errorf("got error %v, want %v", err, testError)
		}
	})
}

func TestSQLiteStore_List_MockTesting(t *testing.T) {
	t.Parallel()

	t.Run("query fails", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStore(t)
		testError := errors.New("query error")
		mock.ExpectQuery(stats.ListEntriesSQL).WillReturnError(testError)

		if _, err := s.List(t.Context()); !errors.Is(err, testError) {
			t.Errorf("got error %v, want %v", err, testError)
		}
	})

	t.Run("row has error", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStore(t)
		testError := errors.New("row error")
		rows := sqlmock.NewRows([]string{"quiz_type", "question_id", "total_answers", "correct_answers", "answer_stats"}).
			AddRow("tools", 1, 1, 1, `{"option_0":1}`).
			AddRow("tools", 2, 1, 0, `{"option_1":1}`)
		rows.RowError(1, testError)
		mock.ExpectQuery(stats.ListEntriesSQL).WillReturnRows(rows)

		if _, err := s.List(t.Context()); !errors.Is(err, testError) {
			t.Errorf("got error %v, want %v", err, testError)
		}
	})
}

func TestSQLiteStore_DeleteForQuestion_MockTesting(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	testError := errors.New("delete error")
	mock.ExpectExec(stats.DeleteEntrySQL).WithArgs("tools", int64(7)).WillReturnError(testError)

	if err := s.DeleteForQuestion(t.Context(), quiz.Tools, 7); !errors.Is(err, testError) {
		t.Errorf("got error %v, want %v", err, testError)
	}
}
