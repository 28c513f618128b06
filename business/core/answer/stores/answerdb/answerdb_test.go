package answerdb_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/askchain/askchain/business/core/answer"
	"github.com/askchain/askchain/business/core/answer/stores/answerdb"
)

var answerCols = []string{
	"answer_id", "question_id", "responder_id", "wallet_address",
	"pinata_cid", "date_created", "voter_id", "wallet_address",
}

func TestQueryByQuestion(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := answerdb.NewStore(zap.NewNop().Sugar(), db)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(answerCols).
		AddRow("a2", "q1", "u2", "0x2222222222222222222222222222222222222222", "bafy2", now.Add(time.Minute), "u3", "0x3333333333333333333333333333333333333333").
		AddRow("a1", "q1", "u4", "0x4444444444444444444444444444444444444444", "bafy1", now, nil, nil)

	mock.ExpectQuery("WHERE a.question_id = \\$1").WithArgs("q1").WillReturnRows(rows)

	answers, err := store.QueryByQuestion(context.Background(), "q1")
	require.NoError(t, err)
	require.Len(t, answers, 2)

	assert.Equal(t, "a2", answers[0].ID)
	assert.Equal(t, 1, answers[0].VoteCount())
	assert.Equal(t, "0x3333333333333333333333333333333333333333", answers[0].Voters[0].WalletAddress)
	assert.Equal(t, 0, answers[1].VoteCount())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := answerdb.NewStore(zap.NewNop().Sugar(), db)

	mock.ExpectQuery("WHERE a.answer_id = \\$1").WithArgs("missing").WillReturnRows(sqlmock.NewRows(answerCols))

	_, err = store.QueryByID(context.Background(), "missing")
	assert.ErrorIs(t, err, answer.ErrNotFound)
}

func TestCreateQuestionGone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := answerdb.NewStore(zap.NewNop().Sugar(), db)

	mock.ExpectExec("INSERT INTO answers").WillReturnError(&pgconn.PgError{Code: "23503"})

	err = store.Create(context.Background(), answer.Answer{ID: "a1", QuestionID: "q1", ResponderID: "u1", CID: "bafy"})
	assert.ErrorIs(t, err, answer.ErrQuestionNotFound)
}

func TestQuestionExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := answerdb.NewStore(zap.NewNop().Sugar(), db)

	mock.ExpectQuery("SELECT EXISTS").WithArgs("q1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := store.QuestionExists(context.Background(), "q1")
	require.NoError(t, err)
	assert.True(t, exists)
}
