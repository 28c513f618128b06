// Package questiondb contains question related CRUD functionality.
package questiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/askchain/askchain/business/core/question"
	"github.com/askchain/askchain/business/sys/database"
)

// Store manages the set of API's for question access.
type Store struct {
	log *zap.SugaredLogger
	db  *sql.DB
}

// NewStore constructs the api for data access.
func NewStore(log *zap.SugaredLogger, db *sql.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

// Create debits the reward from the asker and inserts the question inside
// one transaction. The debit only applies while the balance covers the
// reward, so a concurrent spend surfaces as question.ErrInsufficientFunds
// instead of a negative balance.
func (s *Store) Create(ctx context.Context, q question.Question) error {
	const debit = `
	UPDATE users
	SET ask_tokens = ask_tokens - $1
	WHERE user_id = $2 AND ask_tokens >= $1`

	const insert = `
	INSERT INTO questions
		(question_id, asker_id, subject, reward, pinata_cid, rewarded, reward_tx, reward_at, date_created)
	VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	f := func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, debit, q.Reward, q.AskerID)
		if err != nil {
			return fmt.Errorf("debiting reward: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("debiting reward: %w", err)
		}
		if n == 0 {
			return question.ErrInsufficientFunds
		}

		if _, err := tx.ExecContext(ctx, insert, q.ID, q.AskerID, q.Subject, q.Reward, q.CID,
			q.Rewarded, q.RewardTx, q.RewardAt, q.DateCreated); err != nil {
			return fmt.Errorf("inserting question: %w", err)
		}

		return nil
	}

	return database.WithinTran(ctx, s.log, s.db, f)
}

// Query retrieves questions newest first, optionally limited to one asker.
func (s *Store) Query(ctx context.Context, filter question.QueryFilter) ([]question.Question, error) {
	q := selectQuestions
	var args []any

	if filter.AskerID != "" {
		q += `
	WHERE q.asker_id = $1`
		args = append(args, filter.AskerID)
	}

	q += `
	ORDER BY q.date_created DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting questions: %w", err)
	}
	defer rows.Close()

	var questions []question.Question
	for rows.Next() {
		qst, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning question: %w", err)
		}
		questions = append(questions, qst)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating questions: %w", err)
	}

	return questions, nil
}

// QueryByID gets the specified question from the database.
func (s *Store) QueryByID(ctx context.Context, questionID string) (question.Question, error) {
	const q = selectQuestions + `
	WHERE q.question_id = $1`

	qst, err := scanQuestion(s.db.QueryRowContext(ctx, q, questionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return question.Question{}, question.ErrNotFound
		}
		return question.Question{}, fmt.Errorf("selecting questionID[%q]: %w", questionID, err)
	}

	return qst, nil
}

// MarkRewarded sets the rewarded flag and records the transfer hash. A
// question that is already rewarded keeps its original hash.
func (s *Store) MarkRewarded(ctx context.Context, questionID string, txHash string) error {
	const q = `
	UPDATE questions
	SET rewarded = TRUE, reward_tx = $2
	WHERE question_id = $1 AND rewarded = FALSE`

	if _, err := s.db.ExecContext(ctx, q, questionID, txHash); err != nil {
		return fmt.Errorf("updating questionID[%q]: %w", questionID, err)
	}

	return nil
}

// =============================================================================

const selectQuestions = `
	SELECT
		q.question_id, q.asker_id, u.wallet_address, q.subject, q.reward,
		q.pinata_cid, q.rewarded, q.reward_tx, q.reward_at, q.date_created
	FROM questions q
	JOIN users u ON u.user_id = q.asker_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row scanner) (question.Question, error) {
	var q question.Question
	err := row.Scan(&q.ID, &q.AskerID, &q.AskerWallet, &q.Subject, &q.Reward,
		&q.CID, &q.Rewarded, &q.RewardTx, &q.RewardAt, &q.DateCreated)
	return q, err
}
