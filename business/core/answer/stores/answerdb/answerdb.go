// Package answerdb contains answer related CRUD functionality.
package answerdb

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/askchain/askchain/business/core/answer"
	"github.com/askchain/askchain/business/sys/database"
)

// Store manages the set of API's for answer access.
type Store struct {
	log *zap.SugaredLogger
	db  database.Executor
}

// NewStore constructs the api for data access.
func NewStore(log *zap.SugaredLogger, db database.Executor) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

// Create inserts a new answer into the database.
func (s *Store) Create(ctx context.Context, ans answer.Answer) error {
	const q = `
	INSERT INTO answers
		(answer_id, question_id, responder_id, pinata_cid, date_created)
	VALUES
		($1, $2, $3, $4, $5)`

	if _, err := s.db.ExecContext(ctx, q, ans.ID, ans.QuestionID, ans.ResponderID, ans.CID, ans.DateCreated); err != nil {
		if database.IsForeignKeyViolation(err) {
			return answer.ErrQuestionNotFound
		}
		return fmt.Errorf("inserting answer: %w", err)
	}

	return nil
}

// QuestionExists reports whether the question is known.
func (s *Store) QuestionExists(ctx context.Context, questionID string) (bool, error) {
	const q = `
	SELECT EXISTS (SELECT 1 FROM questions WHERE question_id = $1)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, q, questionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("selecting questionID[%q]: %w", questionID, err)
	}

	return exists, nil
}

// QueryByID gets the specified answer with its voters.
func (s *Store) QueryByID(ctx context.Context, answerID string) (answer.Answer, error) {
	const q = selectAnswers + `
	WHERE a.answer_id = $1
	ORDER BY v.date_created`

	answers, err := s.query(ctx, q, answerID)
	if err != nil {
		return answer.Answer{}, fmt.Errorf("selecting answerID[%q]: %w", answerID, err)
	}

	if len(answers) == 0 {
		return answer.Answer{}, answer.ErrNotFound
	}

	return answers[0], nil
}

// QueryByQuestion gets the answers to a question, newest first, with their
// voters.
func (s *Store) QueryByQuestion(ctx context.Context, questionID string) ([]answer.Answer, error) {
	const q = selectAnswers + `
	WHERE a.question_id = $1
	ORDER BY a.date_created DESC, a.answer_id, v.date_created`

	answers, err := s.query(ctx, q, questionID)
	if err != nil {
		return nil, fmt.Errorf("selecting questionID[%q]: %w", questionID, err)
	}

	return answers, nil
}

// =============================================================================

const selectAnswers = `
	SELECT
		a.answer_id, a.question_id, a.responder_id, r.wallet_address,
		a.pinata_cid, a.date_created, v.voter_id, vu.wallet_address
	FROM answers a
	JOIN users r ON r.user_id = a.responder_id
	LEFT JOIN votes v ON v.answer_id = a.answer_id
	LEFT JOIN users vu ON vu.user_id = v.voter_id`

// query runs an answer select and folds the one row per vote result back
// into answers, keeping the row order.
func (s *Store) query(ctx context.Context, q string, args ...any) ([]answer.Answer, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []answer.Answer
	index := make(map[string]int)

	for rows.Next() {
		var a answer.Answer
		var voterID, voterWallet sql.NullString

		err := rows.Scan(&a.ID, &a.QuestionID, &a.ResponderID, &a.ResponderWallet,
			&a.CID, &a.DateCreated, &voterID, &voterWallet)
		if err != nil {
			return nil, fmt.Errorf("scanning answer: %w", err)
		}

		i, ok := index[a.ID]
		if !ok {
			i = len(answers)
			index[a.ID] = i
			answers = append(answers, a)
		}

		if voterID.Valid {
			answers[i].Voters = append(answers[i].Voters, answer.Voter{
				UserID:        voterID.String,
				WalletAddress: voterWallet.String,
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return answers, nil
}
