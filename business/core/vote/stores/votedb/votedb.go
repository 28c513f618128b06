// Package votedb contains vote related CRUD functionality.
package votedb

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/askchain/askchain/business/core/vote"
	"github.com/askchain/askchain/business/sys/database"
)

// Store manages the set of API's for vote access.
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

// Create inserts a new vote. The (answer, voter) unique constraint turns a
// concurrent duplicate into vote.ErrAlreadyVoted.
func (s *Store) Create(ctx context.Context, v vote.Vote) error {
	const q = `
	INSERT INTO votes
		(vote_id, answer_id, voter_id, date_created)
	VALUES
		($1, $2, $3, $4)`

	if _, err := s.db.ExecContext(ctx, q, v.ID, v.AnswerID, v.VoterID, v.DateCreated); err != nil {
		if database.IsUniqueViolation(err) {
			return vote.ErrAlreadyVoted
		}
		return fmt.Errorf("inserting vote: %w", err)
	}

	return nil
}

// Exists reports whether the voter already voted on the answer.
func (s *Store) Exists(ctx context.Context, answerID string, voterID string) (bool, error) {
	const q = `
	SELECT EXISTS (SELECT 1 FROM votes WHERE answer_id = $1 AND voter_id = $2)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, q, answerID, voterID).Scan(&exists); err != nil {
		return false, fmt.Errorf("selecting vote: %w", err)
	}

	return exists, nil
}

// CountByAnswer returns the number of votes recorded on the answer.
func (s *Store) CountByAnswer(ctx context.Context, answerID string) (int, error) {
	const q = `
	SELECT count(*) FROM votes WHERE answer_id = $1`

	var n int
	if err := s.db.QueryRowContext(ctx, q, answerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting votes: %w", err)
	}

	return n, nil
}
