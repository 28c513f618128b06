// Package userdb contains user related CRUD functionality.
package userdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/askchain/askchain/business/core/user"
	"github.com/askchain/askchain/business/sys/database"
)

// Store manages the set of API's for user access.
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

const userColumns = `user_id, wallet_address, ask_tokens, last_login, date_created`

// Upsert inserts a new user or, when the wallet is already known, only moves
// its last login forward. The unique wallet constraint settles concurrent
// first contacts.
func (s *Store) Upsert(ctx context.Context, usr user.User) (user.User, error) {
	const q = `
	INSERT INTO users
		(user_id, wallet_address, ask_tokens, last_login, date_created)
	VALUES
		($1, $2, $3, $4, $5)
	ON CONFLICT (wallet_address) DO UPDATE
		SET last_login = EXCLUDED.last_login
	RETURNING ` + userColumns

	row := s.db.QueryRowContext(ctx, q, usr.ID, usr.WalletAddress, usr.AskTokens, usr.LastLogin, usr.DateCreated)

	dbUsr, err := scanUser(row)
	if err != nil {
		return user.User{}, fmt.Errorf("upserting user: %w", err)
	}

	return dbUsr, nil
}

// Query retrieves every user ordered by wallet address.
func (s *Store) Query(ctx context.Context) ([]user.User, error) {
	const q = `
	SELECT ` + userColumns + `
	FROM users
	ORDER BY wallet_address`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("selecting users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		usr, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, usr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	return users, nil
}

// QueryByID gets the specified user from the database.
func (s *Store) QueryByID(ctx context.Context, userID string) (user.User, error) {
	const q = `
	SELECT ` + userColumns + `
	FROM users
	WHERE user_id = $1`

	usr, err := scanUser(s.db.QueryRowContext(ctx, q, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("selecting userID[%q]: %w", userID, err)
	}

	return usr, nil
}

// QueryByWallet gets the user holding the wallet address.
func (s *Store) QueryByWallet(ctx context.Context, wallet string) (user.User, error) {
	const q = `
	SELECT ` + userColumns + `
	FROM users
	WHERE wallet_address = $1`

	usr, err := scanUser(s.db.QueryRowContext(ctx, q, wallet))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("selecting wallet[%q]: %w", wallet, err)
	}

	return usr, nil
}

// QueryUpvotes returns every answer the user wrote, newest first, with the
// voters of each.
func (s *Store) QueryUpvotes(ctx context.Context, userID string) ([]user.AnswerUpvotes, error) {
	const q = `
	SELECT
		a.answer_id, a.question_id, a.date_created, v.voter_id, u.wallet_address
	FROM answers a
	LEFT JOIN votes v ON v.answer_id = a.answer_id
	LEFT JOIN users u ON u.user_id = v.voter_id
	WHERE a.responder_id = $1
	ORDER BY a.date_created DESC, a.answer_id, v.date_created`

	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("selecting upvotes: %w", err)
	}
	defer rows.Close()

	var answers []user.AnswerUpvotes
	index := make(map[string]int)

	for rows.Next() {
		var a user.AnswerUpvotes
		var voterID, voterWallet sql.NullString

		if err := rows.Scan(&a.AnswerID, &a.QuestionID, &a.DateCreated, &voterID, &voterWallet); err != nil {
			return nil, fmt.Errorf("scanning upvote: %w", err)
		}

		i, ok := index[a.AnswerID]
		if !ok {
			i = len(answers)
			index[a.AnswerID] = i
			answers = append(answers, a)
		}

		if voterID.Valid {
			answers[i].Voters = append(answers[i].Voters, user.Voter{
				UserID:        voterID.String,
				WalletAddress: voterWallet.String,
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating upvotes: %w", err)
	}

	return answers, nil
}

// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (user.User, error) {
	var usr user.User
	err := row.Scan(&usr.ID, &usr.WalletAddress, &usr.AskTokens, &usr.LastLogin, &usr.DateCreated)
	return usr, err
}
