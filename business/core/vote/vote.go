// Package vote provides the core business API for upvoting answers.
package vote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/askchain/askchain/business/core/answer"
	"github.com/askchain/askchain/business/core/user"
	"github.com/askchain/askchain/business/sys/validate"
)

// Set of error variables for CRUD operations.
var (
	ErrAlreadyVoted = errors.New("already voted on this answer")
	ErrOwnAnswer    = errors.New("cannot vote on your own answer")
	ErrDownvote     = errors.New("only upvotes are supported")
)

// EvHandler defines a function that is called when events occur in the
// processing of votes.
type EvHandler func(v string, args ...any)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	Create(ctx context.Context, v Vote) error
	Exists(ctx context.Context, answerID string, voterID string) (bool, error)
	CountByAnswer(ctx context.Context, answerID string) (int, error)
}

// Core manages the set of API's for vote access.
type Core struct {
	log       *zap.SugaredLogger
	storer    Storer
	users     *user.Core
	answers   *answer.Core
	evHandler EvHandler
}

// NewCore constructs a core for vote api access.
func NewCore(log *zap.SugaredLogger, storer Storer, users *user.Core, answers *answer.Core, evHandler EvHandler) *Core {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	return &Core{
		log:       log,
		storer:    storer,
		users:     users,
		answers:   answers,
		evHandler: ev,
	}
}

// Create records an upvote. A voter gets one vote per answer and never on an
// answer they wrote. The store's unique constraint on (answer, voter) is what
// finally settles concurrent duplicates.
func (c *Core) Create(ctx context.Context, nv NewVote, now time.Time) (Vote, error) {
	if err := validate.Check(nv); err != nil {
		return Vote{}, fmt.Errorf("validating data: %w", err)
	}

	if !*nv.IsUpvote {
		return Vote{}, ErrDownvote
	}

	usr, err := c.users.QueryByWallet(ctx, nv.WalletAddress)
	if err != nil {
		return Vote{}, err
	}

	ans, err := c.answers.QueryByID(ctx, nv.AnswerID)
	if err != nil {
		return Vote{}, err
	}

	voted, err := c.storer.Exists(ctx, ans.ID, usr.ID)
	if err != nil {
		return Vote{}, fmt.Errorf("exists: answerID[%s] voterID[%s]: %w", ans.ID, usr.ID, err)
	}
	if voted {
		return Vote{}, ErrAlreadyVoted
	}

	if ans.ResponderID == usr.ID {
		return Vote{}, ErrOwnAnswer
	}

	v := Vote{
		ID:          validate.GenerateID(),
		AnswerID:    ans.ID,
		VoterID:     usr.ID,
		DateCreated: now,
	}

	if err := c.storer.Create(ctx, v); err != nil {
		if errors.Is(err, ErrAlreadyVoted) {
			return Vote{}, ErrAlreadyVoted
		}
		return Vote{}, fmt.Errorf("create: %w", err)
	}

	c.evHandler("vote: created: answer[%s] voter[%s]", ans.ID, usr.WalletAddress)

	return v, nil
}

// CountByAnswer returns the number of upvotes an answer holds.
func (c *Core) CountByAnswer(ctx context.Context, answerID string) (int, error) {
	if err := validate.CheckID(answerID); err != nil {
		return 0, answer.ErrNotFound
	}

	n, err := c.storer.CountByAnswer(ctx, answerID)
	if err != nil {
		return 0, fmt.Errorf("count: answerID[%s]: %w", answerID, err)
	}

	return n, nil
}
