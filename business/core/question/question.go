// Package question provides the core business API for posting questions and
// resolving their rewards.
package question

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/askchain/askchain/business/core/answer"
	"github.com/askchain/askchain/business/core/content"
	"github.com/askchain/askchain/business/core/user"
	"github.com/askchain/askchain/business/sys/validate"
	"github.com/askchain/askchain/foundation/ledger"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound          = errors.New("question not found")
	ErrForbidden         = errors.New("only the question asker can update this question")
	ErrInsufficientFunds = errors.New("not enough ASK tokens")
	ErrRewardCleared     = errors.New("the rewarded flag can only be set, not cleared")
	ErrTransferFailed    = errors.New("reward transfer could not be confirmed")
	ErrLedgerUnavailable = errors.New("ledger could not be reached")
)

// EvHandler defines a function that is called when events occur in the
// processing of questions.
type EvHandler func(v string, args ...any)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	Create(ctx context.Context, q Question) error
	Query(ctx context.Context, filter QueryFilter) ([]Question, error)
	QueryByID(ctx context.Context, questionID string) (Question, error)
	MarkRewarded(ctx context.Context, questionID string, txHash string) error
}

// Confirmer checks that a reward transfer landed on chain.
type Confirmer interface {
	ConfirmTransfer(ctx context.Context, txHash string) error
}

// Core manages the set of API's for question access.
type Core struct {
	log       *zap.SugaredLogger
	storer    Storer
	users     *user.Core
	answers   *answer.Core
	contents  *content.Core
	confirmer Confirmer
	evHandler EvHandler
}

// NewCore constructs a core for question api access. The confirmer may be
// nil, in which case reward transfers are recorded as reported.
func NewCore(log *zap.SugaredLogger, storer Storer, users *user.Core, answers *answer.Core, contents *content.Core, confirmer Confirmer, evHandler EvHandler) *Core {
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
		contents:  contents,
		confirmer: confirmer,
		evHandler: ev,
	}
}

// Create posts a new question. The body is uploaded before anything is
// written, then the reward is debited and the question inserted as one unit.
func (c *Core) Create(ctx context.Context, nq NewQuestion, now time.Time) (Question, error) {
	if err := validate.Check(nq); err != nil {
		return Question{}, fmt.Errorf("validating data: %w", err)
	}

	reward, err := ParseReward(nq.Reward)
	if err != nil {
		return Question{}, err
	}

	usr, err := c.users.QueryByWallet(ctx, nq.WalletAddress)
	if err != nil {
		return Question{}, err
	}

	if usr.AskTokens.LessThan(reward) {
		return Question{}, &InsufficientFundsError{Available: usr.AskTokens, Required: reward}
	}

	tags := map[string]string{
		"subject": nq.Subject,
		"asker":   nq.WalletAddress,
	}

	cid, err := c.contents.Put(ctx, "Question", nq.Content, tags)
	if err != nil {
		return Question{}, err
	}

	q := Question{
		ID:          validate.GenerateID(),
		AskerID:     usr.ID,
		AskerWallet: usr.WalletAddress,
		Subject:     nq.Subject,
		Reward:      reward,
		CID:         cid,
		RewardAt:    now.Add(RewardWindow),
		DateCreated: now,
	}

	if err := c.storer.Create(ctx, q); err != nil {
		if !errors.Is(err, ErrInsufficientFunds) {
			return Question{}, fmt.Errorf("create: %w", err)
		}

		// Another request spent the balance after it was checked.
		available := usr.AskTokens
		if fresh, ferr := c.users.QueryByID(ctx, usr.ID); ferr == nil {
			available = fresh.AskTokens
		}
		return Question{}, &InsufficientFundsError{Available: available, Required: reward}
	}

	c.evHandler("question: created: id[%s] asker[%s] subject[%s] reward[%s]", q.ID, usr.WalletAddress, q.Subject, q.Reward)

	return q, nil
}

// Query returns every question, or only the ones asked by the wallet in the
// filter, with their titles resolved. A title that cannot be read is marked
// on its own listing.
func (c *Core) Query(ctx context.Context, filter QueryFilter) ([]Listing, error) {
	if filter.WalletAddress != "" {
		usr, err := c.users.QueryByWallet(ctx, filter.WalletAddress)
		if err != nil {
			return nil, err
		}
		filter.AskerID = usr.ID
	}

	questions, err := c.storer.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	cids := make([]string, len(questions))
	for i, q := range questions {
		cids[i] = q.CID
	}

	res := c.contents.ResolveAll(ctx, cids)

	listings := make([]Listing, len(questions))
	for i, q := range questions {
		listings[i] = Listing{
			Question: q,
			Title:    res[i].Text,
			Err:      res[i].Err,
		}
		if res[i].Err != nil {
			c.log.Infow("question title", "questionID", q.ID, "cid", q.CID, "ERROR", res[i].Err)
			listings[i].Title = content.Placeholder
		}
	}

	return listings, nil
}

// QueryByID finds the question by the specified ID.
func (c *Core) QueryByID(ctx context.Context, questionID string) (Question, error) {
	if err := validate.CheckID(questionID); err != nil {
		return Question{}, ErrNotFound
	}

	q, err := c.storer.QueryByID(ctx, questionID)
	if err != nil {
		return Question{}, fmt.Errorf("query: questionID[%s]: %w", questionID, err)
	}

	return q, nil
}

// QueryDetail returns the question with its body and every answer. When the
// body cannot be read the rest is still returned with ContentErr set.
func (c *Core) QueryDetail(ctx context.Context, questionID string) (Detail, error) {
	q, err := c.QueryByID(ctx, questionID)
	if err != nil {
		return Detail{}, err
	}

	d := Detail{
		Question: q,
	}

	d.Content, d.ContentErr = c.contents.Get(ctx, q.CID)
	if d.ContentErr != nil {
		c.log.Infow("question content", "questionID", q.ID, "cid", q.CID, "ERROR", d.ContentErr)
	}

	answers, err := c.answers.QueryByQuestion(ctx, q.ID)
	if err != nil {
		return Detail{}, fmt.Errorf("answers: %w", err)
	}
	d.Answers = answers

	return d, nil
}

// MarkRewarded flags the question as rewarded on behalf of its asker. The
// flag only moves from false to true, so a request to clear it is rejected,
// and repeating the call is harmless.
// When a transaction hash is given and a confirmer is configured the
// transfer must be confirmed on chain first.
func (c *Core) MarkRewarded(ctx context.Context, questionID string, mr MarkRewarded, now time.Time) (Question, error) {
	if err := validate.Check(mr); err != nil {
		return Question{}, fmt.Errorf("validating data: %w", err)
	}

	usr, err := c.users.QueryByWallet(ctx, mr.WalletAddress)
	if err != nil {
		return Question{}, err
	}

	q, err := c.QueryByID(ctx, questionID)
	if err != nil {
		return Question{}, err
	}

	if q.AskerID != usr.ID {
		return Question{}, ErrForbidden
	}

	if !*mr.Rewarded {
		return Question{}, ErrRewardCleared
	}

	if q.Rewarded {
		return q, nil
	}

	if mr.TxHash != "" {
		if err := ledger.CheckHash(mr.TxHash); err != nil {
			return Question{}, validate.NewFieldsError("txHash", err)
		}
	}

	if mr.TxHash != "" && c.confirmer != nil {
		if err := c.confirmer.ConfirmTransfer(ctx, mr.TxHash); err != nil {
			switch {
			case errors.Is(err, ledger.ErrInvalidHash):
				return Question{}, validate.NewFieldsError("txHash", err)
			case errors.Is(err, ledger.ErrNotConfirmed):
				return Question{}, fmt.Errorf("%w: %w", ErrTransferFailed, err)
			default:
				return Question{}, fmt.Errorf("%w: %w", ErrLedgerUnavailable, err)
			}
		}
	}

	if err := c.storer.MarkRewarded(ctx, q.ID, mr.TxHash); err != nil {
		return Question{}, fmt.Errorf("mark rewarded: questionID[%s]: %w", q.ID, err)
	}

	q.Rewarded = true
	q.RewardTx = mr.TxHash

	c.evHandler("question: rewarded: id[%s] asker[%s] status[%s] tx[%s]", q.ID, usr.WalletAddress, q.Status(now), mr.TxHash)

	return q, nil
}
