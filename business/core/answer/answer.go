// Package answer provides the core business API for answering questions.
package answer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/askchain/askchain/business/core/content"
	"github.com/askchain/askchain/business/core/user"
	"github.com/askchain/askchain/business/sys/validate"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound         = errors.New("answer not found")
	ErrQuestionNotFound = errors.New("question not found")
)

// EvHandler defines a function that is called when events occur in the
// processing of answers.
type EvHandler func(v string, args ...any)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	Create(ctx context.Context, ans Answer) error
	QuestionExists(ctx context.Context, questionID string) (bool, error)
	QueryByID(ctx context.Context, answerID string) (Answer, error)
	QueryByQuestion(ctx context.Context, questionID string) ([]Answer, error)
}

// Core manages the set of API's for answer access.
type Core struct {
	log       *zap.SugaredLogger
	storer    Storer
	users     *user.Core
	contents  *content.Core
	evHandler EvHandler
}

// NewCore constructs a core for answer api access.
func NewCore(log *zap.SugaredLogger, storer Storer, users *user.Core, contents *content.Core, evHandler EvHandler) *Core {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	return &Core{
		log:       log,
		storer:    storer,
		users:     users,
		contents:  contents,
		evHandler: ev,
	}
}

// Create uploads the answer body and records the answer against the
// question. Answering has no effect on any balance.
func (c *Core) Create(ctx context.Context, na NewAnswer, now time.Time) (Answer, error) {
	if err := validate.Check(na); err != nil {
		return Answer{}, fmt.Errorf("validating data: %w", err)
	}

	usr, err := c.users.QueryByWallet(ctx, na.WalletAddress)
	if err != nil {
		return Answer{}, err
	}

	exists, err := c.storer.QuestionExists(ctx, na.QuestionID)
	if err != nil {
		return Answer{}, fmt.Errorf("question exists: questionID[%s]: %w", na.QuestionID, err)
	}
	if !exists {
		return Answer{}, ErrQuestionNotFound
	}

	tags := map[string]string{
		"questionId": na.QuestionID,
		"responder":  na.WalletAddress,
	}

	cid, err := c.contents.Put(ctx, "Answer", na.Content, tags)
	if err != nil {
		return Answer{}, err
	}

	ans := Answer{
		ID:              validate.GenerateID(),
		QuestionID:      na.QuestionID,
		ResponderID:     usr.ID,
		ResponderWallet: usr.WalletAddress,
		CID:             cid,
		DateCreated:     now,
	}

	if err := c.storer.Create(ctx, ans); err != nil {
		return Answer{}, fmt.Errorf("create: %w", err)
	}

	c.evHandler("answer: created: id[%s] question[%s] responder[%s]", ans.ID, ans.QuestionID, usr.WalletAddress)

	return ans, nil
}

// QueryByID finds the answer by the specified ID.
func (c *Core) QueryByID(ctx context.Context, answerID string) (Answer, error) {
	if err := validate.CheckID(answerID); err != nil {
		return Answer{}, ErrNotFound
	}

	ans, err := c.storer.QueryByID(ctx, answerID)
	if err != nil {
		return Answer{}, fmt.Errorf("query: answerID[%s]: %w", answerID, err)
	}

	return ans, nil
}

// QueryByQuestion returns the answers for the question, newest first, with
// their bodies resolved. An answer whose body cannot be read is returned
// with the failure recorded on it.
func (c *Core) QueryByQuestion(ctx context.Context, questionID string) ([]Resolved, error) {
	if err := validate.CheckID(questionID); err != nil {
		return nil, ErrQuestionNotFound
	}

	exists, err := c.storer.QuestionExists(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("question exists: questionID[%s]: %w", questionID, err)
	}
	if !exists {
		return nil, ErrQuestionNotFound
	}

	answers, err := c.storer.QueryByQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("query: questionID[%s]: %w", questionID, err)
	}

	return c.Resolve(ctx, answers), nil
}

// Resolve reads the body of every answer from the content store.
func (c *Core) Resolve(ctx context.Context, answers []Answer) []Resolved {
	cids := make([]string, len(answers))
	for i, ans := range answers {
		cids[i] = ans.CID
	}

	res := c.contents.ResolveAll(ctx, cids)

	resolved := make([]Resolved, len(answers))
	for i, ans := range answers {
		resolved[i] = Resolved{
			Answer:  ans,
			Content: res[i].Text,
			Err:     res[i].Err,
		}
		if res[i].Err != nil {
			c.log.Infow("answer content", "answerID", ans.ID, "cid", ans.CID, "ERROR", res[i].Err)
			resolved[i].Content = content.Placeholder
		}
	}

	return resolved
}
