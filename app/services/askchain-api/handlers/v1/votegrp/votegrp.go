// Package votegrp maintains the group of handlers for vote access.
package votegrp

import (
	"context"
	"errors"
	"net/http"

	"github.com/askchain/askchain/business/core/answer"
	"github.com/askchain/askchain/business/core/user"
	"github.com/askchain/askchain/business/core/vote"
	"github.com/askchain/askchain/business/sys/validate"
	"github.com/askchain/askchain/business/web/errs"
	"github.com/askchain/askchain/foundation/web"
)

// ErrMissingAnswer is reported when the answerId parameter is absent.
var ErrMissingAnswer = errors.New("answerId is a required field")

// Handlers manages the set of vote endpoints.
type Handlers struct {
	Vote   *vote.Core
	Answer *answer.Core
}

// Create records an upvote on an answer.
func (h Handlers) Create(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var app AppNewVote
	if err := web.Decode(r, &app); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if _, err := h.Vote.Create(ctx, toCoreNewVote(app), v.Now); err != nil {
		switch {
		case errors.Is(err, vote.ErrDownvote):
			return errs.NewTrusted(vote.ErrDownvote, http.StatusBadRequest)
		case errors.Is(err, vote.ErrAlreadyVoted):
			return errs.NewTrusted(vote.ErrAlreadyVoted, http.StatusConflict)
		case errors.Is(err, vote.ErrOwnAnswer):
			return errs.NewTrusted(vote.ErrOwnAnswer, http.StatusForbidden)
		case errors.Is(err, user.ErrNotFound):
			return errs.NewTrusted(user.ErrNotFound, http.StatusNotFound)
		case errors.Is(err, answer.ErrNotFound):
			return errs.NewTrusted(answer.ErrNotFound, http.StatusNotFound)
		}
		return err
	}

	return web.Respond(ctx, w, appRecorded{Message: "Vote recorded"}, http.StatusOK)
}

// CountByAnswer returns the number of upvotes held by the answer named in
// the answerId query parameter.
func (h Handlers) CountByAnswer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	answerID := web.Query(r, "answerId")
	if answerID == "" {
		return validate.NewFieldsError("answerId", ErrMissingAnswer)
	}

	if _, err := h.Answer.QueryByID(ctx, answerID); err != nil {
		if errors.Is(err, answer.ErrNotFound) {
			return errs.NewTrusted(answer.ErrNotFound, http.StatusNotFound)
		}
		return err
	}

	n, err := h.Vote.CountByAnswer(ctx, answerID)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, appCount{AnswerID: answerID, VoteCount: n}, http.StatusOK)
}
