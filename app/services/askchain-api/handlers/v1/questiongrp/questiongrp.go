// Package questiongrp maintains the group of handlers for question access.
package questiongrp

import (
	"context"
	"errors"
	"net/http"

	"github.com/askchain/askchain/business/core/content"
	"github.com/askchain/askchain/business/core/question"
	"github.com/askchain/askchain/business/core/user"
	"github.com/askchain/askchain/business/web/errs"
	"github.com/askchain/askchain/foundation/web"
)

// Handlers manages the set of question endpoints.
type Handlers struct {
	Question *question.Core
}

// Create posts a new question and debits the reward from the asker.
func (h Handlers) Create(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var app AppNewQuestion
	if err := web.Decode(r, &app); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	q, err := h.Question.Create(ctx, toCoreNewQuestion(app), v.Now)
	if err != nil {
		return toTrusted(err, "failed to upload question content")
	}

	resp := appCreated{
		Success:    true,
		QuestionID: q.ID,
		PinataCID:  q.CID,
		Message:    "Question posted successfully",
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Query returns every question, or the ones asked by the walletAddress query
// parameter, with titles resolved.
func (h Handlers) Query(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	filter := question.QueryFilter{
		WalletAddress: web.Query(r, "walletAddress"),
	}

	listings, err := h.Question.Query(ctx, filter)
	if err != nil {
		return toTrusted(err, "")
	}

	return web.Respond(ctx, w, toAppListings(listings, v.Now), http.StatusOK)
}

// QueryByID returns the question with its body and answers. A body that
// cannot be read still answers 200 with the error fields set.
func (h Handlers) QueryByID(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	d, err := h.Question.QueryDetail(ctx, web.Param(r, "id"))
	if err != nil {
		return toTrusted(err, "")
	}

	return web.Respond(ctx, w, toAppDetail(d, v.Now), http.StatusOK)
}

// MarkRewarded flags the question as rewarded on behalf of its asker.
func (h Handlers) MarkRewarded(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var app AppMarkRewarded
	if err := web.Decode(r, &app); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	q, err := h.Question.MarkRewarded(ctx, web.Param(r, "id"), toCoreMarkRewarded(app), v.Now)
	if err != nil {
		return toTrusted(err, "")
	}

	resp := appUpdated{
		Success:    true,
		QuestionID: q.ID,
		Rewarded:   q.Rewarded,
		TxHash:     q.RewardTx,
		Message:    "Question updated successfully",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// toTrusted maps the workflow errors onto their HTTP status. Field errors
// and unexpected errors are returned as is for the error middleware.
func toTrusted(err error, upload string) error {
	var ife *question.InsufficientFundsError
	var ue *content.UploadError

	switch {
	case errors.As(err, &ife):
		return errs.NewTrusted(ife, http.StatusBadRequest)
	case errors.As(err, &ue):
		return errs.NewTrustedMessage(errors.New(upload), http.StatusInternalServerError, ue.Error())
	case errors.Is(err, user.ErrNotFound):
		return errs.NewTrusted(user.ErrNotFound, http.StatusNotFound)
	case errors.Is(err, question.ErrNotFound):
		return errs.NewTrusted(question.ErrNotFound, http.StatusNotFound)
	case errors.Is(err, question.ErrForbidden):
		return errs.NewTrusted(question.ErrForbidden, http.StatusForbidden)
	case errors.Is(err, question.ErrRewardCleared):
		return errs.NewTrusted(question.ErrRewardCleared, http.StatusBadRequest)
	case errors.Is(err, question.ErrTransferFailed):
		return errs.NewTrustedMessage(question.ErrTransferFailed, http.StatusBadRequest, err.Error())
	case errors.Is(err, question.ErrLedgerUnavailable):
		return errs.NewTrustedMessage(question.ErrLedgerUnavailable, http.StatusInternalServerError, err.Error())
	}

	return err
}
