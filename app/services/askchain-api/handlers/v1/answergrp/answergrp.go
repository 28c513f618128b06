// Package answergrp maintains the group of handlers for answer access.
package answergrp

import (
	"context"
	"errors"
	"net/http"

	"github.com/askchain/askchain/business/core/answer"
	"github.com/askchain/askchain/business/core/content"
	"github.com/askchain/askchain/business/core/user"
	"github.com/askchain/askchain/business/sys/validate"
	"github.com/askchain/askchain/business/web/errs"
	"github.com/askchain/askchain/foundation/web"
)

// ErrMissingQuestion is reported when the questionId parameter is absent.
var ErrMissingQuestion = errors.New("questionId is a required field")

// Handlers manages the set of answer endpoints.
type Handlers struct {
	Answer *answer.Core
}

// Create answers a question.
func (h Handlers) Create(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var app AppNewAnswer
	if err := web.Decode(r, &app); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	ans, err := h.Answer.Create(ctx, toCoreNewAnswer(app), v.Now)
	if err != nil {
		var ue *content.UploadError
		switch {
		case errors.As(err, &ue):
			return errs.NewTrustedMessage(errors.New("failed to upload answer content"), http.StatusInternalServerError, ue.Error())
		case errors.Is(err, user.ErrNotFound):
			return errs.NewTrusted(user.ErrNotFound, http.StatusNotFound)
		case errors.Is(err, answer.ErrQuestionNotFound):
			return errs.NewTrusted(answer.ErrQuestionNotFound, http.StatusNotFound)
		}
		return err
	}

	resp := appCreated{
		Success:   true,
		AnswerID:  ans.ID,
		PinataCID: ans.CID,
		Message:   "Answer submitted successfully",
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// QueryByQuestion returns the answers to the question named by the
// questionId query parameter, newest first.
func (h Handlers) QueryByQuestion(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	questionID := web.Query(r, "questionId")
	if questionID == "" {
		return validate.NewFieldsError("questionId", ErrMissingQuestion)
	}

	answers, err := h.Answer.QueryByQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, answer.ErrQuestionNotFound) {
			return errs.NewTrusted(answer.ErrQuestionNotFound, http.StatusNotFound)
		}
		return err
	}

	return web.Respond(ctx, w, toAppAnswers(answers), http.StatusOK)
}
