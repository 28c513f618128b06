package answergrp

import (
	"time"

	"github.com/askchain/askchain/business/core/answer"
)

// AppNewAnswer is what a client sends to answer a question.
type AppNewAnswer struct {
	WalletAddress string `json:"walletAddress"`
	QuestionID    string `json:"questionId"`
	Content       string `json:"content"`
}

func toCoreNewAnswer(app AppNewAnswer) answer.NewAnswer {
	return answer.NewAnswer(app)
}

type appCreated struct {
	Success   bool   `json:"success"`
	AnswerID  string `json:"answerId"`
	PinataCID string `json:"pinataCid"`
	Message   string `json:"message"`
}

type appAnswer struct {
	ID              string    `json:"id"`
	Content         string    `json:"content"`
	ResponderWallet string    `json:"responderWallet"`
	CreatedAt       time.Time `json:"createdAt"`
	VoteCount       int       `json:"voteCount"`
	Error           string    `json:"error,omitempty"`
}

func toAppAnswers(answers []answer.Resolved) []appAnswer {
	items := make([]appAnswer, len(answers))
	for i, a := range answers {
		items[i] = appAnswer{
			ID:              a.ID,
			Content:         a.Content,
			ResponderWallet: a.ResponderWallet,
			CreatedAt:       a.DateCreated,
			VoteCount:       a.VoteCount(),
		}
		if a.Err != nil {
			items[i].Error = a.Err.Error()
		}
	}
	return items
}
