package questiongrp

import (
	"encoding/json"
	"time"

	"github.com/askchain/askchain/business/core/answer"
	"github.com/askchain/askchain/business/core/question"
)

// AppNewQuestion is what a client sends to post a question. The reward is
// accepted as a JSON number or a string.
type AppNewQuestion struct {
	WalletAddress string          `json:"walletAddress"`
	Content       string          `json:"content"`
	Subject       string          `json:"subject"`
	Reward        json.RawMessage `json:"reward"`
}

func toCoreNewQuestion(app AppNewQuestion) question.NewQuestion {
	return question.NewQuestion{
		WalletAddress: app.WalletAddress,
		Content:       app.Content,
		Subject:       app.Subject,
		Reward:        string(app.Reward),
	}
}

// AppMarkRewarded is what the asker sends to settle a question.
type AppMarkRewarded struct {
	WalletAddress string `json:"walletAddress"`
	Rewarded      *bool  `json:"rewarded"`
	TxHash        string `json:"txHash,omitempty"`
}

func toCoreMarkRewarded(app AppMarkRewarded) question.MarkRewarded {
	return question.MarkRewarded{
		WalletAddress: app.WalletAddress,
		Rewarded:      app.Rewarded,
		TxHash:        app.TxHash,
	}
}

// =============================================================================

type appCreated struct {
	Success    bool   `json:"success"`
	QuestionID string `json:"questionId"`
	PinataCID  string `json:"pinataCid"`
	Message    string `json:"message"`
}

type appUpdated struct {
	Success    bool   `json:"success"`
	QuestionID string `json:"questionId"`
	Rewarded   bool   `json:"rewarded"`
	TxHash     string `json:"txHash,omitempty"`
	Message    string `json:"message"`
}

type appListing struct {
	ID        string      `json:"id"`
	Category  string      `json:"category"`
	Reward    json.Number `json:"reward"`
	CreatedAt time.Time   `json:"createdAt"`
	Title     string      `json:"title"`
	Status    string      `json:"status"`
	Error     string      `json:"error,omitempty"`
}

func toAppListings(listings []question.Listing, now time.Time) []appListing {
	items := make([]appListing, len(listings))
	for i, l := range listings {
		items[i] = appListing{
			ID:        l.ID,
			Category:  l.Subject,
			Reward:    json.Number(l.Reward.String()),
			CreatedAt: l.DateCreated,
			Title:     l.Title,
			Status:    string(l.Status(now)),
		}
		if l.Err != nil {
			items[i].Error = l.Err.Error()
		}
	}
	return items
}

type appAnswer struct {
	ID                     string    `json:"id"`
	Content                string    `json:"content"`
	ResponderWalletAddress string    `json:"responderWalletAddress"`
	CreatedAt              time.Time `json:"createdAt"`
	VotesCount             int       `json:"votesCount"`
	Voters                 []string  `json:"voters"`
	Error                  string    `json:"error,omitempty"`
}

type appDetail struct {
	ID                 string      `json:"id"`
	Subject            string      `json:"subject"`
	Content            string      `json:"content"`
	Reward             json.Number `json:"reward"`
	CreatedAt          time.Time   `json:"createdAt"`
	RewardAt           time.Time   `json:"rewardAt"`
	PinataCID          string      `json:"pinataCid"`
	AskerWalletAddress string      `json:"askerWalletAddress"`
	Rewarded           bool        `json:"rewarded"`
	RewardTx           string      `json:"rewardTx,omitempty"`
	Status             string      `json:"status"`
	Answers            []appAnswer `json:"answers"`
	Error              string      `json:"error,omitempty"`
	Message            string      `json:"message,omitempty"`
}

func toAppDetail(d question.Detail, now time.Time) appDetail {
	ad := appDetail{
		ID:                 d.ID,
		Subject:            d.Subject,
		Content:            d.Content,
		Reward:             json.Number(d.Reward.String()),
		CreatedAt:          d.DateCreated,
		RewardAt:           d.RewardAt,
		PinataCID:          d.CID,
		AskerWalletAddress: d.AskerWallet,
		Rewarded:           d.Rewarded,
		RewardTx:           d.RewardTx,
		Status:             string(d.Status(now)),
		Answers:            toAppAnswers(d.Answers),
	}

	if d.ContentErr != nil {
		ad.Error = "Failed to retrieve question content"
		ad.Message = d.ContentErr.Error()
	}

	return ad
}

func toAppAnswers(answers []answer.Resolved) []appAnswer {
	items := make([]appAnswer, len(answers))
	for i, a := range answers {
		voters := make([]string, len(a.Voters))
		for j, v := range a.Voters {
			voters[j] = v.WalletAddress
		}

		items[i] = appAnswer{
			ID:                     a.ID,
			Content:                a.Content,
			ResponderWalletAddress: a.ResponderWallet,
			CreatedAt:              a.DateCreated,
			VotesCount:             a.VoteCount(),
			Voters:                 voters,
		}
		if a.Err != nil {
			items[i].Error = a.Err.Error()
		}
	}
	return items
}
