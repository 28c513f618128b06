package usergrp

import (
	"encoding/json"
	"time"

	"github.com/askchain/askchain/business/core/user"
)

// AppNewConnection is the signed proof a wallet sends to connect.
type AppNewConnection struct {
	WalletAddress string `json:"walletAddress"`
	Message       string `json:"message"`
	Signature     string `json:"signature"`
}

func toCoreNewConnection(app AppNewConnection) user.NewConnection {
	return user.NewConnection(app)
}

type appUser struct {
	ID            string      `json:"id"`
	WalletAddress string      `json:"walletAddress"`
	AskTokens     json.Number `json:"askTokens"`
	LastLogin     time.Time   `json:"lastLogin"`
	DateCreated   time.Time   `json:"createdAt"`
}

func toAppUser(usr user.User) appUser {
	return appUser{
		ID:            usr.ID,
		WalletAddress: usr.WalletAddress,
		AskTokens:     json.Number(usr.AskTokens.String()),
		LastLogin:     usr.LastLogin,
		DateCreated:   usr.DateCreated,
	}
}

type appConnected struct {
	Message string  `json:"message"`
	User    appUser `json:"user"`
}

type appVoter struct {
	ID            string `json:"id"`
	WalletAddress string `json:"walletAddress"`
}

type appVotedAnswer struct {
	AnswerID   string     `json:"answerId"`
	QuestionID string     `json:"questionId"`
	CreatedAt  time.Time  `json:"createdAt"`
	Upvotes    int        `json:"upvotes"`
	Voters     []appVoter `json:"voters"`
}

type appUpvotes struct {
	WalletAddress string           `json:"walletAddress"`
	AskTokens     json.Number      `json:"askTokens"`
	LastLogin     time.Time        `json:"lastLogin"`
	Upvotes       int              `json:"upvotes"`
	VotedAnswers  []appVotedAnswer `json:"votedAnswers"`
}

func toAppUpvotes(up user.Upvotes) appUpvotes {
	answers := make([]appVotedAnswer, len(up.Answers))
	for i, a := range up.Answers {
		voters := make([]appVoter, len(a.Voters))
		for j, v := range a.Voters {
			voters[j] = appVoter{ID: v.UserID, WalletAddress: v.WalletAddress}
		}

		answers[i] = appVotedAnswer{
			AnswerID:   a.AnswerID,
			QuestionID: a.QuestionID,
			CreatedAt:  a.DateCreated,
			Upvotes:    len(a.Voters),
			Voters:     voters,
		}
	}

	return appUpvotes{
		WalletAddress: up.User.WalletAddress,
		AskTokens:     json.Number(up.User.AskTokens.String()),
		LastLogin:     up.User.LastLogin,
		Upvotes:       up.Total,
		VotedAnswers:  answers,
	}
}
