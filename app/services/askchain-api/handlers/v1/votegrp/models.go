package votegrp

import "github.com/askchain/askchain/business/core/vote"

// AppNewVote is what a client sends to vote on an answer.
type AppNewVote struct {
	AnswerID      string `json:"answerId"`
	WalletAddress string `json:"walletAddress"`
	IsUpvote      *bool  `json:"isUpvote"`
}

func toCoreNewVote(app AppNewVote) vote.NewVote {
	return vote.NewVote(app)
}

type appRecorded struct {
	Message string `json:"message"`
}

type appCount struct {
	AnswerID  string `json:"answerId"`
	VoteCount int    `json:"voteCount"`
}
