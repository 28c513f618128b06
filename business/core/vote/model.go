package vote

import "time"

// Vote represents one upvote on an answer.
type Vote struct {
	ID          string
	AnswerID    string
	VoterID     string
	DateCreated time.Time
}

// NewVote contains information needed to vote on an answer.
type NewVote struct {
	AnswerID      string `json:"answerId" validate:"required,uuid"`
	WalletAddress string `json:"walletAddress" validate:"required,eth_addr"`
	IsUpvote      *bool  `json:"isUpvote" validate:"required"`
}
