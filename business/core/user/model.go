package user

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a wallet known to the system.
type User struct {
	ID            string
	WalletAddress string
	AskTokens     decimal.Decimal
	LastLogin     time.Time
	DateCreated   time.Time
}

// NewConnection contains the signed proof a wallet sends to connect.
type NewConnection struct {
	WalletAddress string `json:"walletAddress" validate:"required,eth_addr"`
	Message       string `json:"message" validate:"required"`
	Signature     string `json:"signature" validate:"required"`
}

// Voter identifies a user who upvoted an answer.
type Voter struct {
	UserID        string
	WalletAddress string
}

// AnswerUpvotes groups the votes one answer received.
type AnswerUpvotes struct {
	AnswerID    string
	QuestionID  string
	DateCreated time.Time
	Voters      []Voter
}

// Upvotes is the aggregate of votes received by a user's answers.
type Upvotes struct {
	User    User
	Total   int
	Answers []AnswerUpvotes
}

type walletOnly struct {
	WalletAddress string `json:"walletAddress" validate:"required,eth_addr"`
}
