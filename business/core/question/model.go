package question

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/askchain/askchain/business/core/answer"
)

// Set of subjects a question can be filed under.
const (
	SubjectMath            = "MATH"
	SubjectPhysics         = "PHYSICS"
	SubjectChemistry       = "CHEMISTRY"
	SubjectComputerScience = "COMPUTER_SCIENCE"
	SubjectBiology         = "BIOLOGY"
	SubjectOther           = "OTHER"
)

// Subjects lists every accepted subject.
var Subjects = []string{
	SubjectMath,
	SubjectPhysics,
	SubjectChemistry,
	SubjectComputerScience,
	SubjectBiology,
	SubjectOther,
}

// Status is derived from the rewarded flag and the reward deadline.
type Status string

// Set of question states.
const (
	StatusOpen     Status = "open"
	StatusExpired  Status = "expired"
	StatusRewarded Status = "rewarded"
)

// Question represents an individual question.
type Question struct {
	ID          string
	AskerID     string
	AskerWallet string
	Subject     string
	Reward      decimal.Decimal
	CID         string
	Rewarded    bool
	RewardTx    string
	RewardAt    time.Time
	DateCreated time.Time
}

// Status reports where the question is in its lifecycle at the given time.
func (q Question) Status(now time.Time) Status {
	switch {
	case q.Rewarded:
		return StatusRewarded
	case now.After(q.RewardAt):
		return StatusExpired
	default:
		return StatusOpen
	}
}

// NewQuestion contains information needed to post a question. Reward is the
// raw text the client sent.
type NewQuestion struct {
	WalletAddress string `json:"walletAddress" validate:"required,eth_addr"`
	Content       string `json:"content" validate:"required"`
	Subject       string `json:"subject" validate:"required,oneof=MATH PHYSICS CHEMISTRY COMPUTER_SCIENCE BIOLOGY OTHER"`
	Reward        string `json:"reward"`
}

// MarkRewarded contains the information needed to flag a question as
// rewarded. TxHash optionally names the on-chain transfer.
type MarkRewarded struct {
	WalletAddress string `json:"walletAddress" validate:"required,eth_addr"`
	Rewarded      *bool  `json:"rewarded" validate:"required"`
	TxHash        string `json:"txHash"`
}

// QueryFilter holds the available fields a query can be filtered on.
type QueryFilter struct {
	WalletAddress string
	AskerID       string
}

// Listing is a question with its body resolved for display in a list. Err is
// set when the body could not be retrieved.
type Listing struct {
	Question
	Title string
	Err   error
}

// Detail is a question with its body and every answer resolved.
type Detail struct {
	Question
	Content    string
	ContentErr error
	Answers    []answer.Resolved
}
