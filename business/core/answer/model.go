package answer

import "time"

// Voter identifies a user who upvoted an answer.
type Voter struct {
	UserID        string
	WalletAddress string
}

// Answer represents an individual answer to a question.
type Answer struct {
	ID              string
	QuestionID      string
	ResponderID     string
	ResponderWallet string
	CID             string
	DateCreated     time.Time
	Voters          []Voter
}

// VoteCount is the number of upvotes the answer holds.
func (a Answer) VoteCount() int {
	return len(a.Voters)
}

// NewAnswer contains information needed to answer a question.
type NewAnswer struct {
	WalletAddress string `json:"walletAddress" validate:"required,eth_addr"`
	QuestionID    string `json:"questionId" validate:"required,uuid"`
	Content       string `json:"content" validate:"required"`
}

// Resolved is an answer together with its body. Err is set and Content holds
// a placeholder when the body could not be retrieved.
type Resolved struct {
	Answer
	Content string
	Err     error
}
