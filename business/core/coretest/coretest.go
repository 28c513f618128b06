// Package coretest provides in memory storers that honour the same
// constraints as the relational schema, for exercising the cores without a
// database.
package coretest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/askchain/askchain/business/core/answer"
	"github.com/askchain/askchain/business/core/content"
	"github.com/askchain/askchain/business/core/question"
	"github.com/askchain/askchain/business/core/user"
	"github.com/askchain/askchain/business/core/vote"
)

// DB is the shared state behind the storers. One mutex plays the part of the
// database's row locks and constraints.
type DB struct {
	mu        sync.Mutex
	users     map[string]user.User
	wallets   map[string]string
	questions map[string]question.Question
	answers   map[string]answer.Answer
	votes     []vote.Vote
}

// New constructs an empty database.
func New() *DB {
	return &DB{
		users:     make(map[string]user.User),
		wallets:   make(map[string]string),
		questions: make(map[string]question.Question),
		answers:   make(map[string]answer.Answer),
	}
}

// UserStore returns a user.Storer over the database.
func (db *DB) UserStore() *UserStore { return &UserStore{db: db} }

// QuestionStore returns a question.Storer over the database.
func (db *DB) QuestionStore() *QuestionStore { return &QuestionStore{db: db} }

// AnswerStore returns an answer.Storer over the database.
func (db *DB) AnswerStore() *AnswerStore { return &AnswerStore{db: db} }

// VoteStore returns a vote.Storer over the database.
func (db *DB) VoteStore() *VoteStore { return &VoteStore{db: db} }

// CountUsers returns the number of user rows.
func (db *DB) CountUsers() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users)
}

// CountQuestions returns the number of question rows.
func (db *DB) CountQuestions() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.questions)
}

// CountVotes returns the number of vote rows.
func (db *DB) CountVotes() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.votes)
}

// =============================================================================

// UserStore implements user.Storer.
type UserStore struct {
	db *DB
}

// Upsert inserts the user unless the wallet is known, in which case only the
// last login moves.
func (s *UserStore) Upsert(ctx context.Context, usr user.User) (user.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if id, ok := s.db.wallets[usr.WalletAddress]; ok {
		existing := s.db.users[id]
		existing.LastLogin = usr.LastLogin
		s.db.users[id] = existing
		return existing, nil
	}

	s.db.users[usr.ID] = usr
	s.db.wallets[usr.WalletAddress] = usr.ID
	return usr, nil
}

// Query returns every user ordered by wallet.
func (s *UserStore) Query(ctx context.Context) ([]user.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	users := make([]user.User, 0, len(s.db.users))
	for _, usr := range s.db.users {
		users = append(users, usr)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].WalletAddress < users[j].WalletAddress })

	return users, nil
}

// QueryByID returns the user or user.ErrNotFound.
func (s *UserStore) QueryByID(ctx context.Context, userID string) (user.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	usr, ok := s.db.users[userID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

// QueryByWallet returns the user or user.ErrNotFound.
func (s *UserStore) QueryByWallet(ctx context.Context, wallet string) (user.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	id, ok := s.db.wallets[wallet]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return s.db.users[id], nil
}

// QueryUpvotes groups the votes on the user's answers, newest answer first.
func (s *UserStore) QueryUpvotes(ctx context.Context, userID string) ([]user.AnswerUpvotes, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []user.AnswerUpvotes
	for _, ans := range s.db.sortedAnswers(func(a answer.Answer) bool { return a.ResponderID == userID }) {
		au := user.AnswerUpvotes{
			AnswerID:    ans.ID,
			QuestionID:  ans.QuestionID,
			DateCreated: ans.DateCreated,
		}
		for _, v := range s.db.votes {
			if v.AnswerID == ans.ID {
				au.Voters = append(au.Voters, user.Voter{UserID: v.VoterID, WalletAddress: s.db.users[v.VoterID].WalletAddress})
			}
		}
		out = append(out, au)
	}

	return out, nil
}

// =============================================================================

// QuestionStore implements question.Storer.
type QuestionStore struct {
	db *DB
}

// Create debits the asker and inserts the question as one step.
func (s *QuestionStore) Create(ctx context.Context, q question.Question) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	usr, ok := s.db.users[q.AskerID]
	if !ok {
		return fmt.Errorf("asker %s: %w", q.AskerID, user.ErrNotFound)
	}
	if usr.AskTokens.LessThan(q.Reward) {
		return question.ErrInsufficientFunds
	}
	if _, exists := s.db.questions[q.ID]; exists {
		return fmt.Errorf("duplicate question id %s", q.ID)
	}

	usr.AskTokens = usr.AskTokens.Sub(q.Reward)
	s.db.users[usr.ID] = usr
	s.db.questions[q.ID] = q

	return nil
}

// Query returns questions newest first, optionally for one asker.
func (s *QuestionStore) Query(ctx context.Context, filter question.QueryFilter) ([]question.Question, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []question.Question
	for _, q := range s.db.questions {
		if filter.AskerID != "" && q.AskerID != filter.AskerID {
			continue
		}
		q.AskerWallet = s.db.users[q.AskerID].WalletAddress
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].DateCreated, out[j].DateCreated, out[i].ID, out[j].ID) })

	return out, nil
}

// QueryByID returns the question or question.ErrNotFound.
func (s *QuestionStore) QueryByID(ctx context.Context, questionID string) (question.Question, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	q, ok := s.db.questions[questionID]
	if !ok {
		return question.Question{}, question.ErrNotFound
	}
	q.AskerWallet = s.db.users[q.AskerID].WalletAddress
	return q, nil
}

// MarkRewarded sets the flag once.
func (s *QuestionStore) MarkRewarded(ctx context.Context, questionID string, txHash string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	q, ok := s.db.questions[questionID]
	if !ok || q.Rewarded {
		return nil
	}
	q.Rewarded = true
	q.RewardTx = txHash
	s.db.questions[questionID] = q

	return nil
}

// =============================================================================

// AnswerStore implements answer.Storer.
type AnswerStore struct {
	db *DB
}

// Create inserts the answer when its question exists.
func (s *AnswerStore) Create(ctx context.Context, ans answer.Answer) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.questions[ans.QuestionID]; !ok {
		return answer.ErrQuestionNotFound
	}
	ans.Voters = nil
	s.db.answers[ans.ID] = ans

	return nil
}

// QuestionExists reports whether the question is known.
func (s *AnswerStore) QuestionExists(ctx context.Context, questionID string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	_, ok := s.db.questions[questionID]
	return ok, nil
}

// QueryByID returns the answer with its voters.
func (s *AnswerStore) QueryByID(ctx context.Context, answerID string) (answer.Answer, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	ans, ok := s.db.answers[answerID]
	if !ok {
		return answer.Answer{}, answer.ErrNotFound
	}
	return s.db.withVoters(ans), nil
}

// QueryByQuestion returns the question's answers newest first.
func (s *AnswerStore) QueryByQuestion(ctx context.Context, questionID string) ([]answer.Answer, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []answer.Answer
	for _, ans := range s.db.sortedAnswers(func(a answer.Answer) bool { return a.QuestionID == questionID }) {
		out = append(out, s.db.withVoters(ans))
	}

	return out, nil
}

// =============================================================================

// VoteStore implements vote.Storer.
type VoteStore struct {
	db *DB
}

// Create inserts the vote, refusing a second vote for the same pair.
func (s *VoteStore) Create(ctx context.Context, v vote.Vote) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.votes {
		if existing.AnswerID == v.AnswerID && existing.VoterID == v.VoterID {
			return vote.ErrAlreadyVoted
		}
	}
	s.db.votes = append(s.db.votes, v)

	return nil
}

// Exists reports whether the pair already voted.
func (s *VoteStore) Exists(ctx context.Context, answerID string, voterID string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, v := range s.db.votes {
		if v.AnswerID == answerID && v.VoterID == voterID {
			return true, nil
		}
	}
	return false, nil
}

// CountByAnswer counts the votes on the answer.
func (s *VoteStore) CountByAnswer(ctx context.Context, answerID string) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var n int
	for _, v := range s.db.votes {
		if v.AnswerID == answerID {
			n++
		}
	}
	return n, nil
}

// =============================================================================

// sortedAnswers returns the matching answers newest first with the
// responder wallet filled in. The caller holds the lock.
func (db *DB) sortedAnswers(match func(answer.Answer) bool) []answer.Answer {
	var out []answer.Answer
	for _, ans := range db.answers {
		if match(ans) {
			ans.ResponderWallet = db.users[ans.ResponderID].WalletAddress
			out = append(out, ans)
		}
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].DateCreated, out[j].DateCreated, out[i].ID, out[j].ID) })

	return out
}

// withVoters attaches the voters in vote order. The caller holds the lock.
func (db *DB) withVoters(ans answer.Answer) answer.Answer {
	ans.ResponderWallet = db.users[ans.ResponderID].WalletAddress
	ans.Voters = nil
	for _, v := range db.votes {
		if v.AnswerID == ans.ID {
			ans.Voters = append(ans.Voters, answer.Voter{UserID: v.VoterID, WalletAddress: db.users[v.VoterID].WalletAddress})
		}
	}
	return ans
}

func newer(a, b time.Time, aID, bID string) bool {
	if a.Equal(b) {
		return aID < bID
	}
	return a.After(b)
}

// =============================================================================

// ContentStore implements content.Storer in memory. Identifiers listed in
// Broken fail to fetch.
type ContentStore struct {
	mu     sync.Mutex
	docs   map[string]content.Document
	seq    int
	Broken map[string]bool
	PinErr error
}

// NewContentStore constructs an empty content store.
func NewContentStore() *ContentStore {
	return &ContentStore{
		docs:   make(map[string]content.Document),
		Broken: make(map[string]bool),
	}
}

// Pin stores the document under a fresh identifier.
func (cs *ContentStore) Pin(ctx context.Context, name string, doc content.Document) (string, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.PinErr != nil {
		return "", cs.PinErr
	}

	cs.seq++
	cid := fmt.Sprintf("bafy%04d", cs.seq)
	cs.docs[cid] = doc

	return cid, nil
}

// Fetch returns the pinned document.
func (cs *ContentStore) Fetch(ctx context.Context, cid string) (content.Document, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.Broken[cid] {
		return content.Document{}, fmt.Errorf("gateway refused %s", cid)
	}

	doc, ok := cs.docs[cid]
	if !ok {
		return content.Document{}, fmt.Errorf("cid %s not pinned", cid)
	}

	return doc, nil
}

// Break makes the identifier fail to fetch from now on.
func (cs *ContentStore) Break(cid string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.Broken[cid] = true
}

// Document returns what was pinned under the identifier.
func (cs *ContentStore) Document(cid string) (content.Document, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	doc, ok := cs.docs[cid]
	return doc, ok
}

// =============================================================================

// Cores bundles every core wired to the in memory storers.
type Cores struct {
	DB       *DB
	Contents *ContentStore
	Events   []string
	Content  *content.Core
	User     *user.Core
	Answer   *answer.Core
	Question *question.Core
	Vote     *vote.Core

	evMu sync.Mutex
}

// NewCores constructs the cores. The confirmer may be nil.
func NewCores(confirmer question.Confirmer) *Cores {
	log := zap.NewNop().Sugar()

	c := Cores{
		DB:       New(),
		Contents: NewContentStore(),
	}

	ev := func(v string, args ...any) {
		c.evMu.Lock()
		defer c.evMu.Unlock()
		c.Events = append(c.Events, fmt.Sprintf(v, args...))
	}

	cfg := content.Config{
		Timeout:      time.Second,
		RetryBackoff: time.Millisecond,
		Concurrency:  4,
	}

	c.Content = content.NewCore(log, c.Contents, nil, cfg)
	c.User = user.NewCore(log, c.DB.UserStore())
	c.Answer = answer.NewCore(log, c.DB.AnswerStore(), c.User, c.Content, ev)
	c.Question = question.NewCore(log, c.DB.QuestionStore(), c.User, c.Answer, c.Content, confirmer, ev)
	c.Vote = vote.NewCore(log, c.DB.VoteStore(), c.User, c.Answer, ev)

	return &c
}
