// Package user provides the core business API for resolving wallets to users.
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/askchain/askchain/business/sys/validate"
	"github.com/askchain/askchain/foundation/signature"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound         = errors.New("user not found, please connect your wallet first")
	ErrInvalidSignature = errors.New("invalid signature")
)

// StartingGrant is the token balance every new user receives.
var StartingGrant = decimal.NewFromInt(100)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	Upsert(ctx context.Context, usr User) (User, error)
	Query(ctx context.Context) ([]User, error)
	QueryByID(ctx context.Context, userID string) (User, error)
	QueryByWallet(ctx context.Context, wallet string) (User, error)
	QueryUpvotes(ctx context.Context, userID string) ([]AnswerUpvotes, error)
}

// Core manages the set of API's for user access.
type Core struct {
	log    *zap.SugaredLogger
	storer Storer
}

// NewCore constructs a core for user api access.
func NewCore(log *zap.SugaredLogger, storer Storer) *Core {
	return &Core{
		log:    log,
		storer: storer,
	}
}

// Resolve returns the user for the wallet, creating it with the starting
// grant on first contact, and records the login time. Concurrent first
// contacts for the same wallet end up with a single user.
func (c *Core) Resolve(ctx context.Context, wallet string, now time.Time) (User, error) {
	w := walletOnly{WalletAddress: wallet}
	if err := validate.Check(w); err != nil {
		return User{}, fmt.Errorf("validating data: %w", err)
	}

	usr := User{
		ID:            validate.GenerateID(),
		WalletAddress: wallet,
		AskTokens:     StartingGrant,
		LastLogin:     now,
		DateCreated:   now,
	}

	usr, err := c.storer.Upsert(ctx, usr)
	if err != nil {
		return User{}, fmt.Errorf("upsert: %w", err)
	}

	return usr, nil
}

// Connect proves ownership of the wallet through a signed message and then
// resolves the user.
func (c *Core) Connect(ctx context.Context, nc NewConnection, now time.Time) (User, error) {
	if err := validate.Check(nc); err != nil {
		return User{}, fmt.Errorf("validating data: %w", err)
	}

	if err := signature.Verify(nc.Message, nc.Signature, nc.WalletAddress); err != nil {
		return User{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	return c.Resolve(ctx, nc.WalletAddress, now)
}

// Query retrieves every known user.
func (c *Core) Query(ctx context.Context) ([]User, error) {
	users, err := c.storer.Query(ctx)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return users, nil
}

// QueryByID finds the user by the specified ID.
func (c *Core) QueryByID(ctx context.Context, userID string) (User, error) {
	if err := validate.CheckID(userID); err != nil {
		return User{}, ErrNotFound
	}

	usr, err := c.storer.QueryByID(ctx, userID)
	if err != nil {
		return User{}, fmt.Errorf("query: userID[%s]: %w", userID, err)
	}

	return usr, nil
}

// QueryByWallet finds the user by wallet address. It never creates a user,
// so write paths use it to require a prior connection.
func (c *Core) QueryByWallet(ctx context.Context, wallet string) (User, error) {
	usr, err := c.storer.QueryByWallet(ctx, wallet)
	if err != nil {
		return User{}, fmt.Errorf("query: wallet[%s]: %w", wallet, err)
	}

	return usr, nil
}

// QueryUpvotes aggregates the upvotes received across every answer the
// wallet's user has written.
func (c *Core) QueryUpvotes(ctx context.Context, wallet string) (Upvotes, error) {
	usr, err := c.QueryByWallet(ctx, wallet)
	if err != nil {
		return Upvotes{}, err
	}

	answers, err := c.storer.QueryUpvotes(ctx, usr.ID)
	if err != nil {
		return Upvotes{}, fmt.Errorf("query upvotes: userID[%s]: %w", usr.ID, err)
	}

	up := Upvotes{
		User:    usr,
		Answers: answers,
	}
	for _, a := range answers {
		up.Total += len(a.Voters)
	}

	return up, nil
}
