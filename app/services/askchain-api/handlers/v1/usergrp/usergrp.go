// Package usergrp maintains the group of handlers for user access.
package usergrp

import (
	"context"
	"errors"
	"net/http"

	"github.com/askchain/askchain/business/core/user"
	"github.com/askchain/askchain/business/sys/validate"
	"github.com/askchain/askchain/business/web/errs"
	"github.com/askchain/askchain/foundation/web"
)

// ErrMissingWallet is reported when the walletAddress parameter is absent.
var ErrMissingWallet = errors.New("walletAddress is a required field")

// Handlers manages the set of user endpoints.
type Handlers struct {
	User *user.Core
}

// Connect verifies the signed message and creates or refreshes the user for
// the wallet.
func (h Handlers) Connect(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var app AppNewConnection
	if err := web.Decode(r, &app); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	usr, err := h.User.Connect(ctx, toCoreNewConnection(app), v.Now)
	if err != nil {
		if errors.Is(err, user.ErrInvalidSignature) {
			return errs.NewTrusted(user.ErrInvalidSignature, http.StatusUnauthorized)
		}
		return err
	}

	resp := appConnected{
		Message: "User authenticated",
		User:    toAppUser(usr),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// QueryUpvotes returns the balance of the wallet named by the walletAddress
// query parameter and the upvotes its answers received.
func (h Handlers) QueryUpvotes(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	wallet := web.Query(r, "walletAddress")
	if wallet == "" {
		return validate.NewFieldsError("walletAddress", ErrMissingWallet)
	}

	up, err := h.User.QueryUpvotes(ctx, wallet)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return errs.NewTrusted(user.ErrNotFound, http.StatusNotFound)
		}
		return err
	}

	return web.Respond(ctx, w, toAppUpvotes(up), http.StatusOK)
}
