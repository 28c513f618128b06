// Package agentgrp maintains the handler for the subject agents.
package agentgrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/askchain/askchain/business/core/agent"
	"github.com/askchain/askchain/business/sys/validate"
	"github.com/askchain/askchain/business/web/errs"
	"github.com/askchain/askchain/foundation/web"
)

// AppAsk is what a client sends to query an agent.
type AppAsk struct {
	AgentType string `json:"agentType"`
	Question  string `json:"question"`
}

type appResponse struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
}

// Handlers manages the agent endpoint.
type Handlers struct{}

// Ask returns the named agent's response to the question.
func (h Handlers) Ask(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var app AppAsk
	if err := web.Decode(r, &app); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	ask := agent.Ask(app)
	if err := validate.Check(ask); err != nil {
		return err
	}

	resp, err := agent.Query(ask.AgentType, ask.Question)
	if err != nil {
		if errors.Is(err, agent.ErrUnknownAgent) {
			msg := fmt.Errorf("invalid agent type, must be one of %s", strings.Join(agent.Types(), ", "))
			return errs.NewTrusted(msg, http.StatusBadRequest)
		}
		return err
	}

	return web.Respond(ctx, w, appResponse(resp), http.StatusOK)
}
