// Package v1 contains the full set of handler functions and routes
// supported by the web api.
package v1

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/askchain/askchain/app/services/askchain-api/handlers/v1/agentgrp"
	"github.com/askchain/askchain/app/services/askchain-api/handlers/v1/answergrp"
	"github.com/askchain/askchain/app/services/askchain-api/handlers/v1/eventgrp"
	"github.com/askchain/askchain/app/services/askchain-api/handlers/v1/questiongrp"
	"github.com/askchain/askchain/app/services/askchain-api/handlers/v1/usergrp"
	"github.com/askchain/askchain/app/services/askchain-api/handlers/v1/votegrp"
	"github.com/askchain/askchain/business/core/answer"
	"github.com/askchain/askchain/business/core/question"
	"github.com/askchain/askchain/business/core/user"
	"github.com/askchain/askchain/business/core/vote"
	"github.com/askchain/askchain/foundation/events"
	"github.com/askchain/askchain/foundation/web"
)

// The routes are served at the root so existing clients keep their paths.
const version = ""

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log      *zap.SugaredLogger
	User     *user.Core
	Question *question.Core
	Answer   *answer.Core
	Vote     *vote.Core
	Evts     *events.Events
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	qgh := questiongrp.Handlers{
		Question: cfg.Question,
	}
	app.Handle(http.MethodPost, version, "/questions", qgh.Create)
	app.Handle(http.MethodGet, version, "/questions", qgh.Query)
	app.Handle(http.MethodGet, version, "/questions/:id", qgh.QueryByID)
	app.Handle(http.MethodPut, version, "/questions/:id", qgh.MarkRewarded)

	agh := answergrp.Handlers{
		Answer: cfg.Answer,
	}
	app.Handle(http.MethodPost, version, "/answers", agh.Create)
	app.Handle(http.MethodGet, version, "/answers", agh.QueryByQuestion)

	vgh := votegrp.Handlers{
		Vote:   cfg.Vote,
		Answer: cfg.Answer,
	}
	app.Handle(http.MethodPost, version, "/votes", vgh.Create)
	app.Handle(http.MethodGet, version, "/votes", vgh.CountByAnswer)

	ugh := usergrp.Handlers{
		User: cfg.User,
	}
	app.Handle(http.MethodGet, version, "/users", ugh.QueryUpvotes)
	app.Handle(http.MethodPost, version, "/auth", ugh.Connect)

	app.Handle(http.MethodPost, version, "/agents", agentgrp.Handlers{}.Ask)

	if cfg.Evts != nil {
		egh := eventgrp.Handlers{
			Log:  cfg.Log,
			WS:   websocket.Upgrader{},
			Evts: cfg.Evts,
		}
		app.Handle(http.MethodGet, version, "/events", egh.Events)
	}
}
