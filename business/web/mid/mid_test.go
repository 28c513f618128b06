package mid_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/askchain/askchain/business/sys/metrics"
	"github.com/askchain/askchain/business/sys/validate"
	"github.com/askchain/askchain/business/web/errs"
	"github.com/askchain/askchain/business/web/mid"
	"github.com/askchain/askchain/foundation/web"
)

func newApp(t *testing.T) (*web.App, *metrics.Metrics) {
	t.Helper()

	log := zap.NewNop().Sugar()
	m := metrics.New(prometheus.NewRegistry(), "test")
	shutdown := make(chan os.Signal, 1)

	app := web.NewApp(shutdown, mid.Logger(log), mid.Metrics(m), mid.Errors(log), mid.Panics(m), mid.Cors("*"))
	return app, m
}

func serve(app *web.App, method string, path string) (*httptest.ResponseRecorder, errs.Response) {
	r := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, r)

	var resp errs.Response
	json.Unmarshal(w.Body.Bytes(), &resp)

	return w, resp
}

func TestErrorsTrusted(t *testing.T) {
	app, m := newApp(t)
	app.Handle(http.MethodGet, "", "/conflict", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errs.NewTrustedMessage(errors.New("already voted"), http.StatusConflict, "one vote per answer")
	})

	w, resp := serve(app, http.MethodGet, "/conflict")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already voted", resp.Error)
	assert.Equal(t, "one vote per answer", resp.Message)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("409")))
}

func TestErrorsFields(t *testing.T) {
	app, _ := newApp(t)
	app.Handle(http.MethodGet, "", "/fields", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return validate.NewFieldsError("reward", errors.New("must be positive"))
	})

	w, resp := serve(app, http.MethodGet, "/fields")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "data validation error", resp.Error)
	assert.Equal(t, "must be positive", resp.Fields["reward"])
}

func TestErrorsUntrusted(t *testing.T) {
	app, _ := newApp(t)
	app.Handle(http.MethodGet, "", "/boom", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errors.New("pq: password authentication failed")
	})

	w, resp := serve(app, http.MethodGet, "/boom")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), resp.Error)
}

func TestPanics(t *testing.T) {
	app, m := newApp(t)
	app.Handle(http.MethodGet, "", "/panic", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		panic("nil map")
	})

	w, _ := serve(app, http.MethodGet, "/panic")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Panics))
}

func TestCorsPreflight(t *testing.T) {
	app, _ := newApp(t)
	app.Handle(http.MethodOptions, "", "/questions", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errors.New("handler should not run")
	})

	w, _ := serve(app, http.MethodOptions, "/questions")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
