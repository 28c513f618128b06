package mid

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/askchain/askchain/business/sys/metrics"
	"github.com/askchain/askchain/foundation/web"
)

// Metrics updates program counters.
func Metrics(m *metrics.Metrics) web.Middleware {

	// This is the actual middleware function to be executed.
	mw := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			start := time.Now()

			// Call the next handler.
			err := handler(ctx, w, r)

			m.RequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())

			// The Errors middleware sits inside this one, so the status code
			// has already been recorded by the time we get here.
			status := http.StatusOK
			if v, verr := web.GetValues(ctx); verr == nil && v.StatusCode != 0 {
				status = v.StatusCode
			}
			m.Requests.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()

			if err != nil || status >= http.StatusBadRequest {
				m.Errors.WithLabelValues(strconv.Itoa(status)).Inc()
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return mw
}
