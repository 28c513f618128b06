// Package content provides the core business API for storing question and
// answer bodies in a content addressable store.
package content

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/askchain/askchain/business/sys/metrics"
)

// Set of error variables for the content store.
var (
	ErrNoCID   = errors.New("no CID returned from the content store")
	ErrTimeout = errors.New("content store call timed out")
)

// Default settings applied when the configuration leaves them empty.
const (
	DefaultTimeout      = 15 * time.Second
	DefaultRetryBackoff = 500 * time.Millisecond
	DefaultConcurrency  = 8
)

// Storer interface declares the behavior this package needs from the remote
// content store.
type Storer interface {
	Pin(ctx context.Context, name string, doc Document) (string, error)
	Fetch(ctx context.Context, cid string) (Document, error)
}

// Config represents the call policy used against the storer.
type Config struct {
	Timeout      time.Duration
	RetryBackoff time.Duration
	Concurrency  int
}

// Core manages the set of API's for content access.
type Core struct {
	log     *zap.SugaredLogger
	storer  Storer
	metrics *metrics.Metrics
	cfg     Config
}

// NewCore constructs a core for content api access.
func NewCore(log *zap.SugaredLogger, storer Storer, m *metrics.Metrics, cfg Config) *Core {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = DefaultRetryBackoff
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	return &Core{
		log:     log,
		storer:  storer,
		metrics: m,
		cfg:     cfg,
	}
}

// Put uploads the text with its tags and returns the content identifier. The
// kind names the document in the pinning service, like Question or Answer.
func (c *Core) Put(ctx context.Context, kind string, text string, tags map[string]string) (string, error) {
	now := time.Now().UTC()

	doc := Document{
		Content:   text,
		Tags:      tags,
		Timestamp: now,
	}
	name := kind + "-" + strconv.FormatInt(now.UnixMilli(), 10)

	var cid string
	err := c.call(ctx, "put", func(ctx context.Context) error {
		var err error
		cid, err = c.storer.Pin(ctx, name, doc)
		return err
	})
	if err != nil {
		return "", &UploadError{Err: err}
	}

	if cid == "" {
		c.metrics.ContentCall("put", "nocid")
		return "", &UploadError{Err: ErrNoCID}
	}

	return cid, nil
}

// Get retrieves the text stored under the content identifier.
func (c *Core) Get(ctx context.Context, cid string) (string, error) {
	if cid == "" {
		return "", &RetrievalError{CID: cid, Err: ErrNoCID}
	}

	var doc Document
	err := c.call(ctx, "get", func(ctx context.Context) error {
		var err error
		doc, err = c.storer.Fetch(ctx, cid)
		return err
	})
	if err != nil {
		return "", &RetrievalError{CID: cid, Err: err}
	}

	return doc.Content, nil
}

// ResolveAll retrieves the text for every identifier. A failed retrieval is
// reported on its own item and never fails the whole set. Results keep the
// order of the input.
func (c *Core) ResolveAll(ctx context.Context, cids []string) []Resolution {
	res := make([]Resolution, len(cids))

	var g errgroup.Group
	g.SetLimit(c.cfg.Concurrency)

	for i, cid := range cids {
		i, cid := i, cid
		g.Go(func() error {
			text, err := c.Get(ctx, cid)
			res[i] = Resolution{
				CID:  cid,
				Text: text,
				Err:  err,
			}
			return nil
		})
	}
	g.Wait()

	return res
}

// =============================================================================

// call runs the operation under the configured timeout and retries it once,
// after the backoff, when the failure is transient.
func (c *Core) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := c.attempt(ctx, fn)
	if err == nil {
		c.metrics.ContentCall(op, "ok")
		return nil
	}

	if ctx.Err() != nil || !retryable(err) {
		c.metrics.ContentCall(op, "error")
		return err
	}

	c.log.Infow("content store retry", "op", op, "backoff", c.cfg.RetryBackoff, "ERROR", err)
	c.metrics.ContentCall(op, "retry")

	timer := time.NewTimer(c.cfg.RetryBackoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		c.metrics.ContentCall(op, "error")
		return fmt.Errorf("%w: %w", err, ctx.Err())
	case <-timer.C:
	}

	if err := c.attempt(ctx, fn); err != nil {
		c.metrics.ContentCall(op, "error")
		return err
	}

	c.metrics.ContentCall(op, "ok")
	return nil
}

// attempt runs a single call under its own deadline.
func (c *Core) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	err := fn(callCtx)
	if err == nil {
		return nil
	}

	// Only our own deadline counts as a timeout. A caller that went away
	// is reported as is.
	if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %w", ErrTimeout, c.cfg.Timeout, err)
	}

	return err
}

// retryable classifies failures. Timeouts, network faults and server side
// status codes are transient, everything else is definitive.
func retryable(err error) bool {
	if errors.Is(err, ErrTimeout) {
		return true
	}

	var tr interface{ Transient() bool }
	if errors.As(err, &tr) {
		return tr.Transient()
	}

	var ne net.Error
	return errors.As(err, &ne)
}
