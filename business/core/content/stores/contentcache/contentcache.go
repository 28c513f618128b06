// Package contentcache contains a read through cache in front of a content
// storer. Content identifiers never change meaning, so a cached document is
// valid until it expires.
package contentcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/askchain/askchain/business/core/content"
)

const keyPrefix = "askchain:content:"

// DefaultTTL is used when no expiration is configured.
const DefaultTTL = 24 * time.Hour

// Store manages the set of API's for cached content access.
type Store struct {
	log    *zap.SugaredLogger
	storer content.Storer
	rdb    redis.Cmdable
	ttl    time.Duration
}

// NewStore constructs the api for data access.
func NewStore(log *zap.SugaredLogger, storer content.Storer, rdb redis.Cmdable, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Store{
		log:    log,
		storer: storer,
		rdb:    rdb,
		ttl:    ttl,
	}
}

// Pin stores the document remotely and writes it through to the cache.
func (s *Store) Pin(ctx context.Context, name string, doc content.Document) (string, error) {
	cid, err := s.storer.Pin(ctx, name, doc)
	if err != nil {
		return "", err
	}

	if cid != "" {
		s.set(ctx, cid, doc)
	}

	return cid, nil
}

// Fetch serves the document from the cache when present and falls back to
// the remote store otherwise. Cache faults never fail the call.
func (s *Store) Fetch(ctx context.Context, cid string) (content.Document, error) {
	data, err := s.rdb.Get(ctx, keyPrefix+cid).Bytes()
	switch {
	case err == nil:
		var doc content.Document
		uerr := json.Unmarshal(data, &doc)
		if uerr == nil {
			return doc, nil
		}
		s.log.Infow("contentcache: discard", "cid", cid, "ERROR", uerr)

	case !errors.Is(err, redis.Nil):
		s.log.Infow("contentcache: get", "cid", cid, "ERROR", err)
	}

	doc, err := s.storer.Fetch(ctx, cid)
	if err != nil {
		return content.Document{}, err
	}

	s.set(ctx, cid, doc)

	return doc, nil
}

func (s *Store) set(ctx context.Context, cid string, doc content.Document) {
	data, err := json.Marshal(doc)
	if err != nil {
		return
	}

	if err := s.rdb.Set(ctx, keyPrefix+cid, data, s.ttl).Err(); err != nil {
		s.log.Infow("contentcache: set", "cid", cid, "ERROR", err)
	}
}
