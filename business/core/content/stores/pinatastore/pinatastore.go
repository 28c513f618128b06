// Package pinatastore contains content related CRUD functionality backed by
// Pinata and an IPFS gateway.
package pinatastore

import (
	"context"
	"fmt"
	"time"

	"github.com/askchain/askchain/business/core/content"
	"github.com/askchain/askchain/foundation/pinata"
)

// Store manages the set of API's for content access.
type Store struct {
	client *pinata.Client
}

// NewStore constructs the api for data access.
func NewStore(client *pinata.Client) *Store {
	return &Store{
		client: client,
	}
}

// Pin stores the document and returns the identifier Pinata assigned.
func (s *Store) Pin(ctx context.Context, name string, doc content.Document) (string, error) {
	resp, err := s.client.PinJSON(ctx, name, toWire(doc))
	if err != nil {
		return "", fmt.Errorf("pinning %s: %w", name, err)
	}

	return resp.IpfsHash, nil
}

// Fetch reads the document back through the gateway.
func (s *Store) Fetch(ctx context.Context, cid string) (content.Document, error) {
	var wire map[string]any
	if err := s.client.Fetch(ctx, cid, &wire); err != nil {
		return content.Document{}, fmt.Errorf("fetching %s: %w", cid, err)
	}

	return fromWire(wire)
}

// =============================================================================

// The pinned document is flat: the body sits under "content", each tag is a
// top level string field and "timestamp" records when it was written.
const (
	fieldContent   = "content"
	fieldTimestamp = "timestamp"
)

func toWire(doc content.Document) map[string]any {
	wire := make(map[string]any, len(doc.Tags)+2)
	for k, v := range doc.Tags {
		wire[k] = v
	}
	wire[fieldContent] = doc.Content
	wire[fieldTimestamp] = doc.Timestamp.UTC().Format(time.RFC3339Nano)

	return wire
}

func fromWire(wire map[string]any) (content.Document, error) {
	text, ok := wire[fieldContent].(string)
	if !ok {
		return content.Document{}, fmt.Errorf("document has no %q field", fieldContent)
	}

	doc := content.Document{
		Content: text,
		Tags:    make(map[string]string),
	}

	for k, v := range wire {
		switch k {
		case fieldContent:
		case fieldTimestamp:
			if s, ok := v.(string); ok {
				doc.Timestamp, _ = time.Parse(time.RFC3339Nano, s)
			}
		default:
			if s, ok := v.(string); ok {
				doc.Tags[k] = s
			}
		}
	}

	return doc, nil
}
