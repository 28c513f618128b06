package content

import "time"

// Document is the unit pinned in the content store: the body text plus the
// tags that describe who wrote it and for what.
type Document struct {
	Content   string            `json:"content"`
	Tags      map[string]string `json:"tags,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Resolution is the outcome of retrieving one identifier.
type Resolution struct {
	CID  string
	Text string
	Err  error
}

// Placeholder is the text shown in place of content that failed to resolve.
const Placeholder = "Error retrieving content"
