// Package mail searches a mailbox for customer email threads. The
// production implementation delegates to the Gmail search API; an IMAP
// implementation is available behind the same interface.
package mail

import (
	"context"
	"fmt"
	"time"
)

// DefaultMaxThreads caps the result set. Callers needing more must narrow
// the date window themselves.
const DefaultMaxThreads = 50

// SearchError wraps any transport failure during a thread search.
type SearchError struct {
	Err error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("mail search failed: %v", e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// Message is one normalized email message.
type Message struct {
	From          string    `json:"from"`
	To            string    `json:"to"`
	Date          time.Time `json:"date"`
	DateFormatted string    `json:"date_formatted"`
	Subject       string    `json:"subject"`
	Body          string    `json:"body"`
}

// Thread is an ordered email conversation. Immutable once parsed.
type Thread struct {
	Subject      string    `json:"subject"`
	MessageCount int       `json:"message_count"`
	Messages     []Message `json:"messages"`
}

// Filter narrows a thread search. All fields are optional and combine
// with AND semantics.
type Filter struct {
	Label      string
	FromDomain string
	FromEmail  string
	After      time.Time
	Before     time.Time
}

// Source searches for email threads matching a filter.
type Source interface {
	SearchThreads(ctx context.Context, filter Filter) ([]Thread, error)
	Close() error
}
