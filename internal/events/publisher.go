// Package events defines the contract for publishing ledger events
// after they have been committed. Publishing is best effort: a publish
// failure never rolls back the committed operation.
package events

import "context"

// Publisher delivers a committed-event payload to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event any) error
}

// Nop discards all events. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(ctx context.Context, event any) error { return nil }

// Compile-time check: Nop implements Publisher.
var _ Publisher = Nop{}
