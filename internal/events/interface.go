package events

import "context"

// Publisher delivers match events to subscribers. Implementations must be
// safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event MatchEvent) error
	Close()
}
