package game

import (
	"context"

	"arena/server/logging"
)

// withMatch stamps every event with the match id.
func withMatch(pub logging.Publisher, matchID string) logging.Publisher {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	if matchID == "" {
		return pub
	}
	return logging.PublisherFunc(func(ctx context.Context, event logging.Event) {
		extra := make(map[string]any, len(event.Extra)+1)
		for k, v := range event.Extra {
			extra[k] = v
		}
		extra["matchId"] = matchID
		event.Extra = extra
		pub.Publish(ctx, event)
	})
}
