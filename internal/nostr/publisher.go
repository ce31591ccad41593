package nostr

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nbd-wtf/go-nostr"
)

// Publisher signs and broadcasts an event, returning its event id. The relay
// layer is a best-effort broadcast channel; callers must treat failures as
// degraded functionality, never as corruption of local state.
type Publisher interface {
	Publish(ctx context.Context, ev nostr.Event) (string, error)
}

// RelayPublisher broadcasts signed events to a fixed relay set, succeeding
// when at least one relay accepts. Each publish carries its own deadline.
type RelayPublisher struct {
	relays  []string
	secret  string
	pool    *nostr.SimplePool
	timeout time.Duration
	log     *slog.Logger
}

// NewRelayPublisher creates a publisher for the given relays, signing with
// the given hex secret key.
func NewRelayPublisher(relays []string, secretKey string, timeout time.Duration, log *slog.Logger) *RelayPublisher {
	return &RelayPublisher{
		relays:  relays,
		secret:  secretKey,
		pool:    nostr.NewSimplePool(context.Background()),
		timeout: timeout,
		log:     log,
	}
}

// Publish signs ev and sends it to every configured relay. Individual relay
// failures are logged; the publish fails only when no relay accepts.
func (p *RelayPublisher) Publish(ctx context.Context, ev nostr.Event) (string, error) {
	if err := ev.Sign(p.secret); err != nil {
		return "", fmt.Errorf("signing event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var accepted int
	for _, url := range p.relays {
		relay, err := p.pool.EnsureRelay(url)
		if err != nil {
			p.log.Warn("relay connect failed", "relay", url, "error", err)
			continue
		}
		if err := relay.Publish(ctx, ev); err != nil {
			p.log.Warn("relay publish failed", "relay", url, "kind", ev.Kind, "error", err)
			continue
		}
		accepted++
	}

	if accepted == 0 {
		return "", fmt.Errorf("no relay accepted event kind %d", ev.Kind)
	}
	p.log.Info("event published", "kind", ev.Kind, "id", ev.ID, "relays", accepted)
	return ev.ID, nil
}
