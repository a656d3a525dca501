package channel

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"rental-sync/core/storage/models"
	"rental-sync/feature/feed"

	"go.uber.org/zap"
)

// Transport error taxonomy. Transport failures are retryable and isolated per
// connection; content and authentication failures are not retried within the
// same cycle.
var (
	// ErrOffline signals that the process has no network connectivity.
	ErrOffline = errors.New("network offline")
	// ErrBlocked signals an anti-bot or CAPTCHA interstitial.
	ErrBlocked = errors.New("request blocked by channel")
	// ErrTokenExpired signals an expired channel credential. Scheduled cycles
	// stop retrying the connection until a human intervenes.
	ErrTokenExpired = errors.New("channel token expired")
	// ErrInvalidContent signals a response that is not calendar data.
	ErrInvalidContent = errors.New("invalid feed content")
	// ErrNotImplemented signals an operation unsupported by the adapter.
	ErrNotImplemented = errors.New("not implemented")
)

// PullResult is the outcome of pulling one connection's feed.
type PullResult struct {
	// Events holds the full normalized event set of the feed. Only valid when
	// NoChanges is false.
	Events []feed.Event
	// NoChanges reports a short-circuited pull (304, hash match, mock URL).
	// The engine must not derive implicit cancellations from such a result.
	NoChanges bool

	// Change-detection metadata to persist on the connection.
	Hash         string
	ETag         string
	LastModified string

	// Log is a human-readable summary of the pull for the connection log.
	Log string
}

// Adapter is the per-channel transport strategy.
type Adapter interface {
	// Name identifies the adapter implementation.
	Name() string
	// Pull fetches and normalizes the connection's current feed.
	Pull(ctx context.Context, conn *models.ChannelConnection) (*PullResult, error)
	// Push publishes local bookings to the channel. Feed-only channels
	// return ErrNotImplemented.
	Push(ctx context.Context, conn *models.ChannelConnection, bookings []models.CanonicalBooking) error
}

// Factory produces the adapter for a given connection.
type Factory interface {
	ForConnection(conn *models.ChannelConnection) Adapter
}

// Transport owns the shared HTTP client and proxy pool and hands out
// per-connection adapters.
type Transport struct {
	client *http.Client
	pool   *ProxyPool
	online func() bool
	logger *zap.Logger
}

// NewTransport creates the process-wide transport. The online func gates all
// network access; timeout bounds each individual HTTP attempt.
func NewTransport(pool *ProxyPool, online func() bool, timeout time.Duration, logger *zap.Logger) *Transport {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Transport{
		client: &http.Client{Timeout: timeout},
		pool:   pool,
		online: online,
		logger: logger,
	}
}

// ForConnection returns the adapter matching the connection's channel.
// Channels with official push/pull APIs (identifier suffixed "-api") get the
// not-yet-implemented API adapter; everything else is iCal over HTTP.
func (t *Transport) ForConnection(conn *models.ChannelConnection) Adapter {
	if strings.HasSuffix(Normalize(conn.Channel), "-api") {
		return &apiAdapter{logger: t.logger}
	}
	return &icalAdapter{transport: t}
}
