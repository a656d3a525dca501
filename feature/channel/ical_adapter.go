package channel

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rental-sync/core/storage/models"
	"rental-sync/feature/feed"

	"go.uber.org/zap"
)

// proxyAttempts is the number of proxied fetch attempts before the single
// direct fallback.
const proxyAttempts = 3

// icalAdapter pulls iCalendar feeds over HTTP, directly or through the
// rotating proxy pool.
type icalAdapter struct {
	transport *Transport
}

func (a *icalAdapter) Name() string {
	return "ical"
}

// Push is reserved for channels with official APIs; iCal feeds are pull-only.
func (a *icalAdapter) Push(ctx context.Context, conn *models.ChannelConnection, bookings []models.CanonicalBooking) error {
	return fmt.Errorf("push to feed-only channel %q: %w", conn.Channel, ErrNotImplemented)
}

func (a *icalAdapter) Pull(ctx context.Context, conn *models.ChannelConnection) (*PullResult, error) {
	if isMockURL(conn.URL) {
		return &PullResult{NoChanges: true, Log: "mock URL, no network call"}, nil
	}

	if a.transport.online != nil && !a.transport.online() {
		return nil, fmt.Errorf("pull %q: %w", conn.URL, ErrOffline)
	}

	res, err := a.fetch(ctx, conn)
	if err != nil {
		return nil, err
	}

	if res.notModified {
		return &PullResult{
			NoChanges: true,
			ETag:      conn.ETag,
			Log:       "no changes (304 Not Modified)",
		}, nil
	}

	body := res.body
	if looksLikeHTML(body) {
		return nil, fmt.Errorf("%s returned an HTML page instead of calendar data, likely an anti-bot check: %w", conn.Channel, ErrBlocked)
	}
	if !strings.Contains(string(body), "BEGIN:VCALENDAR") {
		return nil, fmt.Errorf("%s response is not an iCalendar document: %w", conn.Channel, ErrInvalidContent)
	}

	sum := sha256.Sum256(body)
	hash := hex.EncodeToString(sum[:])
	if conn.ContentHash != "" && hash == conn.ContentHash {
		return &PullResult{
			NoChanges: true,
			Hash:      hash,
			Log:       "no changes (hash match)",
		}, nil
	}

	events, notes := feed.Parse(string(body))
	for _, note := range notes {
		a.transport.logger.Warn("feed parse note",
			zap.Uint("connection_id", conn.ID),
			zap.String("channel", conn.Channel),
			zap.String("note", note),
		)
	}

	return &PullResult{
		Events:       events,
		Hash:         hash,
		ETag:         res.etag,
		LastModified: res.lastModified,
		Log:          fmt.Sprintf("pulled %d events", len(events)),
	}, nil
}

// fetchResult is one HTTP attempt's outcome.
type fetchResult struct {
	body         []byte
	etag         string
	lastModified string
	notModified  bool
}

// fetch runs the transport strategy: direct when forced, otherwise proxied
// with rotation and a single direct fallback after the pool is exhausted.
func (a *icalAdapter) fetch(ctx context.Context, conn *models.ChannelConnection) (*fetchResult, error) {
	if conn.ForceDirect {
		res, _, err := a.attempt(ctx, conn, conn.URL, false)
		return res, err
	}

	pool := a.transport.pool
	var lastErr error
	for i := 0; i < proxyAttempts; i++ {
		proxy := pool.Current()
		res, retryable, err := a.attempt(ctx, conn, proxy.wrap(conn.URL), true)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		a.transport.logger.Warn("proxy attempt failed, rotating",
			zap.Uint("connection_id", conn.ID),
			zap.String("proxy", proxy.name),
			zap.Error(err),
		)
		pool.Rotate()
	}

	// All proxies exhausted: one direct fallback before giving up.
	res, _, err := a.attempt(ctx, conn, cacheBust(conn.URL), false)
	if err != nil {
		return nil, fmt.Errorf("all proxies failed (%v), direct fallback failed: %w", lastErr, err)
	}
	return res, nil
}

// attempt performs one HTTP GET. The second return reports whether the
// failure is retryable through proxy rotation (blockish 403, any 5xx, or a
// network-level error).
func (a *icalAdapter) attempt(ctx context.Context, conn *models.ChannelConnection, target string, proxied bool) (*fetchResult, bool, error) {
	if proxied {
		target = cacheBust(target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, false, fmt.Errorf("building request: %w", err)
	}
	if conn.ETag != "" {
		req.Header.Set("If-None-Match", conn.ETag)
	}

	resp, err := a.transport.client.Do(req)
	if err != nil {
		// Timeouts and connection resets rotate to the next proxy.
		return nil, true, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		return &fetchResult{notModified: true}, false, nil

	case resp.StatusCode == http.StatusUnauthorized:
		return nil, false, fmt.Errorf("%s rejected the request (401): %w", conn.Channel, ErrTokenExpired)

	case resp.StatusCode == http.StatusForbidden:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		if looksLikeHTML(body) {
			return nil, true, fmt.Errorf("%s served a block page (403): %w", conn.Channel, ErrBlocked)
		}
		return nil, false, fmt.Errorf("%s denied access (403)", conn.Channel)

	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("upstream returned status %d", resp.StatusCode)

	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("reading feed body: %w", err)
	}

	return &fetchResult{
		body:         body,
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}, false, nil
}

// cacheBust appends a unique query parameter to defeat intermediate caching.
func cacheBust(target string) string {
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_cb=%d", target, sep, time.Now().UnixNano())
}

// isMockURL reports test/mock URLs that must never hit the network.
func isMockURL(u string) bool {
	return strings.HasPrefix(u, "mock://") || strings.HasPrefix(u, "test://")
}

// looksLikeHTML detects anti-bot/CAPTCHA interstitials served instead of
// calendar text.
func looksLikeHTML(body []byte) bool {
	head := strings.ToLower(string(body))
	if len(head) > 512 {
		head = head[:512]
	}
	head = strings.TrimSpace(head)
	return strings.HasPrefix(head, "<!doctype html") ||
		strings.HasPrefix(head, "<html") ||
		strings.Contains(head, "<head>") ||
		strings.Contains(head, "captcha")
}
