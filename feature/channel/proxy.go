package channel

import (
	"fmt"
	"net/url"
)

// proxyEntry is one CORS-bypass intermediary with its URL convention.
type proxyEntry struct {
	name string
	wrap func(target string) string
}

// ProxyPool is the rotating pool of CORS-bypass intermediaries used by the
// proxied transport strategy.
//
// The rotation index is process-wide and deliberately unsynchronized: the
// engine never syncs connections in parallel, so the index is only a
// best-effort shared counter advanced on failure.
type ProxyPool struct {
	entries []proxyEntry
	index   int
}

// NewProxyPool creates the default pool of public CORS proxies. When override
// is non-empty it becomes the only entry, receiving the target as an encoded
// url= query parameter.
func NewProxyPool(override string) *ProxyPool {
	if override != "" {
		return &ProxyPool{entries: []proxyEntry{{
			name: "custom",
			wrap: func(target string) string {
				return fmt.Sprintf("%s?url=%s", override, url.QueryEscape(target))
			},
		}}}
	}

	return &ProxyPool{entries: []proxyEntry{
		{
			name: "allorigins",
			wrap: func(target string) string {
				return "https://api.allorigins.win/raw?url=" + url.QueryEscape(target)
			},
		},
		{
			name: "corsproxy",
			wrap: func(target string) string {
				return "https://corsproxy.io/?" + url.QueryEscape(target)
			},
		},
	}}
}

// Current returns the active proxy entry.
func (p *ProxyPool) Current() proxyEntry {
	return p.entries[p.index%len(p.entries)]
}

// Rotate advances to the next proxy in the pool, after a blocked or failed
// attempt.
func (p *ProxyPool) Rotate() {
	p.index = (p.index + 1) % len(p.entries)
}

// Size returns the number of proxies in the pool.
func (p *ProxyPool) Size() int {
	return len(p.entries)
}
