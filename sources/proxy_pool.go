package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/proxy"
)

const proxyCooldown = 30 * time.Second

type ProxyStats struct {
	Successes int
	Failures  int
}

type proxyEntry struct {
	client        *http.Client
	host          string
	lastUsed      time.Time
	cooldownUntil time.Time
	stats         ProxyStats
}

// availableAt is the earliest time the entry may be handed out again.
func (e *proxyEntry) availableAt(minInterval time.Duration) time.Time {
	at := e.lastUsed.Add(minInterval)
	if e.cooldownUntil.After(at) {
		return e.cooldownUntil
	}
	return at
}

// ProxyPool hands out proxied clients round-robin. A proxy is skipped while
// it cools down after a 429 or was used less than minInterval ago.
type ProxyPool struct {
	mu          sync.Mutex
	entries     []*proxyEntry
	next        int
	minInterval time.Duration
	cooldown    time.Duration
}

func NewProxyPool(proxyURLs []string, timeout, minInterval time.Duration) (*ProxyPool, error) {
	if len(proxyURLs) == 0 {
		return nil, errors.New("no proxy URLs provided")
	}

	seen := make(map[string]bool, len(proxyURLs))
	entries := make([]*proxyEntry, 0, len(proxyURLs))
	for _, raw := range proxyURLs {
		parsed, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		if seen[raw] {
			slog.Warn("duplicate proxy URL, skipping", "host", parsed.Host)
			continue
		}
		seen[raw] = true

		client, err := NewHTTPClient(raw, timeout)
		if err != nil {
			return nil, err
		}
		// host only, credentials stay out of logs and stats
		entries = append(entries, &proxyEntry{client: client, host: parsed.Host})
	}

	hosts := make([]string, 0, len(entries))
	for _, e := range entries {
		hosts = append(hosts, e.host)
	}
	slog.Info("proxy pool created", "count", len(entries), "hosts", hosts)

	return &ProxyPool{
		entries:     entries,
		minInterval: minInterval,
		cooldown:    proxyCooldown,
	}, nil
}

// NewHTTPClient builds a client that dials through proxyURL. socks5 and
// http(s) proxies are supported; an empty URL means a direct connection.
func NewHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	client := &http.Client{Timeout: timeout}
	if proxyURL == "" {
		return client, nil
	}

	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, err
	}

	switch parsed.Scheme {
	case "http", "https":
		client.Transport = &http.Transport{Proxy: http.ProxyURL(parsed)}
	case "socks5":
		var auth *proxy.Auth
		if parsed.User != nil {
			password, _ := parsed.User.Password()
			auth = &proxy.Auth{User: parsed.User.Username(), Password: password}
		}
		dialer, err := proxy.SOCKS5("tcp", parsed.Host, auth, proxy.Direct)
		if err != nil {
			return nil, err
		}
		client.Transport = &http.Transport{DialContext: socksDialContext(dialer)}
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", parsed.Scheme)
	}
	return client, nil
}

func socksDialContext(dialer proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return dialer.Dial(network, addr)
	}
}

// Next returns the next usable proxy, waiting for the soonest one when all
// of them are busy or cooling down.
func (p *ProxyPool) Next(ctx context.Context) (*http.Client, string, error) {
	for {
		p.mu.Lock()
		now := time.Now()
		var soonest time.Time
		for range p.entries {
			e := p.entries[p.next]
			p.next = (p.next + 1) % len(p.entries)

			at := e.availableAt(p.minInterval)
			if !at.After(now) {
				e.lastUsed = now
				p.mu.Unlock()
				return e.client, e.host, nil
			}
			if soonest.IsZero() || at.Before(soonest) {
				soonest = at
			}
		}
		p.mu.Unlock()

		wait := time.Until(soonest)
		slog.Debug("all proxies busy, waiting", "wait_ms", wait.Milliseconds())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, "", ctx.Err()
		case <-timer.C:
		}
	}
}

func (p *ProxyPool) entry(host string) *proxyEntry {
	for _, e := range p.entries {
		if e.host == host {
			return e
		}
	}
	return nil
}

// MarkRateLimited puts a proxy on cooldown.
func (p *ProxyPool) MarkRateLimited(host string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e := p.entry(host); e != nil {
		e.cooldownUntil = time.Now().Add(p.cooldown)
		e.stats.Failures++
		slog.Debug("proxy on cooldown", "host", host, "duration_seconds", p.cooldown.Seconds())
	}
}

func (p *ProxyPool) MarkSuccess(host string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e := p.entry(host); e != nil {
		e.stats.Successes++
	}
}

func (p *ProxyPool) MarkFailure(host string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e := p.entry(host); e != nil {
		e.stats.Failures++
	}
}

// Stats returns success and failure counts per proxy host.
func (p *ProxyPool) Stats() map[string]ProxyStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := make(map[string]ProxyStats, len(p.entries))
	for _, e := range p.entries {
		stats[e.host] = e.stats
	}
	return stats
}
