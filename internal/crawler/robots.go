package crawler

import (
	"context"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// robotsPolicy caches parsed robots.txt files per scheme+host.
type robotsPolicy struct {
	mu    sync.Mutex
	hosts map[string]*robotstxt.RobotsData
}

func newRobotsPolicy() *robotsPolicy {
	return &robotsPolicy{hosts: make(map[string]*robotstxt.RobotsData)}
}

// allowed reports whether f's user agent may fetch pageURL. A robots.txt
// that cannot be fetched or parsed allows everything.
func (p *robotsPolicy) allowed(ctx context.Context, f *Fetcher, pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return true
	}
	key := u.Scheme + "://" + u.Host

	p.mu.Lock()
	data, ok := p.hosts[key]
	p.mu.Unlock()

	if !ok {
		data = f.loadRobots(ctx, key)
		p.mu.Lock()
		p.hosts[key] = data
		p.mu.Unlock()
	}
	if data == nil {
		return true
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return data.FindGroup(f.userAgent).Test(path)
}

func (f *Fetcher) loadRobots(ctx context.Context, origin string) *robotstxt.RobotsData {
	resp, err := f.get(ctx, origin+"/robots.txt")
	if err != nil {
		f.logger.Debug("robots.txt unavailable", "origin", origin, "error", err)
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		f.logger.Debug("robots.txt unparseable", "origin", origin, "error", err)
		return nil
	}
	return data
}
