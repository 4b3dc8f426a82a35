package origin

import (
	"net/url"
	"strings"
)

// Matcher decides whether a browser-reported Origin header is admitted.
// It is built once from configuration and is immutable afterwards, so
// concurrent reads need no synchronization.
type Matcher struct {
	raw   []string
	hosts map[string]struct{}
}

func New(allowed []string) *Matcher {
	m := &Matcher{
		raw:   make([]string, 0, len(allowed)),
		hosts: make(map[string]struct{}, len(allowed)),
	}
	for _, entry := range allowed {
		entry = strings.TrimRight(strings.TrimSpace(entry), "/")
		if entry == "" {
			continue
		}
		m.raw = append(m.raw, entry)
		m.hosts[hostOf(entry)] = struct{}{}
	}
	return m
}

// Allow reports whether a request carrying the given Origin header may
// proceed. An absent header is a non-browser caller and is always admitted.
func (m *Matcher) Allow(header string) bool {
	header = strings.TrimRight(strings.TrimSpace(header), "/")
	if header == "" {
		return true
	}
	if _, ok := m.hosts[hostOf(header)]; ok {
		return true
	}
	// Entries that are not standard URLs (bare hostnames, custom schemes)
	// still admit an exactly matching header.
	for _, entry := range m.raw {
		if header == entry {
			return true
		}
	}
	return false
}

// hostOf reduces an origin string to hostname[:port]. Anything that does not
// parse as an absolute URL is kept verbatim, degrading to a literal match.
func hostOf(s string) string {
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			return u.Host
		}
	}
	return s
}
