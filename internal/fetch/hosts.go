// Package fetch downloads remote archives from allow-listed hosts.
package fetch

import (
	"fmt"
	"net/url"
	"strings"

	"lcaload/internal/domain"
)

// HostPolicy is an allow-list of hosts. An entry starting with "." also
// matches every subdomain of the rest of the entry.
type HostPolicy struct {
	allowed []string
}

// NewHostPolicy returns a policy over the given entries. An empty list allows
// nothing.
func NewHostPolicy(hosts []string) HostPolicy {
	p := HostPolicy{}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" && h != "." {
			p.allowed = append(p.allowed, h)
		}
	}
	return p
}

// Allowed reports whether host (without port) is on the list.
func (p HostPolicy) Allowed(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" {
		return false
	}
	for _, entry := range p.allowed {
		if strings.HasPrefix(entry, ".") {
			if host == entry[1:] || strings.HasSuffix(host, entry) {
				return true
			}
			continue
		}
		if host == entry {
			return true
		}
	}
	return false
}

// Check parses rawURL and verifies its scheme and host.
func (p HostPolicy) Check(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArchiveURL, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("%w: scheme %q", domain.ErrInvalidArchiveURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: missing host", domain.ErrInvalidArchiveURL)
	}
	if u.User != nil {
		return nil, fmt.Errorf("%w: credentials in url", domain.ErrInvalidArchiveURL)
	}
	if !p.Allowed(u.Hostname()) {
		return nil, fmt.Errorf("%w: %s", domain.ErrHostNotAllowed, u.Hostname())
	}
	return u, nil
}
