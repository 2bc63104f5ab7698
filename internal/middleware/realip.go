package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ProxyTrust holds the reverse proxies whose forwarding headers are believed.
// A nil or empty ProxyTrust believes none of them.
type ProxyTrust struct {
	prefixes []netip.Prefix
}

// NewProxyTrust parses entries as CIDR ranges or single addresses.
func NewProxyTrust(entries []string) (*ProxyTrust, error) {
	p := &ProxyTrust{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", entry, err)
			}
			p.prefixes = append(p.prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		p.prefixes = append(p.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return p, nil
}

// Trusts reports whether ip belongs to a configured proxy.
func (p *ProxyTrust) Trusts(ip string) bool {
	if p == nil || len(p.prefixes) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range p.prefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// Resolve returns the client address for r. Forwarding headers only count when
// the connecting peer is a trusted proxy; X-Forwarded-For is read right to left
// and the first hop that is not itself trusted wins.
func (p *ProxyTrust) Resolve(r *http.Request) string {
	peer := ClientIP(r)
	if !p.Trusts(peer) {
		return peer
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		hops := strings.Split(xf, ",")
		client := ""
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if _, err := netip.ParseAddr(hop); err != nil {
				break
			}
			client = hop
			if !p.Trusts(hop) {
				break
			}
		}
		if client != "" {
			return client
		}
	}
	if xr := strings.TrimSpace(r.Header.Get("X-Real-IP")); xr != "" {
		if _, err := netip.ParseAddr(xr); err == nil {
			return xr
		}
	}
	return peer
}

// RealIP rewrites RemoteAddr to the resolved client address so that later
// middleware and handlers see the real client behind trusted proxies.
func RealIP(p *ProxyTrust) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if p == nil || len(p.prefixes) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := p.Resolve(r); ip != ClientIP(r) {
				r.RemoteAddr = net.JoinHostPort(ip, "0")
			}
			next.ServeHTTP(w, r)
		})
	}
}
