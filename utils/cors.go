package utils

import (
	"net"
	"net/url"
	"strings"
)

var privateRanges = []*net.IPNet{
	mustParseCIDR("10.0.0.0/8"),
	mustParseCIDR("172.16.0.0/12"),
	mustParseCIDR("192.168.0.0/16"),
	mustParseCIDR("127.0.0.0/8"),
	mustParseCIDR("169.254.0.0/16"), // link-local IPv4
	mustParseCIDR("::1/128"),
	mustParseCIDR("fe80::/10"),
	mustParseCIDR("fc00::/7"), // unique local IPv6
}

// OriginPolicy decides which browser origins may call the API. Local and
// private-network origins are always trusted; anything else must be listed.
type OriginPolicy struct {
	extra map[string]struct{}
}

// NewOriginPolicy trusts the given origins (scheme://host[:port]) in addition
// to local ones.
func NewOriginPolicy(origins []string) *OriginPolicy {
	p := &OriginPolicy{extra: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		o = strings.TrimRight(strings.ToLower(strings.TrimSpace(o)), "/")
		if o != "" {
			p.extra[o] = struct{}{}
		}
	}
	return p
}

// Allowed checks whether an Origin header value should be trusted.
func (p *OriginPolicy) Allowed(origin string) bool {
	if p != nil {
		if _, ok := p.extra[strings.TrimRight(strings.ToLower(origin), "/")]; ok {
			return true
		}
	}
	return IsAllowedOrigin(origin)
}

// IsAllowedOrigin reports whether origin points at this machine or the local
// network: localhost, private or link-local IPs, .local hostnames and
// single-label hostnames.
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	hostname := parsed.Hostname()
	switch {
	case hostname == "localhost",
		strings.HasSuffix(hostname, ".local"),
		!strings.Contains(hostname, ".") && net.ParseIP(hostname) == nil:
		return true
	}

	if ip := net.ParseIP(hostname); ip != nil {
		return isPrivateIP(ip)
	}
	return false
}

func isPrivateIP(ip net.IP) bool {
	for _, network := range privateRanges {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

func mustParseCIDR(s string) *net.IPNet {
	_, network, err := net.ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	return network
}
