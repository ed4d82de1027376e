package webcrawl

import (
	"net"
	"net/netip"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// hostProfile maps host names for lookup without the STD3 restrictions,
// so names such as my_host.local stay valid.
var hostProfile = idna.New(idna.MapForLookup(), idna.StrictDomainName(false))

// ResolveHost returns the host key used for per-host admission control.
// Names are lowercased and converted to their ASCII form; IP literals are
// kept in canonical form. An explicit port is kept, joined the way
// net.JoinHostPort does it, so example.com:8080 and example.com are
// different hosts and IPv6 keys stay unambiguous ([::1]:8080).
// Returns EINVALID if rawURL is not an absolute URL with a host.
func ResolveHost(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", Errorf(EINVALID, "malformed URL %q: %v", rawURL, err)
	}
	hostname := u.Hostname()
	if hostname == "" {
		return "", Errorf(EINVALID, "malformed URL %q: missing host", rawURL)
	}

	host, err := canonicalHost(hostname)
	if err != nil {
		return "", Errorf(EINVALID, "malformed URL %q: %v", rawURL, err)
	}

	if port := u.Port(); port != "" {
		return net.JoinHostPort(host, port), nil
	}
	return host, nil
}

// NormalizeHost canonicalizes a host as given on a command line or in an
// allow list: a name, an IP literal, optionally bracketed, or any of these
// with a port.
func NormalizeHost(host string) (string, error) {
	if addr, err := netip.ParseAddr(strings.Trim(host, "[]")); err == nil {
		return addr.String(), nil
	}
	return ResolveHost("http://" + host)
}

// SplitHostKey returns the host part of a key built by ResolveHost,
// without its port.
func SplitHostKey(key string) string {
	if host, _, err := net.SplitHostPort(key); err == nil {
		return host
	}
	return key
}

func canonicalHost(hostname string) (string, error) {
	if addr, err := netip.ParseAddr(hostname); err == nil {
		return addr.String(), nil
	}
	ascii, err := hostProfile.ToASCII(hostname)
	if err != nil {
		return "", err
	}
	return strings.ToLower(ascii), nil
}
