package clientip

import (
	"net"
	"net/http"
	"strings"
)

// GetIP returns the client's normalized IP address, or "" when no candidate
// parses as a valid address.
func GetIP(r *http.Request) string {
	// X-Forwarded-For holds the chain client, proxy1, proxy2, ...; the
	// first parseable entry is the original caller.
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for entry := range strings.SplitSeq(forwarded, ",") {
			if ip := parseIP(entry); ip != "" {
				return ip
			}
		}
	}

	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, as some test servers set it.
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// parseIP validates and normalizes a single address candidate.
func parseIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}
