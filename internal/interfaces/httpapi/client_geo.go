package httpapi

import (
	"net"
	"net/http"
	"strings"
)

// clientAddr extracts the calling client's IP. Webhook traffic arrives
// through the platform edge, so forwarding headers are checked before the
// socket peer.
func clientAddr(r *http.Request) string {
	for _, raw := range []string{
		r.Header.Get("Fly-Client-IP"),
		r.Header.Get("X-Forwarded-For"),
		r.RemoteAddr,
	} {
		if ip := firstIP(raw); ip != "" {
			return ip
		}
	}
	return ""
}

// clientCountry reads the two-letter country code stamped by the edge proxy,
// "ZZ" when none is present. Score reports come from league players, so a
// far-away country in the webhook log usually means probing.
func clientCountry(r *http.Request) string {
	for _, raw := range []string{
		r.Header.Get("Fly-Client-Country"),
		r.Header.Get("CF-IPCountry"),
	} {
		if code := countryCode(raw); code != "" {
			return code
		}
	}
	return "ZZ"
}

// firstIP validates the first address of a comma-separated forwarding chain,
// stripping a port when one is attached.
func firstIP(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if head, _, found := strings.Cut(value, ","); found {
		value = strings.TrimSpace(head)
	}
	if host, _, err := net.SplitHostPort(value); err == nil {
		value = strings.TrimSpace(host)
	}
	parsed := net.ParseIP(value)
	if parsed == nil {
		return ""
	}
	return parsed.String()
}

func countryCode(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != 2 {
		return ""
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}
	return code
}
