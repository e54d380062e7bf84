package utils

import (
	"net/url"
	"strings"
)

// ProfileURLPrefix is the canonical prefix of member profile pages
const ProfileURLPrefix = "https://www.linkedin.com/in/"

// NormalizeURL turns a profile reference into a canonical profile URL.
// A bare id gets ProfileURLPrefix prepended; slashes around the id are
// removed. An empty reference yields ProfileURLPrefix itself.
func NormalizeURL(ref string) string {
	id := strings.TrimPrefix(strings.TrimSpace(ref), ProfileURLPrefix)
	return ProfileURLPrefix + strings.Trim(id, "/")
}

// ProfileIDOf returns the id part of a normalized profile URL, empty when
// the URL names no profile
func ProfileIDOf(profileURL string) string {
	return strings.TrimPrefix(profileURL, ProfileURLPrefix)
}

// DeriveProfileID returns the last path segment of a profile URL after
// removing a single trailing slash
func DeriveProfileID(profileURL string) string {
	profileURL = strings.TrimSuffix(profileURL, "/")
	if i := strings.LastIndex(profileURL, "/"); i >= 0 {
		return profileURL[i+1:]
	}
	return profileURL
}

// ResolveURL resolves href against base, keeping its query
func ResolveURL(base, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if b, err := url.Parse(base); err == nil {
		u = b.ResolveReference(u)
	}
	return u.String()
}

// StripQuery resolves href against base and drops its query and fragment
func StripQuery(base, href string) string {
	u, err := url.Parse(ResolveURL(base, href))
	if err != nil {
		return href
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
