package router

import (
	"net/url"
	"strings"
)

// URLValidator holds the result of checking a URL against the domain
// of the logged-in user. All fields are computed at construction.
type URLValidator struct {
	uri                 *url.URL
	valid               bool
	hostForLoggedInUser bool
}

// NewURLValidator parses rawURL and compares its host with userDomain.
// userDomain may be a bare host ("school.instructure.com") or a URL.
func NewURLValidator(rawURL, userDomain string) *URLValidator {
	v := &URLValidator{}
	if rawURL == "" {
		return v
	}

	uri, err := url.Parse(rawURL)
	if err != nil {
		return v
	}
	v.uri = uri
	v.valid = true

	host := uri.Hostname()
	domain := domainHost(userDomain)
	v.hostForLoggedInUser = host != "" && strings.EqualFold(host, domain)

	return v
}

// domainHost extracts the host from a bare domain or a URL.
func domainHost(domain string) string {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return ""
	}
	if strings.Contains(domain, "://") {
		if u, err := url.Parse(domain); err == nil {
			return u.Hostname()
		}
		return ""
	}
	if u, err := url.Parse("//" + domain); err == nil {
		return u.Hostname()
	}
	return domain
}

// IsValid reports whether the URL was non-empty and parsed.
func (v *URLValidator) IsValid() bool {
	return v.valid
}

// IsHostForLoggedInUser reports whether the URL host equals the user's
// domain, ignoring case.
func (v *URLValidator) IsHostForLoggedInUser() bool {
	return v.hostForLoggedInUser
}

// URI returns the parsed URL, or nil when invalid.
func (v *URLValidator) URI() *url.URL {
	return v.uri
}
