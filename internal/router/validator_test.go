package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewURLValidator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rawURL   string
		domain   string
		valid    bool
		userHost bool
	}{
		{name: "same host", rawURL: "https://school.instructure.com/courses/1", domain: "school.instructure.com", valid: true, userHost: true},
		{name: "host with port", rawURL: "https://school.instructure.com:443/courses/1", domain: "school.instructure.com", valid: true, userHost: true},
		{name: "case differs", rawURL: "https://SCHOOL.instructure.com/", domain: "school.Instructure.com", valid: true, userHost: true},
		{name: "domain as url", rawURL: "https://school.instructure.com/", domain: "https://school.instructure.com/login", valid: true, userHost: true},
		{name: "domain with port", rawURL: "https://school.instructure.com/", domain: "school.instructure.com:8443", valid: true, userHost: true},
		{name: "other host", rawURL: "https://other.instructure.com/courses/1", domain: "school.instructure.com", valid: true, userHost: false},
		{name: "suffix is not a match", rawURL: "https://school.instructure.com.evil.io/", domain: "school.instructure.com", valid: true, userHost: false},
		{name: "relative url", rawURL: "/courses/1", domain: "school.instructure.com", valid: true, userHost: false},
		{name: "empty domain", rawURL: "https://school.instructure.com/", domain: "", valid: true, userHost: false},
		{name: "empty url", rawURL: "", domain: "school.instructure.com", valid: false, userHost: false},
		{name: "bad escape", rawURL: "https://school.instructure.com/%zz", domain: "school.instructure.com", valid: false, userHost: false},
		{name: "bad host", rawURL: "http://[::1", domain: "::1", valid: false, userHost: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := NewURLValidator(tt.rawURL, tt.domain)
			assert.Equal(t, tt.valid, v.IsValid())
			assert.Equal(t, tt.userHost, v.IsHostForLoggedInUser())
			if tt.valid {
				assert.NotNil(t, v.URI())
			} else {
				assert.Nil(t, v.URI())
			}
		})
	}
}
