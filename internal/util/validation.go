package util

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// routeNameRegex restricts route names to values that are safe as
// metric labels and log fields.
var routeNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateRouteName validates a route table entry name.
func ValidateRouteName(name string) error {
	if name == "" {
		return fmt.Errorf("route name cannot be empty")
	}
	if len(name) > 128 {
		return fmt.Errorf("route name too long: %d characters (max 128)", len(name))
	}
	if !routeNameRegex.MatchString(name) {
		return fmt.Errorf("invalid route name: %s", name)
	}
	return nil
}

// ValidateListenAddress validates a host:port listen address.
// The host part may be empty to bind all interfaces.
func ValidateListenAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port in listen address %q", addr)
	}
	if err := ValidateNonNegativePort(port); err != nil {
		return err
	}

	if host != "" && host != "localhost" && net.ParseIP(host) == nil {
		return ValidateHostname(host)
	}
	return nil
}

// ValidateNonNegativePort validates a port number (0 is allowed for auto-assign).
func ValidateNonNegativePort(port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got: %d", port)
	}
	return nil
}

// ParseDuration parses a duration string with support for common formats.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(s)
	if err == nil {
		return d, nil
	}

	// Try parsing as seconds if it's just a number
	s = strings.TrimSpace(s)
	if isNumeric(s) {
		return time.ParseDuration(s + "s")
	}

	return 0, fmt.Errorf("invalid duration format: %s", s)
}

// isNumeric checks if a string contains only digits.
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}

// ValidateSamplingRate validates a trace sampling rate (0.0-1.0).
func ValidateSamplingRate(rate float64) error {
	if rate < 0 || rate > 1 {
		return fmt.Errorf("sampling rate must be between 0 and 1, got: %v", rate)
	}
	return nil
}

// ValidateHostname validates a hostname such as a user's LMS domain.
func ValidateHostname(hostname string) error {
	if hostname == "" {
		return fmt.Errorf("hostname cannot be empty")
	}

	if len(hostname) > 253 {
		return fmt.Errorf("hostname too long: %d characters (max 253)", len(hostname))
	}

	labels := strings.Split(hostname, ".")
	for _, label := range labels {
		if label == "" {
			return fmt.Errorf("hostname has empty label")
		}
		if len(label) > 63 {
			return fmt.Errorf("hostname label too long: %d characters (max 63)", len(label))
		}
		for i, c := range label {
			if !isValidHostnameChar(c, i == 0, i == len(label)-1) {
				return fmt.Errorf("invalid character in hostname: %c", c)
			}
		}
	}

	return nil
}

// isValidHostnameChar checks if a character is valid in a hostname label.
func isValidHostnameChar(c rune, isFirst, isLast bool) bool {
	if c >= 'a' && c <= 'z' {
		return true
	}
	if c >= 'A' && c <= 'Z' {
		return true
	}
	if c >= '0' && c <= '9' {
		return true
	}
	if c == '-' && !isFirst && !isLast {
		return true
	}
	return false
}
