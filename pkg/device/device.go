// Package device turns raw User-Agent headers into short device descriptors
// such as "Chrome 120.0.0.0 / Linux x86_64".
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Unknown is the descriptor part used when the header does not name a browser or an OS.
const Unknown = "Other"

// Parse returns a best-effort descriptor for the given User-Agent header.
// It never fails: empty or unrecognised input yields Unknown parts.
func Parse(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Unknown + " / " + Unknown
	}

	ua := useragent.New(raw)

	browser := Unknown
	if name, version := ua.Browser(); name != "" {
		browser = strings.TrimSpace(name + " " + version)
	}

	os := ua.OS()
	if os == "" {
		os = Unknown
	}

	desc := browser + " / " + os
	if ua.Bot() {
		desc += " (bot)"
	}

	return desc
}
