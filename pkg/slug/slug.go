package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Generate derives a lowercase, URL-safe slug from a display name.
// Runs of spaces, dashes, and other non-alphanumeric characters collapse
// into a single dash; leading and trailing dashes are trimmed.
//
//	"Power Tools & Hardware" → "power-tools-hardware"
//	"  Laptops -- Gaming "   → "laptops-gaming"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
