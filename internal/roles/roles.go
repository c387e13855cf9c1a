// Package roles extracts role metadata from .mdc rule files. The files
// are free-form markdown; role and description lines are matched
// loosely, accepting both ASCII and fullwidth colons.
package roles

import (
	"os"
	"regexp"
	"strings"
)

var (
	// Horizontal whitespace only around the colon: \s would swallow the
	// newline and scrape the next line when the value is empty.
	rolePattern        = regexp.MustCompile(`(?i)role[ \t]*[：:][ \t]*(.+)`)
	descriptionPattern = regexp.MustCompile(`(?is)description\s*[：:]\s*(.+)`)
)

// ExtractRole pulls the first "role:" line out of the text. The match is
// trimmed to the end of its line.
func ExtractRole(text string) (string, bool) {
	m := rolePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	role := m[1]
	if i := strings.IndexAny(role, "\r\n"); i >= 0 {
		role = role[:i]
	}
	role = strings.TrimSpace(role)
	if role == "" {
		return "", false
	}
	return role, true
}

// ExtractDescription pulls everything after the first "description:"
// marker, which may span multiple lines.
func ExtractDescription(text string) (string, bool) {
	m := descriptionPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	desc := strings.TrimSpace(m[1])
	if desc == "" {
		return "", false
	}
	return desc, true
}

// LoadFile reads an .mdc file and extracts both fields. A missing file
// or absent markers yield empty strings, not errors; callers fall back
// to explicit parameters.
func LoadFile(path string) (role, description string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", ""
	}
	text := string(data)
	role, _ = ExtractRole(text)
	description, _ = ExtractDescription(text)
	return role, description
}
