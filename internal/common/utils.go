package common

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrNotADomain is returned when the target has neither a scheme nor a dot.
var ErrNotADomain = errors.New("enter a domain like 'example.com' or a full http(s) URL")

var markdownLinkPattern = regexp.MustCompile(`^\[.*?\]\((https?://[^\)]+)\)$`)

// ContentHash computes SHA256 hash of content and returns hex string.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// SanitizeURL performs basic cleanup on URLs to handle common copy-paste issues.
// Removes whitespace, trailing punctuation and markdown link wrappers.
func SanitizeURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	// [text](url) -> url
	if matches := markdownLinkPattern.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	for _, char := range []string{",", ")", "}", "]", "\"", "'", ">", ";"} {
		cleaned = strings.TrimSuffix(cleaned, char)
	}
	for _, char := range []string{"(", "[", "<", "\"", "'"} {
		cleaned = strings.TrimPrefix(cleaned, char)
	}

	return strings.TrimSpace(cleaned)
}

// ValidateURL checks that a sanitized URL is an absolute http(s) URL with a host.
func ValidateURL(raw string) error {
	if strings.Contains(raw, " ") {
		return fmt.Errorf("url contains literal spaces: %q", raw)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported scheme in %q", raw)
	}
	if parsed.Host == "" || strings.ContainsAny(parsed.Host, "{}[]<>\"'") {
		return fmt.Errorf("invalid host in %q", raw)
	}
	return nil
}

// RootURL resolves the user-supplied target into a fetchable URL.
// Full http(s) URLs are used as given; a bare value containing a dot gets https://.
func RootURL(target string) (string, error) {
	value := SanitizeURL(target)
	lower := strings.ToLower(value)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
	case strings.Contains(value, "."):
		value = "https://" + value
	default:
		return "", ErrNotADomain
	}
	if err := ValidateURL(value); err != nil {
		return "", err
	}
	return value, nil
}

// BuildCandidateURLs returns the root URL followed by the extra URLs, sanitized
// and deduplicated in first-seen order. Blank and invalid extras are dropped and
// reported in the second return value.
func BuildCandidateURLs(target string, extras []string) ([]string, []string, error) {
	root, err := RootURL(target)
	if err != nil {
		return nil, nil, err
	}

	seen := map[string]struct{}{root: {}}
	candidates := []string{root}
	var invalid []string

	for _, raw := range extras {
		cleaned := SanitizeURL(raw)
		if cleaned == "" {
			continue
		}
		if err := ValidateURL(cleaned); err != nil {
			invalid = append(invalid, raw)
			continue
		}
		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}
		candidates = append(candidates, cleaned)
	}

	return candidates, invalid, nil
}

// SplitLines splits multi-line or comma separated input into trimmed, non-empty entries.
func SplitLines(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
