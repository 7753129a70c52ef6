// Package textutil holds small text helpers shared by the platform
// adapters: whitespace-safe truncation, URL normalization, and
// order-preserving deduplication.
package textutil

import (
	"html"
	"net/url"
	"regexp"
	"strings"
)

var wsRe = regexp.MustCompile(`\s+`)

// CollapseText collapses all whitespace runs to single spaces, trims, and
// truncates to max runes with a trailing ellipsis. max <= 0 disables
// truncation.
func CollapseText(s string, max int) string {
	t := strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
	return truncate(t, max)
}

// ClipText normalizes line endings to \n, trims, and truncates to max
// runes with a trailing ellipsis while preserving newlines.
func ClipText(s string, max int) string {
	t := strings.ReplaceAll(s, "\r\n", "\n")
	t = strings.ReplaceAll(t, "\r", "\n")
	return truncate(strings.TrimSpace(t), max)
}

func truncate(t string, max int) string {
	if t == "" || max <= 0 {
		return t
	}
	r := []rune(t)
	if len(r) <= max {
		return t
	}
	if max <= 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

// NormalizeURL parses and re-serializes a URL to canonical absolute form.
// Unparseable input is returned trimmed but otherwise untouched.
func NormalizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return s
	}
	return u.String()
}

// DedupBy returns items with later duplicates removed, preserving first-seen
// order. Items whose key is empty are dropped.
func DedupBy[T any](items []T, key func(T) string) []T {
	out := make([]T, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		k := key(it)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

var (
	brRe     = regexp.MustCompile(`(?i)<br\s*/?>`)
	pCloseRe = regexp.MustCompile(`(?i)</p>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
)

// StripHTML converts the small HTML fragments returned by platform data
// endpoints to plaintext: <br> and </p> become newlines, remaining tags
// are dropped, and entities are decoded. Non-breaking spaces become
// regular spaces so downstream whitespace collapsing sees them.
func StripHTML(s string) string {
	t := brRe.ReplaceAllString(s, "\n")
	t = pCloseRe.ReplaceAllString(t, "\n")
	t = tagRe.ReplaceAllString(t, "")
	t = html.UnescapeString(t)
	t = strings.ReplaceAll(t, "\u00a0", " ")
	return strings.TrimSpace(t)
}
