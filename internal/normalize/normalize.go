// Package normalize turns raw product text into stable keyword sets and
// fingerprints. All functions are pure and never fail; missing input is
// treated as the empty string.
package normalize

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"unicode"
)

// MaxKeywords caps the number of keywords derived from a query.
const MaxKeywords = 10

// minTokenLength filters out tokens too short to carry signal.
const minTokenLength = 3

// stopwords are marketplace noise words that carry no category signal.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {},
	"new": {}, "used": {}, "mint": {}, "rare": {}, "item": {},
	"free": {}, "shipping": {}, "japan": {}, "genuine": {}, "authentic": {},
	"lot": {}, "set": {}, "size": {},
}

// Title lower-cases a string, replaces punctuation with spaces and
// collapses runs of whitespace.
func Title(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Keywords tokenizes the given fields into a deduplicated keyword set:
// lower-cased, punctuation stripped, tokens of length >= 3, stopwords
// removed, capped at MaxKeywords. Order follows first appearance.
func Keywords(fields ...string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, f := range fields {
		for _, tok := range strings.Fields(Title(f)) {
			if len(tok) < minTokenLength {
				continue
			}
			if _, stop := stopwords[tok]; stop {
				continue
			}
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
			if len(out) >= MaxKeywords {
				return out
			}
		}
	}
	return out
}

// Fingerprint computes a stable hash over the normalized forms of the
// given fields, joined with a separator so field boundaries survive.
func Fingerprint(fields ...string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = Title(f)
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%x", sum)
}

// KeywordOverlap counts keywords present in both sets.
func KeywordOverlap(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, k := range a {
		set[k] = struct{}{}
	}
	count := 0
	for _, k := range b {
		if _, ok := set[k]; ok {
			count++
		}
	}
	return count
}
