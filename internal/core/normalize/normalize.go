// Package normalize provides a deterministic identifier normalizer for
// search engine names and locale tags coming out of health report payloads.
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKC normalization
// 3 Case folding
// 4 Remove zero-width and combining marks
// 5 Width fold fullwidth to ASCII
// 6 Collapse whitespace to single spaces and trim
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalizer is concurrency safe when used with the pool below
type Normalizer struct{}

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		// order matters and mirrors the documented pipeline
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),                       // unicode case folding
			runes.Remove(runes.In(unicode.Mn)), // strip combining marks
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			width.Fold,                         // map fullwidth forms to ASCII
		)
	},
}

// New constructs a Normalizer
func New() *Normalizer { return &Normalizer{} }

// Normalize returns the normalized form of s following the pipeline described above
func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}

	// 1 repair UTF-8 drop invalid bytes
	s = strings.ToValidUTF8(s, "")

	// 2-5 transform via pooled chain then reset and return it
	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	// 6 collapse whitespace and trim
	return strings.Join(strings.Fields(ns), " ")
}

// knownEngines maps folded engine identifiers to their canonical bucket.
// Anything not listed lands in "other"
var knownEngines = map[string]string{
	"google": "google",
	"bing":   "bing",
	"yahoo":  "yahoo",
}

// Engine folds a raw search engine identifier into one of the canonical
// warehouse buckets: google, bing, yahoo or other
func (n *Normalizer) Engine(raw string) string {
	folded := n.Normalize(raw)
	for prefix, canon := range knownEngines {
		if strings.HasPrefix(folded, prefix) {
			return canon
		}
	}
	return "other"
}

// Locale folds a locale tag to the usual lowercase-language form,
// keeping region uppercase (en-us becomes en-US)
func (n *Normalizer) Locale(raw string) string {
	folded := n.Normalize(raw)
	folded = strings.ReplaceAll(folded, "_", "-")
	parts := strings.Split(folded, "-")
	if len(parts) >= 2 && len(parts[1]) == 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}
