// Package page maps a raw query string to one of a fixed set of plain-text
// pages.
package page

import "strings"

const (
	// Key is the query parameter that selects a page.
	Key = "page"
	// Default is selected when the query carries no page pair.
	Default = "1"
	// NotFound is the body for any selector outside the table.
	NotFound = "404 page: try ?page=1..4"
)

var bodies = map[string]string{
	"1": "An Army of One: a lone WASM wakes, answers, vanishes—leaving only calm CPUs and happy ledgers.",
	"2": "The Fly: edge-borne, it lands for a sip of bytes, lifts off before latency knows the name.",
	"3": "Cargo Cult: no rites, no runes—just sockets; planes land where packets are expected.",
	"4": "The Gunslinger: one shot, one header, one body; smoke clears, the 200 still stands.",
}

// Selector returns the value of the first page pair in query, or Default if
// there is none. The query is not percent-decoded and keys are matched
// exactly.
func Selector(query string) string {
	for _, pair := range strings.Split(query, "&") {
		// Only the first '=' separates key from value.
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		if k == Key {
			return v
		}
	}
	return Default
}

// Body returns the text for selector, falling back to NotFound.
func Body(selector string) string {
	if b, ok := bodies[selector]; ok {
		return b
	}
	return NotFound
}

// Lookup is Body(Selector(query)).
func Lookup(query string) string {
	return Body(Selector(query))
}
