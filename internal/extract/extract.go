package extract

import (
	"regexp"
)

// Action is one follow-up task captured from a notification email body.
type Action struct {
	Name    string
	Address string
}

// The follow-up emails are templated: every action renders as a single-line
// list item with a literal " - " between the contact name and the address.
var reAction = regexp.MustCompile(`<li>(.+?) - (.+?)</li>`)

// Actions scans a decoded body and returns every template-conforming
// <li>NAME - ADDRESS</li> fragment in document order. Fragments that don't
// match are skipped; no match at all is an empty result, not an error.
// Captured text is passed through as-is, with no validation.
func Actions(body string) []Action {
	matches := reAction.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	out := make([]Action, 0, len(matches))
	for _, m := range matches {
		out = append(out, Action{
			Name:    m[1],
			Address: m[2],
		})
	}
	return out
}
