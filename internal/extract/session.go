package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Session is a loose summary of one notification email, used only for
// diagnostics when reporting appended or skipped actions.
type Session struct {
	Title string // first heading (or leading paragraph) of the body
	Items int    // total <li> items, template-conforming or not
}

// ReadSession pulls a human-readable summary out of the HTML body.
// Best-effort: an unparseable body yields a zero Session.
func ReadSession(htmlBody string) Session {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return Session{}
	}

	var s Session
	for _, sel := range []string{"h1", "h2", "h3", "title", "p"} {
		if t := cleanText(doc.Find(sel).First().Text()); t != "" {
			s.Title = t
			break
		}
	}
	s.Items = doc.Find("li").Length()
	return s
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}
