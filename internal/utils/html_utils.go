package utils

import (
	"html"
	"html/template"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var textOnly = bluemonday.StrictPolicy()

// ExcerptText flattens an HTML fragment into plain text and truncates
// it near maxRunes, cutting on a word boundary when one is close.
func ExcerptText(htmlStr string, maxRunes int) string {
	text := html.UnescapeString(textOnly.Sanitize(htmlStr))
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}

	cut := maxRunes
	for i := maxRunes; i > maxRunes/2; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}
	return strings.TrimSpace(string(runes[:cut])) + "..."
}

// EnhanceHTMLContent hardens member-supplied images: hotlink-safe
// referrer policy, lazy loading and a placeholder on broken sources.
func EnhanceHTMLContent(htmlStr string) template.HTML {
	if htmlStr == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return template.HTML(htmlStr)
	}

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("referrerpolicy", "no-referrer")
		s.SetAttr("rel", "noopener")
		s.SetAttr("loading", "lazy")
		s.SetAttr("onerror", "this.onerror=null; this.src='/static/img/imgerr.svg'")
	})

	// goquery renders full document tags if missing, we just want the body content
	html, _ := doc.Find("body").Html()
	if html == "" {
		html, _ = doc.Html()
	}

	return template.HTML(html)
}
