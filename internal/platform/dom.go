package platform

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// domFallback holds the secondary extraction sources scraped from a
// rendered detail page when the platform's data endpoint yields nothing.
type domFallback struct {
	Title       string
	Description string
	BodyText    string
}

// fallbackQuery configures per-platform DOM fallback selectors.
type fallbackQuery struct {
	// TitleSelectors are element selectors whose text is tried before the
	// og:title meta tag.
	TitleSelectors []string
	// UseDocTitle falls back to the <title> element after og:title.
	UseDocTitle bool
	// Containers are likely main-content selectors, tried in order.
	Containers []string
}

// extractDOMFallback scrapes og/meta tags and likely content containers
// from detail-page HTML.
func extractDOMFallback(html string, q fallbackQuery) domFallback {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domFallback{}
	}

	var title string
	for _, sel := range q.TitleSelectors {
		if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
			title = t
			break
		}
	}
	if title == "" {
		title = metaContent(doc, `meta[property="og:title"]`)
	}
	if title == "" && q.UseDocTitle {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	desc := metaContent(doc, `meta[name="description"]`)
	if desc == "" {
		desc = metaContent(doc, `meta[property="og:description"]`)
	}

	var bodyText string
	for _, sel := range q.Containers {
		if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
			bodyText = t
			break
		}
	}

	return domFallback{Title: title, Description: desc, BodyText: bodyText}
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}
