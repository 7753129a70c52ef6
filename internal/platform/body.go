package platform

import (
	"fmt"
	"strings"
	"time"

	"github.com/chek-app/crawler/internal/model"
	"github.com/chek-app/crawler/internal/textutil"
)

// Normalize reshapes a candidate into the ingest schema: base tags, the
// sentinel author, and the body footer (source label, canonical URL, crawl
// timestamp). The main text is truncated so the footer always survives the
// hard body cap.
func Normalize(c model.CandidateItem, now time.Time) model.Item {
	footer := fmt.Sprintf(
		"\n\n- 来源：%s\n- 原文链接：%s\n- 抓取时间：%s\n",
		c.SourcePlatform.Label(),
		textutil.NormalizeURL(c.SourceURL),
		now.UTC().Format(time.RFC3339),
	)

	main := textutil.ClipText(c.Body, mainTextMax)
	if main == "" {
		main = textutil.CollapseText(c.Hint, hintMax)
	}

	room := bodyMax - len([]rune(footer))
	if len([]rune(main)) > room {
		main = textutil.ClipText(main, room)
	}

	title := textutil.CollapseText(c.Title, titleMax)
	if title == "" {
		title = firstNonEmpty(textutil.CollapseText(c.Hint, titleMax), defaultTitle)
	}

	return model.Item{
		SourcePlatform:  c.SourcePlatform,
		SourceID:        c.SourceID,
		SourceURL:       c.SourceURL,
		Title:           title,
		Body:            main + footer,
		Tags:            baseTags(c.SourcePlatform),
		AuthorUserOneID: DefaultAuthor,
	}
}

// firstLine returns the first non-empty line of text, collapsed to the
// title cap.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if s := textutil.CollapseText(line, titleMax); s != "" {
			return s
		}
	}
	return ""
}
