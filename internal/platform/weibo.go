package platform

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/chek-app/crawler/internal/model"
	"github.com/chek-app/crawler/internal/textutil"
)

const weiboSearchBase = "https://s.weibo.com/weibo?q="

// visitorWallHost marks the anti-bot redirect target for anonymous or
// expired sessions.
const visitorWallHost = "passport.weibo.com/visitor"

var (
	weiboMidDetailRe = regexp.MustCompile(`/detail/([A-Za-z0-9]+)`)
	weiboMidStatusRe = regexp.MustCompile(`weibo\.com/\d+/([A-Za-z0-9]+)`)
)

// weiboStatusJS fetches the authenticated AJAX status endpoint from inside
// the page so the session cookies apply.
const weiboStatusJS = `async (id) => {
  try {
    const r = await fetch('https://weibo.com/ajax/statuses/show?id=' + encodeURIComponent(id), { credentials: 'include' });
    return { status: r.status, text: await r.text() };
  } catch (e) {
    return { status: 0, text: String(e || '') };
  }
}`

// Weibo crawls s.weibo.com keyword search results and extracts post text
// via the platform's own status endpoint, with DOM fallbacks.
type Weibo struct {
	storageStatePath string
}

// NewWeibo creates the Weibo adapter. An empty storageStatePath disables
// the adapter (it will not attempt an anonymous crawl).
func NewWeibo(storageStatePath string) *Weibo {
	return &Weibo{storageStatePath: storageStatePath}
}

func (w *Weibo) Platform() model.Platform { return model.PlatformWeibo }

// Open creates the Weibo session from the persisted login snapshot.
func (w *Weibo) Open(b *Browser) (*Session, error) {
	if w.storageStatePath == "" {
		zap.L().Warn("weibo_skip_missing_storage_state")
		return nil, nil
	}
	return b.NewSession(SessionOptions{StorageStatePath: w.storageStatePath})
}

// Crawl collects search-result links for keyword and extracts up to
// maxItems candidates from their detail pages.
func (w *Weibo) Crawl(ctx context.Context, s *Session, keyword string, maxItems int) ([]model.CandidateItem, error) {
	links, err := w.collectSearchResults(ctx, s, keyword)
	if err != nil {
		return nil, err
	}
	if len(links) > maxLinks(maxItems) {
		links = links[:maxLinks(maxItems)]
	}

	var out []model.CandidateItem
	for _, l := range links {
		if len(out) >= maxItems {
			break
		}
		id := extractWeiboMid(l.url)
		if id == "" {
			continue
		}
		title, body, err := w.extractDetail(ctx, s, l.url, id, l.hint)
		if err != nil {
			zap.L().Warn("weibo_detail_failed",
				zap.String("url", l.url),
				zap.Error(err),
			)
			continue
		}
		out = append(out, model.CandidateItem{
			SourcePlatform: model.PlatformWeibo,
			SourceID:       id,
			SourceURL:      l.url,
			Title:          title,
			Body:           body,
			Hint:           l.hint,
		})
	}

	return textutil.DedupBy(out, func(c model.CandidateItem) string { return c.Key() }), nil
}

type searchLink struct {
	url  string
	hint string
}

// collectSearchResults navigates the keyword search page and harvests
// post links from rendered anchors. A visitor-wall redirect is treated as
// zero results, not an error.
func (w *Weibo) collectSearchResults(ctx context.Context, s *Session, keyword string) ([]searchLink, error) {
	searchURL := weiboSearchBase + url.QueryEscape(strings.TrimSpace(keyword))
	if err := s.Goto(ctx, searchURL); err != nil {
		return nil, err
	}

	if current := s.page.URL(); strings.Contains(current, visitorWallHost) {
		zap.L().Warn("weibo_redirect_visitor",
			zap.String("keyword", keyword),
			zap.String("url", current),
		)
		return nil, nil
	}

	html, err := s.page.Content()
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var links []searchLink
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" ||
			strings.Contains(href, "passport.weibo.com") ||
			strings.Contains(href, "s.weibo.com") ||
			!strings.Contains(href, "weibo.com") {
			return
		}
		abs := toAbsoluteWeiboURL(href)
		if !strings.Contains(abs, "weibo.com") {
			return
		}
		links = append(links, searchLink{
			url:  abs,
			hint: textutil.CollapseText(a.Text(), hintMax),
		})
	})

	links = textutil.DedupBy(links, func(l searchLink) string { return l.url })
	if len(links) == 0 {
		title, _ := s.page.Title()
		zap.L().Warn("weibo_search_empty",
			zap.String("keyword", keyword),
			zap.String("url", searchURL),
			zap.String("pageTitle", title),
		)
	}
	return links, nil
}

// extractDetail visits a post page and derives (title, body). Primary
// path is the in-page AJAX status endpoint keyed by mid; fallbacks are
// og/meta tags, likely content containers, then the search hint.
func (w *Weibo) extractDetail(ctx context.Context, s *Session, pageURL, mid, hint string) (string, string, error) {
	if err := s.Goto(ctx, pageURL); err != nil {
		return "", "", err
	}

	rawText := w.fetchStatusText(s, mid)

	var rawTitle string
	if rawText != "" {
		rawTitle = firstLine(rawText)
	}
	if rawTitle == "" || rawText == "" {
		html, err := s.page.Content()
		if err != nil {
			html = ""
		}
		fb := extractDOMFallback(html, fallbackQuery{
			UseDocTitle: true,
			Containers:  []string{"article", ".detail_wbtext_4CRf9", `[node-type="feed_list_content"]`},
		})
		rawTitle = firstNonEmpty(rawTitle, fb.Title, hint)
		rawText = firstNonEmpty(rawText, fb.Description, fb.BodyText, hint)
	}

	if rawText != "" && isWeiboBoilerplateTitle(rawTitle) {
		rawTitle = textutil.CollapseText(rawText, titleMax)
	}

	return textutil.CollapseText(rawTitle, titleMax), textutil.ClipText(rawText, mainTextMax), nil
}

// weiboStatus is the subset of the AJAX status payload the crawler reads.
type weiboStatus struct {
	Data struct {
		TextRaw string `json:"text_raw"`
		Text    string `json:"text"`
	} `json:"data"`
}

// fetchStatusText runs the in-page fetch against the status endpoint and
// returns the post text, or "" on any failure.
func (w *Weibo) fetchStatusText(s *Session, mid string) string {
	if mid == "" {
		return ""
	}
	result, err := s.page.Evaluate(weiboStatusJS, mid)
	if err != nil {
		return ""
	}
	m, ok := result.(map[string]any)
	if !ok {
		return ""
	}
	status, _ := m["status"].(float64)
	text, _ := m["text"].(string)
	if int(status) != 200 || text == "" {
		return ""
	}

	var parsed weiboStatus
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return ""
	}
	if parsed.Data.TextRaw != "" {
		return parsed.Data.TextRaw
	}
	return textutil.StripHTML(parsed.Data.Text)
}

// toAbsoluteWeiboURL resolves the href shapes seen on the search page.
func toAbsoluteWeiboURL(href string) string {
	h := strings.TrimSpace(href)
	switch {
	case h == "":
		return ""
	case strings.HasPrefix(h, "http://"), strings.HasPrefix(h, "https://"):
		return h
	case strings.HasPrefix(h, "//"):
		return "https:" + h
	case strings.HasPrefix(h, "/"):
		return "https://weibo.com" + h
	default:
		return "https://weibo.com/" + h
	}
}

// extractWeiboMid derives the platform-native post ID from a URL.
func extractWeiboMid(u string) string {
	if m := weiboMidDetailRe.FindStringSubmatch(u); m != nil {
		return m[1]
	}
	if m := weiboMidStatusRe.FindStringSubmatch(u); m != nil {
		return m[1]
	}
	return ""
}

// isWeiboBoilerplateTitle reports generic platform page titles that should
// be replaced by post text.
func isWeiboBoilerplateTitle(t string) bool {
	t = strings.TrimSpace(t)
	return t == "" ||
		strings.Contains(t, "微博正文") ||
		strings.HasSuffix(t, "- 微博") ||
		strings.HasSuffix(t, " - 微博")
}
