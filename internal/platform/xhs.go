package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/chek-app/crawler/internal/model"
	"github.com/chek-app/crawler/internal/textutil"
)

const (
	xhsSearchBase = "https://www.xiaohongshu.com/search_result?type=51&keyword="
	xhsNoteBase   = "https://www.xiaohongshu.com/explore/"

	// xhsSearchAPIPath is the first-party search endpoint whose response is
	// intercepted instead of scraping the rendered result grid.
	xhsSearchAPIPath = "/api/sns/web/v1/search/notes"

	// Pinned desktop Chrome UA; Xhs serves a degraded shell to unknown agents.
	xhsUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
)

var xhsNoteIDRe = regexp.MustCompile(`(?i)/explore/([a-f0-9]{16,32})`)

// xhsInitScript masks the automation markers Xhs checks before serving
// real content.
const xhsInitScript = `(() => {
  try { Object.defineProperty(navigator, 'webdriver', { get: () => undefined }); } catch (e) {}
  try { window.chrome = window.chrome || { runtime: {} }; } catch (e) {}
})();`

// Xhs crawls xiaohongshu keyword search via API interception and extracts
// note text from the client-side state object.
type Xhs struct {
	storageStatePath string
}

// NewXhs creates the Xhs adapter. An empty storageStatePath disables the
// adapter.
func NewXhs(storageStatePath string) *Xhs {
	return &Xhs{storageStatePath: storageStatePath}
}

func (x *Xhs) Platform() model.Platform { return model.PlatformXhs }

// Open creates the Xhs session with the persisted login snapshot and the
// full anti-detection context: locale, timezone, viewport, pinned UA, and
// the webdriver-masking init script.
func (x *Xhs) Open(b *Browser) (*Session, error) {
	if x.storageStatePath == "" {
		zap.L().Warn("xhs_skip_missing_storage_state")
		return nil, nil
	}
	return b.NewSession(SessionOptions{
		StorageStatePath: x.storageStatePath,
		Locale:           "zh-CN",
		TimezoneID:       "Asia/Shanghai",
		UserAgent:        xhsUserAgent,
		Viewport:         &playwright.Size{Width: 1365, Height: 900},
		InitScript:       xhsInitScript,
	})
}

// Crawl collects note links for keyword and extracts up to maxItems
// candidates from their detail pages.
func (x *Xhs) Crawl(ctx context.Context, s *Session, keyword string, maxItems int) ([]model.CandidateItem, error) {
	links, err := x.collectSearchResults(ctx, s, keyword)
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
		id := extractXhsNoteID(l.url)
		if id == "" {
			continue
		}
		title, body, err := x.extractNoteDetail(ctx, s, l.url, id, l.hint)
		if err != nil {
			zap.L().Warn("xhs_detail_failed",
				zap.String("url", l.url),
				zap.Error(err),
			)
			continue
		}
		out = append(out, model.CandidateItem{
			SourcePlatform: model.PlatformXhs,
			SourceID:       id,
			SourceURL:      l.url,
			Title:          title,
			Body:           body,
			Hint:           l.hint,
		})
	}

	return textutil.DedupBy(out, func(c model.CandidateItem) string { return c.Key() }), nil
}

// xhsSearchResponse is the subset of the intercepted search payload the
// crawler reads.
type xhsSearchResponse struct {
	Data struct {
		Items []struct {
			ID        string `json:"id"`
			XsecToken string `json:"xsec_token"`
			NoteCard  struct {
				DisplayTitle string `json:"display_title"`
				Title        string `json:"title"`
			} `json:"note_card"`
		} `json:"items"`
	} `json:"data"`
}

// collectSearchResults navigates the search page while waiting (bounded)
// for the first-party search API response, then builds note links from the
// intercepted JSON. Interception failure degrades to zero results.
func (x *Xhs) collectSearchResults(ctx context.Context, s *Session, keyword string) ([]searchLink, error) {
	searchURL := xhsSearchBase + url.QueryEscape(strings.TrimSpace(keyword))

	resp, waitErr := s.page.ExpectResponse(
		func(r playwright.Response) bool {
			return strings.Contains(r.URL(), xhsSearchAPIPath) &&
				r.Request().Method() == http.MethodPost
		},
		func() error {
			return s.Goto(ctx, searchURL)
		},
		playwright.PageExpectResponseOptions{Timeout: playwright.Float(responseWaitMs)},
	)
	if waitErr != nil {
		// Navigation may still have succeeded; only the API interception
		// timed out or the goto itself failed. Either way: no results.
		zap.L().Warn("xhs_search_empty",
			zap.String("keyword", keyword),
			zap.String("url", searchURL),
			zap.Error(waitErr),
		)
		return nil, nil
	}

	body, err := resp.Body()
	if err != nil {
		return nil, err
	}
	var parsed xhsSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, nil
	}

	var links []searchLink
	for _, it := range parsed.Data.Items {
		id := strings.TrimSpace(it.ID)
		token := strings.TrimSpace(it.XsecToken)
		if id == "" || token == "" {
			continue
		}
		noteURL := xhsNoteBase + id + "?xsec_token=" + url.QueryEscape(token) + "&xsec_source=pc_search"
		hint := firstNonEmpty(it.NoteCard.DisplayTitle, it.NoteCard.Title)
		links = append(links, searchLink{
			url:  noteURL,
			hint: textutil.CollapseText(hint, hintMax),
		})
	}

	links = textutil.DedupBy(links, func(l searchLink) string { return l.url })
	if len(links) == 0 {
		title, _ := s.page.Title()
		zap.L().Warn("xhs_search_empty",
			zap.String("keyword", keyword),
			zap.String("url", searchURL),
			zap.String("pageTitle", title),
		)
	}
	return links, nil
}

// extractNoteDetail visits a note page and derives (title, body). Primary
// path is the client-side state object searched by note ID; fallbacks are
// h1/og/meta tags, then the search hint.
func (x *Xhs) extractNoteDetail(ctx context.Context, s *Session, pageURL, noteID, hint string) (string, string, error) {
	if err := s.Goto(ctx, pageURL); err != nil {
		return "", "", err
	}

	var rawTitle, rawText string
	state, err := s.page.Evaluate(`() => window.__INITIAL_STATE__ || null`)
	if err == nil && state != nil {
		rawTitle, rawText = extractXhsFromState(state, noteID)
	}

	if rawTitle == "" || rawText == "" {
		html, err := s.page.Content()
		if err != nil {
			html = ""
		}
		fb := extractDOMFallback(html, fallbackQuery{
			TitleSelectors: []string{"h1"},
			Containers:     []string{"article", "[data-note-detail]"},
		})
		rawTitle = firstNonEmpty(rawTitle, fb.Title, hint)
		rawText = firstNonEmpty(rawText, fb.Description, fb.BodyText, hint)
	}

	if rawText != "" && rawTitle == "" {
		rawTitle = firstLine(rawText)
	}

	return textutil.CollapseText(rawTitle, titleMax), textutil.ClipText(rawText, mainTextMax), nil
}

// extractXhsFromState locates the note card in the client-side state
// object and pulls its title and text. The BFS walk handles upstream
// schema drift; the fixed paths cover shapes where the card carries no
// matching ID key.
func extractXhsFromState(state any, noteID string) (string, string) {
	card, ok := findNodeByID(state, noteID)
	if !ok {
		for _, path := range [][]any{
			{"data", "note"},
			{"data", "note_card"},
			{"data", "items", 0, "note_card"},
			{"data", "items", 0, "note"},
			{"data", "item", "note_card"},
			{"data", "item", "note"},
		} {
			if m, isMap := dig(state, path...).(map[string]any); isMap {
				card = m
				break
			}
		}
	}
	if card == nil {
		return "", ""
	}

	title := firstNonEmpty(
		digString(card, "title"),
		digString(card, "display_title"),
		digString(card, "note_title"),
		digString(card, "share_info", "title"),
		digString(card, "note_card", "display_title"),
	)

	raw := firstNonEmpty(
		flattenText(card["desc"], 0),
		flattenText(card["description"], 0),
		flattenText(card["content"], 0),
		flattenText(dig(card, "share_info", "content"), 0),
		flattenText(dig(card, "note_card", "desc"), 0),
		flattenText(dig(card, "note_card", "content"), 0),
	)

	return textutil.CollapseText(title, titleMax), textutil.StripHTML(raw)
}

// extractXhsNoteID derives the note ID from an explore URL.
func extractXhsNoteID(u string) string {
	if m := xhsNoteIDRe.FindStringSubmatch(u); m != nil {
		return m[1]
	}
	return ""
}
