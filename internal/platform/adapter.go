// Package platform implements the browser-driven search and extraction
// adapters for the supported social platforms.
package platform

import (
	"context"

	"github.com/chek-app/crawler/internal/model"
)

// Adapter scrapes one platform: search for a keyword, then extract detail
// pages into candidate items. Adapters never fail the run for "no results"
// or "login required" conditions; those yield zero items and a warning.
type Adapter interface {
	Platform() model.Platform

	// Open creates the platform's browser session. It returns (nil, nil)
	// when the platform has no configured storage state; the caller treats
	// a nil session as zero yield for every keyword.
	Open(b *Browser) (*Session, error)

	// Crawl returns up to maxItems candidates for a keyword.
	Crawl(ctx context.Context, s *Session, keyword string, maxItems int) ([]model.CandidateItem, error)
}

const (
	// DefaultAuthor is the sentinel identity attached to every
	// crawler-sourced post.
	DefaultAuthor = "投诉雷达"

	// defaultTitle backstops posts whose title could not be derived at all.
	defaultTitle = "外部投诉帖"

	titleMax    = 120
	hintMax     = 80
	mainTextMax = 3600
	bodyMax     = 3990

	// minSearchLinks is the floor on candidate links collected per keyword,
	// so small item budgets still sample enough of the result page.
	minSearchLinks = 6
)

func maxLinks(maxItems int) int {
	if maxItems < minSearchLinks {
		return minSearchLinks
	}
	return maxItems
}

// baseTags returns the fixed tag set for a platform's posts.
func baseTags(p model.Platform) []string {
	return []string{"投诉", "避坑", "外部来源", p.Label()}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
