package model

import (
	"fmt"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Platform identifies a source social platform.
type Platform string

const (
	PlatformWeibo Platform = "WEIBO"
	PlatformXhs   Platform = "XHS"
)

// AllPlatforms returns the platforms the crawler knows how to scrape.
func AllPlatforms() []Platform {
	return []Platform{PlatformWeibo, PlatformXhs}
}

// Label returns the human-readable platform name used in post footers.
func (p Platform) Label() string {
	switch p {
	case PlatformWeibo:
		return "微博"
	case PlatformXhs:
		return "小红书"
	}
	return string(p)
}

// CandidateItem is a raw scrape result before scoring and normalization.
// Body holds the extracted main text without the source footer; Hint is the
// search-result snippet kept as the weakest extraction fallback.
type CandidateItem struct {
	SourcePlatform Platform
	SourceID       string
	SourceURL      string
	Title          string
	Body           string
	Hint           string
}

// Key returns the per-run deduplication key.
func (c CandidateItem) Key() string {
	return fmt.Sprintf("%s:%s", c.SourcePlatform, c.SourceID)
}

// Item is a normalized post in the content-service ingest schema.
// (SourcePlatform, SourceID) is the upsert idempotency key.
type Item struct {
	SourcePlatform  Platform `json:"sourcePlatform"`
	SourceID        string   `json:"sourceId"`
	SourceURL       string   `json:"sourceUrl"`
	Title           string   `json:"title,omitempty"`
	Body            string   `json:"body"`
	Tags            []string `json:"tags,omitempty"`
	LocationName    string   `json:"locationName,omitempty"`
	Lng             *float64 `json:"lng,omitempty"`
	Lat             *float64 `json:"lat,omitempty"`
	OccurredAt      string   `json:"occurredAt,omitempty"`
	AuthorUserOneID string   `json:"authorUserOneId,omitempty"`
}

// Ingest schema bounds, mirrored from the content service.
const (
	MaxPlatformLen = 32
	MaxSourceIDLen = 128
	MaxURLLen      = 500
	MaxTitleLen    = 120
	MaxBodyLen     = 4000
	MaxTagLen      = 64
	MaxLocationLen = 120
	MaxAuthorLen   = 64
)

// Validate checks the item against the ingest schema before any network
// call. A failed validation is counted as an ingestion failure by the
// caller and never retried.
func (i Item) Validate() error {
	if i.SourcePlatform == "" || len(i.SourcePlatform) > MaxPlatformLen {
		return eris.Errorf("model: sourcePlatform must be 1..%d chars", MaxPlatformLen)
	}
	if i.SourceID == "" || len(i.SourceID) > MaxSourceIDLen {
		return eris.Errorf("model: sourceId must be 1..%d chars", MaxSourceIDLen)
	}
	if i.SourceURL == "" || len(i.SourceURL) > MaxURLLen {
		return eris.Errorf("model: sourceUrl must be 1..%d chars", MaxURLLen)
	}
	u, err := url.Parse(i.SourceURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return eris.Errorf("model: sourceUrl is not an absolute URL: %s", i.SourceURL)
	}
	if runeLen(i.Title) > MaxTitleLen {
		return eris.Errorf("model: title exceeds %d chars", MaxTitleLen)
	}
	if i.Body == "" {
		return eris.New("model: body is required")
	}
	if runeLen(i.Body) > MaxBodyLen {
		return eris.Errorf("model: body exceeds %d chars", MaxBodyLen)
	}
	for _, t := range i.Tags {
		if t == "" || runeLen(t) > MaxTagLen {
			return eris.Errorf("model: tag must be 1..%d chars", MaxTagLen)
		}
	}
	if runeLen(i.LocationName) > MaxLocationLen {
		return eris.Errorf("model: locationName exceeds %d chars", MaxLocationLen)
	}
	if i.OccurredAt != "" {
		if _, err := time.Parse(time.RFC3339, i.OccurredAt); err != nil {
			return eris.Wrap(err, "model: occurredAt is not RFC3339")
		}
	}
	if runeLen(i.AuthorUserOneID) > MaxAuthorLen {
		return eris.Errorf("model: authorUserOneId exceeds %d chars", MaxAuthorLen)
	}
	return nil
}

func runeLen(s string) int {
	return len([]rune(s))
}
