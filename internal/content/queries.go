package content

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/chek-app/crawler/internal/model"
)

const (
	queriesUpsertPath = "/v1/ingest/crawlerQueries:upsert"
	queriesSamplePath = "/v1/ingest/crawlerQueries:sample"
	queriesReportPath = "/v1/ingest/crawlerQueries:report"
)

// UpsertQueries seeds keywords into the query bank. Blank keywords are
// dropped; an empty list is a no-op.
func (c *httpClient) UpsertQueries(ctx context.Context, platform model.Platform, queries []string) error {
	cleaned := cleanQueries(queries)
	if platform == "" || len(cleaned) == 0 {
		return nil
	}

	_, err := c.postJSON(ctx, queriesUpsertPath, map[string]any{
		"platform": platform,
		"queries":  cleaned,
	})
	return err
}

// SampleQueries draws up to limit keywords for a platform, biased by
// previously reported rewards.
func (c *httpClient) SampleQueries(ctx context.Context, platform model.Platform, limit int) ([]string, error) {
	if platform == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	data, err := c.postJSON(ctx, queriesSamplePath, map[string]any{
		"platform": platform,
		"limit":    limit,
	})
	if err != nil {
		return nil, err
	}

	var raw []string
	if len(data) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, eris.Wrap(err, "content: unmarshal sampled queries")
		}
	}
	return cleanQueries(raw), nil
}

// ReportQueries sends one batched reward report for a platform. An empty
// reward list is a no-op.
func (c *httpClient) ReportQueries(ctx context.Context, platform model.Platform, rewards []model.QueryReward) error {
	if platform == "" || len(rewards) == 0 {
		return nil
	}

	_, err := c.postJSON(ctx, queriesReportPath, map[string]any{
		"platform": platform,
		"items":    rewards,
	})
	return err
}

func cleanQueries(in []string) []string {
	out := make([]string, 0, len(in))
	for _, q := range in {
		if s := strings.TrimSpace(q); s != "" {
			out = append(out, s)
		}
	}
	return out
}
