package content

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/chek-app/crawler/internal/model"
)

const ingestPath = "/v1/ingest/externalPosts:upsert"

// ingestResult is the data payload of an upsert response.
type ingestResult struct {
	Status string `json:"status"`
}

// IngestExternalPost validates item against the ingest schema and upserts
// it. The client performs no deduplication; (sourcePlatform, sourceId)
// dedup happens upstream and the service's upsert keys on the same pair.
func (c *httpClient) IngestExternalPost(ctx context.Context, item model.Item) (IngestStatus, error) {
	if err := item.Validate(); err != nil {
		return IngestFailed, eris.Wrap(err, "content: invalid item")
	}

	data, err := c.postJSON(ctx, ingestPath, item)
	if err != nil {
		return IngestFailed, err
	}

	var res ingestResult
	if len(data) > 0 {
		if err := json.Unmarshal(data, &res); err != nil {
			return IngestFailed, eris.Wrap(err, "content: unmarshal ingest result")
		}
	}

	switch res.Status {
	case "", string(IngestOk):
		return IngestOk, nil
	case string(IngestSkipped):
		return IngestSkipped, nil
	default:
		return IngestFailed, nil
	}
}
