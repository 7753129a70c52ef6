package model

// Label is a semantic tag derived from scoring.
type Label string

const (
	LabelComplaint   Label = "complaint"
	LabelGeoRelated  Label = "geo_related"
	LabelLikelySpam  Label = "likely_spam"
	LabelHasEvidence Label = "has_evidence"
)

// ScoreResult is the output of the relevance scorer: a bounded score and
// the semantic labels derived from the same lexicon hits. It is never
// persisted; it only filters and tags an item within a run.
type ScoreResult struct {
	Score  float64 `json:"score"`
	Labels []Label `json:"labels"`
}

// HasLabel reports whether l is among the result's labels.
func (r ScoreResult) HasLabel(l Label) bool {
	for _, x := range r.Labels {
		if x == l {
			return true
		}
	}
	return false
}

// QueryReward is the per-keyword feedback sent to the query bank after a
// run. Reward blends acceptance rate and mean accepted score; Trials is
// the number of deduplicated candidates seen for the keyword.
type QueryReward struct {
	Query  string  `json:"query"`
	Reward float64 `json:"reward"`
	Trials int     `json:"trials"`
}
