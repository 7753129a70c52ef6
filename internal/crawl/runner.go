// Package crawl orchestrates a full crawl run: keyword sampling, the
// per-platform browser fan-out, scoring, ingestion, and query-bank
// feedback.
package crawl

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chek-app/crawler/internal/config"
	"github.com/chek-app/crawler/internal/content"
	"github.com/chek-app/crawler/internal/model"
	"github.com/chek-app/crawler/internal/platform"
	"github.com/chek-app/crawler/internal/score"
)

// Confidence tags attached alongside the base tags, picked by score.
const (
	tagHighConfidence = "AI高置信"
	tagMidConfidence  = "AI较可信"
	tagScreened       = "AI筛选"

	highConfidenceMin = 0.8
	midConfidenceMin  = 0.65
)

// Reward blend weights: acceptance rate dominates, mean accepted score
// breaks ties between equally-accepting keywords.
const (
	rewardAcceptWeight = 0.8
	rewardScoreWeight  = 0.2
)

// Runner executes crawl runs against a fixed set of platform adapters.
type Runner struct {
	cfg      *config.Config
	client   content.Client
	adapters []platform.Adapter

	// launch and now are swappable for tests.
	launch func(headless bool) (*platform.Browser, error)
	now    func() time.Time
}

// NewRunner creates a Runner over the given adapters.
func NewRunner(cfg *config.Config, client content.Client, adapters []platform.Adapter) *Runner {
	return &Runner{
		cfg:      cfg,
		client:   client,
		adapters: adapters,
		launch:   platform.Launch,
		now:      time.Now,
	}
}

// platformYield is one platform worker's output. Workers write only
// their own slot of the results slice, so no locking is needed.
type platformYield struct {
	accepted []model.Item
	rewards  []model.QueryReward
	fetched  int
}

// Run executes one crawl: seed the query bank, fan out over platforms,
// ingest accepted items, and report per-keyword rewards. Platform and
// per-item failures are contained; only browser launch failure aborts
// the run.
func (r *Runner) Run(ctx context.Context) (model.RunSummary, error) {
	summary := model.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: r.now(),
	}
	log := zap.L().With(zap.String("runId", summary.RunID))
	log.Info("run_start",
		zap.Int("maxItems", r.cfg.Crawl.MaxItemsPerRun),
		zap.Bool("bandit", r.cfg.Crawl.UseQueryBandit),
	)

	seedDone := r.seedQueries(ctx)

	browser, err := r.launch(r.cfg.Crawl.Headless)
	if err != nil {
		return summary, eris.Wrap(err, "crawl: launch browser")
	}
	defer browser.Close()

	// Each platform owns half the run budget so workers never contend.
	budget := r.cfg.Crawl.MaxItemsPerRun / len(r.adapters)
	if budget < 1 {
		budget = 1
	}

	// All-settled fan-out: workers always return nil so one platform's
	// failure cannot cancel the other.
	yields := make([]platformYield, len(r.adapters))
	var g errgroup.Group
	g.SetLimit(len(r.adapters))
	for i, a := range r.adapters {
		i, a := i, a
		g.Go(func() error {
			yields[i] = r.runPlatform(ctx, browser, a, budget)
			return nil
		})
	}
	_ = g.Wait()

	var items []model.Item
	for _, y := range yields {
		summary.Fetched += y.fetched
		items = append(items, y.accepted...)
	}
	if len(items) > r.cfg.Crawl.MaxItemsPerRun {
		items = items[:r.cfg.Crawl.MaxItemsPerRun]
	}

	for _, item := range items {
		status, err := r.client.IngestExternalPost(ctx, item)
		if err != nil {
			log.Warn("ingest_failed",
				zap.String("sourceId", item.SourceID),
				zap.Error(err),
			)
		}
		switch status {
		case content.IngestOk:
			summary.IngestedOk++
		case content.IngestSkipped:
			summary.IngestedSkipped++
		default:
			summary.IngestedFailed++
		}
	}

	if r.cfg.Crawl.UseQueryBandit {
		for i, y := range yields {
			if len(y.rewards) == 0 {
				continue
			}
			if err := r.client.ReportQueries(ctx, r.adapters[i].Platform(), y.rewards); err != nil {
				log.Warn("report_queries_failed",
					zap.String("platform", string(r.adapters[i].Platform())),
					zap.Error(err),
				)
			}
		}
	}

	<-seedDone
	summary.Elapsed = r.now().Sub(summary.StartedAt)
	log.Info("run_done",
		zap.Int("fetched", summary.Fetched),
		zap.Int("ingestedOk", summary.IngestedOk),
		zap.Int("ingestedSkipped", summary.IngestedSkipped),
		zap.Int("ingestedFailed", summary.IngestedFailed),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

// seedQueries pushes the static keyword list into every platform's query
// bank in the background. Seeding failures never affect the run.
func (r *Runner) seedQueries(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if !r.cfg.Crawl.UseQueryBandit {
		close(done)
		return done
	}

	keywords := r.cfg.Crawl.KeywordList()
	go func() {
		defer close(done)
		for _, a := range r.adapters {
			if err := r.client.UpsertQueries(ctx, a.Platform(), keywords); err != nil {
				zap.L().Warn("seed_queries_failed",
					zap.String("platform", string(a.Platform())),
					zap.Error(err),
				)
			}
		}
	}()
	return done
}

// keywordStats accumulates per-keyword trial outcomes for the reward
// report.
type keywordStats struct {
	trials   int
	accepted int
	scoreSum float64
}

// runPlatform drives one adapter across its sampled keywords. All
// failures degrade to a smaller (possibly empty) yield; the platform
// never fails the run.
func (r *Runner) runPlatform(ctx context.Context, b *platform.Browser, a platform.Adapter, budget int) platformYield {
	log := zap.L().With(zap.String("platform", string(a.Platform())))

	session, err := a.Open(b)
	if err != nil {
		log.Warn("platform_open_failed", zap.Error(err))
		return platformYield{}
	}
	if session == nil {
		return platformYield{}
	}
	defer session.Close()

	keywords := r.sampleKeywords(ctx, a.Platform())
	seen := make(map[string]struct{})

	var yield platformYield
	for _, kw := range keywords {
		// Keywords never attempted get no reward record; reporting
		// reward 0 for them would bias future sampling against
		// keywords the budget simply never reached.
		if len(yield.accepted) >= budget {
			break
		}

		stats := keywordStats{}
		candidates, err := a.Crawl(ctx, session, kw, budget-len(yield.accepted))
		if err != nil {
			log.Warn("crawl_keyword_failed", zap.String("keyword", kw), zap.Error(err))
			yield.rewards = append(yield.rewards, keywordReward(kw, stats))
			continue
		}

		for _, c := range candidates {
			if _, dup := seen[c.Key()]; dup {
				continue
			}
			seen[c.Key()] = struct{}{}
			yield.fetched++
			stats.trials++

			res := score.Score(c.Title, c.Body)
			if res.Score < r.cfg.Crawl.ScoreThreshold {
				continue
			}

			item := platform.Normalize(c, r.now())
			item.Tags = append(item.Tags, confidenceTag(res.Score))
			yield.accepted = append(yield.accepted, item)
			stats.accepted++
			stats.scoreSum += res.Score

			if len(yield.accepted) >= budget {
				break
			}
		}

		rw := keywordReward(kw, stats)
		yield.rewards = append(yield.rewards, rw)
		log.Info("query_done",
			zap.String("keyword", kw),
			zap.Int("fetched", stats.trials),
			zap.Int("accepted", stats.accepted),
			zap.Float64("reward", rw.Reward),
		)
	}

	log.Info("platform_done",
		zap.Int("fetched", yield.fetched),
		zap.Int("accepted", len(yield.accepted)),
		zap.Int("keywords", len(keywords)),
	)
	return yield
}

// sampleKeywords draws keywords from the query bank, falling back to the
// static configured list when the bandit is off or sampling fails.
func (r *Runner) sampleKeywords(ctx context.Context, p model.Platform) []string {
	limit := r.cfg.Crawl.QueryLimitPerPlatform
	static := r.cfg.Crawl.KeywordList()
	if len(static) > limit {
		static = static[:limit]
	}
	if !r.cfg.Crawl.UseQueryBandit {
		return static
	}

	sampled, err := r.client.SampleQueries(ctx, p, limit)
	if err != nil {
		zap.L().Warn("sample_queries_failed",
			zap.String("platform", string(p)),
			zap.Error(err),
		)
		return static
	}
	if len(sampled) == 0 {
		return static
	}
	return sampled
}

// keywordReward blends acceptance rate with the mean accepted score.
// Trials has a floor of 1 so an unproductive keyword reports reward 0
// instead of dividing by zero.
func keywordReward(kw string, s keywordStats) model.QueryReward {
	trials := s.trials
	if trials < 1 {
		trials = 1
	}
	acceptRate := float64(s.accepted) / float64(trials)

	var meanScore float64
	if s.accepted > 0 {
		meanScore = s.scoreSum / float64(s.accepted)
	}

	reward := rewardAcceptWeight*acceptRate + rewardScoreWeight*meanScore
	if reward < 0 {
		reward = 0
	}
	if reward > 1 {
		reward = 1
	}
	return model.QueryReward{Query: kw, Reward: reward, Trials: trials}
}

// confidenceTag maps a score to its confidence tag.
func confidenceTag(s float64) string {
	switch {
	case s >= highConfidenceMin:
		return tagHighConfidence
	case s >= midConfidenceMin:
		return tagMidConfidence
	default:
		return tagScreened
	}
}
