package scoring

import (
	"context"
	"time"

	stderrors "errors"

	"creator-score/internal/common/config"
	"creator-score/internal/common/errors"
	"creator-score/internal/common/logger"
	"creator-score/internal/common/observability"
	"creator-score/internal/models"
)

// MetricsGateway fetches creator data from the platform metrics provider.
type MetricsGateway interface {
	FetchProfile(ctx context.Context, username string) (models.Profile, error)
	FetchRecentVideos(ctx context.Context, username string, limit int) ([]models.VideoMetrics, error)
}

// QualityJudge scores content quality for a set of videos.
type QualityJudge interface {
	JudgeVideos(ctx context.Context, keyword string, videos []models.VideoMetrics) ([]models.QualityVerdict, error)
	Enabled() bool
}

// ProgressFunc receives human-readable stage updates during a run.
type ProgressFunc func(stage string)

// Pipeline runs the full scoring flow for one creator.
type Pipeline struct {
	gateway     MetricsGateway
	judge       QualityJudge
	account     *AccountScorer
	interaction *InteractionScorer
	aggregator  *Aggregator
	cfg         config.ScoringConfig
	logger      logger.Logger
	obs         *observability.Metrics
}

func NewPipeline(gateway MetricsGateway, judge QualityJudge, cfg config.ScoringConfig, log logger.Logger, obs *observability.Metrics) *Pipeline {
	return &Pipeline{
		gateway:     gateway,
		judge:       judge,
		account:     NewAccountScorer(cfg),
		interaction: NewInteractionScorer(cfg),
		aggregator:  NewAggregator(cfg),
		cfg:         cfg,
		logger:      log,
		obs:         obs,
	}
}

// Run executes fetch, interaction scoring, optional quality judging and
// aggregation. Judge failures degrade to the baseline quality term rather than
// failing the run; gateway failures fail it.
func (p *Pipeline) Run(ctx context.Context, username, keyword string, progress ProgressFunc) (models.ScoreBreakdown, error) {
	report := func(stage string) {
		if progress != nil {
			progress(stage)
		}
	}

	log := p.logger.WithFields(map[string]interface{}{
		"username": username,
		"keyword":  keyword,
	})

	report("fetching profile")
	fetchStart := time.Now()
	profile, err := p.gateway.FetchProfile(ctx, username)
	if err != nil {
		return models.ScoreBreakdown{}, p.mapContextErr(ctx, err)
	}
	if profile.Followers < 0 || profile.TotalLikes < 0 {
		return models.ScoreBreakdown{}, errors.NewInvalidInput("profile metrics must be non-negative").
			WithDetails("followers", profile.Followers).
			WithDetails("total_likes", profile.TotalLikes)
	}

	report("fetching videos")
	videos, err := p.gateway.FetchRecentVideos(ctx, username, p.cfg.Interaction.MaxVideos)
	if err != nil {
		return models.ScoreBreakdown{}, p.mapContextErr(ctx, err)
	}
	p.recordStage(ctx, "fetch", fetchStart)

	selected := p.interaction.SelectVideos(videos, keyword)
	if keyword != "" && len(selected) == 0 {
		return models.ScoreBreakdown{}, errors.NewNoMatchingContent("no videos match keyword").
			WithDetails("keyword", keyword).
			WithDetails("videos_fetched", len(videos))
	}

	report("scoring engagement")
	scoreStart := time.Now()
	accountQ := p.account.Score(profile, videos)
	interactionS := p.interaction.Score(selected, profile.Followers)
	p.recordStage(ctx, "score", scoreStart)

	var verdicts []models.QualityVerdict
	if keyword != "" && p.judge != nil && p.judge.Enabled() {
		report("judging content quality")
		judgeStart := time.Now()
		verdicts, err = p.judge.JudgeVideos(ctx, keyword, selected)
		if err != nil {
			// Degrade to baseline quality; the judge is advisory.
			log.WithError(err).Warn("quality judge failed, using baseline", nil)
			verdicts = nil
		}
		p.recordStage(ctx, "judge", judgeStart)
	}

	report("aggregating")
	quality := p.aggregator.ContentQuality(verdicts)
	breakdown := p.aggregator.Breakdown(username, keyword, profile, accountQ, interactionS, quality)

	log.Info("scoring run complete", map[string]interface{}{
		"final_score":     breakdown.FinalScore,
		"account_quality": accountQ.TotalScore,
		"videos_scored":   interactionS.VideoCount,
		"quality_source":  quality.Source,
	})

	return breakdown, nil
}

// RunWithTimeout bounds a synchronous run; deadline expiry maps to TIMEOUT.
func (p *Pipeline) RunWithTimeout(ctx context.Context, username, keyword string, timeout time.Duration) (models.ScoreBreakdown, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	breakdown, err := p.Run(ctx, username, keyword, nil)
	if err != nil && stderrors.Is(err, context.DeadlineExceeded) {
		return models.ScoreBreakdown{}, errors.NewTimeout("scoring did not finish in time").WithCause(err)
	}
	return breakdown, err
}

func (p *Pipeline) mapContextErr(ctx context.Context, err error) error {
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.NewTimeout("scoring did not finish in time").WithCause(err)
	}
	return err
}

func (p *Pipeline) recordStage(ctx context.Context, stage string, start time.Time) {
	if p.obs != nil {
		p.obs.RecordStageDuration(ctx, stage, time.Since(start))
	}
}
