package scoring

import (
	"math"
	"time"

	"creator-score/internal/common/config"
	"creator-score/internal/models"
)

// Content-quality sources reported in the breakdown.
const (
	QualitySourceAI       = "ai"
	QualitySourceBaseline = "baseline"
)

// Aggregator blends the stage outputs into the final creator score.
type Aggregator struct {
	cfg config.ScoringConfig
}

func NewAggregator(cfg config.ScoringConfig) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// ContentQuality resolves the quality term: the mean judge verdict when at
// least one exists, otherwise the fixed baseline.
func (a *Aggregator) ContentQuality(verdicts []models.QualityVerdict) models.ContentQuality {
	if len(verdicts) == 0 {
		return models.ContentQuality{
			Score:  a.cfg.Aggregate.QualityBaseline,
			Source: QualitySourceBaseline,
		}
	}

	var sum float64
	byVideo := make(map[string]models.QualityVerdict, len(verdicts))
	for _, v := range verdicts {
		sum += v.TotalScore
		byVideo[v.VideoID] = v
	}
	return models.ContentQuality{
		Score:           sum / float64(len(verdicts)),
		Source:          QualitySourceAI,
		AIQualityScores: byVideo,
	}
}

// Final blends interaction and quality, applies the account tier multiplier
// and caps the result.
func (a *Aggregator) Final(account models.AccountQuality, interaction models.InteractionScore, quality models.ContentQuality) float64 {
	g := a.cfg.Aggregate
	base := g.InteractionWeight*interaction.AverageScore + g.QualityWeight*quality.Score
	return math.Min(g.MaxFinalScore, base*account.Multiplier)
}

// Breakdown assembles the full result record.
func (a *Aggregator) Breakdown(username, keyword string, profile models.Profile, account models.AccountQuality, interaction models.InteractionScore, quality models.ContentQuality) models.ScoreBreakdown {
	return models.ScoreBreakdown{
		Username:       username,
		Keyword:        keyword,
		FinalScore:     a.Final(account, interaction, quality),
		AccountQuality: account,
		Interaction:    interaction,
		ContentQuality: quality,
		Profile:        profile,
		CalculatedAt:   time.Now().UTC(),
	}
}
