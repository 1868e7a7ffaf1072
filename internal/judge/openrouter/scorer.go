package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"creator-score/internal/common/config"
	"creator-score/internal/common/errors"
	"creator-score/internal/common/logger"
	"creator-score/internal/models"
)

const systemPrompt = `You are a content quality analyst for short-form video.
Given a video caption and its engagement numbers, rate the video for how well
it serves viewers interested in the given topic. Score keyword relevance,
originality, and clarity of expression; for spam and promotion, 100 means the
video contains no spam and no promotional content. Respond with ONLY a JSON
object, no prose, with these numeric fields on a 0-100 scale:
{"keyword_score": 0, "originality_score": 0, "clarity_score": 0, "spam_score": 0, "promotion_score": 0, "total_score": 0, "reasoning": "one sentence"}`

// Scorer judges videos concurrently with a bounded worker budget.
type Scorer struct {
	client        *Client
	enabled       bool
	maxConcurrent int
	logger        logger.Logger
}

func NewScorer(cfg config.APIsConfig, log logger.Logger) *Scorer {
	var client *Client
	if cfg.OpenRouter.Enabled {
		client = NewClient(cfg, log)
	}
	return &Scorer{
		client:        client,
		enabled:       cfg.OpenRouter.Enabled && cfg.OpenRouter.APIKey != "",
		maxConcurrent: cfg.OpenRouter.MaxConcurrent,
		logger:        log,
	}
}

// Enabled reports whether the judge is configured to run.
func (s *Scorer) Enabled() bool {
	return s.enabled
}

// JudgeVideos scores each video, skipping individual failures. It returns an
// error only when every video failed.
func (s *Scorer) JudgeVideos(ctx context.Context, keyword string, videos []models.VideoMetrics) ([]models.QualityVerdict, error) {
	if !s.enabled {
		return nil, errors.NewInternal("quality judge is disabled")
	}
	if len(videos) == 0 {
		return nil, nil
	}

	sem := make(chan struct{}, s.maxConcurrent)
	results := make([]*models.QualityVerdict, len(videos))

	var wg sync.WaitGroup
	for i, v := range videos {
		wg.Add(1)
		go func(i int, v models.VideoMetrics) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			verdict, err := s.judgeOne(ctx, keyword, v)
			if err != nil {
				s.logger.WithError(err).Warn("video judging failed", map[string]interface{}{
					"video_id": v.VideoID,
				})
				return
			}
			results[i] = &verdict
		}(i, v)
	}
	wg.Wait()

	verdicts := make([]models.QualityVerdict, 0, len(videos))
	for _, r := range results {
		if r != nil {
			verdicts = append(verdicts, *r)
		}
	}

	if len(verdicts) == 0 {
		return nil, errors.NewUpstreamFailure("all video judgments failed")
	}
	return verdicts, nil
}

func (s *Scorer) judgeOne(ctx context.Context, keyword string, v models.VideoMetrics) (models.QualityVerdict, error) {
	userPrompt := fmt.Sprintf(
		"Topic: %s\nCaption: %s\nViews: %d, Likes: %d, Comments: %d, Shares: %d, Saves: %d",
		keyword, v.Caption, v.Views, v.Likes, v.Comments, v.Shares, v.Saves,
	)

	content, err := s.client.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return models.QualityVerdict{}, err
	}

	verdict, err := parseVerdict(content)
	if err != nil {
		return models.QualityVerdict{}, err
	}
	verdict.VideoID = v.VideoID
	return verdict, nil
}

type rawVerdict struct {
	KeywordScore     float64 `json:"keyword_score"`
	OriginalityScore float64 `json:"originality_score"`
	ClarityScore     float64 `json:"clarity_score"`
	SpamScore        float64 `json:"spam_score"`
	PromotionScore   float64 `json:"promotion_score"`
	TotalScore       float64 `json:"total_score"`
	Reasoning        string  `json:"reasoning"`
}

// parseVerdict extracts the JSON object from the model output, tolerating
// code fences and surrounding prose, and clamps every score to [0, 100].
func parseVerdict(content string) (models.QualityVerdict, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return models.QualityVerdict{}, errors.NewUpstreamFailure("judge response contains no JSON object")
	}

	var raw rawVerdict
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return models.QualityVerdict{}, errors.NewUpstreamFailure("judge response is not valid JSON").WithCause(err)
	}

	verdict := models.QualityVerdict{
		KeywordScore:     clampScore(raw.KeywordScore),
		OriginalityScore: clampScore(raw.OriginalityScore),
		ClarityScore:     clampScore(raw.ClarityScore),
		SpamScore:        clampScore(raw.SpamScore),
		PromotionScore:   clampScore(raw.PromotionScore),
		TotalScore:       clampScore(raw.TotalScore),
		Reasoning:        raw.Reasoning,
	}

	// Fall back to the sub-score mean when the model omitted the total.
	if raw.TotalScore == 0 && (raw.KeywordScore > 0 || raw.OriginalityScore > 0 || raw.ClarityScore > 0 || raw.SpamScore > 0 || raw.PromotionScore > 0) {
		verdict.TotalScore = (verdict.KeywordScore + verdict.OriginalityScore + verdict.ClarityScore + verdict.SpamScore + verdict.PromotionScore) / 5
	}

	return verdict, nil
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
