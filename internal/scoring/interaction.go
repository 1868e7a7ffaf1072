package scoring

import (
	"math"
	"sort"
	"strings"

	"creator-score/internal/common/config"
	"creator-score/internal/models"
)

// InteractionScorer computes per-video engagement scores and their aggregate.
type InteractionScorer struct {
	cfg config.ScoringConfig
}

func NewInteractionScorer(cfg config.ScoringConfig) *InteractionScorer {
	return &InteractionScorer{cfg: cfg}
}

// SelectVideos applies the keyword filter and keeps the most recent MaxVideos.
// The returned slice is a copy sorted newest first.
func (s *InteractionScorer) SelectVideos(videos []models.VideoMetrics, keyword string) []models.VideoMetrics {
	selected := make([]models.VideoMetrics, 0, len(videos))
	for _, v := range videos {
		if keyword == "" || MatchesKeyword(v, keyword) {
			selected = append(selected, v)
		}
	}

	sort.Slice(selected, func(i, j int) bool {
		return selected[i].CreateTime.After(selected[j].CreateTime)
	})

	if max := s.cfg.Interaction.MaxVideos; max > 0 && len(selected) > max {
		selected = selected[:max]
	}
	return selected
}

// MatchesKeyword reports whether the video's caption contains the keyword,
// case-insensitively.
func MatchesKeyword(v models.VideoMetrics, keyword string) bool {
	return strings.Contains(strings.ToLower(v.Caption), strings.ToLower(keyword))
}

// Score computes interaction scores over the already-selected videos. The
// follower count drives the view-rate expectation.
func (s *InteractionScorer) Score(videos []models.VideoMetrics, followers int64) models.InteractionScore {
	result := models.InteractionScore{
		Videos:     make([]models.VideoInteraction, 0, len(videos)),
		VideoCount: len(videos),
	}

	if len(videos) == 0 {
		return result
	}

	var sum float64
	for _, v := range videos {
		vi := s.scoreVideo(v, followers)
		result.Videos = append(result.Videos, vi)
		sum += vi.Composite
	}
	result.AverageScore = sum / float64(len(videos))
	return result
}

func (s *InteractionScorer) scoreVideo(v models.VideoMetrics, followers int64) models.VideoInteraction {
	w := s.cfg.Interaction

	viewScore := s.viewScore(v.Views, followers)

	var likeScore, commentScore, shareScore, saveScore float64
	if v.Views > 0 {
		views := float64(v.Views)
		likeScore = math.Min(100, float64(v.Likes)/views*w.LikeCoeff)
		commentScore = math.Min(100, float64(v.Comments)/views*w.CommentCoeff)
		shareScore = math.Min(100, float64(v.Shares)/views*w.ShareCoeff)
		saveScore = math.Min(100, float64(v.Saves)/views*w.SaveCoeff)
	}

	composite := w.ViewWeight*viewScore +
		w.LikeWeight*likeScore +
		w.CommentWeight*commentScore +
		w.ShareWeight*shareScore +
		w.SaveWeight*saveScore

	return models.VideoInteraction{
		VideoID:      v.VideoID,
		ViewScore:    viewScore,
		LikeScore:    likeScore,
		CommentScore: commentScore,
		ShareScore:   shareScore,
		SaveScore:    saveScore,
		Composite:    composite,
	}
}

// viewScore compares views against a follower-tier baseline. The baseline is
// coefficient x followers: small accounts are expected to out-reach their
// follower base, mega accounts to reach only a fraction of it.
func (s *InteractionScorer) viewScore(views, followers int64) float64 {
	if views <= 0 {
		return 0
	}
	if followers <= 0 {
		return math.Min(100, float64(views)/2000*100)
	}

	baseline := float64(followers) * viewCoefficient(followers)
	return math.Min(100, float64(views)/baseline*100)
}

func viewCoefficient(followers int64) float64 {
	switch {
	case followers < 1_000:
		return 1.5
	case followers < 10_000:
		return 1.0
	case followers < 100_000:
		return 0.8
	case followers < 1_000_000:
		return 0.6
	default:
		return 0.4
	}
}
