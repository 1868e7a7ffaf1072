package scoring

import (
	"math"
	"time"

	"creator-score/internal/common/config"
	"creator-score/internal/models"
)

// AccountScorer computes the account-quality stage: how established and
// consistent the creator's account is, independent of individual videos.
type AccountScorer struct {
	cfg config.ScoringConfig
	now func() time.Time
}

func NewAccountScorer(cfg config.ScoringConfig) *AccountScorer {
	return &AccountScorer{cfg: cfg, now: time.Now}
}

// Score computes the weighted account-quality score and its tier multiplier.
func (s *AccountScorer) Score(profile models.Profile, videos []models.VideoMetrics) models.AccountQuality {
	followerScore := s.followerScore(profile.Followers)
	likesScore := s.likesScore(profile.TotalLikes)
	postingScore := s.postingScore(videos)

	a := s.cfg.Account
	total := a.FollowerWeight*followerScore +
		a.LikesWeight*likesScore +
		a.PostingWeight*postingScore

	return models.AccountQuality{
		FollowerScore: followerScore,
		LikesScore:    likesScore,
		PostingScore:  postingScore,
		TotalScore:    total,
		Multiplier:    TierMultiplier(total),
	}
}

// followerScore maps follower count onto a log scale where 10M reaches 100.
func (s *AccountScorer) followerScore(followers int64) float64 {
	if followers <= 0 {
		return 0
	}
	return math.Min(100, math.Log10(float64(followers))*10)
}

// likesScore maps cumulative likes onto a log scale where 100M reaches 100.
func (s *AccountScorer) likesScore(likes int64) float64 {
	if likes <= 0 {
		return 0
	}
	return math.Min(100, math.Log10(float64(likes))*12.5)
}

// postingScore rewards cadence close to the ideal weekly frequency. Only
// videos inside the posting window count.
func (s *AccountScorer) postingScore(videos []models.VideoMetrics) float64 {
	a := s.cfg.Account
	cutoff := s.now().AddDate(0, 0, -a.WindowDays)

	recent := 0
	for _, v := range videos {
		if v.CreateTime.After(cutoff) {
			recent++
		}
	}

	weeks := float64(a.WindowDays) / 7.0
	weeklyFreq := float64(recent) / weeks

	score := 100 - a.FreqPenalty*math.Abs(weeklyFreq-a.IdealWeeklyFreq)
	return clamp(score, 0, 100)
}

// TierMultiplier returns the multiplier for an account-quality score. The
// partition is lower-inclusive; 10, 30, 60 and 80 belong to the higher tier.
func TierMultiplier(accountQuality float64) float64 {
	switch {
	case accountQuality >= 80:
		return 3.0
	case accountQuality >= 60:
		return 2.0
	case accountQuality >= 30:
		return 1.5
	case accountQuality >= 10:
		return 1.2
	default:
		return 1.0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
