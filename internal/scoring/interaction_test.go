package scoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creator-score/internal/common/config"
	"creator-score/internal/models"
)

func newTestInteractionScorer(t *testing.T) *InteractionScorer {
	t.Helper()
	return NewInteractionScorer(config.Default().Scoring)
}

func TestMatchesKeyword(t *testing.T) {
	v := models.VideoMetrics{Caption: "My Skincare Routine for winter"}

	assert.True(t, MatchesKeyword(v, "skincare"))
	assert.True(t, MatchesKeyword(v, "SKINCARE"))
	assert.True(t, MatchesKeyword(v, "Winter"))
	assert.False(t, MatchesKeyword(v, "makeup"))
}

func TestSelectVideos(t *testing.T) {
	s := newTestInteractionScorer(t)
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	videos := []models.VideoMetrics{
		{VideoID: "v1", Caption: "skincare tips", CreateTime: base},
		{VideoID: "v2", Caption: "travel vlog", CreateTime: base.AddDate(0, 0, 1)},
		{VideoID: "v3", Caption: "more SkinCare", CreateTime: base.AddDate(0, 0, 2)},
	}

	t.Run("no keyword keeps all, newest first", func(t *testing.T) {
		got := s.SelectVideos(videos, "")
		require.Len(t, got, 3)
		assert.Equal(t, "v3", got[0].VideoID)
		assert.Equal(t, "v1", got[2].VideoID)
	})

	t.Run("keyword filters case-insensitively", func(t *testing.T) {
		got := s.SelectVideos(videos, "skincare")
		require.Len(t, got, 2)
		assert.Equal(t, "v3", got[0].VideoID)
		assert.Equal(t, "v1", got[1].VideoID)
	})

	t.Run("keyword with no matches yields empty", func(t *testing.T) {
		assert.Empty(t, s.SelectVideos(videos, "cooking"))
	})

	t.Run("limit keeps most recent", func(t *testing.T) {
		many := make([]models.VideoMetrics, 0, 150)
		for i := 0; i < 150; i++ {
			many = append(many, models.VideoMetrics{
				VideoID:    fmt.Sprintf("v%d", i),
				CreateTime: base.Add(time.Duration(i) * time.Hour),
			})
		}
		got := s.SelectVideos(many, "")
		require.Len(t, got, 100)
		assert.Equal(t, "v149", got[0].VideoID)
		assert.Equal(t, "v50", got[99].VideoID)
	})
}

func TestViewScore(t *testing.T) {
	s := newTestInteractionScorer(t)

	tests := []struct {
		name      string
		views     int64
		followers int64
		want      float64
	}{
		{"zero views", 0, 50_000, 0},
		{"no followers fallback", 1_000, 0, 50},
		{"no followers fallback caps", 100_000, 0, 100},
		{"tiny account high baseline", 750, 500, 100},
		{"small account full reach", 5_000, 5_000, 100},
		{"mid account exceeds baseline", 50_000, 50_000, 100},
		{"mid account quarter reach", 10_000, 50_000, 25},
		{"large account baseline", 150_000, 500_000, 50},
		{"mega account", 1_000_000, 20_000_000, 12.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.viewScore(tt.views, tt.followers), 0.001)
		})
	}
}

func TestScoreVideo(t *testing.T) {
	s := newTestInteractionScorer(t)

	t.Run("strong engagement hits every cap", func(t *testing.T) {
		v := models.VideoMetrics{
			VideoID:  "v1",
			Views:    100_000,
			Likes:    5_000, // 5% like rate
			Comments: 1_000, // 1% comment rate
			Shares:   500,   // 0.5% share rate
			Saves:    1_500, // 1.5% save rate
		}
		got := s.scoreVideo(v, 50_000)

		assert.Equal(t, 100.0, got.ViewScore)
		assert.Equal(t, 100.0, got.LikeScore)
		assert.Equal(t, 100.0, got.CommentScore)
		assert.Equal(t, 100.0, got.ShareScore)
		assert.Equal(t, 100.0, got.SaveScore)
		assert.InDelta(t, 100.0, got.Composite, 0.001)
	})

	t.Run("moderate engagement", func(t *testing.T) {
		v := models.VideoMetrics{
			VideoID:  "v2",
			Views:    25_000,
			Likes:    500, // 2% -> 50
			Comments: 10,  // 0.04% -> 5
			Shares:   5,   // 0.02% -> 5
			Saves:    25,  // 0.1% -> 10
		}
		got := s.scoreVideo(v, 50_000)

		// 25k views against a 0.8 x 50k baseline
		assert.InDelta(t, 62.5, got.ViewScore, 0.001)
		assert.InDelta(t, 50.0, got.LikeScore, 0.001)
		assert.InDelta(t, 5.0, got.CommentScore, 0.001)
		assert.InDelta(t, 5.0, got.ShareScore, 0.001)
		assert.InDelta(t, 10.0, got.SaveScore, 0.001)

		want := 0.10*62.5 + 0.15*50 + 0.30*5 + 0.30*5 + 0.15*10
		assert.InDelta(t, want, got.Composite, 0.001)
	})

	t.Run("zero views zeroes rate scores", func(t *testing.T) {
		v := models.VideoMetrics{VideoID: "v3", Views: 0, Likes: 100}
		got := s.scoreVideo(v, 50_000)

		assert.Zero(t, got.ViewScore)
		assert.Zero(t, got.LikeScore)
		assert.Zero(t, got.Composite)
	})
}

func TestScoreAggregate(t *testing.T) {
	s := newTestInteractionScorer(t)

	t.Run("empty set", func(t *testing.T) {
		got := s.Score(nil, 50_000)
		assert.Zero(t, got.AverageScore)
		assert.Zero(t, got.VideoCount)
		assert.Empty(t, got.Videos)
	})

	t.Run("average over videos", func(t *testing.T) {
		videos := []models.VideoMetrics{
			{VideoID: "a", Views: 100_000, Likes: 5_000, Comments: 1_000, Shares: 500, Saves: 1_500},
			{VideoID: "b", Views: 0},
		}
		got := s.Score(videos, 50_000)

		require.Len(t, got.Videos, 2)
		assert.Equal(t, 2, got.VideoCount)
		assert.InDelta(t, 50.0, got.AverageScore, 0.001)
	})
}
