package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creator-score/internal/common/config"
	apperrors "creator-score/internal/common/errors"
	"creator-score/internal/common/logger"
	"creator-score/internal/models"
)

type fakeGateway struct {
	profile     models.Profile
	videos      []models.VideoMetrics
	profileErr  error
	videosErr   error
	fetchDelay  time.Duration
	videosCalls int
}

func (f *fakeGateway) FetchProfile(ctx context.Context, username string) (models.Profile, error) {
	if f.fetchDelay > 0 {
		select {
		case <-ctx.Done():
			return models.Profile{}, ctx.Err()
		case <-time.After(f.fetchDelay):
		}
	}
	return f.profile, f.profileErr
}

func (f *fakeGateway) FetchRecentVideos(ctx context.Context, username string, limit int) ([]models.VideoMetrics, error) {
	f.videosCalls++
	return f.videos, f.videosErr
}

type fakeJudge struct {
	verdicts []models.QualityVerdict
	err      error
	enabled  bool
	calls    int
}

func (f *fakeJudge) JudgeVideos(ctx context.Context, keyword string, videos []models.VideoMetrics) ([]models.QualityVerdict, error) {
	f.calls++
	return f.verdicts, f.err
}

func (f *fakeJudge) Enabled() bool { return f.enabled }

func testVideos(now time.Time) []models.VideoMetrics {
	return []models.VideoMetrics{
		{VideoID: "v1", Caption: "skincare routine", CreateTime: now.Add(-24 * time.Hour), Views: 50_000, Likes: 1_000, Comments: 50, Shares: 20, Saves: 100},
		{VideoID: "v2", Caption: "travel day", CreateTime: now.Add(-48 * time.Hour), Views: 30_000, Likes: 600, Comments: 30, Shares: 10, Saves: 60},
	}
}

func newTestPipeline(t *testing.T, gw MetricsGateway, judge QualityJudge) *Pipeline {
	t.Helper()
	return NewPipeline(gw, judge, config.Default().Scoring, logger.NewTestLogger(t), nil)
}

func TestPipelineRun(t *testing.T) {
	now := time.Now()
	gw := &fakeGateway{
		profile: models.Profile{Username: "creator1", Followers: 50_000, TotalLikes: 1_000_000},
		videos:  testVideos(now),
	}

	t.Run("no keyword skips judge and uses baseline", func(t *testing.T) {
		judge := &fakeJudge{enabled: true}
		p := newTestPipeline(t, gw, judge)

		var stages []string
		got, err := p.Run(context.Background(), "creator1", "", func(stage string) {
			stages = append(stages, stage)
		})

		require.NoError(t, err)
		assert.Zero(t, judge.calls)
		assert.Equal(t, QualitySourceBaseline, got.ContentQuality.Source)
		assert.Equal(t, 60.0, got.ContentQuality.Score)
		assert.Equal(t, 2, got.Interaction.VideoCount)
		assert.Greater(t, got.FinalScore, 0.0)
		assert.NotEmpty(t, stages)
	})

	t.Run("keyword filters videos and invokes judge", func(t *testing.T) {
		judge := &fakeJudge{
			enabled:  true,
			verdicts: []models.QualityVerdict{{VideoID: "v1", TotalScore: 85}},
		}
		p := newTestPipeline(t, gw, judge)

		got, err := p.Run(context.Background(), "creator1", "skincare", nil)

		require.NoError(t, err)
		assert.Equal(t, 1, judge.calls)
		assert.Equal(t, QualitySourceAI, got.ContentQuality.Source)
		assert.Equal(t, 85.0, got.ContentQuality.Score)
		assert.Equal(t, 1, got.Interaction.VideoCount)
	})

	t.Run("judge failure degrades to baseline", func(t *testing.T) {
		judge := &fakeJudge{enabled: true, err: apperrors.NewUpstreamFailure("llm down")}
		p := newTestPipeline(t, gw, judge)

		got, err := p.Run(context.Background(), "creator1", "skincare", nil)

		require.NoError(t, err)
		assert.Equal(t, QualitySourceBaseline, got.ContentQuality.Source)
	})

	t.Run("disabled judge never called", func(t *testing.T) {
		judge := &fakeJudge{enabled: false}
		p := newTestPipeline(t, gw, judge)

		got, err := p.Run(context.Background(), "creator1", "skincare", nil)

		require.NoError(t, err)
		assert.Zero(t, judge.calls)
		assert.Equal(t, QualitySourceBaseline, got.ContentQuality.Source)
	})

	t.Run("keyword with no matches fails", func(t *testing.T) {
		p := newTestPipeline(t, gw, &fakeJudge{enabled: true})

		_, err := p.Run(context.Background(), "creator1", "cooking", nil)

		require.Error(t, err)
		assert.Equal(t, apperrors.CodeNoMatchingContent, apperrors.CodeOf(err))
	})

	t.Run("negative profile metrics rejected", func(t *testing.T) {
		bad := &fakeGateway{profile: models.Profile{Username: "creator1", Followers: -1}}
		p := newTestPipeline(t, bad, &fakeJudge{})

		_, err := p.Run(context.Background(), "creator1", "", nil)

		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
	})

	t.Run("gateway failure propagates", func(t *testing.T) {
		bad := &fakeGateway{profileErr: apperrors.NewNotFound("unknown user")}
		p := newTestPipeline(t, bad, &fakeJudge{})

		_, err := p.Run(context.Background(), "missing", "", nil)

		require.Error(t, err)
		assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
	})
}

func TestPipelineRunWithTimeout(t *testing.T) {
	now := time.Now()

	t.Run("completes within deadline", func(t *testing.T) {
		gw := &fakeGateway{
			profile: models.Profile{Username: "creator1", Followers: 50_000},
			videos:  testVideos(now),
		}
		p := newTestPipeline(t, gw, &fakeJudge{})

		got, err := p.RunWithTimeout(context.Background(), "creator1", "", time.Second)
		require.NoError(t, err)
		assert.Greater(t, got.FinalScore, 0.0)
	})

	t.Run("deadline maps to timeout error", func(t *testing.T) {
		gw := &fakeGateway{fetchDelay: 200 * time.Millisecond}
		p := newTestPipeline(t, gw, &fakeJudge{})

		_, err := p.RunWithTimeout(context.Background(), "creator1", "", 20*time.Millisecond)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeTimeout, apperrors.CodeOf(err))
	})
}
