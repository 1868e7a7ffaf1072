package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "creator-score", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 300000, cfg.Server.SyncTimeout)
	assert.Equal(t, "memory", cfg.Tasks.Store)
	assert.Equal(t, 90, cfg.Scoring.Account.WindowDays)
	assert.Equal(t, 100, cfg.Scoring.Interaction.MaxVideos)
	assert.Equal(t, 1000.0, cfg.Scoring.Aggregate.MaxFinalScore)

	require.NoError(t, validateConfig(cfg))
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	cfg := Default()

	a := cfg.Scoring.Account
	assert.InDelta(t, 1.0, a.FollowerWeight+a.LikesWeight+a.PostingWeight, 0.0001)

	i := cfg.Scoring.Interaction
	assert.InDelta(t, 1.0, i.ViewWeight+i.LikeWeight+i.CommentWeight+i.ShareWeight+i.SaveWeight, 0.0001)

	g := cfg.Scoring.Aggregate
	assert.InDelta(t, 1.0, g.InteractionWeight+g.QualityWeight, 0.0001)
}

func TestValidateConfig(t *testing.T) {
	t.Run("bad store backend", func(t *testing.T) {
		cfg := Default()
		cfg.Tasks.Store = "postgres"
		assert.Error(t, validateConfig(cfg))
	})

	t.Run("redis store needs address", func(t *testing.T) {
		cfg := Default()
		cfg.Tasks.Store = "redis"
		assert.Error(t, validateConfig(cfg))

		cfg.Database.Redis.Address = "localhost:6379"
		assert.NoError(t, validateConfig(cfg))
	})

	t.Run("skewed account weights rejected", func(t *testing.T) {
		cfg := Default()
		cfg.Scoring.Account.FollowerWeight = 0.9
		assert.Error(t, validateConfig(cfg))
	})

	t.Run("skewed interaction weights rejected", func(t *testing.T) {
		cfg := Default()
		cfg.Scoring.Interaction.ViewWeight = 0.5
		assert.Error(t, validateConfig(cfg))
	})
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "0.0.0.0", Port: 9090}
	assert.Equal(t, "0.0.0.0:9090", s.Addr())
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 30*time.Second, GetDuration(30000))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}
