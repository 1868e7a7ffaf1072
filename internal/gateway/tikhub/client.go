// Package tikhub implements the metrics gateway against the TikHub API.
package tikhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"creator-score/internal/common/config"
	"creator-score/internal/common/errors"
	"creator-score/internal/common/httpclient"
	"creator-score/internal/common/logger"
	"creator-score/internal/common/metrics"
	"creator-score/internal/common/retry"
	"creator-score/internal/models"
)

const (
	profilePath = "/api/v1/tiktok/app/v3/handler_user_profile"
	videosPath  = "/api/v1/tiktok/app/v3/fetch_user_post_videos"

	videosPageSize = 20
)

// Client fetches creator profiles and video metrics from TikHub.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retryCfg   retry.Config
	logger     logger.Logger
}

func NewClient(cfg config.APIsConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:    cfg.TikHub.BaseURL,
		apiKey:     cfg.TikHub.APIKey,
		httpClient: httpclient.New(config.GetDuration(cfg.TikHub.Timeout)),
		retryCfg: retry.Config{
			MaxAttempts: cfg.TikHub.MaxRetries,
			BaseDelay:   500 * time.Millisecond,
			OnRetry: func(attempt int, err error) {
				log.WithError(err).Warn("tikhub request retry", map[string]interface{}{
					"attempt": attempt,
				})
			},
		},
		logger: log,
	}
}

type profileResponse struct {
	Code int `json:"code"`
	Data struct {
		User struct {
			UniqueID       string `json:"unique_id"`
			Nickname       string `json:"nickname"`
			FollowerCount  int64  `json:"follower_count"`
			TotalFavorited int64  `json:"total_favorited"`
			AwemeCount     int    `json:"aweme_count"`
		} `json:"user"`
	} `json:"data"`
}

type videosResponse struct {
	Code int `json:"code"`
	Data struct {
		AwemeList []struct {
			AwemeID    string `json:"aweme_id"`
			Desc       string `json:"desc"`
			CreateTime int64  `json:"create_time"`
			ShareURL   string `json:"share_url"`
			Statistics struct {
				PlayCount    int64 `json:"play_count"`
				DiggCount    int64 `json:"digg_count"`
				CommentCount int64 `json:"comment_count"`
				ShareCount   int64 `json:"share_count"`
				CollectCount int64 `json:"collect_count"`
			} `json:"statistics"`
		} `json:"aweme_list"`
		HasMore   bool  `json:"has_more"`
		MaxCursor int64 `json:"max_cursor"`
	} `json:"data"`
}

// FetchProfile returns the creator's account snapshot.
func (c *Client) FetchProfile(ctx context.Context, username string) (models.Profile, error) {
	params := url.Values{"unique_id": {username}}

	var resp profileResponse
	if err := c.getJSON(ctx, profilePath, params, &resp); err != nil {
		return models.Profile{}, err
	}

	u := resp.Data.User
	if u.UniqueID == "" && u.FollowerCount == 0 && u.AwemeCount == 0 {
		return models.Profile{}, errors.NewNotFound("creator profile not found").
			WithDetails("username", username)
	}

	return models.Profile{
		Username:   username,
		Nickname:   u.Nickname,
		Followers:  u.FollowerCount,
		TotalLikes: u.TotalFavorited,
		VideoCount: u.AwemeCount,
	}, nil
}

// FetchRecentVideos pages through the creator's posts until limit is reached
// or the feed is exhausted.
func (c *Client) FetchRecentVideos(ctx context.Context, username string, limit int) ([]models.VideoMetrics, error) {
	videos := make([]models.VideoMetrics, 0, limit)
	cursor := int64(0)

	for len(videos) < limit {
		params := url.Values{
			"unique_id":  {username},
			"count":      {fmt.Sprintf("%d", videosPageSize)},
			"max_cursor": {fmt.Sprintf("%d", cursor)},
		}

		var resp videosResponse
		if err := c.getJSON(ctx, videosPath, params, &resp); err != nil {
			return nil, err
		}

		for _, a := range resp.Data.AwemeList {
			videos = append(videos, models.VideoMetrics{
				VideoID:    a.AwemeID,
				Caption:    a.Desc,
				CreateTime: time.Unix(a.CreateTime, 0).UTC(),
				Views:      a.Statistics.PlayCount,
				Likes:      a.Statistics.DiggCount,
				Comments:   a.Statistics.CommentCount,
				Shares:     a.Statistics.ShareCount,
				Saves:      a.Statistics.CollectCount,
				URL:        a.ShareURL,
			})
			if len(videos) == limit {
				break
			}
		}

		if !resp.Data.HasMore || len(resp.Data.AwemeList) == 0 {
			break
		}
		cursor = resp.Data.MaxCursor
	}

	return videos, nil
}

// getJSON performs an authenticated GET with the retry budget. Only retryable
// failures re-attempt; 404 and other client errors return immediately.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := c.baseURL + path + "?" + params.Encode()

	var reqErr error
	err := retry.Do(ctx, c.retryCfg, func() error {
		reqErr = c.doRequest(ctx, endpoint, out)
		if reqErr != nil && !errors.IsRetryable(reqErr) {
			// Permanent failure, no point re-attempting.
			return nil
		}
		return reqErr
	})
	if err != nil {
		return err
	}
	return reqErr
}

func (c *Client) doRequest(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.NewInternal("failed to build tikhub request").WithCause(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("tikhub", "error").Inc()
		return errors.NewUpstreamFailure("tikhub request failed").WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("tikhub", "error").Inc()
		return errors.NewUpstreamFailure("failed to read tikhub response").WithCause(err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		metrics.UpstreamRequests.WithLabelValues("tikhub", "not_found").Inc()
		return errors.NewNotFound("creator not found").WithDetails("status", resp.StatusCode)
	case resp.StatusCode >= 500:
		metrics.UpstreamRequests.WithLabelValues("tikhub", "error").Inc()
		return errors.NewUpstreamFailure("tikhub server error").
			WithDetails("status", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		metrics.UpstreamRequests.WithLabelValues("tikhub", "error").Inc()
		se := errors.NewUpstreamFailure("tikhub returned unexpected status").
			WithDetails("status", resp.StatusCode)
		se.Retryable = false
		return se
	}

	if err := json.Unmarshal(body, out); err != nil {
		metrics.UpstreamRequests.WithLabelValues("tikhub", "error").Inc()
		return errors.NewUpstreamFailure("invalid tikhub response body").WithCause(err)
	}

	metrics.UpstreamRequests.WithLabelValues("tikhub", "ok").Inc()
	return nil
}
