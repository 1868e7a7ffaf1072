package models

import "time"

// Profile is a creator's account snapshot as returned by the metrics gateway.
type Profile struct {
	Username   string `json:"username"`
	Nickname   string `json:"nickname,omitempty"`
	Followers  int64  `json:"followers"`
	TotalLikes int64  `json:"total_likes"`
	VideoCount int    `json:"video_count"`
}

// VideoMetrics is one video's engagement counters.
type VideoMetrics struct {
	VideoID    string    `json:"video_id"`
	Caption    string    `json:"caption"`
	CreateTime time.Time `json:"create_time"`
	Views      int64     `json:"views"`
	Likes      int64     `json:"likes"`
	Comments   int64     `json:"comments"`
	Shares     int64     `json:"shares"`
	Saves      int64     `json:"saves"`
	URL        string    `json:"url,omitempty"`
}

// QualityVerdict is the content-quality judge's assessment of one video.
// SpamScore and PromotionScore are inverted: 100 means no spam and no
// promotional content.
type QualityVerdict struct {
	VideoID          string  `json:"video_id"`
	KeywordScore     float64 `json:"keyword_score"`
	OriginalityScore float64 `json:"originality_score"`
	ClarityScore     float64 `json:"clarity_score"`
	SpamScore        float64 `json:"spam_score"`
	PromotionScore   float64 `json:"promotion_score"`
	TotalScore       float64 `json:"total_score"`
	Reasoning        string  `json:"reasoning,omitempty"`
}

// AccountQuality is the account-level stage output.
type AccountQuality struct {
	FollowerScore float64 `json:"follower_score"`
	LikesScore    float64 `json:"likes_score"`
	PostingScore  float64 `json:"posting_score"`
	TotalScore    float64 `json:"score"`
	Multiplier    float64 `json:"multiplier"`
}

// VideoInteraction is the per-video interaction stage output.
type VideoInteraction struct {
	VideoID      string  `json:"video_id"`
	ViewScore    float64 `json:"view_score"`
	LikeScore    float64 `json:"like_score"`
	CommentScore float64 `json:"comment_score"`
	ShareScore   float64 `json:"share_score"`
	SaveScore    float64 `json:"save_score"`
	Composite    float64 `json:"composite"`
}

// InteractionScore is the interaction stage aggregate.
type InteractionScore struct {
	Videos       []VideoInteraction `json:"videos"`
	AverageScore float64            `json:"score"`
	VideoCount   int                `json:"video_count"`
}

// ContentQuality carries the quality term that feeds the final blend.
type ContentQuality struct {
	Score float64 `json:"score"`
	// Source is "ai" when verdicts back the score, "baseline" otherwise.
	Source          string                    `json:"source"`
	AIQualityScores map[string]QualityVerdict `json:"ai_quality_scores,omitempty"`
}

// ScoreBreakdown is the full result of a scoring run.
type ScoreBreakdown struct {
	Username       string           `json:"username"`
	Keyword        string           `json:"keyword,omitempty"`
	FinalScore     float64          `json:"total_score"`
	AccountQuality AccountQuality   `json:"account_quality"`
	Interaction    InteractionScore `json:"content_interaction"`
	ContentQuality ContentQuality   `json:"content_quality"`
	Profile        Profile          `json:"profile"`
	CalculatedAt   time.Time        `json:"calculated_at"`
}

// TaskStatus is the lifecycle state of an async scoring task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// IsTerminal reports whether the status admits no further transitions.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// TaskError is the failure payload of a failed task.
type TaskError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Task is one async scoring job.
type Task struct {
	ID          string          `json:"task_id"`
	Username    string          `json:"username"`
	Keyword     string          `json:"keyword,omitempty"`
	Status      TaskStatus      `json:"status"`
	Progress    string          `json:"progress,omitempty"`
	Result      *ScoreBreakdown `json:"result,omitempty"`
	Error       *TaskError      `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// ScoreRequest is the submit/calculate request body.
type ScoreRequest struct {
	Username string `json:"username"`
	Keyword  string `json:"keyword,omitempty"`
}
