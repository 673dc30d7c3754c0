package domain

import "time"

// Revision actions recorded by the promotion and rejection engines
const (
	ActionApproveReviewToSource   = "approve-review-to-source"
	ActionPromoteAiReviewToReview = "promote-ai-review-to-review"
	ActionRejectReview            = "reject-review"
	ActionRejectAiReview          = "reject-ai-review"
)

// Revision is an immutable snapshot of post + module state at a transition
// point. Rows are created by the engines and never mutated; retention is an
// external concern.
type Revision struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PostID    string    `gorm:"column:post_id;type:char(36);index" json:"post_id"`
	Mode      string    `gorm:"column:mode;type:varchar(20)" json:"mode"`
	Action    string    `gorm:"column:action;type:varchar(50)" json:"action"`
	UserID    string    `gorm:"column:user_id;type:varchar(64)" json:"user_id"`
	Snapshot  JSONMap   `gorm:"column:snapshot;type:json;serializer:json" json:"snapshot,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Revision) TableName() string { return "post_revisions" }
