package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONMap is a JSON object column. A nil map is stored as SQL NULL, which is
// the "no pending change" signal for the draft slots.
type JSONMap map[string]interface{}

// PostStatus lifecycle states for a post
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusReview    PostStatus = "review"
	StatusScheduled PostStatus = "scheduled"
	StatusPublished PostStatus = "published"
	StatusPrivate   PostStatus = "private"
	StatusProtected PostStatus = "protected"
	StatusArchived  PostStatus = "archived"
)

// Post represents a content entity with two staged draft tiers.
// ReviewDraft holds the human-staged patch, AiReviewDraft the agent-staged one;
// either being non-null means that tier has a pending change.
type Post struct {
	ID              string     `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Type            string     `gorm:"column:type;type:varchar(50);index;default:'page'" json:"type"`
	Locale          string     `gorm:"column:locale;type:varchar(10);index;default:'en'" json:"locale"`
	Slug            string     `gorm:"column:slug;type:varchar(255);index" json:"slug"`
	Title           string     `gorm:"column:title;type:varchar(255)" json:"title"`
	Status          PostStatus `gorm:"column:status;type:varchar(20);default:'draft'" json:"status"`
	Excerpt         *string    `gorm:"column:excerpt;type:text" json:"excerpt,omitempty"`
	ParentID        *string    `gorm:"column:parent_id;type:char(36);index" json:"parent_id,omitempty"`
	FeaturedImageID *string    `gorm:"column:featured_image_id;type:char(36)" json:"featured_image_id,omitempty"`
	MetaTitle       *string    `gorm:"column:meta_title;type:varchar(255)" json:"meta_title,omitempty"`
	MetaDescription *string    `gorm:"column:meta_description;type:text" json:"meta_description,omitempty"`
	CanonicalURL    *string    `gorm:"column:canonical_url;type:varchar(500)" json:"canonical_url,omitempty"`
	ReviewDraft     JSONMap    `gorm:"column:review_draft;type:json;serializer:json" json:"review_draft,omitempty"`
	AiReviewDraft   JSONMap    `gorm:"column:ai_review_draft;type:json;serializer:json" json:"ai_review_draft,omitempty"`
	PublishedAt     *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Post) TableName() string { return "posts" }

// BeforeCreate assigns a UUID when the caller did not supply one
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// HasReviewDraft reports whether the review tier has a pending post-level patch
func (p *Post) HasReviewDraft() bool { return p.ReviewDraft != nil }

// HasAiReviewDraft reports whether the ai-review tier has a pending post-level patch
func (p *Post) HasAiReviewDraft() bool { return p.AiReviewDraft != nil }

// PostCustomField stores one custom field value per (post, field slug)
type PostCustomField struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PostID    string    `gorm:"column:post_id;type:char(36);index:idx_post_field,unique" json:"post_id"`
	FieldSlug string    `gorm:"column:field_slug;type:varchar(128);index:idx_post_field,unique" json:"field_slug"`
	Value     JSONMap   `gorm:"column:value;type:json;serializer:json" json:"value,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PostCustomField) TableName() string { return "post_custom_fields" }
