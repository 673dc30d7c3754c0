package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaxonomyTerm is a term inside a named taxonomy (category, tag, ...)
type TaxonomyTerm struct {
	ID        string    `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Taxonomy  string    `gorm:"column:taxonomy;type:varchar(50);index" json:"taxonomy"`
	Slug      string    `gorm:"column:slug;type:varchar(128);index" json:"slug"`
	Name      string    `gorm:"column:name;type:varchar(255)" json:"name"`
	ParentID  *string   `gorm:"column:parent_id;type:char(36)" json:"parent_id,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (TaxonomyTerm) TableName() string { return "taxonomy_terms" }

func (t *TaxonomyTerm) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// PostTerm assigns a term to a post
type PostTerm struct {
	PostID string `gorm:"column:post_id;type:char(36);primaryKey" json:"post_id"`
	TermID string `gorm:"column:term_id;type:char(36);primaryKey" json:"term_id"`
}

func (PostTerm) TableName() string { return "post_terms" }

// Redirect is a stored URL redirect, created when a published slug changes
type Redirect struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	FromPath  string    `gorm:"column:from_path;type:varchar(500);uniqueIndex" json:"from_path"`
	ToPath    string    `gorm:"column:to_path;type:varchar(500)" json:"to_path"`
	Status    int       `gorm:"column:status;default:301" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Redirect) TableName() string { return "redirects" }
