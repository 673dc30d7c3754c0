package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ModuleScope ownership model for a module instance
type ModuleScope string

const (
	// ScopePost instance is owned by exactly one placement and dies with it
	ScopePost ModuleScope = "post"
	// ScopeGlobal instance is shared by placements across many posts
	ScopeGlobal ModuleScope = "global"
)

// DraftTier names one of the two staged tiers
type DraftTier string

const (
	TierReview   DraftTier = "review"
	TierAiReview DraftTier = "ai-review"
)

// Valid reports whether t is one of the two known tiers
func (t DraftTier) Valid() bool { return t == TierReview || t == TierAiReview }

// RejectAction maps a tier to its revision action tag
func (t DraftTier) RejectAction() string {
	if t == TierAiReview {
		return ActionRejectAiReview
	}
	return ActionRejectReview
}

// ModuleInstance is a renderable content block. ReviewProps/AiReviewProps are
// partial patches to be deep-merged onto Props, never full replacements.
type ModuleInstance struct {
	ID            string      `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Scope         ModuleScope `gorm:"column:scope;type:varchar(10);index;default:'post'" json:"scope"`
	Type          string      `gorm:"column:type;type:varchar(100);index" json:"type"`
	Props         JSONMap     `gorm:"column:props;type:json;serializer:json" json:"props,omitempty"`
	ReviewProps   JSONMap     `gorm:"column:review_props;type:json;serializer:json" json:"review_props,omitempty"`
	AiReviewProps JSONMap     `gorm:"column:ai_review_props;type:json;serializer:json" json:"ai_review_props,omitempty"`
	CreatedAt     time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ModuleInstance) TableName() string { return "module_instances" }

func (m *ModuleInstance) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// StagedProps returns the staged props column for a tier
func (m *ModuleInstance) StagedProps(tier DraftTier) JSONMap {
	if tier == TierAiReview {
		return m.AiReviewProps
	}
	return m.ReviewProps
}

// ClearStagedProps nulls the staged props column for a tier
func (m *ModuleInstance) ClearStagedProps(tier DraftTier) {
	if tier == TierAiReview {
		m.AiReviewProps = nil
	} else {
		m.ReviewProps = nil
	}
}

// PostModule binds a ModuleInstance to a Post at a position. The staged
// override columns and added/deleted flags mirror the two draft tiers.
type PostModule struct {
	ID                string  `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	PostID            string  `gorm:"column:post_id;type:char(36);index" json:"post_id"`
	ModuleID          string  `gorm:"column:module_id;type:char(36);index" json:"module_id"`
	OrderIndex        int     `gorm:"column:order_index;default:0" json:"order_index"`
	Overrides         JSONMap `gorm:"column:overrides;type:json;serializer:json" json:"overrides,omitempty"`
	ReviewOverrides   JSONMap `gorm:"column:review_overrides;type:json;serializer:json" json:"review_overrides,omitempty"`
	AiReviewOverrides JSONMap `gorm:"column:ai_review_overrides;type:json;serializer:json" json:"ai_review_overrides,omitempty"`
	ReviewAdded       bool    `gorm:"column:review_added;default:false" json:"review_added"`
	AiReviewAdded     bool    `gorm:"column:ai_review_added;default:false" json:"ai_review_added"`
	ReviewDeleted     bool    `gorm:"column:review_deleted;default:false" json:"review_deleted"`
	AiReviewDeleted   bool    `gorm:"column:ai_review_deleted;default:false" json:"ai_review_deleted"`
	Locked            bool    `gorm:"column:locked;default:false" json:"locked"`
	AdminLabel        *string `gorm:"column:admin_label;type:varchar(255)" json:"admin_label,omitempty"`

	Module *ModuleInstance `gorm:"foreignKey:ModuleID" json:"module,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PostModule) TableName() string { return "post_modules" }

func (pm *PostModule) BeforeCreate(tx *gorm.DB) error {
	if pm.ID == "" {
		pm.ID = uuid.NewString()
	}
	return nil
}

// StagedOverrides returns the staged overrides column for a tier
func (pm *PostModule) StagedOverrides(tier DraftTier) JSONMap {
	if tier == TierAiReview {
		return pm.AiReviewOverrides
	}
	return pm.ReviewOverrides
}

// ClearStagedOverrides nulls the staged overrides column for a tier
func (pm *PostModule) ClearStagedOverrides(tier DraftTier) {
	if tier == TierAiReview {
		pm.AiReviewOverrides = nil
	} else {
		pm.ReviewOverrides = nil
	}
}

// Added reports the added flag for a tier
func (pm *PostModule) Added(tier DraftTier) bool {
	if tier == TierAiReview {
		return pm.AiReviewAdded
	}
	return pm.ReviewAdded
}

// Deleted reports the deleted flag for a tier
func (pm *PostModule) Deleted(tier DraftTier) bool {
	if tier == TierAiReview {
		return pm.AiReviewDeleted
	}
	return pm.ReviewDeleted
}

// ResetTier clears one tier's staged overrides and deleted flag, leaving the
// other tier untouched
func (pm *PostModule) ResetTier(tier DraftTier) {
	if tier == TierAiReview {
		pm.AiReviewOverrides = nil
		pm.AiReviewDeleted = false
	} else {
		pm.ReviewOverrides = nil
		pm.ReviewDeleted = false
	}
}

// HasStaging reports whether any staged column or flag is set on the placement
func (pm *PostModule) HasStaging() bool {
	return pm.ReviewOverrides != nil || pm.AiReviewOverrides != nil ||
		pm.ReviewAdded || pm.AiReviewAdded || pm.ReviewDeleted || pm.AiReviewDeleted
}
