package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AgentRun is one agent execution against a post. Tier tracks which draft tier
// the run's output currently lives in; promotions move it up alongside the
// content it produced.
type AgentRun struct {
	ID         string     `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	PostID     string     `gorm:"column:post_id;type:char(36);index" json:"post_id"`
	Agent      string     `gorm:"column:agent;type:varchar(100)" json:"agent"`
	Tier       string     `gorm:"column:tier;type:varchar(20);index" json:"tier"`
	Status     string     `gorm:"column:status;type:varchar(20);default:'done'" json:"status"`
	Output     JSONMap    `gorm:"column:output;type:json;serializer:json" json:"output,omitempty"`
	StartedAt  *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	FinishedAt *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (AgentRun) TableName() string { return "agent_runs" }

func (r *AgentRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
