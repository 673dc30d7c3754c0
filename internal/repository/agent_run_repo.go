package repository

import (
	"github.com/pagemill/pagemill-backend/internal/domain"
	"gorm.io/gorm"
)

// AgentRunRepository agent execution history data access
type AgentRunRepository interface {
	Create(run *domain.AgentRun) error
	FindByPostID(postID string) ([]*domain.AgentRun, error)
	// UpdateTier moves every run of a post currently at fromTier to toTier
	UpdateTier(postID, fromTier, toTier string) error
}

type agentRunRepository struct {
	db *gorm.DB
}

// NewAgentRunRepository creates a new AgentRunRepository
func NewAgentRunRepository(db *gorm.DB) AgentRunRepository {
	return &agentRunRepository{db: db}
}

func (r *agentRunRepository) Create(run *domain.AgentRun) error {
	return r.db.Create(run).Error
}

func (r *agentRunRepository) FindByPostID(postID string) ([]*domain.AgentRun, error) {
	var runs []*domain.AgentRun
	err := r.db.Where("post_id = ?", postID).Order("created_at DESC").Find(&runs).Error
	return runs, err
}

func (r *agentRunRepository) UpdateTier(postID, fromTier, toTier string) error {
	return r.db.Model(&domain.AgentRun{}).
		Where("post_id = ? AND tier = ?", postID, fromTier).
		Update("tier", toTier).Error
}
