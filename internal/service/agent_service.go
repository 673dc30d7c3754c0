package service

import (
	"github.com/pagemill/pagemill-backend/internal/domain"
	"github.com/pagemill/pagemill-backend/internal/repository"
	"github.com/rs/zerolog"
)

// AgentService records agent executions and moves their history up the draft
// tiers alongside the content they produced. Implements AgentHistoryPromoter.
type AgentService interface {
	AgentHistoryPromoter

	Record(run *domain.AgentRun) error
	ListByPost(postID string) ([]*domain.AgentRun, error)
}

type agentService struct {
	repo repository.AgentRunRepository
	log  zerolog.Logger
}

// NewAgentService creates a new AgentService
func NewAgentService(repo repository.AgentRunRepository, log zerolog.Logger) AgentService {
	return &agentService{
		repo: repo,
		log:  log.With().Str("component", "agent_service").Logger(),
	}
}

func (s *agentService) Record(run *domain.AgentRun) error {
	if run.Tier == "" {
		run.Tier = string(domain.TierAiReview)
	}
	return s.repo.Create(run)
}

func (s *agentService) ListByPost(postID string) ([]*domain.AgentRun, error) {
	return s.repo.FindByPostID(postID)
}

func (s *agentService) PromoteReviewToSource(postID string) error {
	return s.repo.UpdateTier(postID, string(domain.TierReview), "source")
}

func (s *agentService) PromoteAiReviewToReview(postID string) error {
	return s.repo.UpdateTier(postID, string(domain.TierAiReview), string(domain.TierReview))
}
