package service

import (
	"github.com/pagemill/pagemill-backend/internal/common"
	"github.com/pagemill/pagemill-backend/internal/domain"
	"github.com/pagemill/pagemill-backend/internal/merge"
	"github.com/pagemill/pagemill-backend/internal/repository"
	"github.com/rs/zerolog"
)

// ModuleService stages module-level edits into a draft tier. Nothing here
// touches live props or overrides; only the promotion engines do that.
type ModuleService interface {
	ListModules(postID string) ([]*domain.PostModule, error)
	// AddModule stages a new placement into a tier. A post-scoped request
	// creates a fresh owned instance; a global request references an
	// existing shared one.
	AddModule(postID string, tier domain.DraftTier, req *domain.AddModuleRequest) (*domain.PostModule, error)
	// StageProps deep-merges a patch into a module's staged props for a tier
	StageProps(moduleID string, tier domain.DraftTier, patch domain.JSONMap) error
	// StageOverrides deep-merges a patch into a placement's staged overrides
	StageOverrides(placementID string, tier domain.DraftTier, patch domain.JSONMap) error
	// MarkDeleted flags a placement for removal once the tier is approved
	MarkDeleted(placementID string, tier domain.DraftTier) error
	// Reorder rewrites placement positions; locked placements must keep theirs
	Reorder(postID string, orderedIDs []string) error
}

type moduleService struct {
	store repository.Store
	log   zerolog.Logger
}

// NewModuleService creates a new ModuleService
func NewModuleService(store repository.Store, log zerolog.Logger) ModuleService {
	return &moduleService{
		store: store,
		log:   log.With().Str("component", "module_service").Logger(),
	}
}

func (s *moduleService) ListModules(postID string) ([]*domain.PostModule, error) {
	return s.store.ListPlacements(postID)
}

func (s *moduleService) AddModule(postID string, tier domain.DraftTier, req *domain.AddModuleRequest) (*domain.PostModule, error) {
	if !tier.Valid() {
		return nil, common.ErrInvalidTier
	}
	var placement *domain.PostModule
	err := s.store.InTx(func(tx repository.Store) error {
		if _, err := tx.GetPostForUpdate(postID); err != nil {
			return mapNotFound(err)
		}

		moduleID := req.ModuleID
		if req.Scope == string(domain.ScopeGlobal) {
			// Reference the shared instance; never copy it.
			if _, err := tx.GetModuleInstance(moduleID); err != nil {
				return common.ErrModuleNotFound
			}
		} else {
			inst := &domain.ModuleInstance{
				Scope: domain.ScopePost,
				Type:  req.Type,
				Props: req.Props,
			}
			if err := tx.CreateModuleInstance(inst); err != nil {
				return err
			}
			moduleID = inst.ID
		}

		pm := &domain.PostModule{
			PostID:     postID,
			ModuleID:   moduleID,
			OrderIndex: req.OrderIndex,
			AdminLabel: req.AdminLabel,
		}
		if tier == domain.TierAiReview {
			pm.AiReviewAdded = true
			pm.AiReviewOverrides = req.Overrides
		} else {
			pm.ReviewAdded = true
			pm.ReviewOverrides = req.Overrides
		}
		if err := tx.CreatePlacement(pm); err != nil {
			return err
		}
		placement = pm
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placement, nil
}

func (s *moduleService) StageProps(moduleID string, tier domain.DraftTier, patch domain.JSONMap) error {
	if !tier.Valid() {
		return common.ErrInvalidTier
	}
	return s.store.InTx(func(tx repository.Store) error {
		inst, err := tx.GetModuleInstance(moduleID)
		if err != nil {
			return common.ErrModuleNotFound
		}
		staged := merge.Deep(inst.StagedProps(tier), patch)
		if tier == domain.TierAiReview {
			inst.AiReviewProps = staged
		} else {
			inst.ReviewProps = staged
		}
		return tx.SaveModuleInstance(inst)
	})
}

func (s *moduleService) StageOverrides(placementID string, tier domain.DraftTier, patch domain.JSONMap) error {
	if !tier.Valid() {
		return common.ErrInvalidTier
	}
	return s.store.InTx(func(tx repository.Store) error {
		pm, err := tx.GetPlacement(placementID)
		if err != nil {
			return common.ErrPlacementNotFound
		}
		staged := merge.Deep(pm.StagedOverrides(tier), patch)
		if tier == domain.TierAiReview {
			pm.AiReviewOverrides = staged
		} else {
			pm.ReviewOverrides = staged
		}
		return tx.SavePlacement(pm)
	})
}

func (s *moduleService) MarkDeleted(placementID string, tier domain.DraftTier) error {
	if !tier.Valid() {
		return common.ErrInvalidTier
	}
	return s.store.InTx(func(tx repository.Store) error {
		pm, err := tx.GetPlacement(placementID)
		if err != nil {
			return common.ErrPlacementNotFound
		}
		if pm.Locked {
			return common.ErrPlacementLocked
		}
		if tier == domain.TierAiReview {
			pm.AiReviewDeleted = true
		} else {
			pm.ReviewDeleted = true
		}
		return tx.SavePlacement(pm)
	})
}

func (s *moduleService) Reorder(postID string, orderedIDs []string) error {
	position := make(map[string]int, len(orderedIDs))
	for i, id := range orderedIDs {
		position[id] = i
	}
	return s.store.InTx(func(tx repository.Store) error {
		placements, err := tx.ListPlacements(postID)
		if err != nil {
			return err
		}
		for _, pm := range placements {
			idx, ok := position[pm.ID]
			if !ok || idx == pm.OrderIndex {
				continue
			}
			if pm.Locked {
				return common.ErrPlacementLocked
			}
			pm.OrderIndex = idx
			if err := tx.SavePlacement(pm); err != nil {
				return err
			}
		}
		return nil
	})
}
