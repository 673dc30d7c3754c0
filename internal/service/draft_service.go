package service

import (
	"context"
	"errors"
	"time"

	"github.com/pagemill/pagemill-backend/internal/common"
	"github.com/pagemill/pagemill-backend/internal/domain"
	"github.com/pagemill/pagemill-backend/internal/merge"
	"github.com/pagemill/pagemill-backend/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// FieldPatcher applies a post-level field patch to a post inside an engine
// transaction. Handles slug normalization/uniqueness, redirect creation and
// canonical URL regeneration. Implemented by PostService.
type FieldPatcher interface {
	ApplyDraftFields(tx repository.Store, post *domain.Post, patch domain.JSONMap) error
}

// AgentHistoryPromoter moves agent execution history up a tier alongside the
// content it produced. Every call is best-effort: errors are logged by the
// caller and never fail the promotion.
type AgentHistoryPromoter interface {
	PromoteReviewToSource(postID string) error
	PromoteAiReviewToReview(postID string) error
}

// PageCache invalidates cached rendered pages once a promotion has committed
type PageCache interface {
	InvalidatePost(ctx context.Context, locale, slug string) error
}

// DraftService runs the three-tier draft promotion, merge and rejection
// engines. Every operation executes its row reads and writes inside one
// transaction with the post row locked, so two promotions of the same post
// never interleave.
type DraftService interface {
	// SaveDraft stages a post-level patch into one tier
	SaveDraft(postID string, tier domain.DraftTier, patch domain.JSONMap, savedBy string) error
	// ApproveReviewDraft promotes the review tier into source
	ApproveReviewDraft(postID, userID string) error
	// PromoteAiReviewToReview merges the ai-review tier into the review tier
	// without touching source
	PromoteAiReviewToReview(postID, userID, savedBy string) error
	// RejectDraft discards one tier at post and module granularity
	RejectDraft(postID, userID string, tier domain.DraftTier) error
	// PromotePostModules commits staged module changes for a post. With
	// draftModules it runs the atomic-list path; with nil it runs the
	// fallback path over the staged columns.
	PromotePostModules(postID string, draftModules []domain.DraftModule) error
}

type draftService struct {
	store  repository.Store
	fields FieldPatcher
	agents AgentHistoryPromoter
	cache  PageCache
	log    zerolog.Logger
}

// NewDraftService creates a new DraftService. agents and cache may be nil;
// both are best-effort collaborators.
func NewDraftService(store repository.Store, fields FieldPatcher, agents AgentHistoryPromoter, cache PageCache, log zerolog.Logger) DraftService {
	return &draftService{
		store:  store,
		fields: fields,
		agents: agents,
		cache:  cache,
		log:    log.With().Str("component", "draft_service").Logger(),
	}
}

func (s *draftService) SaveDraft(postID string, tier domain.DraftTier, patch domain.JSONMap, savedBy string) error {
	if !tier.Valid() {
		return common.ErrInvalidTier
	}
	return s.store.InTx(func(tx repository.Store) error {
		post, err := tx.GetPostForUpdate(postID)
		if err != nil {
			return mapNotFound(err)
		}
		current := post.ReviewDraft
		if tier == domain.TierAiReview {
			current = post.AiReviewDraft
		}
		staged := make(domain.JSONMap, len(current)+len(patch)+2)
		for k, v := range current {
			staged[k] = v
		}
		for k, v := range patch {
			staged[k] = v
		}
		staged["savedAt"] = time.Now().UTC().Format(time.RFC3339)
		staged["savedBy"] = savedBy
		if tier == domain.TierAiReview {
			post.AiReviewDraft = staged
		} else {
			post.ReviewDraft = staged
		}
		return tx.SavePost(post)
	})
}

func (s *draftService) ApproveReviewDraft(postID, userID string) error {
	var post *domain.Post
	err := s.store.InTx(func(tx repository.Store) error {
		p, err := tx.GetPostForUpdate(postID)
		if err != nil {
			return mapNotFound(err)
		}
		draft := p.ReviewDraft

		// Post-level fields and custom fields only exist with a draft;
		// module staging can exist without one.
		if draft != nil {
			if err := s.fields.ApplyDraftFields(tx, p, draft); err != nil {
				return err
			}
			if fields, ok := domain.DraftCustomFields(draft); ok {
				for _, f := range fields {
					if err := tx.UpsertCustomField(p.ID, f.Slug, f.Value); err != nil {
						return err
					}
				}
			}
		}

		if modules, ok := parseModuleList(draft); ok {
			if err := s.promoteModuleList(tx, p.ID, modules); err != nil {
				return err
			}
		} else {
			if err := s.promoteStagedModules(tx, p.ID); err != nil {
				return err
			}
		}

		if draft != nil {
			if termIDs, ok := domain.DraftTermIDs(draft); ok {
				if err := tx.ReplaceTermAssignments(p.ID, termIDs); err != nil {
					return err
				}
			}
		}

		p.ReviewDraft = nil
		if err := tx.SavePost(p); err != nil {
			return err
		}
		post = p
		return nil
	})
	if err != nil {
		return err
	}

	// The approval is durable at this point. The snapshot failure still
	// surfaces to the caller; history promotion and cache invalidation are
	// log-and-continue.
	if err := s.recordSnapshot(post, "source", domain.ActionApproveReviewToSource, userID); err != nil {
		return err
	}
	if s.agents != nil {
		if err := s.agents.PromoteReviewToSource(postID); err != nil {
			s.log.Warn().Err(err).Str("post_id", postID).Msg("agent history promotion failed")
		}
	}
	s.invalidate(post)
	approvalsTotal.Inc()
	return nil
}

func (s *draftService) PromoteAiReviewToReview(postID, userID, savedBy string) error {
	if savedBy == "" {
		savedBy = "ai-agent"
	}
	err := s.store.InTx(func(tx repository.Store) error {
		p, err := tx.GetPostForUpdate(postID)
		if err != nil {
			return mapNotFound(err)
		}
		placements, err := tx.ListPlacements(p.ID)
		if err != nil {
			return err
		}

		// Staged instance props move up a tier: ai-review merges onto the
		// review staging when present, else onto live props.
		seen := make(map[string]bool)
		for _, pm := range placements {
			inst := pm.Module
			if inst == nil || seen[inst.ID] {
				continue
			}
			seen[inst.ID] = true
			if inst.AiReviewProps == nil {
				continue
			}
			base := inst.ReviewProps
			if base == nil {
				base = inst.Props
			}
			inst.ReviewProps = merge.Deep(base, inst.AiReviewProps)
			inst.AiReviewProps = nil
			if err := tx.SaveModuleInstance(inst); err != nil {
				return err
			}
		}

		for _, pm := range placements {
			if pm.AiReviewOverrides == nil && !pm.AiReviewAdded && !pm.AiReviewDeleted {
				continue
			}
			// Flags only ever OR upward, never downgraded.
			pm.ReviewAdded = pm.ReviewAdded || pm.AiReviewAdded
			pm.ReviewDeleted = pm.ReviewDeleted || pm.AiReviewDeleted
			if pm.AiReviewOverrides != nil {
				base := pm.ReviewOverrides
				if base == nil {
					base = pm.Overrides
				}
				pm.ReviewOverrides = merge.Deep(base, pm.AiReviewOverrides)
				pm.AiReviewOverrides = nil
			}
			pm.AiReviewAdded = false
			pm.AiReviewDeleted = false
			if err := tx.SavePlacement(pm); err != nil {
				return err
			}
		}

		if p.AiReviewDraft != nil {
			merged := make(domain.JSONMap, len(p.ReviewDraft)+len(p.AiReviewDraft)+2)
			for k, v := range p.ReviewDraft {
				merged[k] = v
			}
			// Shallow merge: ai-review fields win on key collision.
			for k, v := range p.AiReviewDraft {
				merged[k] = v
			}
			merged["savedAt"] = time.Now().UTC().Format(time.RFC3339)
			merged["savedBy"] = savedBy
			p.ReviewDraft = merged
			p.AiReviewDraft = nil
			if err := tx.SavePost(p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.agents != nil {
		if err := s.agents.PromoteAiReviewToReview(postID); err != nil {
			s.log.Warn().Err(err).Str("post_id", postID).Msg("agent history promotion failed")
		}
	}
	aiPromotionsTotal.Inc()
	return nil
}

func (s *draftService) RejectDraft(postID, userID string, tier domain.DraftTier) error {
	if !tier.Valid() {
		return common.ErrInvalidTier
	}
	err := s.store.InTx(func(tx repository.Store) error {
		p, err := tx.GetPostForUpdate(postID)
		if err != nil {
			return mapNotFound(err)
		}
		placements, err := tx.ListPlacements(p.ID)
		if err != nil {
			return err
		}

		// Snapshot what is about to be discarded, before any destructive
		// change. A failure here aborts the whole rejection.
		rev := &domain.Revision{
			PostID:   p.ID,
			Mode:     string(tier),
			Action:   tier.RejectAction(),
			UserID:   userID,
			Snapshot: buildSnapshot(p, placements),
		}
		if err := tx.CreateRevision(rev); err != nil {
			return err
		}

		if tier == domain.TierAiReview {
			p.AiReviewDraft = nil
		} else {
			p.ReviewDraft = nil
		}
		if err := tx.SavePost(p); err != nil {
			return err
		}

		// Placements born in this tier are removed entirely, even when also
		// flagged deleted in the same tier. Their post-owned instances go
		// with them.
		var remaining []*domain.PostModule
		deletedInstances := make(map[string]bool)
		for _, pm := range placements {
			if !pm.Added(tier) {
				remaining = append(remaining, pm)
				continue
			}
			if err := tx.DeletePlacement(pm.ID); err != nil {
				return err
			}
			if pm.Module != nil && pm.Module.Scope == domain.ScopePost {
				if err := tx.DeleteModuleInstance(pm.ModuleID); err != nil {
					return err
				}
				deletedInstances[pm.ModuleID] = true
			}
		}

		for _, pm := range remaining {
			if pm.StagedOverrides(tier) == nil && !pm.Deleted(tier) {
				continue
			}
			pm.ResetTier(tier)
			if err := tx.SavePlacement(pm); err != nil {
				return err
			}
		}

		// Sweep instances over the full pre-deletion list: a surviving global
		// instance may be reachable only through a placement that was just
		// removed, and its staged props for this tier are discarded too.
		seen := make(map[string]bool)
		for _, pm := range placements {
			inst := pm.Module
			if inst == nil || seen[inst.ID] || deletedInstances[inst.ID] {
				continue
			}
			seen[inst.ID] = true
			if inst.StagedProps(tier) == nil {
				continue
			}
			inst.ClearStagedProps(tier)
			if err := tx.SaveModuleInstance(inst); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	rejectionsTotal.WithLabelValues(string(tier)).Inc()
	return nil
}

func (s *draftService) PromotePostModules(postID string, draftModules []domain.DraftModule) error {
	return s.store.InTx(func(tx repository.Store) error {
		if _, err := tx.GetPostForUpdate(postID); err != nil {
			return mapNotFound(err)
		}
		if draftModules != nil {
			return s.promoteModuleList(tx, postID, draftModules)
		}
		return s.promoteStagedModules(tx, postID)
	})
}

// promoteModuleList is the atomic-list path: the caller supplies the full
// reconciled set of module changes. Placements absent from the list are left
// alone; this path never deletes.
func (s *draftService) promoteModuleList(tx repository.Store, postID string, modules []domain.DraftModule) error {
	for _, dm := range modules {
		if dm.IsLocal() {
			inst, err := tx.GetModuleInstance(dm.ModuleInstanceID)
			if err != nil {
				return mapNotFound(err)
			}
			inst.Props = merge.Deep(inst.Props, dm.Props)
			inst.ReviewProps = nil
			inst.AiReviewProps = nil
			if err := tx.SaveModuleInstance(inst); err != nil {
				return err
			}
			if dm.AdminLabel != nil {
				// The label lives on the placement row even for instance
				// descriptors.
				pm, err := tx.GetPlacementByModule(postID, inst.ID)
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				pm.AdminLabel = dm.AdminLabel
				if err := tx.SavePlacement(pm); err != nil {
					return err
				}
			}
			continue
		}

		if dm.ID == "" {
			continue
		}
		pm, err := tx.GetPlacement(dm.ID)
		if err != nil {
			return mapNotFound(err)
		}
		pm.Overrides = merge.Deep(pm.Overrides, dm.Overrides)
		pm.ReviewOverrides = nil
		pm.AiReviewOverrides = nil
		if dm.AdminLabel != nil {
			pm.AdminLabel = dm.AdminLabel
		}
		if err := tx.SavePlacement(pm); err != nil {
			return err
		}
	}
	return nil
}

// promoteStagedModules is the fallback path over the staged columns. Merge
// precedence is source <- review <- ai-review; later wins.
func (s *draftService) promoteStagedModules(tx repository.Store, postID string) error {
	placements, err := tx.ListPlacements(postID)
	if err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, pm := range placements {
		inst := pm.Module
		if inst == nil || seen[inst.ID] {
			continue
		}
		seen[inst.ID] = true
		if inst.ReviewProps == nil && inst.AiReviewProps == nil {
			continue
		}
		props := inst.Props
		if len(inst.ReviewProps) > 0 {
			props = merge.Deep(props, inst.ReviewProps)
		}
		if len(inst.AiReviewProps) > 0 {
			props = merge.Deep(props, inst.AiReviewProps)
		}
		inst.Props = props
		inst.ReviewProps = nil
		inst.AiReviewProps = nil
		if err := tx.SaveModuleInstance(inst); err != nil {
			return err
		}
	}

	for _, pm := range placements {
		if pm.ReviewOverrides == nil && pm.AiReviewOverrides == nil {
			continue
		}
		overrides := pm.Overrides
		if len(pm.ReviewOverrides) > 0 {
			overrides = merge.Deep(overrides, pm.ReviewOverrides)
		}
		if len(pm.AiReviewOverrides) > 0 {
			overrides = merge.Deep(overrides, pm.AiReviewOverrides)
		}
		pm.Overrides = overrides
		pm.ReviewOverrides = nil
		pm.AiReviewOverrides = nil
		if err := tx.SavePlacement(pm); err != nil {
			return err
		}
	}

	deleted := make(map[string]bool)
	for _, pm := range placements {
		if !pm.ReviewDeleted && !pm.AiReviewDeleted {
			continue
		}
		if err := tx.DeletePlacement(pm.ID); err != nil {
			return err
		}
		if pm.Module != nil && pm.Module.Scope == domain.ScopePost {
			if err := tx.DeleteModuleInstance(pm.ModuleID); err != nil {
				return err
			}
		}
		deleted[pm.ID] = true
	}

	for _, pm := range placements {
		if deleted[pm.ID] || (!pm.ReviewAdded && !pm.AiReviewAdded) {
			continue
		}
		pm.ReviewAdded = false
		pm.AiReviewAdded = false
		if err := tx.SavePlacement(pm); err != nil {
			return err
		}
	}
	return nil
}

// recordSnapshot writes a revision of the current live state, outside the
// engine transaction
func (s *draftService) recordSnapshot(post *domain.Post, mode, action, userID string) error {
	placements, err := s.store.ListPlacements(post.ID)
	if err != nil {
		return err
	}
	return s.store.CreateRevision(&domain.Revision{
		PostID:   post.ID,
		Mode:     mode,
		Action:   action,
		UserID:   userID,
		Snapshot: buildSnapshot(post, placements),
	})
}

func (s *draftService) invalidate(post *domain.Post) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.cache.InvalidatePost(ctx, post.Locale, post.Slug); err != nil {
		s.log.Warn().Err(err).Str("post_id", post.ID).Msg("page cache invalidation failed")
	}
}

// buildSnapshot serializes post and module state for a revision row
func buildSnapshot(post *domain.Post, placements []*domain.PostModule) domain.JSONMap {
	modules := make([]interface{}, 0, len(placements))
	seen := make(map[string]bool)
	for _, pm := range placements {
		entry := map[string]interface{}{
			"placementId":       pm.ID,
			"moduleId":          pm.ModuleID,
			"orderIndex":        pm.OrderIndex,
			"overrides":         map[string]interface{}(pm.Overrides),
			"reviewOverrides":   map[string]interface{}(pm.ReviewOverrides),
			"aiReviewOverrides": map[string]interface{}(pm.AiReviewOverrides),
			"reviewAdded":       pm.ReviewAdded,
			"aiReviewAdded":     pm.AiReviewAdded,
			"reviewDeleted":     pm.ReviewDeleted,
			"aiReviewDeleted":   pm.AiReviewDeleted,
		}
		if inst := pm.Module; inst != nil && !seen[inst.ID] {
			seen[inst.ID] = true
			entry["module"] = map[string]interface{}{
				"id":            inst.ID,
				"scope":         string(inst.Scope),
				"type":          inst.Type,
				"props":         map[string]interface{}(inst.Props),
				"reviewProps":   map[string]interface{}(inst.ReviewProps),
				"aiReviewProps": map[string]interface{}(inst.AiReviewProps),
			}
		}
		modules = append(modules, entry)
	}
	return domain.JSONMap{
		"post": map[string]interface{}{
			"id":            post.ID,
			"type":          post.Type,
			"locale":        post.Locale,
			"slug":          post.Slug,
			"title":         post.Title,
			"status":        string(post.Status),
			"reviewDraft":   map[string]interface{}(post.ReviewDraft),
			"aiReviewDraft": map[string]interface{}(post.AiReviewDraft),
		},
		"modules": modules,
	}
}

// parseModuleList extracts the atomic module list from a draft blob
func parseModuleList(draft domain.JSONMap) ([]domain.DraftModule, bool) {
	if draft == nil {
		return nil, false
	}
	v, ok := domain.DraftField(draft, "modules")
	if !ok {
		return nil, false
	}
	return domain.ParseDraftModules(v)
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrPostNotFound
	}
	return err
}
