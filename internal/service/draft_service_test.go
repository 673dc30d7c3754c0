package service

import (
	"testing"

	"github.com/pagemill/pagemill-backend/internal/common"
	"github.com/pagemill/pagemill-backend/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraftFixture() (*fakeStore, DraftService) {
	st := newFakeStore()
	fields := NewPostService(st, nil, zerolog.Nop())
	drafts := NewDraftService(st, fields, nil, nil, zerolog.Nop())
	return st, drafts
}

func seedPost(st *fakeStore, id string) *domain.Post {
	p := &domain.Post{
		ID:     id,
		Type:   "page",
		Locale: "en",
		Slug:   "home",
		Title:  "Home",
		Status: domain.StatusPublished,
	}
	st.posts[id] = p
	return p
}

func TestSaveDraftStagesPatch(t *testing.T) {
	st, drafts := newDraftFixture()
	seedPost(st, "p1")

	err := drafts.SaveDraft("p1", domain.TierReview, domain.JSONMap{"title": "New"}, "alice")
	require.NoError(t, err)

	post := st.posts["p1"]
	require.NotNil(t, post.ReviewDraft)
	assert.Equal(t, "New", post.ReviewDraft["title"])
	assert.Equal(t, "alice", post.ReviewDraft["savedBy"])
	assert.NotEmpty(t, post.ReviewDraft["savedAt"])
	assert.Nil(t, post.AiReviewDraft)
	assert.Equal(t, "Home", post.Title, "staging must not touch the live field")

	// A second save merges onto the existing staging
	err = drafts.SaveDraft("p1", domain.TierReview, domain.JSONMap{"excerpt": "e"}, "bob")
	require.NoError(t, err)
	post = st.posts["p1"]
	assert.Equal(t, "New", post.ReviewDraft["title"])
	assert.Equal(t, "e", post.ReviewDraft["excerpt"])
	assert.Equal(t, "bob", post.ReviewDraft["savedBy"])
}

func TestSaveDraftInvalidTier(t *testing.T) {
	st, drafts := newDraftFixture()
	seedPost(st, "p1")

	err := drafts.SaveDraft("p1", domain.DraftTier("bogus"), domain.JSONMap{}, "alice")
	assert.ErrorIs(t, err, common.ErrInvalidTier)
}

func TestApproveReviewDraftAppliesFieldsAndClears(t *testing.T) {
	st, drafts := newDraftFixture()
	post := seedPost(st, "p1")
	post.ReviewDraft = domain.JSONMap{
		"title": "Approved Title",
		"customFields": []interface{}{
			map[string]interface{}{"slug": "hero", "value": map[string]interface{}{"text": "hi"}},
		},
		"taxonomyTermIds": []interface{}{"t1", "t2"},
	}

	err := drafts.ApproveReviewDraft("p1", "editor-1")
	require.NoError(t, err)

	got := st.posts["p1"]
	assert.Equal(t, "Approved Title", got.Title)
	assert.Nil(t, got.ReviewDraft, "approve must clear the review tier")
	assert.Equal(t, domain.JSONMap{"text": "hi"}, st.customFields["p1|hero"])
	assert.Equal(t, []string{"t1", "t2"}, st.terms["p1"])

	require.Len(t, st.revisions, 1)
	rev := st.revisions[0]
	assert.Equal(t, domain.ActionApproveReviewToSource, rev.Action)
	assert.Equal(t, "source", rev.Mode)
	assert.Equal(t, "editor-1", rev.UserID)
}

func TestApproveMissingPost(t *testing.T) {
	_, drafts := newDraftFixture()
	err := drafts.ApproveReviewDraft("nope", "editor-1")
	assert.ErrorIs(t, err, common.ErrPostNotFound)
}

func TestApproveWithoutDraftIsIdempotent(t *testing.T) {
	st, drafts := newDraftFixture()
	seedPost(st, "p1")

	require.NoError(t, drafts.ApproveReviewDraft("p1", "editor-1"))
	title := st.posts["p1"].Title

	// No draft, no staging: a second approve changes nothing but the
	// revision log.
	require.NoError(t, drafts.ApproveReviewDraft("p1", "editor-1"))
	assert.Equal(t, title, st.posts["p1"].Title)
	assert.Nil(t, st.posts["p1"].ReviewDraft)
	assert.Len(t, st.revisions, 2)
}

func TestApprovePromotesStagedModulesWithoutPostDraft(t *testing.T) {
	st, drafts := newDraftFixture()
	seedPost(st, "p1")
	st.instances["i1"] = &domain.ModuleInstance{
		ID:          "i1",
		Scope:       domain.ScopePost,
		Type:        "hero",
		Props:       domain.JSONMap{"x": float64(1)},
		ReviewProps: domain.JSONMap{"x": float64(2)},
	}
	st.placements["pm1"] = &domain.PostModule{ID: "pm1", PostID: "p1", ModuleID: "i1"}

	require.NoError(t, drafts.ApproveReviewDraft("p1", "editor-1"))

	inst := st.instances["i1"]
	assert.Equal(t, float64(2), inst.Props["x"])
	assert.Nil(t, inst.ReviewProps)
}

func TestPromoteAiReviewToReview(t *testing.T) {
	st, drafts := newDraftFixture()
	post := seedPost(st, "p1")
	post.ReviewDraft = domain.JSONMap{"title": "Human", "excerpt": "keep"}
	post.AiReviewDraft = domain.JSONMap{"title": "Agent"}
	st.instances["i1"] = &domain.ModuleInstance{
		ID:            "i1",
		Scope:         domain.ScopeGlobal,
		Type:          "cta",
		Props:         domain.JSONMap{"x": float64(1)},
		AiReviewProps: domain.JSONMap{"x": float64(3)},
	}
	st.placements["pm1"] = &domain.PostModule{
		ID: "pm1", PostID: "p1", ModuleID: "i1",
		AiReviewAdded:     true,
		AiReviewOverrides: domain.JSONMap{"pad": float64(4)},
	}

	err := drafts.PromoteAiReviewToReview("p1", "editor-1", "")
	require.NoError(t, err)

	got := st.posts["p1"]
	assert.Nil(t, got.AiReviewDraft)
	assert.Equal(t, "Agent", got.ReviewDraft["title"], "ai-review wins on collision")
	assert.Equal(t, "keep", got.ReviewDraft["excerpt"])
	assert.Equal(t, "ai-agent", got.ReviewDraft["savedBy"])
	assert.Equal(t, "Home", got.Title, "source stays untouched")

	inst := st.instances["i1"]
	assert.Equal(t, float64(1), inst.Props["x"], "live props stay untouched")
	assert.Equal(t, float64(3), inst.ReviewProps["x"])
	assert.Nil(t, inst.AiReviewProps)

	pm := st.placements["pm1"]
	assert.True(t, pm.ReviewAdded)
	assert.False(t, pm.AiReviewAdded)
	assert.Equal(t, float64(4), pm.ReviewOverrides["pad"])
	assert.Nil(t, pm.AiReviewOverrides)
}

func TestPromoteStagedModulesPrecedence(t *testing.T) {
	st, drafts := newDraftFixture()
	seedPost(st, "p1")
	st.instances["i1"] = &domain.ModuleInstance{
		ID:            "i1",
		Scope:         domain.ScopeGlobal,
		Type:          "hero",
		Props:         domain.JSONMap{"x": float64(1), "keep": true},
		ReviewProps:   domain.JSONMap{"x": float64(2)},
		AiReviewProps: domain.JSONMap{"x": float64(3)},
	}
	st.placements["pm1"] = &domain.PostModule{ID: "pm1", PostID: "p1", ModuleID: "i1"}

	require.NoError(t, drafts.PromotePostModules("p1", nil))

	inst := st.instances["i1"]
	assert.Equal(t, float64(3), inst.Props["x"], "ai-review is the last writer")
	assert.Equal(t, true, inst.Props["keep"])
	assert.Nil(t, inst.ReviewProps)
	assert.Nil(t, inst.AiReviewProps)
	assert.Equal(t, "i1", st.placements["pm1"].ModuleID, "global instance never forked")
}

func TestPromoteStagedModulesDeletesFlagged(t *testing.T) {
	st, drafts := newDraftFixture()
	seedPost(st, "p1")
	st.instances["owned"] = &domain.ModuleInstance{ID: "owned", Scope: domain.ScopePost, Type: "text"}
	st.instances["shared"] = &domain.ModuleInstance{ID: "shared", Scope: domain.ScopeGlobal, Type: "cta"}
	st.placements["del-owned"] = &domain.PostModule{
		ID: "del-owned", PostID: "p1", ModuleID: "owned", ReviewDeleted: true,
	}
	st.placements["del-shared"] = &domain.PostModule{
		ID: "del-shared", PostID: "p1", ModuleID: "shared", OrderIndex: 1, AiReviewDeleted: true,
	}
	st.placements["survivor"] = &domain.PostModule{
		ID: "survivor", PostID: "p1", ModuleID: "shared", OrderIndex: 2, ReviewAdded: true,
	}

	require.NoError(t, drafts.PromotePostModules("p1", nil))

	assert.NotContains(t, st.placements, "del-owned")
	assert.NotContains(t, st.placements, "del-shared")
	assert.NotContains(t, st.instances, "owned", "post-owned instance dies with its placement")
	assert.Contains(t, st.instances, "shared", "shared instance survives placement deletion")
	assert.False(t, st.placements["survivor"].ReviewAdded, "added flags are cleared on commit")
}

func TestPromoteModuleListNeverDeletes(t *testing.T) {
	st, drafts := newDraftFixture()
	seedPost(st, "p1")
	st.instances["i1"] = &domain.ModuleInstance{
		ID:          "i1",
		Scope:       domain.ScopePost,
		Type:        "hero",
		Props:       domain.JSONMap{"a": float64(1)},
		ReviewProps: domain.JSONMap{"a": float64(9)},
	}
	st.instances["i2"] = &domain.ModuleInstance{ID: "i2", Scope: domain.ScopeGlobal, Type: "cta"}
	st.placements["pm1"] = &domain.PostModule{ID: "pm1", PostID: "p1", ModuleID: "i1"}
	st.placements["untouched"] = &domain.PostModule{
		ID: "untouched", PostID: "p1", ModuleID: "i2", OrderIndex: 1, ReviewDeleted: true,
	}

	label := "Hero block"
	modules := []domain.DraftModule{
		{
			Scope:            "local",
			ModuleInstanceID: "i1",
			Props:            domain.JSONMap{"a": float64(2)},
			AdminLabel:       &label,
		},
	}
	require.NoError(t, drafts.PromotePostModules("p1", modules))

	inst := st.instances["i1"]
	assert.Equal(t, float64(2), inst.Props["a"], "list props win over staged columns")
	assert.Nil(t, inst.ReviewProps)
	assert.Contains(t, st.placements, "untouched", "the atomic list path never deletes")
	assert.True(t, st.placements["untouched"].ReviewDeleted, "absent placements keep their staging")
	require.NotNil(t, st.placements["pm1"].AdminLabel)
	assert.Equal(t, "Hero block", *st.placements["pm1"].AdminLabel)
}

func TestApproveReviewDraftWithModuleList(t *testing.T) {
	st, drafts := newDraftFixture()
	post := seedPost(st, "p1")
	st.instances["i1"] = &domain.ModuleInstance{
		ID:          "i1",
		Scope:       domain.ScopePost,
		Type:        "hero",
		Props:       domain.JSONMap{"a": float64(1), "keep": true},
		ReviewProps: domain.JSONMap{"a": float64(9)},
	}
	st.placements["pm1"] = &domain.PostModule{ID: "pm1", PostID: "p1", ModuleID: "i1"}
	post.ReviewDraft = domain.JSONMap{
		"title": "Listed",
		"modules": []interface{}{
			map[string]interface{}{
				"scope":            "post",
				"moduleInstanceId": "i1",
				"props":            map[string]interface{}{"a": float64(2)},
			},
		},
	}

	require.NoError(t, drafts.ApproveReviewDraft("p1", "editor-1"))

	got := st.posts["p1"]
	assert.Equal(t, "Listed", got.Title)
	assert.Nil(t, got.ReviewDraft, "approve must clear the review tier")

	// The draft's module list drives the atomic path: its props win over the
	// staged column and both staged slots are cleared.
	inst := st.instances["i1"]
	assert.Equal(t, float64(2), inst.Props["a"])
	assert.Equal(t, true, inst.Props["keep"])
	assert.Nil(t, inst.ReviewProps)
	assert.Nil(t, inst.AiReviewProps)
	assert.Contains(t, st.placements, "pm1")

	require.Len(t, st.revisions, 1)
	assert.Equal(t, domain.ActionApproveReviewToSource, st.revisions[0].Action)
}

func TestRejectReviewDraft(t *testing.T) {
	st, drafts := newDraftFixture()
	post := seedPost(st, "p1")
	post.ReviewDraft = domain.JSONMap{"title": "Discarded"}
	st.instances["born"] = &domain.ModuleInstance{ID: "born", Scope: domain.ScopePost, Type: "text"}
	st.instances["kept"] = &domain.ModuleInstance{
		ID:            "kept",
		Scope:         domain.ScopeGlobal,
		Type:          "cta",
		ReviewProps:   domain.JSONMap{"x": float64(2)},
		AiReviewProps: domain.JSONMap{"x": float64(3)},
	}
	st.placements["added"] = &domain.PostModule{
		ID: "added", PostID: "p1", ModuleID: "born", ReviewAdded: true,
	}
	st.placements["edited"] = &domain.PostModule{
		ID: "edited", PostID: "p1", ModuleID: "kept", OrderIndex: 1,
		ReviewOverrides:   domain.JSONMap{"pad": float64(1)},
		AiReviewOverrides: domain.JSONMap{"pad": float64(2)},
		AiReviewDeleted:   true,
	}

	require.NoError(t, drafts.RejectDraft("p1", "editor-1", domain.TierReview))

	got := st.posts["p1"]
	assert.Nil(t, got.ReviewDraft)

	assert.NotContains(t, st.placements, "added", "a placement born in the rejected tier vanishes")
	assert.NotContains(t, st.instances, "born")

	edited := st.placements["edited"]
	assert.Nil(t, edited.ReviewOverrides)
	assert.Equal(t, float64(2), edited.AiReviewOverrides["pad"], "the other tier's staging survives")
	assert.True(t, edited.AiReviewDeleted, "the other tier's deleted flag survives")

	kept := st.instances["kept"]
	assert.Nil(t, kept.ReviewProps)
	assert.Equal(t, float64(3), kept.AiReviewProps["x"])

	// The snapshot holds the state from before the rejection
	require.Len(t, st.revisions, 1)
	rev := st.revisions[0]
	assert.Equal(t, domain.ActionRejectReview, rev.Action)
	postSnap, ok := rev.Snapshot["post"].(map[string]interface{})
	require.True(t, ok)
	draftSnap, ok := postSnap["reviewDraft"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Discarded", draftSnap["title"])
}

func TestRejectAiReviewDraftLeavesReviewAlone(t *testing.T) {
	st, drafts := newDraftFixture()
	post := seedPost(st, "p1")
	post.ReviewDraft = domain.JSONMap{"title": "Human"}
	post.AiReviewDraft = domain.JSONMap{"title": "Agent"}

	require.NoError(t, drafts.RejectDraft("p1", "editor-1", domain.TierAiReview))

	got := st.posts["p1"]
	assert.Nil(t, got.AiReviewDraft)
	require.NotNil(t, got.ReviewDraft)
	assert.Equal(t, "Human", got.ReviewDraft["title"])
	require.Len(t, st.revisions, 1)
	assert.Equal(t, domain.ActionRejectAiReview, st.revisions[0].Action)
}

func TestRejectClearsStagedPropsOfInstanceBehindRemovedPlacement(t *testing.T) {
	st, drafts := newDraftFixture()
	seedPost(st, "p1")
	st.instances["shared"] = &domain.ModuleInstance{
		ID:          "shared",
		Scope:       domain.ScopeGlobal,
		Type:        "cta",
		Props:       domain.JSONMap{"x": float64(1)},
		ReviewProps: domain.JSONMap{"x": float64(2)},
	}
	// The only reference to the global instance is a placement born in the
	// rejected tier.
	st.placements["added"] = &domain.PostModule{
		ID: "added", PostID: "p1", ModuleID: "shared", ReviewAdded: true,
	}

	require.NoError(t, drafts.RejectDraft("p1", "editor-1", domain.TierReview))

	assert.NotContains(t, st.placements, "added")
	inst, ok := st.instances["shared"]
	require.True(t, ok, "global instance survives its placement")
	assert.Nil(t, inst.ReviewProps, "the rejected tier's staged props go with the rejection")
	assert.Equal(t, float64(1), inst.Props["x"])
}

func TestRejectInvalidTier(t *testing.T) {
	st, drafts := newDraftFixture()
	seedPost(st, "p1")
	err := drafts.RejectDraft("p1", "editor-1", domain.DraftTier("source"))
	assert.ErrorIs(t, err, common.ErrInvalidTier)
	assert.Empty(t, st.revisions)
}
