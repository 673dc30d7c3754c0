package service

import (
	"testing"

	"github.com/pagemill/pagemill-backend/internal/common"
	"github.com/pagemill/pagemill-backend/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModuleFixture() (*fakeStore, ModuleService) {
	st := newFakeStore()
	return st, NewModuleService(st, zerolog.Nop())
}

func TestAddModulePostScopedCreatesOwnedInstance(t *testing.T) {
	st, modules := newModuleFixture()
	seedPost(st, "p1")

	pm, err := modules.AddModule("p1", domain.TierReview, &domain.AddModuleRequest{
		Scope: "post",
		Type:  "hero",
		Props: domain.JSONMap{"a": float64(1)},
	})
	require.NoError(t, err)

	assert.True(t, pm.ReviewAdded)
	assert.False(t, pm.AiReviewAdded)
	inst, ok := st.instances[pm.ModuleID]
	require.True(t, ok, "a post-scoped add creates its own instance")
	assert.Equal(t, domain.ScopePost, inst.Scope)
	assert.Equal(t, float64(1), inst.Props["a"])
}

func TestAddModuleGlobalReferencesExisting(t *testing.T) {
	st, modules := newModuleFixture()
	seedPost(st, "p1")
	st.instances["shared"] = &domain.ModuleInstance{ID: "shared", Scope: domain.ScopeGlobal, Type: "cta"}

	pm, err := modules.AddModule("p1", domain.TierAiReview, &domain.AddModuleRequest{
		Scope:    "global",
		ModuleID: "shared",
	})
	require.NoError(t, err)

	assert.Equal(t, "shared", pm.ModuleID)
	assert.True(t, pm.AiReviewAdded)
	assert.Len(t, st.instances, 1, "a global add never copies the instance")
}

func TestAddModuleGlobalMissingInstance(t *testing.T) {
	st, modules := newModuleFixture()
	seedPost(st, "p1")

	_, err := modules.AddModule("p1", domain.TierReview, &domain.AddModuleRequest{
		Scope:    "global",
		ModuleID: "nope",
	})
	assert.ErrorIs(t, err, common.ErrModuleNotFound)
}

func TestStagePropsAccumulates(t *testing.T) {
	st, modules := newModuleFixture()
	st.instances["i1"] = &domain.ModuleInstance{
		ID: "i1", Scope: domain.ScopeGlobal, Type: "hero",
		Props: domain.JSONMap{"a": float64(1)},
	}

	require.NoError(t, modules.StageProps("i1", domain.TierReview, domain.JSONMap{"b": float64(2)}))
	require.NoError(t, modules.StageProps("i1", domain.TierReview, domain.JSONMap{"c": float64(3)}))

	inst := st.instances["i1"]
	assert.Equal(t, float64(2), inst.ReviewProps["b"])
	assert.Equal(t, float64(3), inst.ReviewProps["c"])
	assert.Equal(t, float64(1), inst.Props["a"], "staging never touches live props")
	assert.Nil(t, inst.AiReviewProps)
}

func TestStageOverridesPerTier(t *testing.T) {
	st, modules := newModuleFixture()
	st.placements["pm1"] = &domain.PostModule{ID: "pm1", PostID: "p1", ModuleID: "i1"}

	require.NoError(t, modules.StageOverrides("pm1", domain.TierReview, domain.JSONMap{"pad": float64(1)}))
	require.NoError(t, modules.StageOverrides("pm1", domain.TierAiReview, domain.JSONMap{"pad": float64(2)}))

	pm := st.placements["pm1"]
	assert.Equal(t, float64(1), pm.ReviewOverrides["pad"])
	assert.Equal(t, float64(2), pm.AiReviewOverrides["pad"])
	assert.Nil(t, pm.Overrides)
}

func TestMarkDeletedLockedPlacement(t *testing.T) {
	st, modules := newModuleFixture()
	st.placements["pm1"] = &domain.PostModule{ID: "pm1", PostID: "p1", ModuleID: "i1", Locked: true}

	err := modules.MarkDeleted("pm1", domain.TierReview)
	assert.ErrorIs(t, err, common.ErrPlacementLocked)
	assert.False(t, st.placements["pm1"].ReviewDeleted)
}

func TestReorder(t *testing.T) {
	st, modules := newModuleFixture()
	st.placements["a"] = &domain.PostModule{ID: "a", PostID: "p1", ModuleID: "i1", OrderIndex: 0}
	st.placements["b"] = &domain.PostModule{ID: "b", PostID: "p1", ModuleID: "i2", OrderIndex: 1}

	require.NoError(t, modules.Reorder("p1", []string{"b", "a"}))
	assert.Equal(t, 1, st.placements["a"].OrderIndex)
	assert.Equal(t, 0, st.placements["b"].OrderIndex)
}

func TestReorderLockedPlacementRefuses(t *testing.T) {
	st, modules := newModuleFixture()
	st.placements["a"] = &domain.PostModule{ID: "a", PostID: "p1", ModuleID: "i1", OrderIndex: 0, Locked: true}
	st.placements["b"] = &domain.PostModule{ID: "b", PostID: "p1", ModuleID: "i2", OrderIndex: 1}

	err := modules.Reorder("p1", []string{"b", "a"})
	assert.ErrorIs(t, err, common.ErrPlacementLocked)
}
