package service

import (
	"testing"

	"github.com/pagemill/pagemill-backend/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostFixture() (*fakeStore, PostService) {
	st := newFakeStore()
	return st, NewPostService(st, nil, zerolog.Nop())
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":      "hello-world",
		"  Spaces  ":       "spaces",
		"Ünïcode & stuff!": "n-code-stuff",
		"already-clean":    "already-clean",
		"UPPER_case.path":  "upper-case-path",
	}
	for in, want := range cases {
		assert.Equal(t, want, slugify(in), "slugify(%q)", in)
	}
}

func TestCanonicalPath(t *testing.T) {
	assert.Equal(t, "/about", canonicalPath("en", "about"))
	assert.Equal(t, "/about", canonicalPath("", "about"))
	assert.Equal(t, "/de/ueber-uns", canonicalPath("de", "ueber-uns"))
}

func TestCreatePostSuffixesTakenSlug(t *testing.T) {
	st, posts := newPostFixture()
	st.posts["p1"] = &domain.Post{ID: "p1", Type: "page", Locale: "en", Slug: "about"}
	st.posts["p2"] = &domain.Post{ID: "p2", Type: "page", Locale: "en", Slug: "about-2"}

	created, err := posts.CreatePost(&domain.CreatePostRequest{Title: "About"})
	require.NoError(t, err)
	assert.Equal(t, "about-3", created.Slug)
	require.NotNil(t, created.CanonicalURL)
	assert.Equal(t, "/about-3", *created.CanonicalURL)
	assert.Equal(t, domain.StatusDraft, created.Status)
}

func TestCreatePostSameSlugDifferentLocale(t *testing.T) {
	st, posts := newPostFixture()
	st.posts["p1"] = &domain.Post{ID: "p1", Type: "page", Locale: "en", Slug: "about"}

	created, err := posts.CreatePost(&domain.CreatePostRequest{Title: "About", Locale: "de"})
	require.NoError(t, err)
	assert.Equal(t, "about", created.Slug, "slug uniqueness is scoped to (type, locale)")
}

func TestApplyDraftFieldsNullable(t *testing.T) {
	st, posts := newPostFixture()
	excerpt := "old"
	p := &domain.Post{ID: "p1", Type: "page", Locale: "en", Slug: "home", Excerpt: &excerpt}
	st.posts["p1"] = p

	svc := posts.(*postService)

	// Absent key keeps the current value
	require.NoError(t, svc.ApplyDraftFields(st, p, domain.JSONMap{"title": "T"}))
	require.NotNil(t, p.Excerpt)
	assert.Equal(t, "old", *p.Excerpt)

	// Explicit null clears
	require.NoError(t, svc.ApplyDraftFields(st, p, domain.JSONMap{"excerpt": nil}))
	assert.Nil(t, p.Excerpt)

	// Empty string clears too
	meta := "m"
	p.MetaTitle = &meta
	require.NoError(t, svc.ApplyDraftFields(st, p, domain.JSONMap{"metaTitle": ""}))
	assert.Nil(t, p.MetaTitle)
}

func TestApplyDraftFieldsSelfParent(t *testing.T) {
	st, posts := newPostFixture()
	p := &domain.Post{ID: "p1", Type: "page", Locale: "en", Slug: "home"}
	st.posts["p1"] = p

	svc := posts.(*postService)
	require.NoError(t, svc.ApplyDraftFields(st, p, domain.JSONMap{"parentId": "p1"}))
	assert.Nil(t, p.ParentID)
}

func TestApplyDraftFieldsSlugChangeCreatesRedirect(t *testing.T) {
	st, posts := newPostFixture()
	p := &domain.Post{
		ID: "p1", Type: "page", Locale: "en", Slug: "old-slug",
		Status: domain.StatusPublished,
	}
	st.posts["p1"] = p

	svc := posts.(*postService)
	require.NoError(t, svc.ApplyDraftFields(st, p, domain.JSONMap{"slug": "New Slug"}))

	assert.Equal(t, "new-slug", p.Slug)
	assert.Equal(t, "/new-slug", st.redirects["/old-slug"])
	require.NotNil(t, p.CanonicalURL)
	assert.Equal(t, "/new-slug", *p.CanonicalURL)
}

func TestApplyDraftFieldsSlugChangeUnpublishedNoRedirect(t *testing.T) {
	st, posts := newPostFixture()
	p := &domain.Post{ID: "p1", Type: "page", Locale: "en", Slug: "old", Status: domain.StatusDraft}
	st.posts["p1"] = p

	svc := posts.(*postService)
	require.NoError(t, svc.ApplyDraftFields(st, p, domain.JSONMap{"slug": "new"}))
	assert.Empty(t, st.redirects)
}

func TestApplyDraftFieldsPublishSetsTimestamp(t *testing.T) {
	st, posts := newPostFixture()
	p := &domain.Post{ID: "p1", Type: "page", Locale: "en", Slug: "home", Status: domain.StatusDraft}
	st.posts["p1"] = p

	svc := posts.(*postService)
	require.NoError(t, svc.ApplyDraftFields(st, p, domain.JSONMap{"status": "published"}))
	assert.Equal(t, domain.StatusPublished, p.Status)
	require.NotNil(t, p.PublishedAt)

	// A second publish keeps the original timestamp
	first := *p.PublishedAt
	require.NoError(t, svc.ApplyDraftFields(st, p, domain.JSONMap{"status": "published"}))
	assert.Equal(t, first, *p.PublishedAt)
}

func TestDuplicatePostForksOwnedInstances(t *testing.T) {
	st, posts := newPostFixture()
	st.posts["p1"] = &domain.Post{
		ID: "p1", Type: "page", Locale: "en", Slug: "home", Title: "Home",
		Status:      domain.StatusPublished,
		ReviewDraft: domain.JSONMap{"title": "pending"},
	}
	st.instances["owned"] = &domain.ModuleInstance{
		ID: "owned", Scope: domain.ScopePost, Type: "hero",
		Props: domain.JSONMap{"a": float64(1)},
	}
	st.instances["shared"] = &domain.ModuleInstance{ID: "shared", Scope: domain.ScopeGlobal, Type: "cta"}
	st.placements["pm1"] = &domain.PostModule{ID: "pm1", PostID: "p1", ModuleID: "owned"}
	st.placements["pm2"] = &domain.PostModule{ID: "pm2", PostID: "p1", ModuleID: "shared", OrderIndex: 1}

	dup, err := posts.DuplicatePost("p1")
	require.NoError(t, err)

	assert.Equal(t, "Home (Copy)", dup.Title)
	assert.Equal(t, "home-copy", dup.Slug)
	assert.Equal(t, domain.StatusDraft, dup.Status)
	assert.Nil(t, dup.ReviewDraft, "staging never carries over to the copy")

	dupPlacements, err := st.ListPlacements(dup.ID)
	require.NoError(t, err)
	require.Len(t, dupPlacements, 2)

	forked := dupPlacements[0]
	assert.NotEqual(t, "owned", forked.ModuleID, "post-owned instance is forked")
	require.NotNil(t, forked.Module)
	assert.Equal(t, float64(1), forked.Module.Props["a"])

	assert.Equal(t, "shared", dupPlacements[1].ModuleID, "global instance is re-referenced")

	// Forking must not alias the original's props
	forked.Module.Props["a"] = float64(99)
	assert.Equal(t, float64(1), st.instances["owned"].Props["a"])
}
