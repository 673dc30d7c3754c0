package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pagemill/pagemill-backend/internal/common"
	"github.com/pagemill/pagemill-backend/internal/domain"
	"github.com/pagemill/pagemill-backend/internal/repository"
	"github.com/rs/zerolog"
)

const defaultLocale = "en"

// PostService business logic for posts. Also implements FieldPatcher for the
// promotion engines.
type PostService interface {
	FieldPatcher

	GetPost(id string) (*domain.Post, error)
	ListPosts(postType, locale string, status domain.PostStatus, page, limit int) ([]*domain.Post, *common.Meta, error)
	CreatePost(req *domain.CreatePostRequest) (*domain.Post, error)
	// UpdatePost applies a field patch directly to the live post, same rules
	// as a draft promotion's field merge
	UpdatePost(id string, patch domain.JSONMap) (*domain.Post, error)
	DeletePost(id string) error
	// DuplicatePost clones a post with its placements. Post-owned module
	// instances are forked into fresh instances; global ones are
	// re-referenced, never copied.
	DuplicatePost(id string) (*domain.Post, error)
}

type postService struct {
	store repository.Store
	repo  repository.PostRepository
	log   zerolog.Logger
}

// NewPostService creates a new PostService
func NewPostService(store repository.Store, repo repository.PostRepository, log zerolog.Logger) PostService {
	return &postService{
		store: store,
		repo:  repo,
		log:   log.With().Str("component", "post_service").Logger(),
	}
}

func (s *postService) GetPost(id string) (*domain.Post, error) {
	post, err := s.repo.FindByID(id)
	if err != nil {
		return nil, common.ErrPostNotFound
	}
	return post, nil
}

func (s *postService) ListPosts(postType, locale string, status domain.PostStatus, page, limit int) ([]*domain.Post, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	posts, total, err := s.repo.List(postType, locale, status, page, limit)
	if err != nil {
		return nil, nil, err
	}
	meta := &common.Meta{Page: page, Limit: limit, Total: total}
	return posts, meta, nil
}

func (s *postService) CreatePost(req *domain.CreatePostRequest) (*domain.Post, error) {
	post := &domain.Post{
		Type:            req.Type,
		Locale:          req.Locale,
		Title:           req.Title,
		Excerpt:         req.Excerpt,
		ParentID:        req.ParentID,
		FeaturedImageID: req.FeaturedImageID,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
	}
	if post.Type == "" {
		post.Type = "page"
	}
	if post.Locale == "" {
		post.Locale = defaultLocale
	}
	if req.Status != "" {
		post.Status = domain.PostStatus(req.Status)
	} else {
		post.Status = domain.StatusDraft
	}
	slug := req.Slug
	if slug == "" {
		slug = req.Title
	}

	err := s.store.InTx(func(tx repository.Store) error {
		unique, err := s.uniqueSlug(tx, post.Type, post.Locale, slugify(slug), "")
		if err != nil {
			return err
		}
		post.Slug = unique
		post.CanonicalURL = strptr(canonicalPath(post.Locale, post.Slug))
		return tx.CreatePost(post)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) UpdatePost(id string, patch domain.JSONMap) (*domain.Post, error) {
	var post *domain.Post
	err := s.store.InTx(func(tx repository.Store) error {
		p, err := tx.GetPostForUpdate(id)
		if err != nil {
			return mapNotFound(err)
		}
		if err := s.ApplyDraftFields(tx, p, patch); err != nil {
			return err
		}
		if err := tx.SavePost(p); err != nil {
			return err
		}
		post = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) DeletePost(id string) error {
	return s.repo.Delete(id)
}

func (s *postService) DuplicatePost(id string) (*domain.Post, error) {
	var copy *domain.Post
	err := s.store.InTx(func(tx repository.Store) error {
		src, err := tx.GetPost(id)
		if err != nil {
			return mapNotFound(err)
		}
		placements, err := tx.ListPlacements(src.ID)
		if err != nil {
			return err
		}

		dup := *src
		dup.ID = ""
		dup.Title = src.Title + " (Copy)"
		dup.Status = domain.StatusDraft
		dup.ReviewDraft = nil
		dup.AiReviewDraft = nil
		dup.PublishedAt = nil
		slug, err := s.uniqueSlug(tx, src.Type, src.Locale, src.Slug+"-copy", "")
		if err != nil {
			return err
		}
		dup.Slug = slug
		dup.CanonicalURL = strptr(canonicalPath(dup.Locale, dup.Slug))
		if err := tx.CreatePost(&dup); err != nil {
			return err
		}

		for _, pm := range placements {
			moduleID := pm.ModuleID
			if inst := pm.Module; inst != nil && inst.Scope == domain.ScopePost {
				// Fork the owned instance; the copy gets its own lifecycle.
				fork := &domain.ModuleInstance{
					Scope: domain.ScopePost,
					Type:  inst.Type,
					Props: cloneMap(inst.Props),
				}
				if err := tx.CreateModuleInstance(fork); err != nil {
					return err
				}
				moduleID = fork.ID
			}
			newPM := &domain.PostModule{
				PostID:     dup.ID,
				ModuleID:   moduleID,
				OrderIndex: pm.OrderIndex,
				Overrides:  cloneMap(pm.Overrides),
				Locked:     pm.Locked,
				AdminLabel: pm.AdminLabel,
			}
			if err := tx.CreatePlacement(newPM); err != nil {
				return err
			}
		}
		copy = &dup
		return nil
	})
	if err != nil {
		return nil, err
	}
	return copy, nil
}

// ApplyDraftFields merges a field patch onto the live post. A key being
// absent leaves the field alone; an explicit null or empty string clears
// nullable fields. Does not save; the caller owns the write.
func (s *postService) ApplyDraftFields(tx repository.Store, post *domain.Post, patch domain.JSONMap) error {
	if v, ok := domain.DraftString(patch, "title"); ok && v != "" {
		post.Title = v
	}
	if v, ok := domain.DraftString(patch, "status"); ok && v != "" {
		status := domain.PostStatus(v)
		post.Status = status
		if status == domain.StatusPublished && post.PublishedAt == nil {
			now := time.Now().UTC()
			post.PublishedAt = &now
		}
	}
	if v, ok := domain.DraftString(patch, "locale"); ok && v != "" {
		post.Locale = v
	}

	post.Excerpt = patchNullable(patch, "excerpt", post.Excerpt)
	post.FeaturedImageID = patchNullable(patch, "featuredImageId", post.FeaturedImageID)
	post.MetaTitle = patchNullable(patch, "metaTitle", post.MetaTitle)
	post.MetaDescription = patchNullable(patch, "metaDescription", post.MetaDescription)

	post.ParentID = patchNullable(patch, "parentId", post.ParentID)
	if post.ParentID != nil && *post.ParentID == post.ID {
		// A post can never parent itself.
		post.ParentID = nil
	}

	if v, ok := domain.DraftString(patch, "slug"); ok && v != "" {
		slug := slugify(v)
		if slug != post.Slug {
			unique, err := s.uniqueSlug(tx, post.Type, post.Locale, slug, post.ID)
			if err != nil {
				return err
			}
			oldPath := canonicalPath(post.Locale, post.Slug)
			post.Slug = unique
			newPath := canonicalPath(post.Locale, post.Slug)
			if post.Status == domain.StatusPublished && oldPath != newPath {
				if err := tx.UpsertRedirect(oldPath, newPath, 301); err != nil {
					return err
				}
			}
		}
	}
	post.CanonicalURL = strptr(canonicalPath(post.Locale, post.Slug))
	return nil
}

// uniqueSlug suffixes -2, -3, ... until the slug is free within (type, locale)
func (s *postService) uniqueSlug(tx repository.Store, postType, locale, slug, excludeID string) (string, error) {
	candidate := slug
	for i := 2; ; i++ {
		taken, err := tx.SlugExists(postType, locale, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", slug, i)
	}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = slugStrip.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// canonicalPath builds the public path; the default locale has no prefix
func canonicalPath(locale, slug string) string {
	if locale == "" || locale == defaultLocale {
		return "/" + slug
	}
	return "/" + locale + "/" + slug
}

// patchNullable reads a nullable string field from the patch: absent keeps
// current, explicit null or empty string clears, anything else sets.
func patchNullable(patch domain.JSONMap, key string, current *string) *string {
	v, ok := domain.DraftField(patch, key)
	if !ok {
		return current
	}
	s, isStr := v.(string)
	if v == nil || (isStr && s == "") {
		return nil
	}
	if isStr {
		return &s
	}
	return current
}

func cloneMap(m domain.JSONMap) domain.JSONMap {
	if m == nil {
		return nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	var out domain.JSONMap
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func strptr(s string) *string { return &s }
