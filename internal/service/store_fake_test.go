package service

import (
	"fmt"
	"sort"

	"github.com/pagemill/pagemill-backend/internal/domain"
	"github.com/pagemill/pagemill-backend/internal/repository"
	"gorm.io/gorm"
)

// fakeStore is an in-memory Store. Getters hand out copies, so a mutation is
// only visible after the matching Save call, same as a real row read.
type fakeStore struct {
	posts        map[string]*domain.Post
	placements   map[string]*domain.PostModule
	instances    map[string]*domain.ModuleInstance
	revisions    []*domain.Revision
	customFields map[string]domain.JSONMap
	terms        map[string][]string
	redirects    map[string]string
	seq          int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		posts:        make(map[string]*domain.Post),
		placements:   make(map[string]*domain.PostModule),
		instances:    make(map[string]*domain.ModuleInstance),
		customFields: make(map[string]domain.JSONMap),
		terms:        make(map[string][]string),
		redirects:    make(map[string]string),
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) InTx(fn func(repository.Store) error) error {
	return fn(f)
}

func (f *fakeStore) GetPost(id string) (*domain.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakeStore) GetPostForUpdate(id string) (*domain.Post, error) {
	return f.GetPost(id)
}

func (f *fakeStore) CreatePost(p *domain.Post) error {
	if p.ID == "" {
		p.ID = f.nextID("post")
	}
	c := *p
	f.posts[p.ID] = &c
	return nil
}

func (f *fakeStore) SavePost(p *domain.Post) error {
	c := *p
	f.posts[p.ID] = &c
	return nil
}

func (f *fakeStore) SlugExists(postType, locale, slug, excludeID string) (bool, error) {
	for _, p := range f.posts {
		if p.Type == postType && p.Locale == locale && p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListPlacements(postID string) ([]*domain.PostModule, error) {
	var out []*domain.PostModule
	for _, pm := range f.placements {
		if pm.PostID != postID {
			continue
		}
		c := *pm
		if inst, ok := f.instances[c.ModuleID]; ok {
			ic := *inst
			c.Module = &ic
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (f *fakeStore) GetPlacement(id string) (*domain.PostModule, error) {
	pm, ok := f.placements[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *pm
	if inst, ok := f.instances[c.ModuleID]; ok {
		ic := *inst
		c.Module = &ic
	}
	return &c, nil
}

func (f *fakeStore) GetPlacementByModule(postID, moduleID string) (*domain.PostModule, error) {
	for _, pm := range f.placements {
		if pm.PostID == postID && pm.ModuleID == moduleID {
			c := *pm
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) CreatePlacement(pm *domain.PostModule) error {
	if pm.ID == "" {
		pm.ID = f.nextID("pm")
	}
	c := *pm
	c.Module = nil
	f.placements[pm.ID] = &c
	return nil
}

func (f *fakeStore) SavePlacement(pm *domain.PostModule) error {
	c := *pm
	c.Module = nil
	f.placements[pm.ID] = &c
	return nil
}

func (f *fakeStore) DeletePlacement(id string) error {
	delete(f.placements, id)
	return nil
}

func (f *fakeStore) GetModuleInstance(id string) (*domain.ModuleInstance, error) {
	m, ok := f.instances[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *m
	return &c, nil
}

func (f *fakeStore) CreateModuleInstance(m *domain.ModuleInstance) error {
	if m.ID == "" {
		m.ID = f.nextID("inst")
	}
	c := *m
	f.instances[m.ID] = &c
	return nil
}

func (f *fakeStore) SaveModuleInstance(m *domain.ModuleInstance) error {
	c := *m
	f.instances[m.ID] = &c
	return nil
}

func (f *fakeStore) DeleteModuleInstance(id string) error {
	delete(f.instances, id)
	return nil
}

func (f *fakeStore) UpsertCustomField(postID, fieldSlug string, value domain.JSONMap) error {
	f.customFields[postID+"|"+fieldSlug] = value
	return nil
}

func (f *fakeStore) ReplaceTermAssignments(postID string, termIDs []string) error {
	f.terms[postID] = termIDs
	return nil
}

func (f *fakeStore) UpsertRedirect(fromPath, toPath string, status int) error {
	f.redirects[fromPath] = toPath
	return nil
}

func (f *fakeStore) CreateRevision(rev *domain.Revision) error {
	f.seq++
	rev.ID = uint64(f.seq)
	c := *rev
	f.revisions = append(f.revisions, &c)
	return nil
}
