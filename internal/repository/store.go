package repository

import (
	"github.com/pagemill/pagemill-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store bundles the row operations the promotion and rejection engines run.
// InTx hands the callback a Store bound to one transaction; every engine
// mutation goes through that bound Store so the whole operation commits or
// rolls back as a unit.
type Store interface {
	InTx(fn func(Store) error) error

	GetPost(id string) (*domain.Post, error)
	// GetPostForUpdate locks the post row until the surrounding transaction
	// ends, serializing concurrent promotions of the same post.
	GetPostForUpdate(id string) (*domain.Post, error)
	CreatePost(p *domain.Post) error
	SavePost(p *domain.Post) error
	SlugExists(postType, locale, slug, excludeID string) (bool, error)

	ListPlacements(postID string) ([]*domain.PostModule, error)
	GetPlacement(id string) (*domain.PostModule, error)
	GetPlacementByModule(postID, moduleID string) (*domain.PostModule, error)
	CreatePlacement(pm *domain.PostModule) error
	SavePlacement(pm *domain.PostModule) error
	DeletePlacement(id string) error

	GetModuleInstance(id string) (*domain.ModuleInstance, error)
	CreateModuleInstance(m *domain.ModuleInstance) error
	SaveModuleInstance(m *domain.ModuleInstance) error
	DeleteModuleInstance(id string) error

	UpsertCustomField(postID, fieldSlug string, value domain.JSONMap) error
	ReplaceTermAssignments(postID string, termIDs []string) error
	UpsertRedirect(fromPath, toPath string, status int) error
	CreateRevision(rev *domain.Revision) error
}

type store struct {
	db *gorm.DB
}

// NewStore creates the GORM-backed Store
func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) InTx(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	})
}

func (s *store) GetPost(id string) (*domain.Post, error) {
	var post domain.Post
	if err := s.db.Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *store) GetPostForUpdate(id string) (*domain.Post, error) {
	var post domain.Post
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *store) CreatePost(p *domain.Post) error {
	return s.db.Create(p).Error
}

func (s *store) SavePost(p *domain.Post) error {
	return s.db.Save(p).Error
}

func (s *store) SlugExists(postType, locale, slug, excludeID string) (bool, error) {
	var count int64
	q := s.db.Model(&domain.Post{}).
		Where("type = ? AND locale = ? AND slug = ?", postType, locale, slug)
	if excludeID != "" {
		q = q.Where("id != ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *store) ListPlacements(postID string) ([]*domain.PostModule, error) {
	var placements []*domain.PostModule
	err := s.db.Preload("Module").
		Where("post_id = ?", postID).
		Order("order_index ASC").
		Find(&placements).Error
	return placements, err
}

func (s *store) GetPlacement(id string) (*domain.PostModule, error) {
	var pm domain.PostModule
	if err := s.db.Preload("Module").Where("id = ?", id).First(&pm).Error; err != nil {
		return nil, err
	}
	return &pm, nil
}

func (s *store) GetPlacementByModule(postID, moduleID string) (*domain.PostModule, error) {
	var pm domain.PostModule
	err := s.db.Where("post_id = ? AND module_id = ?", postID, moduleID).First(&pm).Error
	if err != nil {
		return nil, err
	}
	return &pm, nil
}

func (s *store) CreatePlacement(pm *domain.PostModule) error {
	return s.db.Omit("Module").Create(pm).Error
}

func (s *store) SavePlacement(pm *domain.PostModule) error {
	// Omit the association so saving a placement never writes the shared
	// module instance row through the foreign key.
	return s.db.Omit("Module").Save(pm).Error
}

func (s *store) DeletePlacement(id string) error {
	return s.db.Delete(&domain.PostModule{}, "id = ?", id).Error
}

func (s *store) GetModuleInstance(id string) (*domain.ModuleInstance, error) {
	var m domain.ModuleInstance
	if err := s.db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *store) CreateModuleInstance(m *domain.ModuleInstance) error {
	return s.db.Create(m).Error
}

func (s *store) SaveModuleInstance(m *domain.ModuleInstance) error {
	return s.db.Save(m).Error
}

func (s *store) DeleteModuleInstance(id string) error {
	return s.db.Delete(&domain.ModuleInstance{}, "id = ?", id).Error
}

func (s *store) UpsertCustomField(postID, fieldSlug string, value domain.JSONMap) error {
	field := domain.PostCustomField{
		PostID:    postID,
		FieldSlug: fieldSlug,
		Value:     value,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "field_slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&field).Error
}

func (s *store) ReplaceTermAssignments(postID string, termIDs []string) error {
	if err := s.db.Delete(&domain.PostTerm{}, "post_id = ?", postID).Error; err != nil {
		return err
	}
	if len(termIDs) == 0 {
		return nil
	}
	rows := make([]domain.PostTerm, 0, len(termIDs))
	for _, termID := range termIDs {
		rows = append(rows, domain.PostTerm{PostID: postID, TermID: termID})
	}
	return s.db.Create(&rows).Error
}

func (s *store) UpsertRedirect(fromPath, toPath string, status int) error {
	redirect := domain.Redirect{
		FromPath: fromPath,
		ToPath:   toPath,
		Status:   status,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "from_path"}},
		DoUpdates: clause.AssignmentColumns([]string{"to_path", "status", "updated_at"}),
	}).Create(&redirect).Error
}

func (s *store) CreateRevision(rev *domain.Revision) error {
	return s.db.Create(rev).Error
}
