package repository

import (
	"github.com/pagemill/pagemill-backend/internal/domain"
	"gorm.io/gorm"
)

// RevisionRepository revision snapshot data access
type RevisionRepository interface {
	Create(revision *domain.Revision) error
	FindByPostID(postID string, limit int) ([]*domain.Revision, error)
	FindByID(id uint64) (*domain.Revision, error)
}

type revisionRepository struct {
	db *gorm.DB
}

// NewRevisionRepository creates a new RevisionRepository
func NewRevisionRepository(db *gorm.DB) RevisionRepository {
	return &revisionRepository{db: db}
}

func (r *revisionRepository) Create(revision *domain.Revision) error {
	return r.db.Create(revision).Error
}

func (r *revisionRepository) FindByPostID(postID string, limit int) ([]*domain.Revision, error) {
	var revisions []*domain.Revision
	q := r.db.Where("post_id = ?", postID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&revisions).Error
	return revisions, err
}

func (r *revisionRepository) FindByID(id uint64) (*domain.Revision, error) {
	var revision domain.Revision
	err := r.db.Where("id = ?", id).First(&revision).Error
	return &revision, err
}
