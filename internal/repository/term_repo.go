package repository

import (
	"github.com/pagemill/pagemill-backend/internal/domain"
	"gorm.io/gorm"
)

// TermRepository taxonomy term data access
type TermRepository interface {
	FindByID(id string) (*domain.TaxonomyTerm, error)
	ListByTaxonomy(taxonomy string) ([]*domain.TaxonomyTerm, error)
	ListForPost(postID string) ([]*domain.TaxonomyTerm, error)
	Create(term *domain.TaxonomyTerm) error
	Delete(id string) error
}

type termRepository struct {
	db *gorm.DB
}

// NewTermRepository creates a new TermRepository
func NewTermRepository(db *gorm.DB) TermRepository {
	return &termRepository{db: db}
}

func (r *termRepository) FindByID(id string) (*domain.TaxonomyTerm, error) {
	var term domain.TaxonomyTerm
	err := r.db.Where("id = ?", id).First(&term).Error
	return &term, err
}

func (r *termRepository) ListByTaxonomy(taxonomy string) ([]*domain.TaxonomyTerm, error) {
	var terms []*domain.TaxonomyTerm
	err := r.db.Where("taxonomy = ?", taxonomy).Order("name ASC").Find(&terms).Error
	return terms, err
}

func (r *termRepository) ListForPost(postID string) ([]*domain.TaxonomyTerm, error) {
	var terms []*domain.TaxonomyTerm
	err := r.db.
		Joins("JOIN post_terms ON post_terms.term_id = taxonomy_terms.id").
		Where("post_terms.post_id = ?", postID).
		Find(&terms).Error
	return terms, err
}

func (r *termRepository) Create(term *domain.TaxonomyTerm) error {
	return r.db.Create(term).Error
}

func (r *termRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.PostTerm{}, "term_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.TaxonomyTerm{}, "id = ?", id).Error
	})
}
