package repository

import (
	"github.com/pagemill/pagemill-backend/internal/domain"
	"gorm.io/gorm"
)

// PostRepository post data access for the read/CRUD surfaces. The promotion
// engines use Store instead so their reads and writes share one transaction.
type PostRepository interface {
	FindByID(id string) (*domain.Post, error)
	FindBySlug(postType, locale, slug string) (*domain.Post, error)
	List(postType, locale string, status domain.PostStatus, page, limit int) ([]*domain.Post, int64, error)
	Create(post *domain.Post) error
	Update(post *domain.Post) error
	Delete(id string) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) FindByID(id string) (*domain.Post, error) {
	var post domain.Post
	err := r.db.Where("id = ?", id).First(&post).Error
	return &post, err
}

func (r *postRepository) FindBySlug(postType, locale, slug string) (*domain.Post, error) {
	var post domain.Post
	err := r.db.Where("type = ? AND locale = ? AND slug = ?", postType, locale, slug).
		First(&post).Error
	return &post, err
}

func (r *postRepository) List(postType, locale string, status domain.PostStatus, page, limit int) ([]*domain.Post, int64, error) {
	var posts []*domain.Post
	var total int64

	query := r.db.Model(&domain.Post{})
	if postType != "" {
		query = query.Where("type = ?", postType)
	}
	if locale != "" {
		query = query.Where("locale = ?", locale)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("updated_at DESC").Offset(offset).Limit(limit).Find(&posts).Error
	return posts, total, err
}

func (r *postRepository) Create(post *domain.Post) error {
	return r.db.Create(post).Error
}

func (r *postRepository) Update(post *domain.Post) error {
	return r.db.Save(post).Error
}

func (r *postRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.PostTerm{}, "post_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.PostCustomField{}, "post_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.PostModule{}, "post_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Post{}, "id = ?", id).Error
	})
}
