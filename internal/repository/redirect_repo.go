package repository

import (
	"github.com/pagemill/pagemill-backend/internal/domain"
	"gorm.io/gorm"
)

// RedirectRepository stored-redirect data access
type RedirectRepository interface {
	FindByFromPath(fromPath string) (*domain.Redirect, error)
	List(page, limit int) ([]*domain.Redirect, int64, error)
	Delete(id uint64) error
}

type redirectRepository struct {
	db *gorm.DB
}

// NewRedirectRepository creates a new RedirectRepository
func NewRedirectRepository(db *gorm.DB) RedirectRepository {
	return &redirectRepository{db: db}
}

func (r *redirectRepository) FindByFromPath(fromPath string) (*domain.Redirect, error) {
	var redirect domain.Redirect
	err := r.db.Where("from_path = ?", fromPath).First(&redirect).Error
	return &redirect, err
}

func (r *redirectRepository) List(page, limit int) ([]*domain.Redirect, int64, error) {
	var redirects []*domain.Redirect
	var total int64
	if err := r.db.Model(&domain.Redirect{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := r.db.Order("id DESC").Offset(offset).Limit(limit).Find(&redirects).Error
	return redirects, total, err
}

func (r *redirectRepository) Delete(id uint64) error {
	return r.db.Delete(&domain.Redirect{}, "id = ?", id).Error
}
