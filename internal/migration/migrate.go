package migration

import (
	"github.com/pagemill/pagemill-backend/internal/domain"
	"gorm.io/gorm"
)

// Run migrates the schema for all models
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Post{},
		&domain.PostCustomField{},
		&domain.ModuleInstance{},
		&domain.PostModule{},
		&domain.Revision{},
		&domain.TaxonomyTerm{},
		&domain.PostTerm{},
		&domain.Redirect{},
		&domain.AgentRun{},
	)
}
