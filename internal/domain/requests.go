package domain

// CreatePostRequest payload for creating a post
type CreatePostRequest struct {
	Type            string  `json:"type"`
	Locale          string  `json:"locale"`
	Slug            string  `json:"slug"`
	Title           string  `json:"title" binding:"required"`
	Status          string  `json:"status"`
	Excerpt         *string `json:"excerpt,omitempty"`
	ParentID        *string `json:"parent_id,omitempty"`
	FeaturedImageID *string `json:"featured_image_id,omitempty"`
	MetaTitle       *string `json:"meta_title,omitempty"`
	MetaDescription *string `json:"meta_description,omitempty"`
}

// AddModuleRequest payload for staging a new module placement into a tier
type AddModuleRequest struct {
	Type       string  `json:"type" binding:"required"`
	Scope      string  `json:"scope"`
	ModuleID   string  `json:"module_id,omitempty"`
	Props      JSONMap `json:"props,omitempty"`
	Overrides  JSONMap `json:"overrides,omitempty"`
	OrderIndex int     `json:"order_index"`
	AdminLabel *string `json:"admin_label,omitempty"`
}
