package models

import (
	"time"

	"gorm.io/gorm"
)

// Blog post statuses
const (
	BlogStatusDraft     = "draft"
	BlogStatusPublished = "published"
	BlogStatusArchived  = "archived"
)

// BlogPost represents an article rendered on the public site
type BlogPost struct {
	gorm.Model
	Title         string `gorm:"not null" json:"title"`
	Slug          string `gorm:"not null;uniqueIndex" json:"slug"` // URL key
	Excerpt       string `json:"excerpt"`
	Body          string `gorm:"type:text" json:"body"`
	FeaturedImage string `json:"featured_image"`

	Status   string `gorm:"default:'draft';index" json:"status"` // draft, published, archived
	Category string `gorm:"index" json:"category"`

	AuthorName     string `json:"author_name"`
	SEOTitle       string `json:"seo_title"`
	SEODescription string `json:"seo_description"`

	// Set once, on the first transition to published. Later status flips leave
	// it untouched so a post that was once live keeps its original publish date.
	PublishedAt *time.Time `json:"published_at"`

	// Bumped on each public read, best-effort and not atomic
	ViewCount int `gorm:"default:0" json:"view_count"`

	// Relations
	Tags []BlogTag `gorm:"foreignKey:BlogPostID" json:"tags,omitempty"`
}

// BlogTag represents tags for posts (normalized)
type BlogTag struct {
	gorm.Model
	BlogPostID uint   `gorm:"not null;index" json:"blog_post_id"`
	Tag        string `gorm:"not null;index" json:"tag"`
}

// TagNames flattens the tag rows into plain strings for API responses.
func (p *BlogPost) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Tag)
	}
	return names
}

// ValidBlogStatus reports whether s is one of the known post statuses.
func ValidBlogStatus(s string) bool {
	switch s {
	case BlogStatusDraft, BlogStatusPublished, BlogStatusArchived:
		return true
	}
	return false
}
