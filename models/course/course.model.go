package course

import "gorm.io/gorm"

// Course lifecycle states
const (
	CourseDraft    = "DRAFT"
	CourseActive   = "ACTIVE"
	CourseInactive = "INACTIVE"
)

// Course represents a learning course
type Course struct {
	gorm.Model
	Title        string `json:"title"`
	Description  string `json:"description"`
	Author       string `json:"author"`
	ThumbnailURL string `json:"thumbnail_url"`
	Status       string `json:"status" gorm:"default:'DRAFT'"`
	PriceCents   int64  `json:"price_cents" gorm:"default:0"`  // 0 means free enrollment

	// Gating policy
	RequireSequentialProgress bool `json:"require_sequential_progress" gorm:"default:false"`
	RequireFinalAssessment    bool `json:"require_final_assessment" gorm:"default:false"`

	IsPublished bool `json:"is_published" gorm:"default:false"`
	IsDeleted   bool `gorm:"default:false"`
}

// Module represents a section/module within a course
type Module struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"` // Module order in course
	IsDeleted   bool   `gorm:"default:false"`
}
