package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate represents an issued certificate for course completion.
// Certificates are invalidated, never physically deleted.
type Certificate struct {
	gorm.Model
	UserID            uint   `json:"user_id" gorm:"index;not null"`
	CourseID          uint   `json:"course_id" gorm:"index;not null"`
	EnrollmentID      uint   `json:"enrollment_id" gorm:"index;not null"`
	CertificateNumber string `json:"certificate_number" gorm:"unique"`

	IssuedAt   time.Time `json:"issued_at"`
	FinalScore *int      `json:"final_score"` // highest passing final-assessment score, nil when not required

	IsValid            bool   `json:"is_valid" gorm:"default:true"`
	InvalidationReason string `json:"invalidation_reason"`
	IsDeleted          bool   `gorm:"default:false"`
}
