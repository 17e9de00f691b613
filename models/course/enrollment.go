package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment statuses. COMPLETED is terminal and reached only through
// progress aggregation; there is no reopen transition.
const (
	EnrollmentPaymentPending = "PAYMENT_PENDING"
	EnrollmentApproved       = "APPROVED"
	EnrollmentRejected       = "REJECTED"
	EnrollmentCompleted      = "COMPLETED"
)

// Enrollment tracks a user's enrollment in a course with progress
type Enrollment struct {
	gorm.Model
	UserID   uint   `json:"user_id" gorm:"index;not null"`
	CourseID uint   `json:"course_id" gorm:"index;not null"`
	Status   string `json:"status" gorm:"default:'PAYMENT_PENDING'"`

	// Progress is derived from SessionProgress rows by the aggregator;
	// never incremented in place.
	Progress          int `json:"progress" gorm:"default:0"` // 0-100
	CompletedSessions int `json:"completed_sessions" gorm:"default:0"`
	TotalSessions     int `json:"total_sessions" gorm:"default:0"`

	EnrolledAt     time.Time  `json:"enrolled_at"`
	ApprovedAt     *time.Time `json:"approved_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at"`
	IsDeleted      bool       `gorm:"default:false"`
}
