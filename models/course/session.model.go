package course

import (
	"time"

	"gorm.io/gorm"
)

// Session kinds. Completion criteria differ per kind but are all expressed
// through the per-session gating fields below, so one row type covers all.
const (
	SessionKindVideo = "VIDEO"
	SessionKindText  = "TEXT"
	SessionKindQuiz  = "QUIZ"
	SessionKindLive  = "LIVE"
)

// Session represents one consumable unit of content within a module
type Session struct {
	gorm.Model
	ModuleID    uint   `json:"module_id" gorm:"index;not null"`
	CourseID    uint   `json:"course_id" gorm:"index;not null"` // denormalized for course-wide scans
	Title       string `json:"title"`
	Description string `json:"description"`
	Kind        string `json:"kind" gorm:"default:'VIDEO'"` // VIDEO, TEXT, QUIZ, LIVE
	VideoURL    string `json:"video_url"`                   // For VIDEO kind
	TextContent string `json:"text_content" gorm:"type:text"`
	MeetingURL  string `json:"meeting_url"` // For LIVE kind
	OrderIndex  int    `json:"order_index" gorm:"default:0"`

	// Completion criteria. RequiredWatchPercent carries no column default:
	// zero is meaningful for sessions without video (TEXT, QUIZ, LIVE) and
	// a column default would override it on insert.
	RequiredWatchPercent  int  `json:"required_watch_percent"`
	RequireResourceAccess bool `json:"require_resource_access" gorm:"default:false"`
	RequireQuizCompletion bool `json:"require_quiz_completion" gorm:"default:false"`

	IsPublished bool `json:"is_published" gorm:"default:false"`
	IsDeleted   bool `gorm:"default:false"`
}

// SessionProgress tracks one learner's state for one session.
// Exactly one row per (enrollment, session) once progress is initialized.
type SessionProgress struct {
	gorm.Model
	EnrollmentID uint `json:"enrollment_id" gorm:"index;not null;uniqueIndex:idx_enrollment_session"`
	SessionID    uint `json:"session_id" gorm:"not null;uniqueIndex:idx_enrollment_session"`
	UserID       uint `json:"user_id" gorm:"index;not null"`

	IsUnlocked  bool `json:"is_unlocked" gorm:"default:false"`
	IsCompleted bool `json:"is_completed" gorm:"default:false"`

	WatchPercent      int  `json:"watch_percent" gorm:"default:0"` // monotonically non-decreasing
	WatchTimeSeconds  int  `json:"watch_time_seconds" gorm:"default:0"`
	ResourcesAccessed bool `json:"resources_accessed" gorm:"default:false"`

	QuizAttempts int  `json:"quiz_attempts" gorm:"default:0"`
	QuizScore    int  `json:"quiz_score" gorm:"default:0"`
	QuizPassed   bool `json:"quiz_passed" gorm:"default:false"`

	CompletedAt    *time.Time `json:"completed_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	IsDeleted      bool       `gorm:"default:false"`
}
