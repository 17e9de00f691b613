package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quiz belongs to a session, or to the course directly when it is the
// final assessment (SessionID nil, IsFinalAssessment true).
type Quiz struct {
	gorm.Model
	CourseID  uint   `json:"course_id" gorm:"index;not null"`
	SessionID *uint  `json:"session_id" gorm:"index"`
	Title     string `json:"title"`

	// No column defaults on the policy fields: zero is a meaningful value
	// (0 max attempts means unlimited) and a column default would override
	// it on insert. Creation-time defaults live in the admin handlers.
	PassingScore       int  `json:"passing_score"` // percent of total points
	MaxAttempts        int  `json:"max_attempts"`  // 0 means unlimited
	TimeLimitMinutes   int  `json:"time_limit_minutes"`
	ShuffleQuestions   bool `json:"shuffle_questions" gorm:"default:false"`
	ShowCorrectAnswers bool `json:"show_correct_answers" gorm:"default:false"`
	IsFinalAssessment  bool `json:"is_final_assessment" gorm:"default:false"`

	IsPublished bool `json:"is_published" gorm:"default:false"`
	IsDeleted   bool `gorm:"default:false"`
}

// Question is a single-choice question worth a fixed number of points
type Question struct {
	gorm.Model
	QuizID     uint   `json:"quiz_id" gorm:"index;not null"`
	Prompt     string `json:"prompt" gorm:"type:text"`
	Points     int    `json:"points" gorm:"default:1"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`
	IsDeleted  bool   `gorm:"default:false"`
}

// Option is one answer choice; exactly one per question carries IsCorrect
type Option struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`
	IsDeleted  bool   `gorm:"default:false"`
}

// QuizAttempt is one scored instance of a learner answering a quiz.
// Immutable once CompletedAt is set.
type QuizAttempt struct {
	gorm.Model
	UserID        uint `json:"user_id" gorm:"index;not null"`
	QuizID        uint `json:"quiz_id" gorm:"index;not null"`
	AttemptNumber int  `json:"attempt_number" gorm:"default:1"`

	// Snapshot of the question set at start time
	TotalQuestions int `json:"total_questions"`
	TotalPoints    int `json:"total_points"`

	Score            int  `json:"score"`
	CorrectAnswers   int  `json:"correct_answers"`
	IsPassed         bool `json:"is_passed" gorm:"default:false"`
	TimeSpentSeconds int  `json:"time_spent_seconds"`

	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at"`
	AnswersJSON datatypes.JSON `json:"answers_json"` // raw submitted answers
	IsDeleted   bool           `gorm:"default:false"`
}

// QuestionAnswer is a per-question grading record, persisted only when the
// quiz is configured to reveal correct answers for later review
type QuestionAnswer struct {
	gorm.Model
	AttemptID     uint `json:"attempt_id" gorm:"index;not null"`
	QuestionID    uint `json:"question_id" gorm:"not null"`
	OptionID      uint `json:"option_id" gorm:"not null"`
	IsCorrect     bool `json:"is_correct"`
	PointsAwarded int  `json:"points_awarded"`
	IsDeleted     bool `gorm:"default:false"`
}
