package course

import "gorm.io/gorm"

// CourseRating is a learner's 1-5 rating of a course
type CourseRating struct {
	gorm.Model
	UserID    uint   `json:"user_id" gorm:"not null;uniqueIndex:idx_user_course_rating"`
	CourseID  uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_user_course_rating"`
	Rating    int    `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment   string `json:"comment" gorm:"type:text;default:''"`
	IsDeleted bool   `gorm:"default:false"`
}
