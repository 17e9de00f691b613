package controllers

import (
	"errors"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// recalcEnrollmentProgress recomputes an enrollment's progress from a full
// rescan of its SessionProgress rows. The COMPLETED transition is one-way:
// once an enrollment completes it stays completed even if session counts
// later change. Safe to call redundantly; every call stamps LastAccessedAt.
// The returned bool reports whether this call performed the transition.
func recalcEnrollmentProgress(db *gorm.DB, enrollmentID uint) (*courseModels.Enrollment, bool, error) {
	var enrollment courseModels.Enrollment
	if err := db.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrNotFound
		}
		return nil, false, err
	}

	var totalSessions int64
	db.Model(&courseModels.Session{}).
		Where("course_id = ? AND is_deleted = ? AND is_published = ?", enrollment.CourseID, false, true).
		Count(&totalSessions)

	var completedSessions int64
	db.Model(&courseModels.SessionProgress{}).
		Where("enrollment_id = ? AND is_completed = ? AND is_deleted = ?", enrollment.ID, true, false).
		Count(&completedSessions)

	enrollment.TotalSessions = int(totalSessions)
	enrollment.CompletedSessions = int(completedSessions)
	enrollment.Progress = 0
	if totalSessions > 0 {
		enrollment.Progress = int(completedSessions * 100 / totalSessions)
	}

	now := time.Now()
	enrollment.LastAccessedAt = &now

	completedNow := false
	if enrollment.Progress >= 100 && totalSessions > 0 && enrollment.Status != courseModels.EnrollmentCompleted {
		enrollment.Status = courseModels.EnrollmentCompleted
		enrollment.CompletedAt = &now
		completedNow = true
	}

	if err := db.Save(&enrollment).Error; err != nil {
		return nil, false, err
	}

	return &enrollment, completedNow, nil
}

// notifyCourseCompleted fires the caller-side course.completed event once,
// when aggregation has just flipped the enrollment to COMPLETED
func notifyCourseCompleted(userID uint, enrollment *courseModels.Enrollment, completedNow bool) {
	if !completedNow || enrollment == nil {
		return
	}
	utils.NotifyEvent("course.completed", map[string]interface{}{
		"user_id":       userID,
		"course_id":     enrollment.CourseID,
		"enrollment_id": enrollment.ID,
	})
}

// GetUserProgress returns the learner's course progress summary: overall
// percentage, completed/total counts, per-module breakdown and the session
// to resume
func GetUserProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	// Progress rows keyed by session for the breakdown below
	var progressRows []courseModels.SessionProgress
	database.Database.Db.Where("enrollment_id = ? AND is_deleted = ?", enrollment.ID, false).Find(&progressRows)

	progressBySession := make(map[uint]courseModels.SessionProgress, len(progressRows))
	for _, row := range progressRows {
		progressBySession[row.SessionID] = row
	}

	// Module-wise progress
	var modules []courseModels.Module
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).Order("order_index asc").Find(&modules)

	type ModuleProgress struct {
		ModuleID          uint   `json:"module_id"`
		ModuleName        string `json:"module_name"`
		TotalSessions     int    `json:"total_sessions"`
		CompletedSessions int    `json:"completed_sessions"`
		Progress          int    `json:"progress"`
	}

	moduleProgress := make([]ModuleProgress, len(modules))
	for i, mod := range modules {
		var sessions []courseModels.Session
		database.Database.Db.Where("module_id = ? AND is_deleted = ? AND is_published = ?", mod.ID, false, true).Find(&sessions)

		completed := 0
		for _, session := range sessions {
			if row, ok := progressBySession[session.ID]; ok && row.IsCompleted {
				completed++
			}
		}

		percent := 0
		if len(sessions) > 0 {
			percent = completed * 100 / len(sessions)
		}

		moduleProgress[i] = ModuleProgress{
			ModuleID:          mod.ID,
			ModuleName:        mod.Title,
			TotalSessions:     len(sessions),
			CompletedSessions: completed,
			Progress:          percent,
		}
	}

	resume, _ := resumeSession(database.Database.Db, &enrollment)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"enrollment":      enrollment,
		"module_progress": moduleProgress,
		"resume_session":  resume,
	})
}

// resumeSession picks the learner's next session: the first unlocked but
// incomplete one in learning order, or the first locked one when every
// unlocked session is done. Nil when the course is fully completed.
func resumeSession(db *gorm.DB, enrollment *courseModels.Enrollment) (*courseModels.Session, error) {
	sessions, err := orderedSessions(db, enrollment.CourseID)
	if err != nil {
		return nil, err
	}

	var progressRows []courseModels.SessionProgress
	if err := db.Where("enrollment_id = ? AND is_deleted = ?", enrollment.ID, false).Find(&progressRows).Error; err != nil {
		return nil, err
	}

	progressBySession := make(map[uint]courseModels.SessionProgress, len(progressRows))
	for _, row := range progressRows {
		progressBySession[row.SessionID] = row
	}

	var firstLocked *courseModels.Session
	for i := range sessions {
		session := sessions[i]
		row, ok := progressBySession[session.ID]
		if !ok || !row.IsUnlocked {
			if firstLocked == nil {
				firstLocked = &sessions[i]
			}
			continue
		}
		if !row.IsCompleted {
			return &sessions[i], nil
		}
	}

	return firstLocked, nil
}

// GetResumeSession returns the next session the learner should open
func GetResumeSession(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	session, err := resumeSession(database.Database.Db, &enrollment)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to resolve resume session!", nil)
	}

	if session == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Course completed, nothing to resume!", nil)
	}

	locked := false
	var row courseModels.SessionProgress
	if err := database.Database.Db.Where("enrollment_id = ? AND session_id = ? AND is_deleted = ?", enrollment.ID, session.ID, false).First(&row).Error; err == nil {
		locked = !row.IsUnlocked
	} else {
		locked = true
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Resume session resolved!", fiber.Map{
		"session":   session,
		"is_locked": locked,
	})
}
