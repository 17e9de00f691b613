package controllers

import (
	"errors"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// orderedSessions returns every published session of a course in learning
// order: modules by order index, then sessions by order index within each
// module.
func orderedSessions(db *gorm.DB, courseID uint) ([]courseModels.Session, error) {
	var sessions []courseModels.Session
	err := db.
		Joins("JOIN modules ON modules.id = sessions.module_id AND modules.is_deleted = ?", false).
		Where("sessions.course_id = ? AND sessions.is_deleted = ? AND sessions.is_published = ?", courseID, false, true).
		Order("modules.order_index asc, sessions.order_index asc, sessions.id asc").
		Find(&sessions).Error
	return sessions, err
}

// initializeSessionProgress creates the per-session progress rows for an
// enrollment. The first session in order starts unlocked; the rest start
// unlocked only when the course does not require sequential progress.
// Idempotent: rows that already exist are left untouched, so the enrollment
// approval workflow may call it again after new sessions are published.
func initializeSessionProgress(db *gorm.DB, enrollmentID uint) error {
	var enrollment courseModels.Enrollment
	if err := db.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", enrollment.CourseID, false).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	sessions, err := orderedSessions(db, course.ID)
	if err != nil {
		return err
	}

	now := time.Now()
	for i, session := range sessions {
		var existing courseModels.SessionProgress
		err := db.Where("enrollment_id = ? AND session_id = ? AND is_deleted = ?", enrollmentID, session.ID, false).
			First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		progress := courseModels.SessionProgress{
			EnrollmentID:   enrollmentID,
			SessionID:      session.ID,
			UserID:         enrollment.UserID,
			IsUnlocked:     i == 0 || !course.RequireSequentialProgress,
			LastAccessedAt: now,
		}
		if err := db.Create(&progress).Error; err != nil {
			return err
		}
	}

	return nil
}

// completionSatisfied is the automatic completion predicate: enough of the
// video watched, resources opened when the session demands it, and the
// session quiz passed when the session demands it.
func completionSatisfied(session *courseModels.Session, progress *courseModels.SessionProgress) bool {
	if progress.WatchPercent < session.RequiredWatchPercent {
		return false
	}
	if session.RequireResourceAccess && !progress.ResourcesAccessed {
		return false
	}
	if session.RequireQuizCompletion && !progress.QuizPassed {
		return false
	}
	return true
}

// progressUpdate carries one learner action against a session
type progressUpdate struct {
	WatchPercent      *int
	WatchTimeDelta    *int
	ResourcesAccessed bool
}

// loadSessionState fetches the session, the learner's enrollment in its
// course and the matching progress row
func loadSessionState(db *gorm.DB, userID, sessionID uint) (*courseModels.Session, *courseModels.Enrollment, *courseModels.SessionProgress, error) {
	var session courseModels.Session
	if err := db.Where("id = ? AND is_deleted = ? AND is_published = ?", sessionID, false, true).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrNotFound
		}
		return nil, nil, nil, err
	}

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, session.CourseID, false).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrNotFound
		}
		return nil, nil, nil, err
	}

	var progress courseModels.SessionProgress
	if err := db.Where("enrollment_id = ? AND session_id = ? AND is_deleted = ?", enrollment.ID, session.ID, false).First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrNotFound
		}
		return nil, nil, nil, err
	}

	return &session, &enrollment, &progress, nil
}

// applyProgressUpdate records a watch/resource action on an unlocked session.
// Watch percent only moves forward (max of old and new) and watch time is
// additive, so duplicate or out-of-order pings from the player are benign.
// When the update satisfies the completion predicate, the session completes
// and the unlock policy and course aggregation run in the same request.
func applyProgressUpdate(db *gorm.DB, userID, sessionID uint, update progressUpdate) (*courseModels.SessionProgress, *courseModels.Enrollment, bool, error) {
	session, enrollment, progress, err := loadSessionState(db, userID, sessionID)
	if err != nil {
		return nil, nil, false, err
	}

	if !progress.IsUnlocked {
		return nil, nil, false, ErrSessionLocked
	}

	if update.WatchPercent == nil && update.WatchTimeDelta == nil && !update.ResourcesAccessed {
		return nil, nil, false, ErrInvalidInput
	}

	if update.WatchPercent != nil {
		next := *update.WatchPercent
		if next > 100 {
			next = 100
		}
		if next > progress.WatchPercent {
			progress.WatchPercent = next
		}
	}
	if update.WatchTimeDelta != nil && *update.WatchTimeDelta > 0 {
		progress.WatchTimeSeconds += *update.WatchTimeDelta
	}
	if update.ResourcesAccessed {
		progress.ResourcesAccessed = true
	}
	progress.LastAccessedAt = time.Now()

	completedNow := false
	if !progress.IsCompleted && completionSatisfied(session, progress) {
		now := time.Now()
		progress.IsCompleted = true
		progress.CompletedAt = &now
		completedNow = true
	}

	if err := db.Save(progress).Error; err != nil {
		return nil, nil, false, err
	}

	courseCompleted := false
	if completedNow {
		if err := tryUnlockNext(db, enrollment, session.ID); err != nil {
			return nil, nil, false, err
		}
	}
	enrollment, courseCompleted, err = recalcEnrollmentProgress(db, enrollment.ID)
	if err != nil {
		return nil, nil, false, err
	}

	return progress, enrollment, courseCompleted, nil
}

// forceCompleteSession is the learner's explicit "mark as complete". It
// bypasses the watch/resource/quiz criteria on purpose; the automatic path
// in applyProgressUpdate is the gated one. Idempotent on already-completed
// sessions: the original completion timestamp is preserved.
func forceCompleteSession(db *gorm.DB, userID, sessionID uint) (*courseModels.SessionProgress, *courseModels.Enrollment, bool, error) {
	session, enrollment, progress, err := loadSessionState(db, userID, sessionID)
	if err != nil {
		return nil, nil, false, err
	}

	if !progress.IsUnlocked {
		return nil, nil, false, ErrSessionLocked
	}

	if !progress.IsCompleted {
		now := time.Now()
		progress.IsCompleted = true
		progress.CompletedAt = &now
		progress.WatchPercent = 100
		progress.LastAccessedAt = now

		if err := db.Save(progress).Error; err != nil {
			return nil, nil, false, err
		}
		if err := tryUnlockNext(db, enrollment, session.ID); err != nil {
			return nil, nil, false, err
		}
	}

	enrollment, courseCompleted, err := recalcEnrollmentProgress(db, enrollment.ID)
	if err != nil {
		return nil, nil, false, err
	}

	return progress, enrollment, courseCompleted, nil
}

// UpdateWatchProgress records a watch-percentage/watch-time ping for a session
func UpdateWatchProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	sessionID := c.Locals("sessionID").(int)

	reqData, ok := c.Locals("validatedWatchProgress").(*struct {
		WatchPercent   *int `json:"watch_percent"`
		WatchTimeDelta *int `json:"watch_time_delta"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	progress, enrollment, courseCompleted, err := applyProgressUpdate(database.Database.Db, userID, uint(sessionID), progressUpdate{
		WatchPercent:   reqData.WatchPercent,
		WatchTimeDelta: reqData.WatchTimeDelta,
	})
	if err != nil {
		return progressErrorResponse(c, err, "Failed to update watch progress!")
	}

	notifyCourseCompleted(userID, enrollment, courseCompleted)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Watch progress updated!", fiber.Map{
		"progress":   progress,
		"enrollment": enrollment,
	})
}

// MarkResourcesAccessed flags the session's supplementary resources as opened
func MarkResourcesAccessed(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	sessionID := c.Locals("sessionID").(int)

	progress, enrollment, courseCompleted, err := applyProgressUpdate(database.Database.Db, userID, uint(sessionID), progressUpdate{
		ResourcesAccessed: true,
	})
	if err != nil {
		return progressErrorResponse(c, err, "Failed to mark resources accessed!")
	}

	notifyCourseCompleted(userID, enrollment, courseCompleted)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Resources marked as accessed!", fiber.Map{
		"progress":   progress,
		"enrollment": enrollment,
	})
}

// CompleteSession is the unconditional "mark as complete" endpoint
func CompleteSession(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	sessionID := c.Locals("sessionID").(int)

	progress, enrollment, courseCompleted, err := forceCompleteSession(database.Database.Db, userID, uint(sessionID))
	if err != nil {
		return progressErrorResponse(c, err, "Failed to complete session!")
	}

	notifyCourseCompleted(userID, enrollment, courseCompleted)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session marked as completed!", fiber.Map{
		"progress":   progress,
		"enrollment": enrollment,
	})
}

// progressErrorResponse maps engine errors onto the response envelope
func progressErrorResponse(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session progress not found!", nil)
	case errors.Is(err, ErrSessionLocked):
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Session is locked. Complete the previous session first!", nil)
	case errors.Is(err, ErrInvalidInput):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Nothing to update!", nil)
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, fallback, nil)
	}
}
