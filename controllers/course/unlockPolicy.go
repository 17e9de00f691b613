package controllers

import (
	"errors"
	courseModels "lms/models/course"

	"gorm.io/gorm"
)

// tryUnlockNext unlocks the session immediately after the one just
// completed. It is a no-op for courses without sequential progress (their
// sessions are unlocked at initialization) and never unlocks more than one
// session per call: a learner advances strictly one completion at a time.
func tryUnlockNext(db *gorm.DB, enrollment *courseModels.Enrollment, justCompletedSessionID uint) error {
	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", enrollment.CourseID, false).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if !course.RequireSequentialProgress {
		return nil
	}

	sessions, err := orderedSessions(db, course.ID)
	if err != nil {
		return err
	}

	// Locate the just-completed session in the full learning order
	position := -1
	for i, session := range sessions {
		if session.ID == justCompletedSessionID {
			position = i
			break
		}
	}
	if position < 0 || position+1 >= len(sessions) {
		return nil // unknown or last session, nothing to unlock
	}

	next := sessions[position+1]

	var progress courseModels.SessionProgress
	err = db.Where("enrollment_id = ? AND session_id = ? AND is_deleted = ?", enrollment.ID, next.ID, false).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Row missing (session published after initialization): create it unlocked
			progress = courseModels.SessionProgress{
				EnrollmentID: enrollment.ID,
				SessionID:    next.ID,
				UserID:       enrollment.UserID,
				IsUnlocked:   true,
			}
			return db.Create(&progress).Error
		}
		return err
	}

	if progress.IsUnlocked {
		return nil
	}

	progress.IsUnlocked = true
	return db.Save(&progress).Error
}
