package utils

import (
	"lms/database"
	courseModels "lms/models/course"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

func logScheduler(message string) {
	log.Printf("[PROGRESS-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// reconcileEnrollmentProgress re-derives aggregates for every active
// enrollment from its session progress rows. Catches drift introduced by
// admin edits to the curriculum (publishing or deleting sessions) that the
// request-path recalculation never saw.
func reconcileEnrollmentProgress() {
	db := database.Database.Db

	var enrollments []courseModels.Enrollment
	if err := db.Where("status = ? AND is_deleted = ?", courseModels.EnrollmentApproved, false).
		Find(&enrollments).Error; err != nil {
		logScheduler("Error fetching enrollments: " + err.Error())
		return
	}

	updated := 0
	completed := 0
	for i := range enrollments {
		enrollment := &enrollments[i]

		var totalSessions int64
		db.Model(&courseModels.Session{}).
			Where("course_id = ? AND is_deleted = ? AND is_published = ?", enrollment.CourseID, false, true).
			Count(&totalSessions)

		var completedSessions int64
		db.Model(&courseModels.SessionProgress{}).
			Where("enrollment_id = ? AND is_completed = ? AND is_deleted = ?", enrollment.ID, true, false).
			Count(&completedSessions)

		progress := 0
		if totalSessions > 0 {
			progress = int(completedSessions * 100 / totalSessions)
		}

		if progress == enrollment.Progress &&
			int(totalSessions) == enrollment.TotalSessions &&
			int(completedSessions) == enrollment.CompletedSessions {
			continue
		}

		enrollment.Progress = progress
		enrollment.TotalSessions = int(totalSessions)
		enrollment.CompletedSessions = int(completedSessions)

		if progress >= 100 && totalSessions > 0 {
			now := time.Now()
			enrollment.Status = courseModels.EnrollmentCompleted
			enrollment.CompletedAt = &now
			completed++
		}

		if err := db.Save(enrollment).Error; err != nil {
			logScheduler("Error saving enrollment: " + err.Error())
			continue
		}
		updated++
	}

	logScheduler(time.Now().Format("2006-01-02") + " reconciliation done")
	log.Printf("[PROGRESS-SCHEDULER] %d enrollments updated, %d newly completed", updated, completed)
}

// StartProgressScheduler runs the nightly reconciliation at 03:00
func StartProgressScheduler() {
	c := cron.New()

	c.AddFunc("0 3 * * *", func() {
		logScheduler("Starting nightly enrollment reconciliation")
		reconcileEnrollmentProgress()
	})

	c.Start()
	logScheduler("Progress scheduler started")
}
