package controllers

import (
	"lms/database"
	courseModels "lms/models/course"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory database with all migrations applied
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.RunMigrations(db)
	return db
}

type courseFixture struct {
	Course   courseModels.Course
	Modules  []courseModels.Module
	Sessions []courseModels.Session
}

// seedCourse creates a published ACTIVE course with one module per entry in
// sessionsPerModule, each holding that many published VIDEO sessions with a
// 50 percent watch requirement
func seedCourse(t *testing.T, db *gorm.DB, sequential bool, sessionsPerModule ...int) courseFixture {
	t.Helper()

	course := courseModels.Course{
		Title:                     "Backend Engineering",
		Description:               "From zero to production",
		Author:                    "Jane Doe",
		Status:                    courseModels.CourseActive,
		IsPublished:               true,
		RequireSequentialProgress: sequential,
	}
	require.NoError(t, db.Create(&course).Error)

	fixture := courseFixture{Course: course}
	for m, count := range sessionsPerModule {
		module := courseModels.Module{
			CourseID:   course.ID,
			Title:      "Module",
			OrderIndex: m,
		}
		require.NoError(t, db.Create(&module).Error)
		fixture.Modules = append(fixture.Modules, module)

		for s := 0; s < count; s++ {
			session := courseModels.Session{
				ModuleID:             module.ID,
				CourseID:             course.ID,
				Title:                "Session",
				Kind:                 courseModels.SessionKindVideo,
				OrderIndex:           s,
				RequiredWatchPercent: 50,
				IsPublished:          true,
			}
			require.NoError(t, db.Create(&session).Error)
			fixture.Sessions = append(fixture.Sessions, session)
		}
	}

	return fixture
}

// seedEnrollment creates an approved enrollment with initialized progress
func seedEnrollment(t *testing.T, db *gorm.DB, userID uint, courseID uint) courseModels.Enrollment {
	t.Helper()

	now := time.Now()
	enrollment := courseModels.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		Status:     courseModels.EnrollmentApproved,
		EnrolledAt: now,
		ApprovedAt: &now,
	}
	require.NoError(t, db.Create(&enrollment).Error)
	require.NoError(t, initializeSessionProgress(db, enrollment.ID))
	return enrollment
}

// seedQuiz attaches a published quiz with the given single-point questions
// (one correct and one wrong option each) to a session, or to the course as
// a final assessment when sessionID is nil
func seedQuiz(t *testing.T, db *gorm.DB, courseID uint, sessionID *uint, questionCount int, mutate func(*courseModels.Quiz)) (courseModels.Quiz, []courseModels.Question, map[uint]uint, map[uint]uint) {
	t.Helper()

	quiz := courseModels.Quiz{
		CourseID:          courseID,
		SessionID:         sessionID,
		Title:             "Checkpoint",
		PassingScore:      70,
		MaxAttempts:       3,
		IsFinalAssessment: sessionID == nil,
		IsPublished:       true,
	}
	if mutate != nil {
		mutate(&quiz)
	}
	require.NoError(t, db.Create(&quiz).Error)

	var questions []courseModels.Question
	correct := make(map[uint]uint)
	wrong := make(map[uint]uint)
	for i := 0; i < questionCount; i++ {
		question := courseModels.Question{
			QuizID:     quiz.ID,
			Prompt:     "Pick the right answer",
			Points:     1,
			OrderIndex: i,
		}
		require.NoError(t, db.Create(&question).Error)
		questions = append(questions, question)

		right := courseModels.Option{QuestionID: question.ID, Text: "right", IsCorrect: true}
		require.NoError(t, db.Create(&right).Error)
		bad := courseModels.Option{QuestionID: question.ID, Text: "wrong"}
		require.NoError(t, db.Create(&bad).Error)

		correct[question.ID] = right.ID
		wrong[question.ID] = bad.ID
	}

	return quiz, questions, correct, wrong
}

func progressRow(t *testing.T, db *gorm.DB, enrollmentID, sessionID uint) courseModels.SessionProgress {
	t.Helper()

	var row courseModels.SessionProgress
	require.NoError(t, db.Where("enrollment_id = ? AND session_id = ?", enrollmentID, sessionID).First(&row).Error)
	return row
}

func intPtr(v int) *int { return &v }
