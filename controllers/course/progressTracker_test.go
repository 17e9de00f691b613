package controllers

import (
	courseModels "lms/models/course"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeSessionProgressSequential(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, true, 2, 1)
	enrollment := seedEnrollment(t, db, 1, fixture.Course.ID)

	for i, session := range fixture.Sessions {
		row := progressRow(t, db, enrollment.ID, session.ID)
		assert.Equal(t, i == 0, row.IsUnlocked, "only the first session starts unlocked")
		assert.False(t, row.IsCompleted)
	}
}

func TestInitializeSessionProgressNonSequential(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 3)
	enrollment := seedEnrollment(t, db, 1, fixture.Course.ID)

	for _, session := range fixture.Sessions {
		row := progressRow(t, db, enrollment.ID, session.ID)
		assert.True(t, row.IsUnlocked)
	}
}

func TestInitializeSessionProgressIdempotent(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, true, 2)
	enrollment := seedEnrollment(t, db, 1, fixture.Course.ID)

	// Complete the first session, then re-run initialization
	_, _, _, err := applyProgressUpdate(db, 1, fixture.Sessions[0].ID, progressUpdate{WatchPercent: intPtr(60)})
	require.NoError(t, err)
	require.NoError(t, initializeSessionProgress(db, enrollment.ID))

	first := progressRow(t, db, enrollment.ID, fixture.Sessions[0].ID)
	assert.True(t, first.IsCompleted, "existing rows must not be reset")

	var count int64
	db.Model(&courseModels.SessionProgress{}).Where("enrollment_id = ?", enrollment.ID).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestUpdateProgressLockedSession(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, true, 2)
	seedEnrollment(t, db, 1, fixture.Course.ID)

	_, _, _, err := applyProgressUpdate(db, 1, fixture.Sessions[1].ID, progressUpdate{WatchPercent: intPtr(90)})
	assert.ErrorIs(t, err, ErrSessionLocked)
}

func TestUpdateProgressUnknownSession(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, true, 1)
	seedEnrollment(t, db, 1, fixture.Course.ID)

	_, _, _, err := applyProgressUpdate(db, 1, fixture.Sessions[0].ID+99, progressUpdate{WatchPercent: intPtr(10)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWatchPercentMonotonic(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, true, 1)
	enrollment := seedEnrollment(t, db, 1, fixture.Course.ID)
	sessionID := fixture.Sessions[0].ID

	_, _, _, err := applyProgressUpdate(db, 1, sessionID, progressUpdate{WatchPercent: intPtr(40), WatchTimeDelta: intPtr(120)})
	require.NoError(t, err)

	// A stale lower ping must not move the percentage backwards
	_, _, _, err = applyProgressUpdate(db, 1, sessionID, progressUpdate{WatchPercent: intPtr(10), WatchTimeDelta: intPtr(30)})
	require.NoError(t, err)

	row := progressRow(t, db, enrollment.ID, sessionID)
	assert.Equal(t, 40, row.WatchPercent)
	assert.Equal(t, 150, row.WatchTimeSeconds, "watch time is additive")

	// Values above 100 are clamped
	_, _, _, err = applyProgressUpdate(db, 1, sessionID, progressUpdate{WatchPercent: intPtr(250)})
	require.NoError(t, err)
	row = progressRow(t, db, enrollment.ID, sessionID)
	assert.Equal(t, 100, row.WatchPercent)
}

func TestUpdateProgressEmptyUpdate(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, true, 1)
	seedEnrollment(t, db, 1, fixture.Course.ID)

	_, _, _, err := applyProgressUpdate(db, 1, fixture.Sessions[0].ID, progressUpdate{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCompletionUnlocksNextSession(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, true, 3)
	enrollment := seedEnrollment(t, db, 1, fixture.Course.ID)

	// 50 percent satisfies the seeded watch requirement
	progress, updated, _, err := applyProgressUpdate(db, 1, fixture.Sessions[0].ID, progressUpdate{WatchPercent: intPtr(50)})
	require.NoError(t, err)
	assert.True(t, progress.IsCompleted)
	require.NotNil(t, progress.CompletedAt)

	second := progressRow(t, db, enrollment.ID, fixture.Sessions[1].ID)
	assert.True(t, second.IsUnlocked, "next session unlocks on completion")

	third := progressRow(t, db, enrollment.ID, fixture.Sessions[2].ID)
	assert.False(t, third.IsUnlocked, "only one session unlocks per completion")

	assert.Equal(t, 33, updated.Progress)
	assert.Equal(t, 1, updated.CompletedSessions)
	assert.Equal(t, 3, updated.TotalSessions)
}

func TestCompletionRequiresAllCriteria(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, true, 1)
	enrollment := seedEnrollment(t, db, 1, fixture.Course.ID)
	sessionID := fixture.Sessions[0].ID

	require.NoError(t, db.Model(&courseModels.Session{}).Where("id = ?", sessionID).
		Update("require_resource_access", true).Error)

	progress, _, _, err := applyProgressUpdate(db, 1, sessionID, progressUpdate{WatchPercent: intPtr(100)})
	require.NoError(t, err)
	assert.False(t, progress.IsCompleted, "resources not yet accessed")

	progress, _, _, err = applyProgressUpdate(db, 1, sessionID, progressUpdate{ResourcesAccessed: true})
	require.NoError(t, err)
	assert.True(t, progress.IsCompleted)

	row := progressRow(t, db, enrollment.ID, sessionID)
	assert.True(t, row.ResourcesAccessed)
}

func TestForceCompleteBypassesCriteria(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, true, 2)
	enrollment := seedEnrollment(t, db, 1, fixture.Course.ID)

	progress, _, _, err := forceCompleteSession(db, 1, fixture.Sessions[0].ID)
	require.NoError(t, err)
	assert.True(t, progress.IsCompleted)
	assert.Equal(t, 100, progress.WatchPercent)

	second := progressRow(t, db, enrollment.ID, fixture.Sessions[1].ID)
	assert.True(t, second.IsUnlocked)
}

func TestForceCompleteIdempotent(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, true, 1)
	seedEnrollment(t, db, 1, fixture.Course.ID)

	first, _, _, err := forceCompleteSession(db, 1, fixture.Sessions[0].ID)
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)

	again, _, _, err := forceCompleteSession(db, 1, fixture.Sessions[0].ID)
	require.NoError(t, err)
	assert.True(t, again.IsCompleted)
	assert.Equal(t, first.CompletedAt.Unix(), again.CompletedAt.Unix(), "original completion time is preserved")
}

func TestForceCompleteLockedSession(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, true, 2)
	seedEnrollment(t, db, 1, fixture.Course.ID)

	_, _, _, err := forceCompleteSession(db, 1, fixture.Sessions[1].ID)
	assert.ErrorIs(t, err, ErrSessionLocked)
}

func TestTextSessionWithoutWatchRequirement(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 1)

	reading := courseModels.Session{
		ModuleID:    fixture.Modules[0].ID,
		CourseID:    fixture.Course.ID,
		Title:       "Reading",
		Kind:        courseModels.SessionKindText,
		OrderIndex:  1,
		IsPublished: true,
	}
	require.NoError(t, db.Create(&reading).Error)

	// The zero watch requirement must survive the round trip, otherwise a
	// session with no video could never auto-complete
	var reloaded courseModels.Session
	require.NoError(t, db.First(&reloaded, reading.ID).Error)
	require.Equal(t, 0, reloaded.RequiredWatchPercent)

	seedEnrollment(t, db, 1, fixture.Course.ID)

	progress, _, _, err := applyProgressUpdate(db, 1, reading.ID, progressUpdate{ResourcesAccessed: true})
	require.NoError(t, err)
	assert.True(t, progress.IsCompleted)
}

func TestNonSequentialCourseSkipsUnlockPolicy(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 3)
	enrollment := seedEnrollment(t, db, 1, fixture.Course.ID)

	// Completing the middle session out of order is fine
	progress, _, _, err := applyProgressUpdate(db, 1, fixture.Sessions[1].ID, progressUpdate{WatchPercent: intPtr(80)})
	require.NoError(t, err)
	assert.True(t, progress.IsCompleted)

	row := progressRow(t, db, enrollment.ID, fixture.Sessions[2].ID)
	assert.True(t, row.IsUnlocked, "all sessions stay unlocked")
}
