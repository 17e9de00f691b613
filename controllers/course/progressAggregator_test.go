package controllers

import (
	courseModels "lms/models/course"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecalcFloorsPercentage(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 3)
	enrollment := seedEnrollment(t, db, 1, fixture.Course.ID)

	_, _, _, err := applyProgressUpdate(db, 1, fixture.Sessions[0].ID, progressUpdate{WatchPercent: intPtr(100)})
	require.NoError(t, err)

	updated, completedNow, err := recalcEnrollmentProgress(db, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 33, updated.Progress, "1 of 3 floors to 33")
	assert.False(t, completedNow)

	_, _, _, err = applyProgressUpdate(db, 1, fixture.Sessions[1].ID, progressUpdate{WatchPercent: intPtr(100)})
	require.NoError(t, err)

	updated, _, err = recalcEnrollmentProgress(db, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 66, updated.Progress, "2 of 3 floors to 66")
}

func TestRecalcCompletesEnrollmentOnce(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 2)
	enrollment := seedEnrollment(t, db, 1, fixture.Course.ID)

	_, _, _, err := applyProgressUpdate(db, 1, fixture.Sessions[0].ID, progressUpdate{WatchPercent: intPtr(100)})
	require.NoError(t, err)

	// The final completion flips the enrollment inside the update itself
	_, updated, completedNow, err := applyProgressUpdate(db, 1, fixture.Sessions[1].ID, progressUpdate{WatchPercent: intPtr(100)})
	require.NoError(t, err)
	assert.True(t, completedNow)
	assert.Equal(t, courseModels.EnrollmentCompleted, updated.Status)
	assert.Equal(t, 100, updated.Progress)
	require.NotNil(t, updated.CompletedAt)

	// Redundant recalculation reports no new transition
	again, completedNow, err := recalcEnrollmentProgress(db, enrollment.ID)
	require.NoError(t, err)
	assert.False(t, completedNow)
	assert.Equal(t, courseModels.EnrollmentCompleted, again.Status)
}

func TestRecalcStaysCompletedAfterCurriculumGrows(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 1)
	enrollment := seedEnrollment(t, db, 1, fixture.Course.ID)

	_, _, _, err := applyProgressUpdate(db, 1, fixture.Sessions[0].ID, progressUpdate{WatchPercent: intPtr(100)})
	require.NoError(t, err)

	// Publish a new session after completion
	extra := courseModels.Session{
		ModuleID:             fixture.Modules[0].ID,
		CourseID:             fixture.Course.ID,
		Title:                "Bonus",
		Kind:                 courseModels.SessionKindVideo,
		OrderIndex:           9,
		RequiredWatchPercent: 50,
		IsPublished:          true,
	}
	require.NoError(t, db.Create(&extra).Error)

	updated, completedNow, err := recalcEnrollmentProgress(db, enrollment.ID)
	require.NoError(t, err)
	assert.False(t, completedNow)
	assert.Equal(t, 50, updated.Progress, "percentage reflects the new total")
	assert.Equal(t, courseModels.EnrollmentCompleted, updated.Status, "COMPLETED never reverts")
}

func TestRecalcUnknownEnrollment(t *testing.T) {
	db := setupTestDB(t)

	_, _, err := recalcEnrollmentProgress(db, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResumeSessionOrder(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, true, 3)
	enrollment := seedEnrollment(t, db, 1, fixture.Course.ID)

	// Fresh enrollment resumes at the first session
	resume, err := resumeSession(db, &enrollment)
	require.NoError(t, err)
	require.NotNil(t, resume)
	assert.Equal(t, fixture.Sessions[0].ID, resume.ID)

	// After completing the first, resume at the newly unlocked second
	_, _, _, err = applyProgressUpdate(db, 1, fixture.Sessions[0].ID, progressUpdate{WatchPercent: intPtr(100)})
	require.NoError(t, err)

	resume, err = resumeSession(db, &enrollment)
	require.NoError(t, err)
	require.NotNil(t, resume)
	assert.Equal(t, fixture.Sessions[1].ID, resume.ID)
}

func TestResumeSessionNilWhenDone(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 2)
	enrollment := seedEnrollment(t, db, 1, fixture.Course.ID)

	for _, session := range fixture.Sessions {
		_, _, _, err := applyProgressUpdate(db, 1, session.ID, progressUpdate{WatchPercent: intPtr(100)})
		require.NoError(t, err)
	}

	resume, err := resumeSession(db, &enrollment)
	require.NoError(t, err)
	assert.Nil(t, resume)
}
