package controllers

import (
	courseModels "lms/models/course"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func completeAllSessions(t *testing.T, db *gorm.DB, userID uint, fixture courseFixture) {
	t.Helper()
	for _, session := range fixture.Sessions {
		_, _, _, err := applyProgressUpdate(db, userID, session.ID, progressUpdate{WatchPercent: intPtr(100)})
		require.NoError(t, err)
	}
}

func TestCertificateNotEligibleBeforeCompletion(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 2)
	seedEnrollment(t, db, 1, fixture.Course.ID)

	_, err := evaluateCertificate(db, 1, fixture.Course.ID)
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestCertificateIssuedAfterCompletion(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 2)
	enrollment := seedEnrollment(t, db, 1, fixture.Course.ID)
	completeAllSessions(t, db, 1, fixture)

	certificate, err := evaluateCertificate(db, 1, fixture.Course.ID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.ID, certificate.EnrollmentID)
	assert.True(t, certificate.IsValid)
	assert.Nil(t, certificate.FinalScore, "no final assessment required")
	assert.True(t, strings.HasPrefix(certificate.CertificateNumber, "LMS-"))
}

func TestCertificateIssuedExactlyOnce(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 1)
	seedEnrollment(t, db, 1, fixture.Course.ID)
	completeAllSessions(t, db, 1, fixture)

	first, err := evaluateCertificate(db, 1, fixture.Course.ID)
	require.NoError(t, err)

	second, err := evaluateCertificate(db, 1, fixture.Course.ID)
	assert.ErrorIs(t, err, ErrAlreadyIssued)
	require.NotNil(t, second)
	assert.Equal(t, first.CertificateNumber, second.CertificateNumber, "the existing certificate is returned")

	var count int64
	db.Model(&courseModels.Certificate{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCertificateRequiresPassedFinalAssessment(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 1)
	require.NoError(t, db.Model(&courseModels.Course{}).Where("id = ?", fixture.Course.ID).
		Update("require_final_assessment", true).Error)

	seedEnrollment(t, db, 1, fixture.Course.ID)
	completeAllSessions(t, db, 1, fixture)

	quiz, questions, correct, wrong := seedQuiz(t, db, fixture.Course.ID, nil, 2, nil)

	// Completed the sessions but failed the final: not eligible
	attempt, err := startQuizAttempt(db, 1, quiz.ID)
	require.NoError(t, err)
	_, _, _, err = submitQuizAttempt(db, 1, attempt.ID, []AnswerInput{
		{QuestionID: questions[0].ID, OptionID: wrong[questions[0].ID]},
		{QuestionID: questions[1].ID, OptionID: wrong[questions[1].ID]},
	})
	require.NoError(t, err)

	_, err = evaluateCertificate(db, 1, fixture.Course.ID)
	assert.ErrorIs(t, err, ErrNotEligible)

	// Pass the final and the certificate carries the score
	attempt, err = startQuizAttempt(db, 1, quiz.ID)
	require.NoError(t, err)
	_, _, _, err = submitQuizAttempt(db, 1, attempt.ID, []AnswerInput{
		{QuestionID: questions[0].ID, OptionID: correct[questions[0].ID]},
		{QuestionID: questions[1].ID, OptionID: correct[questions[1].ID]},
	})
	require.NoError(t, err)

	certificate, err := evaluateCertificate(db, 1, fixture.Course.ID)
	require.NoError(t, err)
	require.NotNil(t, certificate.FinalScore)
	assert.Equal(t, 100, *certificate.FinalScore)
}

func TestCertificateRecordsHighestPassingScore(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 1)
	require.NoError(t, db.Model(&courseModels.Course{}).Where("id = ?", fixture.Course.ID).
		Update("require_final_assessment", true).Error)

	seedEnrollment(t, db, 1, fixture.Course.ID)
	completeAllSessions(t, db, 1, fixture)

	// Passing bar at 50 so both attempts below count as passes
	quiz, questions, correct, wrong := seedQuiz(t, db, fixture.Course.ID, nil, 2, func(q *courseModels.Quiz) {
		q.PassingScore = 50
	})

	// First pass: 50 percent
	attempt, err := startQuizAttempt(db, 1, quiz.ID)
	require.NoError(t, err)
	_, _, _, err = submitQuizAttempt(db, 1, attempt.ID, []AnswerInput{
		{QuestionID: questions[0].ID, OptionID: correct[questions[0].ID]},
		{QuestionID: questions[1].ID, OptionID: wrong[questions[1].ID]},
	})
	require.NoError(t, err)

	// Second pass: 100 percent
	attempt, err = startQuizAttempt(db, 1, quiz.ID)
	require.NoError(t, err)
	_, _, _, err = submitQuizAttempt(db, 1, attempt.ID, []AnswerInput{
		{QuestionID: questions[0].ID, OptionID: correct[questions[0].ID]},
		{QuestionID: questions[1].ID, OptionID: correct[questions[1].ID]},
	})
	require.NoError(t, err)

	certificate, err := evaluateCertificate(db, 1, fixture.Course.ID)
	require.NoError(t, err)
	require.NotNil(t, certificate.FinalScore)
	assert.Equal(t, 100, *certificate.FinalScore)
}

func TestCertificateReissueAfterInvalidation(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 1)
	seedEnrollment(t, db, 1, fixture.Course.ID)
	completeAllSessions(t, db, 1, fixture)

	first, err := evaluateCertificate(db, 1, fixture.Course.ID)
	require.NoError(t, err)

	require.NoError(t, db.Model(&courseModels.Certificate{}).Where("id = ?", first.ID).
		Updates(map[string]interface{}{"is_valid": false, "invalidation_reason": "issued in error"}).Error)

	second, err := evaluateCertificate(db, 1, fixture.Course.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.CertificateNumber, second.CertificateNumber)
	assert.True(t, second.IsValid)
}

func TestCertificateUnknownEnrollment(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 1)

	_, err := evaluateCertificate(db, 7, fixture.Course.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
