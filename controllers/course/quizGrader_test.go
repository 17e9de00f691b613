package controllers

import (
	courseModels "lms/models/course"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAttemptSnapshotsQuestionSet(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 1)
	seedEnrollment(t, db, 1, fixture.Course.ID)
	quiz, _, _, _ := seedQuiz(t, db, fixture.Course.ID, &fixture.Sessions[0].ID, 4, nil)

	attempt, err := startQuizAttempt(db, 1, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, attempt.AttemptNumber)
	assert.Equal(t, 4, attempt.TotalQuestions)
	assert.Equal(t, 4, attempt.TotalPoints)
	assert.Nil(t, attempt.CompletedAt)
}

func TestStartAttemptLimit(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 1)
	seedEnrollment(t, db, 1, fixture.Course.ID)
	quiz, _, _, _ := seedQuiz(t, db, fixture.Course.ID, &fixture.Sessions[0].ID, 1, func(q *courseModels.Quiz) {
		q.MaxAttempts = 1
	})

	_, err := startQuizAttempt(db, 1, quiz.ID)
	require.NoError(t, err)

	// The open attempt already counts against the limit
	_, err = startQuizAttempt(db, 1, quiz.ID)
	assert.ErrorIs(t, err, ErrAttemptLimit)
}

func TestStartAttemptUnlimited(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 1)
	seedEnrollment(t, db, 1, fixture.Course.ID)
	quiz, _, _, _ := seedQuiz(t, db, fixture.Course.ID, &fixture.Sessions[0].ID, 1, func(q *courseModels.Quiz) {
		q.MaxAttempts = 0
	})

	for i := 1; i <= 5; i++ {
		attempt, err := startQuizAttempt(db, 1, quiz.ID)
		require.NoError(t, err)
		assert.Equal(t, i, attempt.AttemptNumber)
	}
}

func TestZeroValuedQuizPolicyPersists(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 1)

	quiz := courseModels.Quiz{
		CourseID:    fixture.Course.ID,
		SessionID:   &fixture.Sessions[0].ID,
		Title:       "Open practice",
		IsPublished: true,
	}
	require.NoError(t, db.Create(&quiz).Error)

	// Explicit zeros must survive the round trip: 0 attempts means
	// unlimited and must not come back as a non-zero column default
	var reloaded courseModels.Quiz
	require.NoError(t, db.First(&reloaded, quiz.ID).Error)
	assert.Equal(t, 0, reloaded.MaxAttempts)
	assert.Equal(t, 0, reloaded.PassingScore)
	assert.Equal(t, 0, reloaded.TimeLimitMinutes)
}

func TestStartAttemptRequiresEnrollment(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 1)
	quiz, _, _, _ := seedQuiz(t, db, fixture.Course.ID, &fixture.Sessions[0].ID, 1, nil)

	// No enrollment for this user
	_, err := startQuizAttempt(db, 2, quiz.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitAttemptRequiresEnrollment(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 1)
	enrollment := seedEnrollment(t, db, 1, fixture.Course.ID)
	quiz, questions, correct, _ := seedQuiz(t, db, fixture.Course.ID, &fixture.Sessions[0].ID, 1, nil)

	attempt, err := startQuizAttempt(db, 1, quiz.ID)
	require.NoError(t, err)

	// Enrollment revoked between start and submission
	require.NoError(t, db.Model(&courseModels.Enrollment{}).Where("id = ?", enrollment.ID).
		Update("is_deleted", true).Error)

	answers := []AnswerInput{{QuestionID: questions[0].ID, OptionID: correct[questions[0].ID]}}
	_, _, _, err = submitQuizAttempt(db, 1, attempt.ID, answers)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStartAttemptUnpublishedQuiz(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 1)
	seedEnrollment(t, db, 1, fixture.Course.ID)
	quiz, _, _, _ := seedQuiz(t, db, fixture.Course.ID, &fixture.Sessions[0].ID, 1, func(q *courseModels.Quiz) {
		q.IsPublished = false
	})

	_, err := startQuizAttempt(db, 1, quiz.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitAttemptFullCreditGrading(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 1)
	seedEnrollment(t, db, 1, fixture.Course.ID)
	quiz, questions, correct, wrong := seedQuiz(t, db, fixture.Course.ID, &fixture.Sessions[0].ID, 2, nil)

	attempt, err := startQuizAttempt(db, 1, quiz.ID)
	require.NoError(t, err)

	// One right, one wrong: 50 percent, below the 70 percent bar
	answers := []AnswerInput{
		{QuestionID: questions[0].ID, OptionID: correct[questions[0].ID]},
		{QuestionID: questions[1].ID, OptionID: wrong[questions[1].ID]},
	}
	graded, _, _, err := submitQuizAttempt(db, 1, attempt.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, 1, graded.Score)
	assert.Equal(t, 1, graded.CorrectAnswers)
	assert.False(t, graded.IsPassed)
	require.NotNil(t, graded.CompletedAt)

	// All right on the second attempt: 100 percent, passed
	attempt, err = startQuizAttempt(db, 1, quiz.ID)
	require.NoError(t, err)
	answers = []AnswerInput{
		{QuestionID: questions[0].ID, OptionID: correct[questions[0].ID]},
		{QuestionID: questions[1].ID, OptionID: correct[questions[1].ID]},
	}
	graded, _, _, err = submitQuizAttempt(db, 1, attempt.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, 2, graded.Score)
	assert.True(t, graded.IsPassed)
}

func TestSubmitAttemptIgnoresForeignAndDuplicateAnswers(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 1)
	seedEnrollment(t, db, 1, fixture.Course.ID)
	quiz, questions, correct, _ := seedQuiz(t, db, fixture.Course.ID, &fixture.Sessions[0].ID, 1, nil)

	attempt, err := startQuizAttempt(db, 1, quiz.ID)
	require.NoError(t, err)

	answers := []AnswerInput{
		{QuestionID: questions[0].ID, OptionID: correct[questions[0].ID]},
		{QuestionID: questions[0].ID, OptionID: correct[questions[0].ID]}, // duplicate
		{QuestionID: 9999, OptionID: 1},                                   // not in this quiz
	}
	graded, _, _, err := submitQuizAttempt(db, 1, attempt.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, 1, graded.Score, "a question is credited at most once")
}

func TestSubmitAttemptAlreadySubmitted(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 1)
	seedEnrollment(t, db, 1, fixture.Course.ID)
	quiz, questions, correct, _ := seedQuiz(t, db, fixture.Course.ID, &fixture.Sessions[0].ID, 1, nil)

	attempt, err := startQuizAttempt(db, 1, quiz.ID)
	require.NoError(t, err)

	answers := []AnswerInput{{QuestionID: questions[0].ID, OptionID: correct[questions[0].ID]}}
	_, _, _, err = submitQuizAttempt(db, 1, attempt.ID, answers)
	require.NoError(t, err)

	_, _, _, err = submitQuizAttempt(db, 1, attempt.ID, answers)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestSubmitAttemptWrongOwner(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 1)
	seedEnrollment(t, db, 1, fixture.Course.ID)
	quiz, questions, correct, _ := seedQuiz(t, db, fixture.Course.ID, &fixture.Sessions[0].ID, 1, nil)

	attempt, err := startQuizAttempt(db, 1, quiz.ID)
	require.NoError(t, err)

	answers := []AnswerInput{{QuestionID: questions[0].ID, OptionID: correct[questions[0].ID]}}
	_, _, _, err = submitQuizAttempt(db, 2, attempt.ID, answers)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitAttemptTimeExceeded(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 1)
	seedEnrollment(t, db, 1, fixture.Course.ID)
	quiz, questions, correct, _ := seedQuiz(t, db, fixture.Course.ID, &fixture.Sessions[0].ID, 1, func(q *courseModels.Quiz) {
		q.TimeLimitMinutes = 10
	})

	attempt, err := startQuizAttempt(db, 1, quiz.ID)
	require.NoError(t, err)

	// Backdate past the limit plus the grace minute
	staleStart := time.Now().Add(-12 * time.Minute)
	require.NoError(t, db.Model(&courseModels.QuizAttempt{}).Where("id = ?", attempt.ID).
		Update("started_at", staleStart).Error)

	answers := []AnswerInput{{QuestionID: questions[0].ID, OptionID: correct[questions[0].ID]}}
	_, _, _, err = submitQuizAttempt(db, 1, attempt.ID, answers)
	assert.ErrorIs(t, err, ErrTimeExceeded)

	// The attempt is closed with a zero score and still counts
	var closed courseModels.QuizAttempt
	require.NoError(t, db.First(&closed, attempt.ID).Error)
	assert.NotNil(t, closed.CompletedAt)
	assert.Equal(t, 0, closed.Score)
	assert.False(t, closed.IsPassed)
}

func TestSubmitWithinGracePeriod(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, false, 1)
	seedEnrollment(t, db, 1, fixture.Course.ID)
	quiz, questions, correct, _ := seedQuiz(t, db, fixture.Course.ID, &fixture.Sessions[0].ID, 1, func(q *courseModels.Quiz) {
		q.TimeLimitMinutes = 10
	})

	attempt, err := startQuizAttempt(db, 1, quiz.ID)
	require.NoError(t, err)

	// 30 seconds over the limit but inside the grace window
	staleStart := time.Now().Add(-10*time.Minute - 30*time.Second)
	require.NoError(t, db.Model(&courseModels.QuizAttempt{}).Where("id = ?", attempt.ID).
		Update("started_at", staleStart).Error)

	answers := []AnswerInput{{QuestionID: questions[0].ID, OptionID: correct[questions[0].ID]}}
	graded, _, _, err := submitQuizAttempt(db, 1, attempt.ID, answers)
	require.NoError(t, err)
	assert.True(t, graded.IsPassed)
}

func TestPassingQuizCompletesGatedSession(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, true, 2)
	enrollment := seedEnrollment(t, db, 1, fixture.Course.ID)
	sessionID := fixture.Sessions[0].ID

	require.NoError(t, db.Model(&courseModels.Session{}).Where("id = ?", sessionID).
		Updates(map[string]interface{}{"require_quiz_completion": true, "required_watch_percent": 0}).Error)

	quiz, questions, correct, _ := seedQuiz(t, db, fixture.Course.ID, &sessionID, 1, nil)

	attempt, err := startQuizAttempt(db, 1, quiz.ID)
	require.NoError(t, err)

	answers := []AnswerInput{{QuestionID: questions[0].ID, OptionID: correct[questions[0].ID]}}
	graded, updated, _, err := submitQuizAttempt(db, 1, attempt.ID, answers)
	require.NoError(t, err)
	require.True(t, graded.IsPassed)

	row := progressRow(t, db, enrollment.ID, sessionID)
	assert.True(t, row.QuizPassed)
	assert.Equal(t, 100, row.QuizScore)
	assert.Equal(t, 1, row.QuizAttempts)
	assert.True(t, row.IsCompleted, "quiz pass satisfies the completion predicate")

	next := progressRow(t, db, enrollment.ID, fixture.Sessions[1].ID)
	assert.True(t, next.IsUnlocked)

	require.NotNil(t, updated)
	assert.Equal(t, 50, updated.Progress)
}

func TestFailedQuizKeepsBestScore(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedCourse(t, db, true, 1)
	enrollment := seedEnrollment(t, db, 1, fixture.Course.ID)
	sessionID := fixture.Sessions[0].ID

	require.NoError(t, db.Model(&courseModels.Session{}).Where("id = ?", sessionID).
		Update("require_quiz_completion", true).Error)

	quiz, questions, correct, wrong := seedQuiz(t, db, fixture.Course.ID, &sessionID, 2, nil)

	// First attempt: 50 percent, failed
	attempt, err := startQuizAttempt(db, 1, quiz.ID)
	require.NoError(t, err)
	_, _, _, err = submitQuizAttempt(db, 1, attempt.ID, []AnswerInput{
		{QuestionID: questions[0].ID, OptionID: correct[questions[0].ID]},
		{QuestionID: questions[1].ID, OptionID: wrong[questions[1].ID]},
	})
	require.NoError(t, err)

	row := progressRow(t, db, enrollment.ID, sessionID)
	assert.Equal(t, 50, row.QuizScore)
	assert.False(t, row.QuizPassed)

	// Second attempt: 0 percent must not lower the stored best
	attempt, err = startQuizAttempt(db, 1, quiz.ID)
	require.NoError(t, err)
	_, _, _, err = submitQuizAttempt(db, 1, attempt.ID, []AnswerInput{
		{QuestionID: questions[0].ID, OptionID: wrong[questions[0].ID]},
		{QuestionID: questions[1].ID, OptionID: wrong[questions[1].ID]},
	})
	require.NoError(t, err)

	row = progressRow(t, db, enrollment.ID, sessionID)
	assert.Equal(t, 50, row.QuizScore)
	assert.Equal(t, 2, row.QuizAttempts)
}
