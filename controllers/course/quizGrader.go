package controllers

import (
	"encoding/json"
	"errors"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"math/rand"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// submissionGrace is added to the quiz time limit before a submission is
// rejected, to absorb client clock skew and network latency
const submissionGrace = time.Minute

// AnswerInput is one submitted answer: the selected option for a question
type AnswerInput struct {
	QuestionID uint `json:"question_id" validate:"required"`
	OptionID   uint `json:"option_id" validate:"required"`
}

// requireEnrollment checks that the learner has a live enrollment in the
// course. Quizzes and attempts are invisible to non-enrolled users.
func requireEnrollment(db *gorm.DB, userID, courseID uint) error {
	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// startQuizAttempt opens a new attempt, enforcing the quiz attempt limit.
// Both completed and in-progress attempts count against the limit, so an
// abandoned attempt is not a free retry. Requires enrollment in the quiz's
// course.
func startQuizAttempt(db *gorm.DB, userID, quizID uint) (*courseModels.QuizAttempt, error) {
	var quiz courseModels.Quiz
	if err := db.Where("id = ? AND is_deleted = ? AND is_published = ?", quizID, false, true).First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := requireEnrollment(db, userID, quiz.CourseID); err != nil {
		return nil, err
	}

	var attemptCount int64
	db.Model(&courseModels.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ? AND is_deleted = ?", userID, quizID, false).
		Count(&attemptCount)

	if quiz.MaxAttempts > 0 && attemptCount >= int64(quiz.MaxAttempts) {
		return nil, ErrAttemptLimit
	}

	// Snapshot the current question set
	var questions []courseModels.Question
	db.Where("quiz_id = ? AND is_deleted = ?", quizID, false).Find(&questions)

	totalPoints := 0
	for _, question := range questions {
		totalPoints += question.Points
	}

	attempt := courseModels.QuizAttempt{
		UserID:         userID,
		QuizID:         quizID,
		AttemptNumber:  int(attemptCount) + 1,
		TotalQuestions: len(questions),
		TotalPoints:    totalPoints,
		StartedAt:      time.Now(),
	}

	if err := db.Create(&attempt).Error; err != nil {
		return nil, err
	}

	return &attempt, nil
}

// submitQuizAttempt grades a submission. Each question credits its full
// point value only when the selected option is the single correct one; there
// is no partial credit. A submission past the time limit (plus grace) closes
// the attempt with a zero score and reports ErrTimeExceeded.
func submitQuizAttempt(db *gorm.DB, userID, attemptID uint, answers []AnswerInput) (*courseModels.QuizAttempt, *courseModels.Enrollment, bool, error) {
	var attempt courseModels.QuizAttempt
	if err := db.Where("id = ? AND user_id = ? AND is_deleted = ?", attemptID, userID, false).First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, false, ErrNotFound
		}
		return nil, nil, false, err
	}

	if attempt.CompletedAt != nil {
		return nil, nil, false, ErrAlreadySubmitted
	}

	var quiz courseModels.Quiz
	if err := db.Where("id = ? AND is_deleted = ?", attempt.QuizID, false).First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, false, ErrNotFound
		}
		return nil, nil, false, err
	}

	if err := requireEnrollment(db, userID, quiz.CourseID); err != nil {
		return nil, nil, false, err
	}

	now := time.Now()
	elapsed := now.Sub(attempt.StartedAt)

	if quiz.TimeLimitMinutes > 0 && elapsed > time.Duration(quiz.TimeLimitMinutes)*time.Minute+submissionGrace {
		// Close the attempt so it still counts against the limit
		attempt.CompletedAt = &now
		attempt.TimeSpentSeconds = int(elapsed.Seconds())
		if err := db.Save(&attempt).Error; err != nil {
			return nil, nil, false, err
		}
		return nil, nil, false, ErrTimeExceeded
	}

	var questions []courseModels.Question
	db.Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).Find(&questions)

	questionByID := make(map[uint]courseModels.Question, len(questions))
	for _, question := range questions {
		questionByID[question.ID] = question
	}

	score := 0
	correctCount := 0
	answered := make(map[uint]bool, len(answers))
	var graded []courseModels.QuestionAnswer

	for _, answer := range answers {
		question, ok := questionByID[answer.QuestionID]
		if !ok || answered[answer.QuestionID] {
			continue // not part of this quiz, or a duplicate answer
		}
		answered[answer.QuestionID] = true

		var option courseModels.Option
		if err := db.Where("id = ? AND question_id = ? AND is_deleted = ?", answer.OptionID, answer.QuestionID, false).First(&option).Error; err != nil {
			continue
		}

		awarded := 0
		if option.IsCorrect {
			awarded = question.Points
			score += question.Points
			correctCount++
		}

		graded = append(graded, courseModels.QuestionAnswer{
			QuestionID:    answer.QuestionID,
			OptionID:      answer.OptionID,
			IsCorrect:     option.IsCorrect,
			PointsAwarded: awarded,
		})
	}

	answersJSON, _ := json.Marshal(answers)

	attempt.Score = score
	attempt.CorrectAnswers = correctCount
	attempt.CompletedAt = &now
	attempt.TimeSpentSeconds = int(elapsed.Seconds())
	attempt.AnswersJSON = answersJSON
	attempt.IsPassed = attempt.TotalPoints > 0 && score*100/attempt.TotalPoints >= quiz.PassingScore

	if err := db.Save(&attempt).Error; err != nil {
		return nil, nil, false, err
	}

	// Per-question records are kept only when the quiz reveals answers
	if quiz.ShowCorrectAnswers {
		for i := range graded {
			graded[i].AttemptID = attempt.ID
			db.Create(&graded[i])
		}
	}

	// Session-bound quizzes feed back into session completion
	if quiz.SessionID != nil {
		percent := 0
		if attempt.TotalPoints > 0 {
			percent = score * 100 / attempt.TotalPoints
		}
		enrollment, courseCompleted, err := recordSessionQuizResult(db, userID, *quiz.SessionID, percent, attempt.IsPassed)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, nil, false, err
		}
		return &attempt, enrollment, courseCompleted, nil
	}

	return &attempt, nil, false, nil
}

// recordSessionQuizResult updates the session progress row after a graded
// attempt. A pass sets the quiz-passed flag and re-evaluates the automatic
// completion predicate; the flag never reverts on a later failed attempt.
func recordSessionQuizResult(db *gorm.DB, userID, sessionID uint, scorePercent int, passed bool) (*courseModels.Enrollment, bool, error) {
	session, enrollment, progress, err := loadSessionState(db, userID, sessionID)
	if err != nil {
		return nil, false, err
	}

	progress.QuizAttempts++
	if scorePercent > progress.QuizScore {
		progress.QuizScore = scorePercent
	}
	if passed {
		progress.QuizPassed = true
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
		return nil, false, err
	}

	if completedNow {
		if err := tryUnlockNext(db, enrollment, session.ID); err != nil {
			return nil, false, err
		}
	}

	return recalcEnrollmentProgress(db, enrollment.ID)
}

// GetQuizDetails returns the quiz with its questions and options. Correct
// answers are never exposed here, and question order is shuffled when the
// quiz asks for it.
func GetQuizDetails(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	quizID := c.Locals("quizID").(int)

	var quiz courseModels.Quiz
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", quizID, false, true).First(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	// Enrollment in the owning course is required to view the quiz
	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, quiz.CourseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	var questions []courseModels.Question
	database.Database.Db.Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).Order("order_index asc").Find(&questions)

	if quiz.ShuffleQuestions {
		rand.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}

	type QuestionWithOptions struct {
		courseModels.Question
		Options []courseModels.Option `json:"options"`
	}

	result := make([]QuestionWithOptions, len(questions))
	for i, question := range questions {
		var options []courseModels.Option
		database.Database.Db.Where("question_id = ? AND is_deleted = ?", question.ID, false).Order("order_index asc").Find(&options)
		// Hide the answer key
		for j := range options {
			options[j].IsCorrect = false
		}
		result[i] = QuestionWithOptions{Question: question, Options: options}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", fiber.Map{
		"quiz":      quiz,
		"questions": result,
	})
}

// StartQuizAttempt opens a new attempt for the caller
func StartQuizAttempt(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	quizID := c.Locals("quizID").(int)

	attempt, err := startQuizAttempt(database.Database.Db, userID, uint(quizID))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
		case errors.Is(err, ErrAttemptLimit):
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "No attempts left for this quiz!", nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start attempt!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Attempt started!", attempt)
}

// SubmitQuizAttempt grades the caller's open attempt
func SubmitQuizAttempt(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	attemptID := c.Locals("attemptID").(int)

	reqData, ok := c.Locals("validatedQuizSubmission").(*struct {
		Answers []AnswerInput `json:"answers" validate:"required,min=1,dive"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	attempt, enrollment, courseCompleted, err := submitQuizAttempt(database.Database.Db, userID, uint(attemptID), reqData.Answers)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Attempt not found!", nil)
		case errors.Is(err, ErrAlreadySubmitted):
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Attempt already submitted!", nil)
		case errors.Is(err, ErrTimeExceeded):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Time limit exceeded, attempt closed!", nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit attempt!", nil)
		}
	}

	notifyCourseCompleted(userID, enrollment, courseCompleted)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempt submitted!", fiber.Map{
		"attempt_id":      attempt.ID,
		"attempt_number":  attempt.AttemptNumber,
		"score":           attempt.Score,
		"total_points":    attempt.TotalPoints,
		"correct_answers": attempt.CorrectAnswers,
		"is_passed":       attempt.IsPassed,
	})
}

// GetQuizAttempts lists the caller's attempts for a quiz
func GetQuizAttempts(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	quizID := c.Locals("quizID").(int)

	var attempts []courseModels.QuizAttempt
	if err := database.Database.Db.Where("user_id = ? AND quiz_id = ? AND is_deleted = ?", userID, quizID, false).
		Order("attempt_number asc").Find(&attempts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch attempts!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", fiber.Map{
		"attempts": attempts,
		"total":    len(attempts),
	})
}
