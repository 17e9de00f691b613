package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
)

// AdminCreateQuiz creates a quiz for a session, or a course-level final
// assessment when session_id is omitted
func AdminCreateQuiz(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData, ok := c.Locals("validatedQuiz").(*struct {
		Title              string `json:"title"`
		SessionID          *uint  `json:"session_id"`
		PassingScore       *int   `json:"passing_score"`
		MaxAttempts        *int   `json:"max_attempts"`
		TimeLimitMinutes   int    `json:"time_limit_minutes"`
		ShuffleQuestions   bool   `json:"shuffle_questions"`
		ShowCorrectAnswers bool   `json:"show_correct_answers"`
		IsFinalAssessment  bool   `json:"is_final_assessment"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.SessionID != nil {
		var session courseModels.Session
		if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?",
			*reqData.SessionID, courseID, false).First(&session).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found in this course!", nil)
		}
	} else if !reqData.IsFinalAssessment {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Quiz needs a session or the final assessment flag!", nil)
	}

	quiz := courseModels.Quiz{
		CourseID:           uint(courseID),
		SessionID:          reqData.SessionID,
		Title:              reqData.Title,
		TimeLimitMinutes:   reqData.TimeLimitMinutes,
		ShuffleQuestions:   reqData.ShuffleQuestions,
		ShowCorrectAnswers: reqData.ShowCorrectAnswers,
		IsFinalAssessment:  reqData.IsFinalAssessment,
		PassingScore:       70,
		MaxAttempts:        3,
	}
	if reqData.PassingScore != nil {
		quiz.PassingScore = *reqData.PassingScore
	}
	if reqData.MaxAttempts != nil {
		quiz.MaxAttempts = *reqData.MaxAttempts
	}

	if err := database.Database.Db.Create(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create quiz!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", quiz)
}

// AdminAddQuestion adds a single-choice question with its options to a quiz.
// Exactly one option must be marked correct.
func AdminAddQuestion(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	quizID := c.Locals("quizID").(int)

	var quiz courseModels.Quiz
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", quizID, false).First(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	reqData, ok := c.Locals("validatedQuestion").(*struct {
		Prompt     string `json:"prompt" validate:"required,min=3"`
		Points     *int   `json:"points"`
		OrderIndex int    `json:"order_index"`
		Options    []struct {
			Text      string `json:"text" validate:"required"`
			IsCorrect bool   `json:"is_correct"`
		} `json:"options" validate:"required,min=2,dive"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	correctCount := 0
	for _, option := range reqData.Options {
		if option.IsCorrect {
			correctCount++
		}
	}
	if correctCount != 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Exactly one option must be marked correct!", nil)
	}

	question := courseModels.Question{
		QuizID:     quiz.ID,
		Prompt:     reqData.Prompt,
		OrderIndex: reqData.OrderIndex,
		Points:     1,
	}
	if reqData.Points != nil && *reqData.Points > 0 {
		question.Points = *reqData.Points
	}

	if err := database.Database.Db.Create(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create question!", nil)
	}

	options := make([]courseModels.Option, len(reqData.Options))
	for i, option := range reqData.Options {
		options[i] = courseModels.Option{
			QuestionID: question.ID,
			Text:       option.Text,
			IsCorrect:  option.IsCorrect,
			OrderIndex: i,
		}
		if err := database.Database.Db.Create(&options[i]).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create options!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question added successfully!", fiber.Map{
		"question": question,
		"options":  options,
	})
}

// AdminDeleteQuestion soft deletes a question and its options
func AdminDeleteQuestion(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	questionID := c.Locals("questionID").(int)

	var question courseModels.Question
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", questionID, false).First(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	question.IsDeleted = true
	if err := database.Database.Db.Save(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete question!", nil)
	}

	database.Database.Db.Model(&courseModels.Option{}).
		Where("question_id = ?", question.ID).Update("is_deleted", true)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully!", nil)
}

// AdminPublishQuiz publishes a quiz once it has at least one question
func AdminPublishQuiz(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	quizID := c.Locals("quizID").(int)

	var quiz courseModels.Quiz
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", quizID, false).First(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	var questionCount int64
	database.Database.Db.Model(&courseModels.Question{}).
		Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).Count(&questionCount)
	if questionCount == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Quiz has no questions!", nil)
	}

	quiz.IsPublished = true
	if err := database.Database.Db.Save(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to publish quiz!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz published successfully!", quiz)
}

// AdminGetQuiz returns a quiz with questions and options including the
// answer key
func AdminGetQuiz(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	quizID := c.Locals("quizID").(int)

	var quiz courseModels.Quiz
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", quizID, false).First(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	var questions []courseModels.Question
	database.Database.Db.Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).Order("order_index asc").Find(&questions)

	type QuestionWithOptions struct {
		courseModels.Question
		Options []courseModels.Option `json:"options"`
	}

	result := make([]QuestionWithOptions, len(questions))
	for i, question := range questions {
		var options []courseModels.Option
		database.Database.Db.Where("question_id = ? AND is_deleted = ?", question.ID, false).Order("order_index asc").Find(&options)
		result[i] = QuestionWithOptions{Question: question, Options: options}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", fiber.Map{
		"quiz":      quiz,
		"questions": result,
	})
}
