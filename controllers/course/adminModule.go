package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
)

func requireAdmin(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != "ADMIN" {
		return nil, middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	return &user, nil
}

// AdminCreateModule adds a module to a course
func AdminCreateModule(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData, ok := c.Locals("validatedModule").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		OrderIndex  int    `json:"order_index"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	module := courseModels.Module{
		CourseID:    uint(courseID),
		Title:       reqData.Title,
		Description: reqData.Description,
		OrderIndex:  reqData.OrderIndex,
	}

	if err := database.Database.Db.Create(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

// AdminUpdateModule updates a module's title, description or position
func AdminUpdateModule(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	moduleID := c.Locals("moduleID").(int)

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	reqData, ok := c.Locals("validatedModuleUpdate").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		OrderIndex  *int   `json:"order_index"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		module.Title = reqData.Title
	}
	if reqData.Description != "" {
		module.Description = reqData.Description
	}
	if reqData.OrderIndex != nil {
		module.OrderIndex = *reqData.OrderIndex
	}

	if err := database.Database.Db.Save(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

// AdminDeleteModule soft deletes a module
func AdminDeleteModule(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	moduleID := c.Locals("moduleID").(int)

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	module.IsDeleted = true
	if err := database.Database.Db.Save(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", nil)
}

// AdminCreateSession adds a session to a module. The course id is
// denormalized onto the session so learning-order queries stay on one table.
func AdminCreateSession(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	moduleID := c.Locals("moduleID").(int)

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	reqData, ok := c.Locals("validatedSession").(*struct {
		Title                 string `json:"title"`
		Description           string `json:"description"`
		Kind                  string `json:"kind"`
		VideoURL              string `json:"video_url"`
		TextContent           string `json:"text_content"`
		MeetingURL            string `json:"meeting_url"`
		OrderIndex            int    `json:"order_index"`
		RequiredWatchPercent  *int   `json:"required_watch_percent"`
		RequireResourceAccess bool   `json:"require_resource_access"`
		RequireQuizCompletion bool   `json:"require_quiz_completion"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	session := courseModels.Session{
		ModuleID:              module.ID,
		CourseID:              module.CourseID,
		Title:                 reqData.Title,
		Description:           reqData.Description,
		Kind:                  reqData.Kind,
		VideoURL:              reqData.VideoURL,
		TextContent:           reqData.TextContent,
		MeetingURL:            reqData.MeetingURL,
		OrderIndex:            reqData.OrderIndex,
		RequireResourceAccess: reqData.RequireResourceAccess,
		RequireQuizCompletion: reqData.RequireQuizCompletion,
	}
	if reqData.RequiredWatchPercent != nil {
		session.RequiredWatchPercent = *reqData.RequiredWatchPercent
	} else {
		session.RequiredWatchPercent = 80
	}

	if err := database.Database.Db.Create(&session).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create session!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Session created successfully!", session)
}

// AdminUpdateSession updates a session's content or gating criteria
func AdminUpdateSession(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	sessionID := c.Locals("sessionID").(int)

	var session courseModels.Session
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", sessionID, false).First(&session).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
	}

	reqData, ok := c.Locals("validatedSessionUpdate").(*struct {
		Title                 string `json:"title"`
		Description           string `json:"description"`
		VideoURL              string `json:"video_url"`
		TextContent           string `json:"text_content"`
		MeetingURL            string `json:"meeting_url"`
		OrderIndex            *int   `json:"order_index"`
		RequiredWatchPercent  *int   `json:"required_watch_percent"`
		RequireResourceAccess *bool  `json:"require_resource_access"`
		RequireQuizCompletion *bool  `json:"require_quiz_completion"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		session.Title = reqData.Title
	}
	if reqData.Description != "" {
		session.Description = reqData.Description
	}
	if reqData.VideoURL != "" {
		session.VideoURL = reqData.VideoURL
	}
	if reqData.TextContent != "" {
		session.TextContent = reqData.TextContent
	}
	if reqData.MeetingURL != "" {
		session.MeetingURL = reqData.MeetingURL
	}
	if reqData.OrderIndex != nil {
		session.OrderIndex = *reqData.OrderIndex
	}
	if reqData.RequiredWatchPercent != nil {
		session.RequiredWatchPercent = *reqData.RequiredWatchPercent
	}
	if reqData.RequireResourceAccess != nil {
		session.RequireResourceAccess = *reqData.RequireResourceAccess
	}
	if reqData.RequireQuizCompletion != nil {
		session.RequireQuizCompletion = *reqData.RequireQuizCompletion
	}

	if err := database.Database.Db.Save(&session).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update session!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session updated successfully!", session)
}

// AdminPublishSession makes a session visible to learners
func AdminPublishSession(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	sessionID := c.Locals("sessionID").(int)

	var session courseModels.Session
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", sessionID, false).First(&session).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
	}

	session.IsPublished = true
	if err := database.Database.Db.Save(&session).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to publish session!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session published successfully!", session)
}

// AdminDeleteSession soft deletes a session
func AdminDeleteSession(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	sessionID := c.Locals("sessionID").(int)

	var session courseModels.Session
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", sessionID, false).First(&session).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
	}

	session.IsDeleted = true
	session.IsPublished = false
	if err := database.Database.Db.Save(&session).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete session!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session deleted successfully!", nil)
}
