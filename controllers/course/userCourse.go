package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// GetAllCourses lists published active courses with pagination and an
// optional title search
func GetAllCourses(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search")

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	query := database.Database.Db.Model(&courseModels.Course{}).
		Where("is_deleted = ? AND is_published = ? AND status = ?", false, true, courseModels.CourseActive)
	if search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var courses []courseModels.Course
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// GetCourseDetails returns one course with its module and session outline.
// Sessions carry the caller's unlock state when an enrollment exists, so the
// client can render the locked/unlocked curriculum directly.
func GetCourseDetails(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).
		First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var enrollment courseModels.Enrollment
	enrolled := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).
		First(&enrollment).Error == nil

	progressBySession := map[uint]courseModels.SessionProgress{}
	if enrolled {
		var rows []courseModels.SessionProgress
		database.Database.Db.Where("enrollment_id = ? AND is_deleted = ?", enrollment.ID, false).Find(&rows)
		for _, row := range rows {
			progressBySession[row.SessionID] = row
		}
	}

	var modules []courseModels.Module
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).Order("order_index asc").Find(&modules)

	type SessionOutline struct {
		courseModels.Session
		IsUnlocked  bool `json:"is_unlocked"`
		IsCompleted bool `json:"is_completed"`
	}
	type ModuleOutline struct {
		courseModels.Module
		Sessions []SessionOutline `json:"sessions"`
	}

	outline := make([]ModuleOutline, len(modules))
	for i, mod := range modules {
		var sessions []courseModels.Session
		database.Database.Db.Where("module_id = ? AND is_deleted = ? AND is_published = ?", mod.ID, false, true).
			Order("order_index asc, id asc").Find(&sessions)

		sessionOutlines := make([]SessionOutline, len(sessions))
		for j, session := range sessions {
			row := progressBySession[session.ID]
			sessionOutlines[j] = SessionOutline{
				Session:     session,
				IsUnlocked:  row.IsUnlocked,
				IsCompleted: row.IsCompleted,
			}
		}
		outline[i] = ModuleOutline{Module: mod, Sessions: sessionOutlines}
	}

	// Average rating for the detail page
	var avgRating float64
	database.Database.Db.Model(&courseModels.CourseRating{}).
		Where("course_id = ? AND is_deleted = ?", courseID, false).
		Select("COALESCE(AVG(rating), 0)").Scan(&avgRating)

	response := fiber.Map{
		"course":         course,
		"modules":        outline,
		"is_enrolled":    enrolled,
		"average_rating": avgRating,
	}
	if enrolled {
		response["enrollment"] = enrollment
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", response)
}
