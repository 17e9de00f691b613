package controllers

import (
	"errors"
	"fmt"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// newCertificateNumber builds a human-readable certificate number such as
// LMS-2026-3F92A1C4. The random part comes from a UUID, so collisions are
// not a practical concern.
func newCertificateNumber() string {
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("LMS-%d-%s", time.Now().Year(), random[:8])
}

// evaluateCertificate checks eligibility and issues the certificate in one
// step. Eligibility means the enrollment reached COMPLETED and, when the
// course requires a final assessment, the learner holds at least one passed
// attempt on it. The recorded final score is the highest passing one. Only
// a single valid certificate may exist per enrollment.
func evaluateCertificate(db *gorm.DB, userID, courseID uint) (*courseModels.Certificate, error) {
	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var existing courseModels.Certificate
	err := db.Where("enrollment_id = ? AND is_valid = ? AND is_deleted = ?", enrollment.ID, true, false).
		First(&existing).Error
	if err == nil {
		return &existing, ErrAlreadyIssued
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if enrollment.Status != courseModels.EnrollmentCompleted {
		return nil, ErrNotEligible
	}

	var finalScore *int
	if course.RequireFinalAssessment {
		var finalQuiz courseModels.Quiz
		err := db.Where("course_id = ? AND is_final_assessment = ? AND is_deleted = ? AND is_published = ?",
			courseID, true, false, true).First(&finalQuiz).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Course demands an assessment that does not exist yet
				return nil, ErrNotEligible
			}
			return nil, err
		}

		var passed []courseModels.QuizAttempt
		db.Where("user_id = ? AND quiz_id = ? AND is_passed = ? AND is_deleted = ?", userID, finalQuiz.ID, true, false).
			Find(&passed)
		if len(passed) == 0 {
			return nil, ErrNotEligible
		}

		best := 0
		for _, attempt := range passed {
			if attempt.TotalPoints == 0 {
				continue
			}
			percent := attempt.Score * 100 / attempt.TotalPoints
			if percent > best {
				best = percent
			}
		}
		finalScore = &best
	}

	certificate := courseModels.Certificate{
		UserID:            userID,
		CourseID:          courseID,
		EnrollmentID:      enrollment.ID,
		CertificateNumber: newCertificateNumber(),
		IssuedAt:          time.Now(),
		FinalScore:        finalScore,
		IsValid:           true,
	}

	if err := db.Create(&certificate).Error; err != nil {
		return nil, err
	}

	return &certificate, nil
}

// GenerateCertificate issues the caller's certificate for a completed course
func GenerateCertificate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	certificate, err := evaluateCertificate(database.Database.Db, userID, uint(courseID))
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyIssued):
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate already issued!", certificate)
		case errors.Is(err, ErrNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course or enrollment not found!", nil)
		case errors.Is(err, ErrNotEligible):
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Course requirements not yet met!", nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to issue certificate!", nil)
		}
	}

	var course courseModels.Course
	database.Database.Db.Where("id = ?", courseID).First(&course)

	utils.NotifyEvent("certificate.issued", map[string]interface{}{
		"user_id":            userID,
		"course_id":          courseID,
		"certificate_number": certificate.CertificateNumber,
	})

	go utils.SendCertificateEmail(user.Email, user.Name, course.Title, certificate.CertificateNumber)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate issued!", certificate)
}

// GetUserCertificates lists every valid certificate of the caller
func GetUserCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	var certificates []courseModels.Certificate
	if err := database.Database.Db.Where("user_id = ? AND is_valid = ? AND is_deleted = ?", userID, true, false).
		Order("issued_at desc").Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": certificates,
		"total":        len(certificates),
	})
}

// AdminInvalidateCertificate revokes a certificate with a reason. The learner
// may re-request a certificate afterwards; it will get a new number.
func AdminInvalidateCertificate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var admin models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&admin).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if admin.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	certificateID := c.Locals("certificateID").(int)

	reqData, ok := c.Locals("validatedInvalidation").(*struct {
		Reason string `json:"reason" validate:"required,min=3,max=500"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var certificate courseModels.Certificate
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", certificateID, false).First(&certificate).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
	}

	if !certificate.IsValid {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate is already invalidated!", nil)
	}

	certificate.IsValid = false
	certificate.InvalidationReason = reqData.Reason

	if err := database.Database.Db.Save(&certificate).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to invalidate certificate!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate invalidated!", certificate)
}
