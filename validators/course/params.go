package courseValidator

import (
	"lms/middleware"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// paramID parses a positive integer route parameter into Locals under the
// given key
func paramID(param, localKey, label string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Params(param))
		if raw == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, label+" is required!", nil)
		}

		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+label+"!", nil)
		}

		c.Locals(localKey, id)
		return c.Next()
	}
}

func CourseID() fiber.Handler {
	return paramID("course_id", "courseID", "Course ID")
}

func SessionID() fiber.Handler {
	return paramID("session_id", "sessionID", "Session ID")
}

func ModuleID() fiber.Handler {
	return paramID("module_id", "moduleID", "Module ID")
}

func QuizID() fiber.Handler {
	return paramID("quiz_id", "quizID", "Quiz ID")
}

func AttemptID() fiber.Handler {
	return paramID("attempt_id", "attemptID", "Attempt ID")
}

func QuestionID() fiber.Handler {
	return paramID("question_id", "questionID", "Question ID")
}

func EnrollmentID() fiber.Handler {
	return paramID("enrollment_id", "enrollmentID", "Enrollment ID")
}

func CertificateID() fiber.Handler {
	return paramID("certificate_id", "certificateID", "Certificate ID")
}

func TargetUserID() fiber.Handler {
	return paramID("user_id", "targetUserID", "User ID")
}
