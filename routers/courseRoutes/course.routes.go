package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all learner-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Course catalog
	courseGroup.Get("/list", middleware.JWTMiddleware, controllers.GetAllCourses)
	courseGroup.Get("/:course_id", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseDetails)

	// Enrollment
	courseGroup.Post("/:course_id/enroll", middleware.JWTMiddleware, validators.CourseID(), controllers.EnrollInCourse)

	// Progress tracking
	courseGroup.Get("/:course_id/progress", middleware.JWTMiddleware, validators.CourseID(), controllers.GetUserProgress)
	courseGroup.Get("/:course_id/resume", middleware.JWTMiddleware, validators.CourseID(), controllers.GetResumeSession)

	// Session progress
	sessionGroup := app.Group("/session")
	sessionGroup.Post("/:session_id/watch", middleware.JWTMiddleware, validators.SessionID(), validators.WatchProgress(), controllers.UpdateWatchProgress)
	sessionGroup.Post("/:session_id/resources", middleware.JWTMiddleware, validators.SessionID(), controllers.MarkResourcesAccessed)
	sessionGroup.Post("/:session_id/complete", middleware.JWTMiddleware, validators.SessionID(), controllers.CompleteSession)

	// Quizzes
	quizGroup := app.Group("/quiz")
	quizGroup.Get("/:quiz_id", middleware.JWTMiddleware, validators.QuizID(), controllers.GetQuizDetails)
	quizGroup.Post("/:quiz_id/attempt", middleware.JWTMiddleware, validators.QuizID(), controllers.StartQuizAttempt)
	quizGroup.Get("/:quiz_id/attempts", middleware.JWTMiddleware, validators.QuizID(), controllers.GetQuizAttempts)
	quizGroup.Post("/attempt/:attempt_id/submit", middleware.JWTMiddleware, validators.AttemptID(), validators.QuizSubmission(), controllers.SubmitQuizAttempt)

	// Certificates and ratings
	courseGroup.Post("/:course_id/certificate", middleware.JWTMiddleware, validators.CourseID(), controllers.GenerateCertificate)
	courseGroup.Post("/:course_id/rating", middleware.JWTMiddleware, validators.CourseID(), validators.Rating(), controllers.RateCourse)

	// User-centric listings
	userGroup := app.Group("/user")
	userGroup.Get("/enrollments", middleware.JWTMiddleware, controllers.GetUserEnrollments)
	userGroup.Get("/certificates", middleware.JWTMiddleware, controllers.GetUserCertificates)
}
