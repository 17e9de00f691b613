package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up all admin course management routes
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course")

	// Course CRUD
	adminGroup.Post("/create", middleware.JWTMiddleware, validators.CreateCourseAdmin(), controllers.AdminCreateCourse)
	adminGroup.Get("/list", middleware.JWTMiddleware, controllers.AdminGetAllCourses)
	adminGroup.Put("/:course_id", middleware.JWTMiddleware, validators.CourseID(), validators.UpdateCourseAdmin(), controllers.AdminUpdateCourse)
	adminGroup.Delete("/:course_id", middleware.JWTMiddleware, validators.CourseID(), controllers.AdminDeleteCourse)
	adminGroup.Post("/:course_id/publish", middleware.JWTMiddleware, validators.CourseID(), controllers.AdminPublishCourse)

	// Module management
	adminGroup.Post("/:course_id/module", middleware.JWTMiddleware, validators.CourseID(), validators.CreateModuleAdmin(), controllers.AdminCreateModule)

	moduleGroup := app.Group("/admin/module")
	moduleGroup.Put("/:module_id", middleware.JWTMiddleware, validators.ModuleID(), validators.UpdateModuleAdmin(), controllers.AdminUpdateModule)
	moduleGroup.Delete("/:module_id", middleware.JWTMiddleware, validators.ModuleID(), controllers.AdminDeleteModule)
	moduleGroup.Post("/:module_id/session", middleware.JWTMiddleware, validators.ModuleID(), validators.CreateSessionAdmin(), controllers.AdminCreateSession)

	// Session management
	sessionGroup := app.Group("/admin/session")
	sessionGroup.Put("/:session_id", middleware.JWTMiddleware, validators.SessionID(), validators.UpdateSessionAdmin(), controllers.AdminUpdateSession)
	sessionGroup.Delete("/:session_id", middleware.JWTMiddleware, validators.SessionID(), controllers.AdminDeleteSession)
	sessionGroup.Post("/:session_id/publish", middleware.JWTMiddleware, validators.SessionID(), controllers.AdminPublishSession)

	// Quiz authoring
	adminGroup.Post("/:course_id/quiz", middleware.JWTMiddleware, validators.CourseID(), validators.CreateQuizAdmin(), controllers.AdminCreateQuiz)

	quizGroup := app.Group("/admin/quiz")
	quizGroup.Get("/:quiz_id", middleware.JWTMiddleware, validators.QuizID(), controllers.AdminGetQuiz)
	quizGroup.Post("/:quiz_id/question", middleware.JWTMiddleware, validators.QuizID(), validators.AddQuestionAdmin(), controllers.AdminAddQuestion)
	quizGroup.Post("/:quiz_id/publish", middleware.JWTMiddleware, validators.QuizID(), controllers.AdminPublishQuiz)

	questionGroup := app.Group("/admin/question")
	questionGroup.Delete("/:question_id", middleware.JWTMiddleware, validators.QuestionID(), controllers.AdminDeleteQuestion)

	// Enrollment approval workflow
	adminGroup.Get("/:course_id/enrollments", middleware.JWTMiddleware, validators.CourseID(), controllers.AdminGetCourseEnrollments)
	adminGroup.Get("/:course_id/completed", middleware.JWTMiddleware, validators.CourseID(), controllers.AdminGetCompletedStudents)

	enrollmentGroup := app.Group("/admin/enrollment")
	enrollmentGroup.Post("/:enrollment_id/approve", middleware.JWTMiddleware, validators.EnrollmentID(), controllers.AdminApproveEnrollment)
	enrollmentGroup.Post("/:enrollment_id/reject", middleware.JWTMiddleware, validators.EnrollmentID(), controllers.AdminRejectEnrollment)

	// Student progress and certificates
	studentGroup := app.Group("/admin/student")
	studentGroup.Get("/:user_id/progress", middleware.JWTMiddleware, validators.TargetUserID(), controllers.AdminGetStudentProgress)

	certGroup := app.Group("/admin/certificate")
	certGroup.Post("/:certificate_id/invalidate", middleware.JWTMiddleware, validators.CertificateID(), validators.InvalidateCertificateAdmin(), controllers.AdminInvalidateCertificate)

	// Dashboard
	app.Get("/admin/dashboard", middleware.JWTMiddleware, controllers.AdminDashboardStats)
}
