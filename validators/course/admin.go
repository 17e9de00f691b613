package courseValidator

import (
	"lms/middleware"
	courseModels "lms/models/course"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ============ Course Validators ============

// CreateCourseAdmin validates admin course creation request
func CreateCourseAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title                     string `json:"title"`
			Description               string `json:"description"`
			Author                    string `json:"author"`
			ThumbnailURL              string `json:"thumbnail_url"`
			PriceCents                int64  `json:"price_cents"`
			RequireSequentialProgress bool   `json:"require_sequential_progress"`
			RequireFinalAssessment    bool   `json:"require_final_assessment"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)
		reqData.Author = strings.TrimSpace(reqData.Author)

		if reqData.Title == "" {
			errors["title"] = "Title is required!"
		} else if len(reqData.Title) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		if reqData.Description == "" {
			errors["description"] = "Description is required!"
		} else if len(reqData.Description) < 5 {
			errors["description"] = "Description must be at least 5 characters long!"
		}

		if reqData.Author == "" {
			errors["author"] = "Author is required!"
		}

		if reqData.PriceCents < 0 {
			errors["price_cents"] = "Price must not be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// UpdateCourseAdmin validates admin course update request
func UpdateCourseAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title                     string `json:"title"`
			Description               string `json:"description"`
			Author                    string `json:"author"`
			ThumbnailURL              string `json:"thumbnail_url"`
			PriceCents                *int64 `json:"price_cents"`
			Status                    string `json:"status"`
			RequireSequentialProgress *bool  `json:"require_sequential_progress"`
			RequireFinalAssessment    *bool  `json:"require_final_assessment"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Status != "" &&
			reqData.Status != courseModels.CourseDraft &&
			reqData.Status != courseModels.CourseActive &&
			reqData.Status != courseModels.CourseInactive {
			errors["status"] = "Status must be DRAFT, ACTIVE or INACTIVE!"
		}

		if reqData.PriceCents != nil && *reqData.PriceCents < 0 {
			errors["price_cents"] = "Price must not be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

// ============ Module Validators ============

// CreateModuleAdmin validates module creation request
func CreateModuleAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			OrderIndex  int    `json:"order_index"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		if reqData.Title == "" {
			errors["title"] = "Title is required!"
		}
		if reqData.OrderIndex < 0 {
			errors["order_index"] = "Order index must not be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

// UpdateModuleAdmin validates module update request
func UpdateModuleAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			OrderIndex  *int   `json:"order_index"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.OrderIndex != nil && *reqData.OrderIndex < 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"order_index": "Order index must not be negative!",
			})
		}

		c.Locals("validatedModuleUpdate", reqData)
		return c.Next()
	}
}

// ============ Session Validators ============

func validSessionKind(kind string) bool {
	switch kind {
	case courseModels.SessionKindVideo, courseModels.SessionKindText,
		courseModels.SessionKindQuiz, courseModels.SessionKindLive:
		return true
	}
	return false
}

// CreateSessionAdmin validates session creation request
func CreateSessionAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
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

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		if reqData.Title == "" {
			errors["title"] = "Title is required!"
		}

		if reqData.Kind == "" {
			reqData.Kind = courseModels.SessionKindVideo
		} else if !validSessionKind(reqData.Kind) {
			errors["kind"] = "Kind must be VIDEO, TEXT, QUIZ or LIVE!"
		}

		if reqData.Kind == courseModels.SessionKindVideo && strings.TrimSpace(reqData.VideoURL) == "" {
			errors["video_url"] = "Video URL is required for VIDEO sessions!"
		}

		if reqData.RequiredWatchPercent != nil &&
			(*reqData.RequiredWatchPercent < 0 || *reqData.RequiredWatchPercent > 100) {
			errors["required_watch_percent"] = "Required watch percent must be between 0 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSession", reqData)
		return c.Next()
	}
}

// UpdateSessionAdmin validates session update request
func UpdateSessionAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
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

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.RequiredWatchPercent != nil &&
			(*reqData.RequiredWatchPercent < 0 || *reqData.RequiredWatchPercent > 100) {
			errors["required_watch_percent"] = "Required watch percent must be between 0 and 100!"
		}
		if reqData.OrderIndex != nil && *reqData.OrderIndex < 0 {
			errors["order_index"] = "Order index must not be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSessionUpdate", reqData)
		return c.Next()
	}
}

// ============ Quiz Validators ============

// CreateQuizAdmin validates quiz creation request
func CreateQuizAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title              string `json:"title"`
			SessionID          *uint  `json:"session_id"`
			PassingScore       *int   `json:"passing_score"`
			MaxAttempts        *int   `json:"max_attempts"`
			TimeLimitMinutes   int    `json:"time_limit_minutes"`
			ShuffleQuestions   bool   `json:"shuffle_questions"`
			ShowCorrectAnswers bool   `json:"show_correct_answers"`
			IsFinalAssessment  bool   `json:"is_final_assessment"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		if reqData.Title == "" {
			errors["title"] = "Title is required!"
		}
		if reqData.PassingScore != nil && (*reqData.PassingScore < 1 || *reqData.PassingScore > 100) {
			errors["passing_score"] = "Passing score must be between 1 and 100!"
		}
		if reqData.MaxAttempts != nil && *reqData.MaxAttempts < 0 {
			errors["max_attempts"] = "Max attempts must not be negative!"
		}
		if reqData.TimeLimitMinutes < 0 {
			errors["time_limit_minutes"] = "Time limit must not be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuiz", reqData)
		return c.Next()
	}
}

// AddQuestionAdmin validates a question with its options
func AddQuestionAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Prompt     string `json:"prompt" validate:"required,min=3"`
			Points     *int   `json:"points"`
			OrderIndex int    `json:"order_index"`
			Options    []struct {
				Text      string `json:"text" validate:"required"`
				IsCorrect bool   `json:"is_correct"`
			} `json:"options" validate:"required,min=2,dive"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedQuestion", reqData)
		return c.Next()
	}
}

// ============ Certificate Validators ============

// InvalidateCertificateAdmin validates the invalidation reason payload
func InvalidateCertificateAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Reason string `json:"reason" validate:"required,min=3,max=500"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedInvalidation", reqData)
		return c.Next()
	}
}
