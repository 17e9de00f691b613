package courseValidator

import (
	controllers "lms/controllers/course"
	"lms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// validationErrors flattens validator.ValidationErrors into a field->message
// map for the standard validation response
func validationErrors(err error) map[string]string {
	errors := make(map[string]string)
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range fieldErrors {
			errors[fieldError.Field()] = "Failed validation: " + fieldError.Tag()
		}
		return errors
	}
	errors["request"] = "Validation failed!"
	return errors
}

// WatchProgress validates a watch ping. At least one of watch_percent and
// watch_time_delta must be present.
func WatchProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			WatchPercent   *int `json:"watch_percent"`
			WatchTimeDelta *int `json:"watch_time_delta"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.WatchPercent == nil && reqData.WatchTimeDelta == nil {
			errors["body"] = "watch_percent or watch_time_delta is required!"
		}
		if reqData.WatchPercent != nil && *reqData.WatchPercent < 0 {
			errors["watch_percent"] = "Watch percent must not be negative!"
		}
		if reqData.WatchTimeDelta != nil && *reqData.WatchTimeDelta < 0 {
			errors["watch_time_delta"] = "Watch time delta must not be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedWatchProgress", reqData)
		return c.Next()
	}
}

// QuizSubmission validates the answers payload for grading
func QuizSubmission() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Answers []controllers.AnswerInput `json:"answers" validate:"required,min=1,dive"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedQuizSubmission", reqData)
		return c.Next()
	}
}

// Rating validates a 1-5 course rating with an optional comment
func Rating() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Rating  int    `json:"rating" validate:"required,min=1,max=5"`
			Comment string `json:"comment" validate:"max=1000"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedRating", reqData)
		return c.Next()
	}
}
