package presenters

import (
	"bytes"
	"errors"

	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Envelope builds the success body. Object payloads are merged next to
// "message"; anything else is nested under "data".
func Envelope(data any, message string) (map[string]any, error) {
	body := map[string]any{"message": message}
	if data == nil {
		return body, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		if bytes.Equal(trimmed, []byte("null")) {
			return body, nil
		}
		body["data"] = json.RawMessage(raw)
		return body, nil
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		body[k] = v
	}
	return body, nil
}

func SuccessResponse(c *fiber.Ctx, data any, statusCode int, message string) error {
	body, err := Envelope(data, message)
	if err != nil {
		return ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageInternalServerError, err)
	}
	return c.Status(statusCode).JSON(body)
}

// ErrorResponse writes {"error": message}. The underlying error is exposed
// as "details" outside production only.
func ErrorResponse(c *fiber.Ctx, statusCode int, message string, err error) error {
	body := fiber.Map{"error": message}
	if err != nil && !utils.GetConfigBool("IS_PROD") {
		body["details"] = err.Error()
	}
	return c.Status(statusCode).JSON(body)
}

// HandleError derives the status from err and writes the error envelope.
func HandleError(c *fiber.Ctx, message string, err error) error {
	status := StatusFromError(err)

	var verr *utils.ValidationError
	switch {
	case errors.As(err, &verr):
		return ErrorResponse(c, status, verr.Message, nil)
	case status == fiber.StatusInternalServerError:
		log.Errorf("%s: %v", message, err)
	default:
		if m := classMessage(err); m != "" {
			message = m
		}
	}
	return ErrorResponse(c, status, message, err)
}

func Paginate(page, limit int, total int64) domain.Pagination {
	return domain.NewPagination(page, limit, total)
}

// FiberErrorHandler renders framework errors such as unknown routes or
// oversized bodies with the same envelope as handler errors.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusRequestEntityTooLarge:
			return ErrorResponse(c, fe.Code, domain.MessageFileTooLarge, nil)
		case fiber.StatusNotFound:
			return ErrorResponse(c, fe.Code, domain.MessageRouteNotFound, nil)
		}
		return ErrorResponse(c, fe.Code, fe.Message, nil)
	}
	return HandleError(c, domain.MessageInternalServerError, err)
}
