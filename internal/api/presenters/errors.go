package presenters

import (
	"errors"

	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/bizfish/tag-a-meal-app/pkg/database"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var statusByError = []struct {
	status int
	errs   []error
}{
	{fiber.StatusNotFound, []error{
		gorm.ErrRecordNotFound,
		domain.ErrRecipeNotFound,
		domain.ErrIngredientNotFound,
		domain.ErrTagNotFound,
		domain.ErrUserNotFound,
		domain.ErrImageNotFound,
	}},
	{fiber.StatusForbidden, []error{
		domain.ErrUnauthorizedRecipeAccess,
		domain.ErrUserNotAllowed,
		domain.ErrImageForbidden,
	}},
	{fiber.StatusConflict, []error{
		gorm.ErrDuplicatedKey,
		domain.ErrEmailAlreadyExists,
		domain.ErrIngredientAlreadyExists,
		domain.ErrIngredientNameConflict,
		domain.ErrIngredientInUse,
		domain.ErrTagAlreadyExists,
		domain.ErrTagNameConflict,
		domain.ErrTagInUse,
	}},
	{fiber.StatusUnauthorized, []error{
		domain.ErrTokenNotFound,
		domain.ErrTokenInvalid,
		domain.ErrTokenExpired,
		domain.ErrInvalidCredentials,
		domain.ErrEmailNotVerified,
	}},
	{fiber.StatusBadRequest, []error{
		gorm.ErrForeignKeyViolated,
		domain.ErrParseUUID,
		domain.ErrUnitsNotConvertible,
		domain.ErrInvalidFilename,
		domain.ErrProcessImage,
	}},
}

// StatusFromError maps persistence and domain errors to an HTTP status.
// Unknown errors are internal.
func StatusFromError(err error) int {
	if err == nil {
		return fiber.StatusOK
	}

	var verr *utils.ValidationError
	if errors.As(err, &verr) {
		return verr.StatusCode
	}
	if database.IsInsufficientPrivilege(err) {
		return fiber.StatusForbidden
	}

	for _, group := range statusByError {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.status
			}
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fiber.StatusConflict
		case "23503":
			return fiber.StatusBadRequest
		}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// classMessage returns the generic message for raw persistence errors that
// carry no domain meaning of their own.
func classMessage(err error) string {
	var pgErr *pgconn.PgError
	switch {
	case database.IsInsufficientPrivilege(err):
		return domain.MessageAccessDenied
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.As(err, &pgErr) && pgErr.Code == "23505":
		return domain.MessageResourceExists
	case errors.Is(err, gorm.ErrForeignKeyViolated), errors.As(err, &pgErr) && pgErr.Code == "23503":
		return domain.MessageReferencedNotFound
	case errors.Is(err, domain.ErrTokenInvalid), errors.Is(err, domain.ErrTokenExpired):
		return domain.MessageFailedTokenInvalid
	}
	return ""
}
