package utils

import (
	"fmt"
	"mime/multipart"
	"regexp"
	"strconv"
	"strings"

	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/gofiber/fiber/v2"
)

const (
	DefaultPageLimit   = 10
	DefaultRecipeLimit = 12
	MaxPageLimit       = 100
	DefaultMaxFileSize = 5 * 1024 * 1024
)

var (
	AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

	hexColor          = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)
	validDifficulties = map[string]bool{"easy": true, "medium": true, "hard": true}
	sortFieldAliases  = map[string]string{
		"created_at": "created_at",
		"createdAt":  "created_at",
		"updated_at": "updated_at",
		"updatedAt":  "updated_at",
		"title":      "title",
		"prep_time":  "prep_time",
		"prepTime":   "prep_time",
		"cook_time":  "cook_time",
		"cookTime":   "cook_time",
		"servings":   "servings",
		"difficulty": "difficulty",
		"rating":     "rating",
	}
)

// ValidationError is a client-facing validation failure carrying the HTTP
// status it should be reported with.
type ValidationError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func badRequest(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...), StatusCode: fiber.StatusBadRequest}
}

func ValidateEmail(email string) *ValidationError {
	if strings.TrimSpace(email) == "" {
		return badRequest("Email is required")
	}
	InitValidator()
	if err := Validate.Var(email, "email"); err != nil {
		return badRequest("Invalid email format")
	}
	return nil
}

// ValidatePassword checks presence and length. A minLength below 1 uses 6.
func ValidatePassword(password string, minLength int) *ValidationError {
	if minLength < 1 {
		minLength = 6
	}
	if password == "" {
		return badRequest("Password is required")
	}
	if len(password) < minLength {
		return badRequest("Password must be at least %d characters long", minLength)
	}
	return nil
}

func ValidateRecipeData(req domain.RecipeRequest) *ValidationError {
	if strings.TrimSpace(req.Title) == "" {
		return badRequest("Recipe title is required")
	}
	if strings.TrimSpace(req.Instructions) == "" {
		return badRequest("Recipe instructions are required")
	}

	numeric := []struct {
		name  string
		value *int
	}{
		{"prepTime", req.PrepTime},
		{"cookTime", req.CookTime},
		{"servings", req.Servings},
	}
	for _, f := range numeric {
		if f.value != nil && *f.value < 0 {
			return badRequest("%s must be a positive number", f.name)
		}
	}

	if req.Difficulty != nil && *req.Difficulty != "" && !validDifficulties[*req.Difficulty] {
		return badRequest("Difficulty must be easy, medium, or hard")
	}
	return nil
}

func ValidateIngredientData(name string) *ValidationError {
	if strings.TrimSpace(name) == "" {
		return badRequest("Ingredient name is required")
	}
	return nil
}

func ValidateTagData(name string, color *string) *ValidationError {
	if strings.TrimSpace(name) == "" {
		return badRequest("Tag name is required")
	}
	if color != nil && !hexColor.MatchString(*color) {
		return badRequest("Color must be a valid hex color code")
	}
	return nil
}

func TagColorOrDefault(color *string) string {
	if color == nil || *color == "" {
		return domain.DefaultTagColor
	}
	return *color
}

// ValidateRatingData accepts whole numbers from 1 to 5.
func ValidateRatingData(rating *float64) *ValidationError {
	if rating == nil {
		return badRequest("Rating is required and must be a number")
	}
	if *rating < 1 || *rating > 5 {
		return badRequest("Rating must be between 1 and 5")
	}
	if *rating != float64(int(*rating)) {
		return badRequest("Rating must be a whole number")
	}
	return nil
}

type PageParams struct {
	Page   int
	Limit  int
	Offset int
}

// ValidatePagination never fails: unparsable or out of range input is
// clamped to page >= 1 and 1 <= limit <= 100.
func ValidatePagination(page, limit string, defaultLimit int) PageParams {
	if defaultLimit < 1 {
		defaultLimit = DefaultPageLimit
	}

	p, err := strconv.Atoi(page)
	if err != nil || p < 1 {
		p = 1
	}
	l, err := strconv.Atoi(limit)
	if err != nil || l == 0 {
		l = defaultLimit
	}
	if l < 1 {
		l = 1
	}
	if l > MaxPageLimit {
		l = MaxPageLimit
	}

	return PageParams{Page: p, Limit: l, Offset: (p - 1) * l}
}

func ValidateFileUpload(file *multipart.FileHeader, allowedTypes []string, maxSize int64) *ValidationError {
	if file == nil {
		return badRequest("No file provided")
	}
	if len(allowedTypes) == 0 {
		allowedTypes = AllowedImageTypes
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	contentType := file.Header.Get(fiber.HeaderContentType)
	allowed := false
	for _, t := range allowedTypes {
		if strings.EqualFold(t, contentType) {
			allowed = true
			break
		}
	}
	if !allowed {
		return badRequest("Invalid file type. Only images are allowed.")
	}

	if file.Size > maxSize {
		return &ValidationError{Message: "File size exceeds maximum allowed limit", StatusCode: fiber.StatusRequestEntityTooLarge}
	}
	return nil
}

type SearchParams struct {
	Q          string
	SortBy     string
	SortOrder  string
	Difficulty string
}

// ValidateSearchParams normalizes sort and difficulty input. Unknown sort
// fields fall back to created_at, unknown orders to desc and unknown
// difficulties to no filter.
func ValidateSearchParams(q, sortBy, sortOrder, difficulty string) SearchParams {
	params := SearchParams{
		Q:         SanitizeString(q, 100),
		SortBy:    "created_at",
		SortOrder: "desc",
	}
	if field, ok := sortFieldAliases[sortBy]; ok {
		params.SortBy = field
	}
	if o := strings.ToLower(sortOrder); o == "asc" || o == "desc" {
		params.SortOrder = o
	}
	if validDifficulties[difficulty] {
		params.Difficulty = difficulty
	}
	return params
}

func SanitizeString(input string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = 1000
	}
	s := strings.TrimSpace(input)
	if r := []rune(s); len(r) > maxLength {
		s = string(r[:maxLength])
	}
	return s
}

// SplitList splits a comma separated filter value into trimmed, lowercased
// terms, dropping empty ones.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
