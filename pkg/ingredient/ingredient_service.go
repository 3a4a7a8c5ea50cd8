package ingredient

import (
	"context"
	"errors"
	"strings"

	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/bizfish/tag-a-meal-app/entities"
	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/bizfish/tag-a-meal-app/pkg/database"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	IngredientService interface {
		ListIngredients(ctx context.Context, requester string, search, category string, page utils.PageParams) (domain.IngredientListResponse, error)
		GetCategories(ctx context.Context, requester string) (domain.CategoriesResponse, error)
		GetIngredient(ctx context.Context, requester string, id string) (domain.IngredientResponse, error)
		GetUsage(ctx context.Context, requester string, id string) (domain.UsageResponse, error)
		CreateIngredient(ctx context.Context, userID string, req domain.IngredientRequest) (domain.IngredientResponse, error)
		BulkCreateIngredients(ctx context.Context, userID string, req domain.BulkIngredientRequest) (domain.BulkIngredientResponse, error)
		UpdateIngredient(ctx context.Context, userID string, id string, req domain.IngredientRequest) (domain.IngredientResponse, error)
		DeleteIngredient(ctx context.Context, userID string, id string) error
	}

	ingredientService struct {
		ingredientRepository IngredientRepository
	}
)

func NewIngredientService(ingredientRepository IngredientRepository) IngredientService {
	return &ingredientService{
		ingredientRepository: ingredientRepository,
	}
}

func toResponse(i *entities.Ingredient) domain.IngredientResponse {
	return domain.IngredientResponse{
		ID:        i.ID.String(),
		Name:      i.Name,
		Category:  i.Category,
		CreatedAt: i.CreatedAt,
	}
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, domain.ErrIngredientNotFound
	}
	return parsed, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrIngredientNotFound
	}
	return err
}

func trimCategory(c *string) *string {
	if c == nil {
		return nil
	}
	v := strings.TrimSpace(*c)
	if v == "" {
		return nil
	}
	return &v
}

func (s *ingredientService) ListIngredients(ctx context.Context, requester string, search, category string, page utils.PageParams) (domain.IngredientListResponse, error) {
	ingredients, total, err := s.ingredientRepository.ListIngredients(ctx, database.User(requester), ListFilter{
		Search:   utils.SanitizeString(search, 100),
		Category: category,
		Offset:   page.Offset,
		Limit:    page.Limit,
	})
	if err != nil {
		return domain.IngredientListResponse{}, err
	}

	res := domain.IngredientListResponse{
		Ingredients: make([]domain.IngredientResponse, 0, len(ingredients)),
		Pagination:  domain.NewPagination(page.Page, page.Limit, total),
	}
	for _, i := range ingredients {
		res.Ingredients = append(res.Ingredients, toResponse(i))
	}
	return res, nil
}

func (s *ingredientService) GetCategories(ctx context.Context, requester string) (domain.CategoriesResponse, error) {
	categories, err := s.ingredientRepository.GetCategories(ctx, database.User(requester))
	if err != nil {
		return domain.CategoriesResponse{}, err
	}
	return domain.CategoriesResponse{Categories: categories}, nil
}

func (s *ingredientService) GetIngredient(ctx context.Context, requester string, id string) (domain.IngredientResponse, error) {
	ingredientID, err := parseID(id)
	if err != nil {
		return domain.IngredientResponse{}, err
	}
	ingredient, err := s.ingredientRepository.GetIngredientByID(ctx, database.User(requester), ingredientID)
	if err != nil {
		return domain.IngredientResponse{}, notFound(err)
	}
	return toResponse(ingredient), nil
}

// GetUsage counts every recipe using the ingredient but lists only public
// ones.
func (s *ingredientService) GetUsage(ctx context.Context, requester string, id string) (domain.UsageResponse, error) {
	ingredientID, err := parseID(id)
	if err != nil {
		return domain.UsageResponse{}, err
	}

	p := database.User(requester)
	total, err := s.ingredientRepository.CountUsage(ctx, p, ingredientID)
	if err != nil {
		return domain.UsageResponse{}, err
	}
	rows, err := s.ingredientRepository.GetPublicUsage(ctx, p, ingredientID)
	if err != nil {
		return domain.UsageResponse{}, err
	}

	res := domain.UsageResponse{
		TotalUsage:  total,
		PublicUsage: int64(len(rows)),
		Recipes:     make([]domain.UsageRecipe, 0, len(rows)),
	}
	for _, row := range rows {
		res.Recipes = append(res.Recipes, domain.UsageRecipe{
			ID:       row.RecipeID.String(),
			Title:    row.Title,
			Quantity: row.Quantity,
			Unit:     row.Unit,
		})
	}
	return res, nil
}

func (s *ingredientService) CreateIngredient(ctx context.Context, userID string, req domain.IngredientRequest) (domain.IngredientResponse, error) {
	if verr := utils.ValidateIngredientData(req.Name); verr != nil {
		return domain.IngredientResponse{}, verr
	}

	p := database.User(userID)
	name := strings.TrimSpace(req.Name)
	if _, err := s.ingredientRepository.GetIngredientByName(ctx, p, name); err == nil {
		return domain.IngredientResponse{}, domain.ErrIngredientAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.IngredientResponse{}, err
	}

	ingredient := &entities.Ingredient{Name: name, Category: trimCategory(req.Category)}
	if err := s.ingredientRepository.CreateIngredient(ctx, p, ingredient); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.IngredientResponse{}, domain.ErrIngredientAlreadyExists
		}
		return domain.IngredientResponse{}, err
	}
	return toResponse(ingredient), nil
}

// BulkCreateIngredients creates each missing ingredient and reports existing
// ones and per-item failures instead of aborting the batch.
func (s *ingredientService) BulkCreateIngredients(ctx context.Context, userID string, req domain.BulkIngredientRequest) (domain.BulkIngredientResponse, error) {
	if len(req.Ingredients) == 0 {
		return domain.BulkIngredientResponse{}, &utils.ValidationError{Message: domain.MessageFailedBulkIngredients, StatusCode: 400}
	}

	p := database.User(userID)
	results := domain.NewBulkResult[domain.IngredientResponse]()
	for _, item := range req.Ingredients {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			results.Errors = append(results.Errors, domain.BulkError{Item: item, Error: "Name is required"})
			continue
		}

		existing, err := s.ingredientRepository.GetIngredientByName(ctx, p, name)
		if err == nil {
			results.Existing = append(results.Existing, toResponse(existing))
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			results.Errors = append(results.Errors, domain.BulkError{Item: item, Error: err.Error()})
			continue
		}

		ingredient := &entities.Ingredient{Name: name, Category: trimCategory(item.Category)}
		if err := s.ingredientRepository.CreateIngredient(ctx, p, ingredient); err != nil {
			log.Warnf("bulk create ingredient %q: %v", name, err)
			results.Errors = append(results.Errors, domain.BulkError{Item: item, Error: err.Error()})
			continue
		}
		results.Created = append(results.Created, toResponse(ingredient))
	}
	return domain.BulkIngredientResponse{Results: results}, nil
}

func (s *ingredientService) UpdateIngredient(ctx context.Context, userID string, id string, req domain.IngredientRequest) (domain.IngredientResponse, error) {
	if verr := utils.ValidateIngredientData(req.Name); verr != nil {
		return domain.IngredientResponse{}, verr
	}
	ingredientID, err := parseID(id)
	if err != nil {
		return domain.IngredientResponse{}, err
	}

	p := database.User(userID)
	if _, err := s.ingredientRepository.GetIngredientByID(ctx, p, ingredientID); err != nil {
		return domain.IngredientResponse{}, notFound(err)
	}

	name := strings.TrimSpace(req.Name)
	taken, err := s.ingredientRepository.NameTaken(ctx, p, name, ingredientID)
	if err != nil {
		return domain.IngredientResponse{}, err
	}
	if taken {
		return domain.IngredientResponse{}, domain.ErrIngredientNameConflict
	}

	updated, err := s.ingredientRepository.UpdateIngredient(ctx, p, ingredientID, map[string]any{
		"name":     name,
		"category": trimCategory(req.Category),
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.IngredientResponse{}, domain.ErrIngredientNameConflict
		}
		return domain.IngredientResponse{}, notFound(err)
	}
	return toResponse(updated), nil
}

// DeleteIngredient refuses to remove an ingredient any recipe still uses.
func (s *ingredientService) DeleteIngredient(ctx context.Context, userID string, id string) error {
	ingredientID, err := parseID(id)
	if err != nil {
		return err
	}

	p := database.User(userID)
	used, err := s.ingredientRepository.CountUsage(ctx, p, ingredientID)
	if err != nil {
		return err
	}
	if used > 0 {
		return domain.ErrIngredientInUse
	}

	err = s.ingredientRepository.DeleteIngredient(ctx, p, ingredientID)
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return domain.ErrIngredientInUse
	}
	return notFound(err)
}
