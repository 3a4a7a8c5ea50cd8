package tag

import (
	"context"
	"errors"
	"strings"

	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/bizfish/tag-a-meal-app/entities"
	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/bizfish/tag-a-meal-app/pkg/database"
	"github.com/bizfish/tag-a-meal-app/pkg/recipe"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultTagLimit     = 50
	DefaultPopularLimit = 10
)

type (
	TagService interface {
		ListTags(ctx context.Context, requester string, search string, page utils.PageParams) (domain.TagListResponse, error)
		PopularTags(ctx context.Context, requester string, limit int) (domain.TagListResponse, error)
		GetTag(ctx context.Context, requester string, id string) (domain.TagResponse, error)
		GetUsage(ctx context.Context, requester string, id string) (domain.UsageResponse, error)
		GetTagRecipes(ctx context.Context, requester string, id string, page utils.PageParams) (domain.RecipeListResponse, error)
		CreateTag(ctx context.Context, userID string, req domain.TagRequest) (domain.TagResponse, error)
		BulkCreateTags(ctx context.Context, userID string, req domain.BulkTagRequest) (domain.BulkTagResponse, error)
		UpdateTag(ctx context.Context, userID string, id string, req domain.TagRequest) (domain.TagResponse, error)
		DeleteTag(ctx context.Context, userID string, id string) error
	}

	tagService struct {
		tagRepository TagRepository
		recipeService recipe.RecipeService
	}
)

func NewTagService(tagRepository TagRepository, recipeService recipe.RecipeService) TagService {
	return &tagService{
		tagRepository: tagRepository,
		recipeService: recipeService,
	}
}

func toResponse(t *entities.Tag) domain.TagResponse {
	return domain.TagResponse{ID: t.ID.String(), Name: t.Name, Color: t.Color}
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, domain.ErrTagNotFound
	}
	return parsed, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrTagNotFound
	}
	return err
}

func (s *tagService) ListTags(ctx context.Context, requester string, search string, page utils.PageParams) (domain.TagListResponse, error) {
	tags, total, err := s.tagRepository.ListTags(ctx, database.User(requester), utils.SanitizeString(search, 100), page.Offset, page.Limit)
	if err != nil {
		return domain.TagListResponse{}, err
	}

	pagination := domain.NewPagination(page.Page, page.Limit, total)
	res := domain.TagListResponse{
		Tags:       make([]domain.TagResponse, 0, len(tags)),
		Pagination: &pagination,
	}
	for _, t := range tags {
		res.Tags = append(res.Tags, toResponse(t))
	}
	return res, nil
}

func (s *tagService) PopularTags(ctx context.Context, requester string, limit int) (domain.TagListResponse, error) {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	if limit > utils.MaxPageLimit {
		limit = utils.MaxPageLimit
	}

	rows, err := s.tagRepository.PopularTags(ctx, database.User(requester), limit)
	if err != nil {
		return domain.TagListResponse{}, err
	}

	res := domain.TagListResponse{Tags: make([]domain.TagResponse, 0, len(rows))}
	for _, row := range rows {
		count := row.UsageCount
		res.Tags = append(res.Tags, domain.TagResponse{
			ID:         row.ID.String(),
			Name:       row.Name,
			Color:      row.Color,
			UsageCount: &count,
		})
	}
	return res, nil
}

func (s *tagService) GetTag(ctx context.Context, requester string, id string) (domain.TagResponse, error) {
	tagID, err := parseID(id)
	if err != nil {
		return domain.TagResponse{}, err
	}

	p := database.User(requester)
	tag, err := s.tagRepository.GetTagByID(ctx, p, tagID)
	if err != nil {
		return domain.TagResponse{}, notFound(err)
	}

	res := toResponse(tag)
	count, err := s.tagRepository.CountUsage(ctx, p, tagID)
	if err != nil {
		log.Warnf("count usage of tag %s: %v", tagID, err)
		count = 0
	}
	res.UsageCount = &count
	return res, nil
}

func (s *tagService) GetUsage(ctx context.Context, requester string, id string) (domain.UsageResponse, error) {
	tagID, err := parseID(id)
	if err != nil {
		return domain.UsageResponse{}, err
	}

	p := database.User(requester)
	total, err := s.tagRepository.CountUsage(ctx, p, tagID)
	if err != nil {
		return domain.UsageResponse{}, err
	}
	rows, err := s.tagRepository.GetPublicUsage(ctx, p, tagID)
	if err != nil {
		return domain.UsageResponse{}, err
	}

	res := domain.UsageResponse{
		TotalUsage:  total,
		PublicUsage: int64(len(rows)),
		Recipes:     make([]domain.UsageRecipe, 0, len(rows)),
	}
	for _, row := range rows {
		res.Recipes = append(res.Recipes, domain.UsageRecipe{ID: row.RecipeID.String(), Title: row.Title})
	}
	return res, nil
}

// GetTagRecipes lists the public recipes carrying the tag.
func (s *tagService) GetTagRecipes(ctx context.Context, requester string, id string, page utils.PageParams) (domain.RecipeListResponse, error) {
	tagID, err := parseID(id)
	if err != nil {
		return domain.RecipeListResponse{}, err
	}
	if _, err := s.tagRepository.GetTagByID(ctx, database.User(requester), tagID); err != nil {
		return domain.RecipeListResponse{}, notFound(err)
	}

	return s.recipeService.ListRecipes(ctx, requester, recipe.RecipeQuery{
		PublicOnly: true,
		TagID:      tagID.String(),
		Page:       page.Page,
		Limit:      page.Limit,
	})
}

func (s *tagService) CreateTag(ctx context.Context, userID string, req domain.TagRequest) (domain.TagResponse, error) {
	if verr := utils.ValidateTagData(req.Name, req.Color); verr != nil {
		return domain.TagResponse{}, verr
	}

	p := database.User(userID)
	name := strings.TrimSpace(req.Name)
	if _, err := s.tagRepository.GetTagByName(ctx, p, name); err == nil {
		return domain.TagResponse{}, domain.ErrTagAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.TagResponse{}, err
	}

	tag := &entities.Tag{Name: name, Color: utils.TagColorOrDefault(req.Color)}
	if err := s.tagRepository.CreateTag(ctx, p, tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.TagResponse{}, domain.ErrTagAlreadyExists
		}
		return domain.TagResponse{}, err
	}
	return toResponse(tag), nil
}

// BulkCreateTags creates each missing tag. An invalid color falls back to
// the default instead of failing the item.
func (s *tagService) BulkCreateTags(ctx context.Context, userID string, req domain.BulkTagRequest) (domain.BulkTagResponse, error) {
	if len(req.Tags) == 0 {
		return domain.BulkTagResponse{}, &utils.ValidationError{Message: domain.MessageFailedBulkTags, StatusCode: 400}
	}

	p := database.User(userID)
	results := domain.NewBulkResult[domain.TagResponse]()
	for _, item := range req.Tags {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			results.Errors = append(results.Errors, domain.BulkError{Item: item, Error: "Name is required"})
			continue
		}

		existing, err := s.tagRepository.GetTagByName(ctx, p, name)
		if err == nil {
			results.Existing = append(results.Existing, toResponse(existing))
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			results.Errors = append(results.Errors, domain.BulkError{Item: item, Error: err.Error()})
			continue
		}

		color := domain.DefaultTagColor
		if utils.ValidateTagData(name, item.Color) == nil {
			color = utils.TagColorOrDefault(item.Color)
		}
		tag := &entities.Tag{Name: name, Color: color}
		if err := s.tagRepository.CreateTag(ctx, p, tag); err != nil {
			log.Warnf("bulk create tag %q: %v", name, err)
			results.Errors = append(results.Errors, domain.BulkError{Item: item, Error: err.Error()})
			continue
		}
		results.Created = append(results.Created, toResponse(tag))
	}
	return domain.BulkTagResponse{Results: results}, nil
}

func (s *tagService) UpdateTag(ctx context.Context, userID string, id string, req domain.TagRequest) (domain.TagResponse, error) {
	if verr := utils.ValidateTagData(req.Name, req.Color); verr != nil {
		return domain.TagResponse{}, verr
	}
	tagID, err := parseID(id)
	if err != nil {
		return domain.TagResponse{}, err
	}

	p := database.User(userID)
	if _, err := s.tagRepository.GetTagByID(ctx, p, tagID); err != nil {
		return domain.TagResponse{}, notFound(err)
	}

	name := strings.TrimSpace(req.Name)
	taken, err := s.tagRepository.NameTaken(ctx, p, name, tagID)
	if err != nil {
		return domain.TagResponse{}, err
	}
	if taken {
		return domain.TagResponse{}, domain.ErrTagNameConflict
	}

	updated, err := s.tagRepository.UpdateTag(ctx, p, tagID, map[string]any{
		"name":  name,
		"color": utils.TagColorOrDefault(req.Color),
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.TagResponse{}, domain.ErrTagNameConflict
		}
		return domain.TagResponse{}, notFound(err)
	}
	return toResponse(updated), nil
}

func (s *tagService) DeleteTag(ctx context.Context, userID string, id string) error {
	tagID, err := parseID(id)
	if err != nil {
		return err
	}

	p := database.User(userID)
	used, err := s.tagRepository.CountUsage(ctx, p, tagID)
	if err != nil {
		return err
	}
	if used > 0 {
		return domain.ErrTagInUse
	}

	err = s.tagRepository.DeleteTag(ctx, p, tagID)
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return domain.ErrTagInUse
	}
	return notFound(err)
}
