package handlers

import (
	"errors"

	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/bizfish/tag-a-meal-app/internal/api/presenters"
	"github.com/bizfish/tag-a-meal-app/internal/middleware"
	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/bizfish/tag-a-meal-app/pkg/tag"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	TagHandler interface {
		ListTags(c *fiber.Ctx) error
		PopularTags(c *fiber.Ctx) error
		GetTag(c *fiber.Ctx) error
		GetUsage(c *fiber.Ctx) error
		GetTagRecipes(c *fiber.Ctx) error
		CreateTag(c *fiber.Ctx) error
		BulkCreateTags(c *fiber.Ctx) error
		UpdateTag(c *fiber.Ctx) error
		DeleteTag(c *fiber.Ctx) error
	}

	tagHandler struct {
		tagService tag.TagService
		validator  *validator.Validate
	}
)

func NewTagHandler(tagService tag.TagService, validator *validator.Validate) TagHandler {
	return &tagHandler{
		tagService: tagService,
		validator:  validator,
	}
}

func (h *tagHandler) ListTags(c *fiber.Ctx) error {
	res, err := h.tagService.ListTags(c.Context(), middleware.UserID(c), utils.SanitizeString(c.Query("search"), 100), pageParams(c, tag.DefaultTagLimit))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetTags, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetTags)
}

func (h *tagHandler) PopularTags(c *fiber.Ctx) error {
	res, err := h.tagService.PopularTags(c.Context(), middleware.UserID(c), c.QueryInt("limit", tag.DefaultPopularLimit))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetTags, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetTags)
}

func (h *tagHandler) GetTag(c *fiber.Ctx) error {
	res, err := h.tagService.GetTag(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetTag, err)
	}
	return presenters.SuccessResponse(c, domain.TagEnvelope{Tag: res}, fiber.StatusOK, domain.MessageSuccessGetTags)
}

func (h *tagHandler) GetUsage(c *fiber.Ctx) error {
	res, err := h.tagService.GetUsage(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedTagUsage, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetTags)
}

func (h *tagHandler) GetTagRecipes(c *fiber.Ctx) error {
	res, err := h.tagService.GetTagRecipes(c.Context(), middleware.UserID(c), c.Params("id"), pageParams(c, utils.DefaultRecipeLimit))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetTagRecipes, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRecipes)
}

func (h *tagHandler) CreateTag(c *fiber.Ctx) error {
	req := new(domain.TagRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.tagService.CreateTag(c.Context(), middleware.UserID(c), *req)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedCreateTag, err)
	}
	return presenters.SuccessResponse(c, domain.TagEnvelope{Tag: res}, fiber.StatusCreated, domain.MessageSuccessCreateTag)
}

func (h *tagHandler) BulkCreateTags(c *fiber.Ctx) error {
	req := new(domain.BulkTagRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.tagService.BulkCreateTags(c.Context(), middleware.UserID(c), *req)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedCreateTag, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessBulkTags)
}

func (h *tagHandler) UpdateTag(c *fiber.Ctx) error {
	req := new(domain.TagRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.tagService.UpdateTag(c.Context(), middleware.UserID(c), c.Params("id"), *req)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedUpdateTag, err)
	}
	return presenters.SuccessResponse(c, domain.TagEnvelope{Tag: res}, fiber.StatusOK, domain.MessageSuccessUpdateTag)
}

func (h *tagHandler) DeleteTag(c *fiber.Ctx) error {
	err := h.tagService.DeleteTag(c.Context(), middleware.UserID(c), c.Params("id"))
	switch {
	case errors.Is(err, domain.ErrTagInUse):
		return presenters.ErrorResponse(c, fiber.StatusConflict, domain.ErrTagInUse.Error(), errors.New(domain.MessageTagInUseDetailed))
	case err != nil:
		return presenters.HandleError(c, domain.MessageFailedDeleteTag, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteTag)
}
