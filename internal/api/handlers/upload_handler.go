package handlers

import (
	"errors"
	"mime/multipart"

	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/bizfish/tag-a-meal-app/internal/api/presenters"
	"github.com/bizfish/tag-a-meal-app/internal/middleware"
	"github.com/bizfish/tag-a-meal-app/pkg/upload"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	UploadHandler interface {
		UploadRecipeImage(c *fiber.Ctx) error
		UploadRecipeImages(c *fiber.Ctx) error
		UploadAvatar(c *fiber.Ctx) error
		DeleteImage(c *fiber.Ctx) error
		ImageInfo(c *fiber.Ctx) error
		ResizeImage(c *fiber.Ctx) error
	}

	uploadHandler struct {
		uploadService upload.UploadService
		validator     *validator.Validate
	}
)

func NewUploadHandler(uploadService upload.UploadService, validator *validator.Validate) UploadHandler {
	return &uploadHandler{
		uploadService: uploadService,
		validator:     validator,
	}
}

// formFile returns nil when the field is absent so the service reports
// "No file provided".
func formFile(c *fiber.Ctx, field string) *multipart.FileHeader {
	file, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return file
}

func (h *uploadHandler) UploadRecipeImage(c *fiber.Ctx) error {
	res, err := h.uploadService.UploadRecipeImage(c.Context(), formFile(c, "image"))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedUploadImage, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUploadRecipeImage)
}

func (h *uploadHandler) UploadRecipeImages(c *fiber.Ctx) error {
	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		files = form.File["images"]
	}

	res, err := h.uploadService.UploadRecipeImages(c.Context(), files)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedUploadImages, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUploadRecipeImages)
}

func (h *uploadHandler) UploadAvatar(c *fiber.Ctx) error {
	res, err := h.uploadService.UploadAvatar(c.Context(), middleware.UserID(c), formFile(c, "avatar"))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedUploadAvatar, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUploadAvatar)
}

func (h *uploadHandler) DeleteImage(c *fiber.Ctx) error {
	if err := h.uploadService.DeleteImage(c.Context(), middleware.UserID(c), c.Params("filename")); err != nil {
		return presenters.HandleError(c, imageMessage(err, domain.MessageFailedDeleteImage), err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteImage)
}

func (h *uploadHandler) ImageInfo(c *fiber.Ctx) error {
	res, err := h.uploadService.ImageInfo(c.Context(), c.Params("filename"))
	if err != nil {
		return presenters.HandleError(c, imageMessage(err, domain.MessageFailedImageInfo), err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessImageInfo)
}

func (h *uploadHandler) ResizeImage(c *fiber.Ctx) error {
	req := new(domain.ResizeImageRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.uploadService.ResizeImage(c.Context(), middleware.UserID(c), c.Params("filename"), *req)
	if err != nil {
		return presenters.HandleError(c, imageMessage(err, domain.MessageFailedResizeImage), err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessResizeImage)
}

func imageMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, domain.ErrImageNotFound):
		return domain.MessageImageNotFound
	case errors.Is(err, domain.ErrInvalidFilename):
		return domain.MessageInvalidFilename
	}
	return fallback
}
