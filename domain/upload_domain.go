package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessUploadRecipeImage  = "Recipe image uploaded successfully"
	MessageSuccessUploadRecipeImages = "Image upload completed"
	MessageSuccessUploadAvatar       = "Avatar uploaded successfully"
	MessageSuccessDeleteImage        = "Image deleted successfully"
	MessageSuccessResizeImage        = "Image resized successfully"
	MessageSuccessImageInfo          = "success get image info"

	MessageFailedUploadImage   = "Failed to upload image"
	MessageFailedUploadImages  = "Failed to upload images"
	MessageFailedUploadAvatar  = "Failed to upload avatar"
	MessageFailedDeleteImage   = "Failed to delete image"
	MessageFailedImageInfo     = "Failed to get image info"
	MessageFailedResizeImage   = "Failed to resize image"
	MessageInvalidFilename     = "Invalid filename"
	MessageImageNotFound       = "Image not found"
	MessageInvalidDimensions   = "Width and height must be between 1 and 2000 pixels"
	MessageInvalidQuality      = "Quality must be between 1 and 100"
	MessageNoImageFilesProvide = "No image files provided"
	MessageTooManyFiles        = "Number of files exceeds the maximum allowed limit"

	ErrInvalidFilename = errors.New("invalid filename")
	ErrImageNotFound   = errors.New("image not found")
	ErrImageForbidden  = errors.New("not authorized to modify this image")
	ErrProcessImage    = errors.New("failed to process image")
)

const (
	ImageKindRecipe = "recipe"
	ImageKindAvatar = "avatar"
)

type (
	UploadImageResponse struct {
		ImageURL string `json:"imageUrl"`
		Filename string `json:"filename"`
	}

	UploadAvatarResponse struct {
		AvatarURL string `json:"avatarUrl"`
		Filename  string `json:"filename"`
	}

	UploadedImage struct {
		OriginalName string `json:"originalName"`
		Filename     string `json:"filename"`
		ImageURL     string `json:"imageUrl"`
	}

	UploadFileError struct {
		File  string `json:"file"`
		Error string `json:"error"`
	}

	UploadImagesResponse struct {
		UploadedImages []UploadedImage   `json:"uploadedImages"`
		Errors         []UploadFileError `json:"errors,omitempty"`
		TotalUploaded  int               `json:"totalUploaded"`
		TotalErrors    int               `json:"totalErrors"`
	}

	ImageInfoResponse struct {
		Filename string    `json:"filename"`
		Type     string    `json:"type"`
		Size     int64     `json:"size"`
		Width    int       `json:"width"`
		Height   int       `json:"height"`
		Format   string    `json:"format"`
		Modified time.Time `json:"modified"`
	}

	ResizeImageRequest struct {
		Width   int  `json:"width"`
		Height  int  `json:"height"`
		Quality *int `json:"quality"`
	}

	ImageDimensions struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}

	ResizeImageResponse struct {
		OriginalFilename string          `json:"originalFilename"`
		NewFilename      string          `json:"newFilename"`
		ImageURL         string          `json:"imageUrl"`
		Dimensions       ImageDimensions `json:"dimensions"`
		Quality          int             `json:"quality"`
	}
)
