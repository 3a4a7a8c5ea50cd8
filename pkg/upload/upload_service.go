package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/bizfish/tag-a-meal-app/internal/metrics"
	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/bizfish/tag-a-meal-app/internal/utils/storage"
	"github.com/bizfish/tag-a-meal-app/pkg/database"
	"github.com/bizfish/tag-a-meal-app/pkg/user"
	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	_ "golang.org/x/image/webp"
)

const (
	MaxFilesPerUpload = 5
	DefaultQuality    = 85
	MaxDimension      = 2000

	recipeMaxWidth  = 800
	recipeMaxHeight = 600
	avatarSize      = 200

	recipeDir = "recipes"
	avatarDir = "avatars"
)

type (
	UploadService interface {
		UploadRecipeImage(ctx context.Context, file *multipart.FileHeader) (domain.UploadImageResponse, error)
		UploadRecipeImages(ctx context.Context, files []*multipart.FileHeader) (domain.UploadImagesResponse, error)
		UploadAvatar(ctx context.Context, userID string, file *multipart.FileHeader) (domain.UploadAvatarResponse, error)
		DeleteImage(ctx context.Context, userID string, filename string) error
		ImageInfo(ctx context.Context, filename string) (domain.ImageInfoResponse, error)
		ResizeImage(ctx context.Context, userID string, filename string, req domain.ResizeImageRequest) (domain.ResizeImageResponse, error)
	}

	uploadService struct {
		store          storage.Storage
		userRepository user.UserRepository
		maxFileSize    int64
	}

	// located is an existing object resolved from a bare filename.
	located struct {
		key  string
		kind string
		info storage.ObjectInfo
	}
)

func NewUploadService(store storage.Storage, userRepository user.UserRepository, maxFileSize int64) UploadService {
	if maxFileSize <= 0 {
		maxFileSize = utils.DefaultMaxFileSize
	}
	return &uploadService{
		store:          store,
		userRepository: userRepository,
		maxFileSize:    maxFileSize,
	}
}

func badRequest(message string) error {
	return &utils.ValidationError{Message: message, StatusCode: fiber.StatusBadRequest}
}

// decode reads a validated multipart file into an image.
func (s *uploadService) decode(file *multipart.FileHeader) (image.Image, error) {
	if verr := utils.ValidateFileUpload(file, utils.AllowedImageTypes, s.maxFileSize); verr != nil {
		return nil, verr
	}

	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProcessImage, err)
	}
	return img, nil
}

func (s *uploadService) save(ctx context.Context, key string, img image.Image, quality int) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProcessImage, err)
	}
	return s.store.Save(ctx, key, &buf, "image/jpeg")
}

func (s *uploadService) storeRecipeImage(ctx context.Context, file *multipart.FileHeader) (filename, url string, err error) {
	defer func() { metrics.RecordImageUpload(domain.ImageKindRecipe, err) }()

	img, err := s.decode(file)
	if err != nil {
		return "", "", err
	}

	filename = fmt.Sprintf("recipe_%s.jpg", uuid.NewString())
	key := path.Join(recipeDir, filename)
	if err := s.save(ctx, key, imaging.Fit(img, recipeMaxWidth, recipeMaxHeight, imaging.Lanczos), DefaultQuality); err != nil {
		return "", "", err
	}
	return filename, s.store.PublicURL(key), nil
}

func (s *uploadService) UploadRecipeImage(ctx context.Context, file *multipart.FileHeader) (domain.UploadImageResponse, error) {
	filename, url, err := s.storeRecipeImage(ctx, file)
	if err != nil {
		return domain.UploadImageResponse{}, err
	}
	return domain.UploadImageResponse{ImageURL: url, Filename: filename}, nil
}

// UploadRecipeImages stores each file independently. Per-file failures are
// reported in the response instead of failing the request.
func (s *uploadService) UploadRecipeImages(ctx context.Context, files []*multipart.FileHeader) (domain.UploadImagesResponse, error) {
	if len(files) == 0 {
		return domain.UploadImagesResponse{}, badRequest(domain.MessageNoImageFilesProvide)
	}
	if len(files) > MaxFilesPerUpload {
		return domain.UploadImagesResponse{}, badRequest(domain.MessageTooManyFiles)
	}

	res := domain.UploadImagesResponse{UploadedImages: []domain.UploadedImage{}}
	for _, file := range files {
		filename, url, err := s.storeRecipeImage(ctx, file)
		if err != nil {
			log.Warnf("upload %s: %v", file.Filename, err)
			res.Errors = append(res.Errors, domain.UploadFileError{File: file.Filename, Error: err.Error()})
			continue
		}
		res.UploadedImages = append(res.UploadedImages, domain.UploadedImage{
			OriginalName: file.Filename,
			Filename:     filename,
			ImageURL:     url,
		})
	}
	res.TotalUploaded = len(res.UploadedImages)
	res.TotalErrors = len(res.Errors)
	return res, nil
}

func (s *uploadService) UploadAvatar(ctx context.Context, userID string, file *multipart.FileHeader) (domain.UploadAvatarResponse, error) {
	img, err := s.decode(file)
	metrics.RecordImageUpload(domain.ImageKindAvatar, err)
	if err != nil {
		return domain.UploadAvatarResponse{}, err
	}

	filename := fmt.Sprintf("avatar_%s_%d.jpg", userID, time.Now().UnixMilli())
	key := path.Join(avatarDir, filename)
	if err := s.save(ctx, key, imaging.Fill(img, avatarSize, avatarSize, imaging.Center, imaging.Lanczos), DefaultQuality); err != nil {
		return domain.UploadAvatarResponse{}, err
	}

	url := s.store.PublicURL(key)
	if _, err := s.userRepository.UpdateUser(ctx, database.User(userID), userID, map[string]any{"avatar_url": url}); err != nil {
		log.Warnf("update avatar_url for %s: %v", userID, err)
	}
	return domain.UploadAvatarResponse{AvatarURL: url, Filename: filename}, nil
}

func checkFilename(filename string) error {
	if filename == "" || strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		return domain.ErrInvalidFilename
	}
	return nil
}

// locate looks the file up among recipe images first, then avatars.
func (s *uploadService) locate(ctx context.Context, filename string) (located, error) {
	if err := checkFilename(filename); err != nil {
		return located{}, err
	}

	for _, c := range []struct{ dir, kind string }{
		{recipeDir, domain.ImageKindRecipe},
		{avatarDir, domain.ImageKindAvatar},
	} {
		key := path.Join(c.dir, filename)
		info, err := s.store.Stat(ctx, key)
		if errors.Is(err, storage.ErrObjectNotFound) {
			continue
		}
		if err != nil {
			return located{}, err
		}
		return located{key: key, kind: c.kind, info: info}, nil
	}
	return located{}, domain.ErrImageNotFound
}

// Avatars are owned by the user whose id is embedded in the filename.
func authorize(obj located, filename, userID string) error {
	if obj.kind == domain.ImageKindAvatar && !strings.Contains(filename, userID) {
		return domain.ErrImageForbidden
	}
	return nil
}

func (s *uploadService) DeleteImage(ctx context.Context, userID string, filename string) error {
	obj, err := s.locate(ctx, filename)
	if err != nil {
		return err
	}
	if err := authorize(obj, filename, userID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, obj.key); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return domain.ErrImageNotFound
		}
		return err
	}
	return nil
}

func (s *uploadService) ImageInfo(ctx context.Context, filename string) (domain.ImageInfoResponse, error) {
	obj, err := s.locate(ctx, filename)
	if err != nil {
		return domain.ImageInfoResponse{}, err
	}

	rc, err := s.store.Open(ctx, obj.key)
	if err != nil {
		return domain.ImageInfoResponse{}, err
	}
	defer rc.Close()

	cfg, format, err := image.DecodeConfig(rc)
	if err != nil {
		return domain.ImageInfoResponse{}, fmt.Errorf("%w: %v", domain.ErrProcessImage, err)
	}

	return domain.ImageInfoResponse{
		Filename: filename,
		Type:     obj.kind,
		Size:     obj.info.Size,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Format:   format,
		Modified: obj.info.ModTime,
	}, nil
}

func (s *uploadService) ResizeImage(ctx context.Context, userID string, filename string, req domain.ResizeImageRequest) (domain.ResizeImageResponse, error) {
	if req.Width < 1 || req.Width > MaxDimension || req.Height < 1 || req.Height > MaxDimension {
		return domain.ResizeImageResponse{}, badRequest(domain.MessageInvalidDimensions)
	}
	quality := DefaultQuality
	if req.Quality != nil {
		quality = *req.Quality
	}
	if quality < 1 || quality > 100 {
		return domain.ResizeImageResponse{}, badRequest(domain.MessageInvalidQuality)
	}

	obj, err := s.locate(ctx, filename)
	if err != nil {
		return domain.ResizeImageResponse{}, err
	}
	if err := authorize(obj, filename, userID); err != nil {
		return domain.ResizeImageResponse{}, err
	}

	rc, err := s.store.Open(ctx, obj.key)
	if err != nil {
		return domain.ResizeImageResponse{}, err
	}
	img, err := imaging.Decode(rc)
	rc.Close()
	if err != nil {
		return domain.ResizeImageResponse{}, fmt.Errorf("%w: %v", domain.ErrProcessImage, err)
	}

	ext := path.Ext(filename)
	newFilename := fmt.Sprintf("%s_%dx%d%s", strings.TrimSuffix(filename, ext), req.Width, req.Height, ext)
	key := path.Join(path.Dir(obj.key), newFilename)
	if err := s.save(ctx, key, imaging.Fill(img, req.Width, req.Height, imaging.Center, imaging.Lanczos), quality); err != nil {
		return domain.ResizeImageResponse{}, err
	}

	return domain.ResizeImageResponse{
		OriginalFilename: filename,
		NewFilename:      newFilename,
		ImageURL:         s.store.PublicURL(key),
		Dimensions:       domain.ImageDimensions{Width: req.Width, Height: req.Height},
		Quality:          quality,
	}, nil
}
