package upload_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/bizfish/tag-a-meal-app/entities"
	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/bizfish/tag-a-meal-app/internal/utils/storage"
	"github.com/bizfish/tag-a-meal-app/pkg/database/databasetest"
	"github.com/bizfish/tag-a-meal-app/pkg/upload"
	"github.com/bizfish/tag-a-meal-app/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	store *storage.LocalStorage
	svc   upload.UploadService
	user  string
}

func setup(t *testing.T) fixture {
	db, gw := databasetest.Open(t)
	u := entities.User{Email: "cook@example.com", Password: "x", FullName: "Cook", IsVerified: true}
	require.NoError(t, db.Create(&u).Error)

	store, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	return fixture{
		db:    db,
		store: store,
		svc:   upload.NewUploadService(store, user.NewUserRepository(gw), 0),
		user:  u.ID.String(),
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fileHeaders builds multipart headers the way Fiber hands them to handlers.
func fileHeaders(t *testing.T, contentType string, files map[string][]byte) []*multipart.FileHeader {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, data := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="images"; filename="`+name+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["images"]
}

func TestUploadRecipeImage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.svc.UploadRecipeImage(ctx, fileHeaders(t, "image/png", map[string][]byte{"big.png": pngBytes(t, 1600, 900)})[0])
	require.NoError(t, err)
	assert.Regexp(t, `^recipe_[0-9a-f-]{36}\.jpg$`, res.Filename)
	assert.Equal(t, "/uploads/recipes/"+res.Filename, res.ImageURL)

	info, err := f.svc.ImageInfo(ctx, res.Filename)
	require.NoError(t, err)
	assert.Equal(t, domain.ImageKindRecipe, info.Type)
	assert.Equal(t, "jpeg", info.Format)
	assert.Equal(t, 800, info.Width)
	assert.Equal(t, 450, info.Height)

	small, err := f.svc.UploadRecipeImage(ctx, fileHeaders(t, "image/png", map[string][]byte{"small.png": pngBytes(t, 300, 200)})[0])
	require.NoError(t, err)
	info, err = f.svc.ImageInfo(ctx, small.Filename)
	require.NoError(t, err)
	assert.Equal(t, 300, info.Width, "small images are not enlarged")
}

func TestUploadRejectsInvalidFiles(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.UploadRecipeImage(ctx, fileHeaders(t, "text/plain", map[string][]byte{"a.txt": []byte("hi")})[0])
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 400, verr.StatusCode)

	_, err = f.svc.UploadRecipeImage(ctx, fileHeaders(t, "image/png", map[string][]byte{"a.png": []byte("not an image")})[0])
	assert.ErrorIs(t, err, domain.ErrProcessImage)

	tiny := upload.NewUploadService(f.store, nil, 10)
	_, err = tiny.UploadRecipeImage(ctx, fileHeaders(t, "image/png", map[string][]byte{"a.png": pngBytes(t, 10, 10)})[0])
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 413, verr.StatusCode)

	_, err = f.svc.UploadRecipeImage(ctx, nil)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "No file provided", verr.Message)
}

func TestUploadRecipeImages(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	files := fileHeaders(t, "image/png", map[string][]byte{
		"one.png": pngBytes(t, 20, 20),
		"bad.png": []byte("garbage"),
	})
	res, err := f.svc.UploadRecipeImages(ctx, files)
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalUploaded)
	assert.Equal(t, 1, res.TotalErrors)
	assert.Equal(t, "one.png", res.UploadedImages[0].OriginalName)
	assert.Equal(t, "bad.png", res.Errors[0].File)

	_, err = f.svc.UploadRecipeImages(ctx, nil)
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.MessageNoImageFilesProvide, verr.Message)

	many := map[string][]byte{}
	for _, n := range []string{"a", "b", "c", "d", "e", "f"} {
		many[n+".png"] = pngBytes(t, 2, 2)
	}
	_, err = f.svc.UploadRecipeImages(ctx, fileHeaders(t, "image/png", many))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.MessageTooManyFiles, verr.Message)
}

func TestUploadAvatar(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.svc.UploadAvatar(ctx, f.user, fileHeaders(t, "image/png", map[string][]byte{"me.png": pngBytes(t, 640, 480)})[0])
	require.NoError(t, err)
	assert.Regexp(t, `^avatar_`+f.user+`_\d+\.jpg$`, res.Filename)
	assert.Equal(t, "/uploads/avatars/"+res.Filename, res.AvatarURL)

	var stored entities.User
	require.NoError(t, f.db.First(&stored, "id = ?", f.user).Error)
	require.NotNil(t, stored.AvatarURL)
	assert.Equal(t, res.AvatarURL, *stored.AvatarURL)

	info, err := f.svc.ImageInfo(ctx, res.Filename)
	require.NoError(t, err)
	assert.Equal(t, domain.ImageKindAvatar, info.Type)
	assert.Equal(t, 200, info.Width)
	assert.Equal(t, 200, info.Height)

	t.Run("other users cannot delete it", func(t *testing.T) {
		assert.ErrorIs(t, f.svc.DeleteImage(ctx, "someone-else", res.Filename), domain.ErrImageForbidden)
	})

	t.Run("owner deletes it", func(t *testing.T) {
		require.NoError(t, f.svc.DeleteImage(ctx, f.user, res.Filename))
		_, err := f.svc.ImageInfo(ctx, res.Filename)
		assert.ErrorIs(t, err, domain.ErrImageNotFound)
	})
}

func TestResizeImage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	up, err := f.svc.UploadRecipeImage(ctx, fileHeaders(t, "image/png", map[string][]byte{"a.png": pngBytes(t, 400, 300)})[0])
	require.NoError(t, err)

	q := 70
	res, err := f.svc.ResizeImage(ctx, f.user, up.Filename, domain.ResizeImageRequest{Width: 120, Height: 80, Quality: &q})
	require.NoError(t, err)
	assert.Regexp(t, `_120x80\.jpg$`, res.NewFilename)
	assert.Equal(t, 70, res.Quality)

	info, err := f.svc.ImageInfo(ctx, res.NewFilename)
	require.NoError(t, err)
	assert.Equal(t, 120, info.Width)
	assert.Equal(t, 80, info.Height)

	bad := []struct {
		name string
		req  domain.ResizeImageRequest
		msg  string
	}{
		{"zero width", domain.ResizeImageRequest{Width: 0, Height: 10}, domain.MessageInvalidDimensions},
		{"too tall", domain.ResizeImageRequest{Width: 10, Height: 2001}, domain.MessageInvalidDimensions},
		{"quality", domain.ResizeImageRequest{Width: 10, Height: 10, Quality: new(int)}, domain.MessageInvalidQuality},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.ResizeImage(ctx, f.user, up.Filename, tc.req)
			var verr *utils.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.msg, verr.Message)
		})
	}
}

func TestFilenameChecks(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, name := range []string{"../etc/passwd", "a/b.jpg", `a\b.jpg`, ".."} {
		_, err := f.svc.ImageInfo(ctx, name)
		assert.ErrorIs(t, err, domain.ErrInvalidFilename, name)
	}
	_, err := f.svc.ImageInfo(ctx, "missing.jpg")
	assert.ErrorIs(t, err, domain.ErrImageNotFound)
	assert.ErrorIs(t, f.svc.DeleteImage(ctx, f.user, "missing.jpg"), domain.ErrImageNotFound)
}
