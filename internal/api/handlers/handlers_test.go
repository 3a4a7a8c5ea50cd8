package handlers_test

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/bizfish/tag-a-meal-app/internal/api/handlers"
	"github.com/bizfish/tag-a-meal-app/internal/api/presenters"
	"github.com/bizfish/tag-a-meal-app/internal/api/routes"
	"github.com/bizfish/tag-a-meal-app/internal/middleware"
	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/bizfish/tag-a-meal-app/internal/utils/storage"
	"github.com/bizfish/tag-a-meal-app/internal/web"
	"github.com/bizfish/tag-a-meal-app/pkg/database/databasetest"
	"github.com/bizfish/tag-a-meal-app/pkg/ingredient"
	"github.com/bizfish/tag-a-meal-app/pkg/jwt"
	"github.com/bizfish/tag-a-meal-app/pkg/recipe"
	"github.com/bizfish/tag-a-meal-app/pkg/search"
	"github.com/bizfish/tag-a-meal-app/pkg/tag"
	"github.com/bizfish/tag-a-meal-app/pkg/upload"
	"github.com/bizfish/tag-a-meal-app/pkg/user"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopMailer struct{}

func (nopMailer) SendMail(string, string, string) error { return nil }

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	utils.InitValidator()
	_, gw := databasetest.Open(t)

	uploadDir := t.TempDir()
	store, err := storage.NewLocalStorage(uploadDir, "/uploads")
	require.NoError(t, err)

	jwtService := jwt.NewJWTServiceWithSecret("test-secret", "TEST")
	userRepository := user.NewUserRepository(gw)
	recipeService := recipe.NewRecipeService(recipe.NewRecipeRepository(gw))
	ingredientService := ingredient.NewIngredientService(ingredient.NewIngredientRepository(gw))
	tagService := tag.NewTagService(tag.NewTagRepository(gw), recipeService)
	searchService := search.NewSearchService(recipeService, ingredientService, tagService)
	userService := user.NewUserService(userRepository, jwtService, nopMailer{}, user.Options{AppURL: "http://localhost"})

	app := fiber.New(fiber.Config{
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: presenters.FiberErrorHandler,
		Views:        web.NewEngine(),
	})
	cfg := routes.Config{
		App:               app,
		UserHandler:       handlers.NewUserHandler(userService, utils.Validate),
		RecipeHandler:     handlers.NewRecipeHandler(recipeService, utils.Validate),
		IngredientHandler: handlers.NewIngredientHandler(ingredientService, utils.Validate),
		TagHandler:        handlers.NewTagHandler(tagService, utils.Validate),
		SearchHandler:     handlers.NewSearchHandler(searchService, utils.Validate),
		UploadHandler:     handlers.NewUploadHandler(upload.NewUploadService(store, userRepository, 0), utils.Validate),
		WebHandler:        handlers.NewWebHandler(recipeService, searchService),
		Middleware:        middleware.NewMiddleware(),
		JWTService:        jwtService,
		UploadPath:        uploadDir,
	}
	cfg.Setup()
	return app
}

type response struct {
	status int
	body   map[string]any
	raw    string
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return send(t, app, req, token)
}

func send(t *testing.T, app *fiber.App, req *http.Request, token string) response {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	res := response{status: resp.StatusCode, raw: string(raw)}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &res.body))
	}
	return res
}

// register returns the access token and user id of a fresh account.
func register(t *testing.T, app *fiber.App, email, name string) (string, string) {
	t.Helper()
	res := call(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": email, "password": "secret1", "fullName": name,
	})
	require.Equal(t, fiber.StatusCreated, res.status, res.raw)
	session := res.body["session"].(map[string]any)
	u := res.body["user"].(map[string]any)
	return session["accessToken"].(string), u["id"].(string)
}

func createRecipe(t *testing.T, app *fiber.App, token string, body map[string]any) string {
	t.Helper()
	res := call(t, app, http.MethodPost, "/api/recipes", token, body)
	require.Equal(t, fiber.StatusCreated, res.status, res.raw)
	return res.body["recipe"].(map[string]any)["id"].(string)
}

func TestPingAndUnknownRoute(t *testing.T) {
	app := newApp(t)

	res := call(t, app, http.MethodGet, "/api/ping", "", nil)
	assert.Equal(t, fiber.StatusOK, res.status)
	assert.Equal(t, "pong", res.body["message"])

	res = call(t, app, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, res.status)
	assert.Equal(t, "route not found", res.body["error"])
}

func TestAuthFlow(t *testing.T) {
	app := newApp(t)
	token, _ := register(t, app, "cook@example.com", "Cook")

	res := call(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{"email": "cook@example.com", "password": "secret1"})
	assert.Equal(t, fiber.StatusConflict, res.status)

	res = call(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{"email": "bad", "password": "secret1"})
	assert.Equal(t, fiber.StatusBadRequest, res.status)
	assert.Equal(t, "Invalid email format", res.body["error"])

	res = call(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "cook@example.com", "password": "wrong!!"})
	assert.Equal(t, fiber.StatusUnauthorized, res.status)

	res = call(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "cook@example.com", "password": "secret1"})
	require.Equal(t, fiber.StatusOK, res.status)
	assert.NotEmpty(t, res.body["session"])

	res = call(t, app, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, res.status)

	res = call(t, app, http.MethodPut, "/api/auth/profile", token, map[string]any{"fullName": "Head Cook", "showAuthorName": false})
	require.Equal(t, fiber.StatusOK, res.status, res.raw)
	profile := res.body["user"].(map[string]any)
	assert.Equal(t, "Head Cook", profile["fullName"])
	assert.Equal(t, false, profile["showAuthorName"])

	res = call(t, app, http.MethodPost, "/api/auth/update-password", token, map[string]any{"password": "abc"})
	assert.Equal(t, fiber.StatusBadRequest, res.status)
	res = call(t, app, http.MethodPost, "/api/auth/update-password", token, map[string]any{"password": "secret2"})
	assert.Equal(t, fiber.StatusOK, res.status)
	res = call(t, app, http.MethodPost, "/api/auth/update-password", "", map[string]any{"password": "secret2"})
	assert.Equal(t, fiber.StatusUnauthorized, res.status)
}

func TestRecipeEndpoints(t *testing.T) {
	app := newApp(t)
	alice, _ := register(t, app, "alice@example.com", "Alice")
	bob, _ := register(t, app, "bob@example.com", "Bob")

	public := createRecipe(t, app, alice, map[string]any{
		"title":        "Pancakes",
		"instructions": "Mix and fry",
		"isPublic":     true,
		"ingredients":  []map[string]any{{"name": "Flour", "quantity": 2, "unit": "cup"}, {"name": "Eggs"}},
		"tags":         []string{"breakfast"},
	})
	private := createRecipe(t, app, alice, map[string]any{"title": "Secret sauce", "instructions": "Stir"})

	t.Run("validation", func(t *testing.T) {
		res := call(t, app, http.MethodPost, "/api/recipes", alice, map[string]any{"title": " ", "instructions": "x"})
		assert.Equal(t, fiber.StatusBadRequest, res.status)
		assert.Equal(t, "Recipe title is required", res.body["error"])

		res = call(t, app, http.MethodPost, "/api/recipes", "", map[string]any{"title": "x", "instructions": "x"})
		assert.Equal(t, fiber.StatusUnauthorized, res.status)
	})

	t.Run("visibility", func(t *testing.T) {
		res := call(t, app, http.MethodGet, "/api/recipes", "", nil)
		require.Equal(t, fiber.StatusOK, res.status)
		assert.Len(t, res.body["recipes"], 1)
		assert.EqualValues(t, 1, res.body["pagination"].(map[string]any)["total"])

		res = call(t, app, http.MethodGet, "/api/recipes", alice, nil)
		assert.Len(t, res.body["recipes"], 2)

		res = call(t, app, http.MethodGet, "/api/recipes/"+private, bob, nil)
		assert.Equal(t, fiber.StatusNotFound, res.status)
		assert.Equal(t, "Recipe not found", res.body["error"])

		res = call(t, app, http.MethodGet, "/api/recipes/"+public, "", nil)
		require.Equal(t, fiber.StatusOK, res.status)
		assert.Equal(t, "Pancakes", res.body["title"])
		assert.Len(t, res.body["ingredients"], 2)

		res = call(t, app, http.MethodGet, "/api/recipes/my-recipes", alice, nil)
		assert.Len(t, res.body["recipes"], 2)
	})

	t.Run("ownership", func(t *testing.T) {
		res := call(t, app, http.MethodPut, "/api/recipes/"+public, bob, map[string]any{"title": "Mine", "instructions": "x"})
		assert.Equal(t, fiber.StatusForbidden, res.status)

		res = call(t, app, http.MethodDelete, "/api/recipes/"+public, bob, nil)
		assert.Equal(t, fiber.StatusForbidden, res.status)

		res = call(t, app, http.MethodPut, "/api/recipes/not-a-uuid", alice, map[string]any{"title": "x", "instructions": "x"})
		assert.Equal(t, fiber.StatusNotFound, res.status)
	})

	t.Run("rate and copy", func(t *testing.T) {
		res := call(t, app, http.MethodPost, "/api/recipes/"+public+"/rate", bob, map[string]any{"rating": 6})
		assert.Equal(t, fiber.StatusBadRequest, res.status)

		res = call(t, app, http.MethodPost, "/api/recipes/"+public+"/rate", bob, map[string]any{"rating": 4, "review": "Fluffy"})
		require.Equal(t, fiber.StatusOK, res.status, res.raw)
		assert.EqualValues(t, 4, res.body["averageRating"])
		assert.EqualValues(t, 1, res.body["totalRatings"])

		res = call(t, app, http.MethodPost, "/api/recipes/"+public+"/copy", bob, nil)
		require.Equal(t, fiber.StatusCreated, res.status, res.raw)
		copied := res.body["recipe"].(map[string]any)
		assert.Equal(t, "Pancakes (Copy)", copied["title"])
		assert.Equal(t, false, copied["isPublic"])
		assert.Len(t, copied["ingredients"], 2)
	})

	t.Run("search", func(t *testing.T) {
		res := call(t, app, http.MethodGet, "/api/search/recipes?includeIngredients=flour&excludeIngredients=nuts&sortBy=title&sortOrder=asc", "", nil)
		require.Equal(t, fiber.StatusOK, res.status)
		assert.Len(t, res.body["recipes"], 1)
		assert.Equal(t, map[string]any{"sortBy": "title", "sortOrder": "asc"}, res.body["sorting"])

		res = call(t, app, http.MethodGet, "/api/search/global", "", nil)
		assert.Equal(t, fiber.StatusBadRequest, res.status)
		assert.Equal(t, "Search query is required", res.body["error"])

		res = call(t, app, http.MethodPost, "/api/search/suggest-recipes", "", map[string]any{"ingredients": []string{"egg"}})
		require.Equal(t, fiber.StatusOK, res.status)
		assert.EqualValues(t, 1, res.body["totalSuggestions"])
	})

	t.Run("ingredient in use", func(t *testing.T) {
		res := call(t, app, http.MethodGet, "/api/ingredients?search=flour", "", nil)
		require.Equal(t, fiber.StatusOK, res.status)
		items := res.body["ingredients"].([]any)
		require.Len(t, items, 1)
		id := items[0].(map[string]any)["id"].(string)

		res = call(t, app, http.MethodDelete, "/api/ingredients/"+id, alice, nil)
		assert.Equal(t, fiber.StatusConflict, res.status)
	})

	t.Run("delete", func(t *testing.T) {
		res := call(t, app, http.MethodDelete, "/api/recipes/"+private, alice, nil)
		assert.Equal(t, fiber.StatusOK, res.status)
		res = call(t, app, http.MethodGet, "/api/recipes/"+private, alice, nil)
		assert.Equal(t, fiber.StatusNotFound, res.status)
	})
}

func TestTagEndpoints(t *testing.T) {
	app := newApp(t)
	token, _ := register(t, app, "cook@example.com", "Cook")

	res := call(t, app, http.MethodPost, "/api/tags", token, map[string]any{"name": "vegan", "color": "green"})
	assert.Equal(t, fiber.StatusBadRequest, res.status)

	res = call(t, app, http.MethodPost, "/api/tags", token, map[string]any{"name": "vegan"})
	require.Equal(t, fiber.StatusCreated, res.status, res.raw)
	assert.Equal(t, "#3B82F6", res.body["tag"].(map[string]any)["color"])

	res = call(t, app, http.MethodPost, "/api/tags", token, map[string]any{"name": "vegan"})
	assert.Equal(t, fiber.StatusConflict, res.status)

	res = call(t, app, http.MethodPost, "/api/tags/bulk", token, map[string]any{"tags": []map[string]any{{"name": "vegan"}, {"name": "quick"}}})
	require.Equal(t, fiber.StatusCreated, res.status, res.raw)
	results := res.body["results"].(map[string]any)
	assert.Len(t, results["created"], 1)
	assert.Len(t, results["existing"], 1)

	res = call(t, app, http.MethodGet, "/api/tags/popular", "", nil)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.Len(t, res.body["tags"], 2)
}

func TestConvertUnits(t *testing.T) {
	app := newApp(t)

	res := call(t, app, http.MethodPost, "/api/search/convert-units", "", map[string]any{"quantity": 2, "fromUnit": "cup", "toUnit": "ml"})
	require.Equal(t, fiber.StatusOK, res.status, res.raw)
	assert.InDelta(t, 473.176, res.body["convertedQuantity"], 1e-9)

	res = call(t, app, http.MethodPost, "/api/search/convert-units", "", map[string]any{"quantity": 1, "fromUnit": "cup", "toUnit": "g"})
	assert.Equal(t, fiber.StatusBadRequest, res.status)

	res = call(t, app, http.MethodPost, "/api/search/convert-units", "", map[string]any{"fromUnit": "cup", "toUnit": "ml"})
	assert.Equal(t, fiber.StatusBadRequest, res.status)
	assert.Equal(t, "Quantity, fromUnit, and toUnit are required", res.body["error"])

	res = call(t, app, http.MethodGet, "/api/search/units", "", nil)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.Contains(t, res.body["volume"], "cup")
}

func TestUploadEndpoints(t *testing.T) {
	app := newApp(t)
	token, _ := register(t, app, "cook@example.com", "Cook")

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 40, 30))))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="image"; filename="dish.png"`)
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/recipe-image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res := send(t, app, req, token)
	require.Equal(t, fiber.StatusOK, res.status, res.raw)
	url := res.body["imageUrl"].(string)
	filename := res.body["filename"].(string)

	served := send(t, app, httptest.NewRequest(http.MethodGet, url, nil), "")
	assert.Equal(t, fiber.StatusOK, served.status)

	res = call(t, app, http.MethodGet, "/api/upload/image/"+filename+"/info", token, nil)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.EqualValues(t, 40, res.body["width"])

	res = call(t, app, http.MethodPost, "/api/upload/recipe-image", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, res.status)
	assert.Equal(t, "No file provided", res.body["error"])

	res = call(t, app, http.MethodDelete, "/api/upload/image/..%2Fsecret.jpg", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, res.status)

	res = call(t, app, http.MethodDelete, "/api/upload/image/"+filename, token, nil)
	assert.Equal(t, fiber.StatusOK, res.status)
	res = call(t, app, http.MethodDelete, "/api/upload/image/"+filename, token, nil)
	assert.Equal(t, fiber.StatusNotFound, res.status)
}

func TestPages(t *testing.T) {
	app := newApp(t)
	token, _ := register(t, app, "cook@example.com", "Cook")
	id := createRecipe(t, app, token, map[string]any{
		"title":        "<script>alert(1)</script> Soup",
		"instructions": "Boil",
		"isPublic":     true,
	})

	res := call(t, app, http.MethodGet, "/", "", nil)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.Contains(t, res.raw, "&lt;script&gt;")
	assert.NotContains(t, res.raw, "<script>alert")

	res = call(t, app, http.MethodGet, "/recipes/"+id, "", nil)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.Contains(t, res.raw, "Boil")
	assert.Contains(t, res.raw, "Cook")

	res = call(t, app, http.MethodGet, "/recipes/00000000-0000-0000-0000-000000000000", "", nil)
	assert.Equal(t, fiber.StatusNotFound, res.status)
}
