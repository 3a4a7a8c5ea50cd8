package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/bizfish/tag-a-meal-app/internal/api/handlers"
	"github.com/bizfish/tag-a-meal-app/internal/api/presenters"
	"github.com/bizfish/tag-a-meal-app/internal/api/routes"
	"github.com/bizfish/tag-a-meal-app/internal/middleware"
	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/bizfish/tag-a-meal-app/internal/utils/mailing"
	"github.com/bizfish/tag-a-meal-app/internal/utils/storage"
	"github.com/bizfish/tag-a-meal-app/internal/web"
	"github.com/bizfish/tag-a-meal-app/pkg/database"
	"github.com/bizfish/tag-a-meal-app/pkg/ingredient"
	"github.com/bizfish/tag-a-meal-app/pkg/jwt"
	"github.com/bizfish/tag-a-meal-app/pkg/recipe"
	"github.com/bizfish/tag-a-meal-app/pkg/search"
	"github.com/bizfish/tag-a-meal-app/pkg/tag"
	"github.com/bizfish/tag-a-meal-app/pkg/upload"
	"github.com/bizfish/tag-a-meal-app/pkg/user"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// bodyOverhead leaves room for multipart framing and the other form fields
// of a multi-image upload on top of the file size limit.
const bodyOverhead = 1 << 20

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.LoadConfig()
	utils.InitValidator()

	maxFileSize := utils.GetConfigInt("MAX_FILE_SIZE", utils.DefaultMaxFileSize)
	app := fiber.New(fiber.Config{
		AppName:      "Tag-a-Meal",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		BodyLimit:    maxFileSize*upload.MaxFilesPerUpload + bodyOverhead,
		ErrorHandler: presenters.FiberErrorHandler,
		Views:        web.NewEngine(),
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	logPath := utils.GetConfig("LOG_PATH")
	if err := os.MkdirAll(filepath.Dir(logPath), os.ModePerm); err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		logPath,
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        utils.GetConfigInt("RATE_LIMIT_MAX", 100),
		Expiration: 1 * time.Second,
		LimitReached: func(c *fiber.Ctx) error {
			return presenters.ErrorResponse(c, fiber.StatusTooManyRequests, "too many requests", nil)
		},
	}))

	// utils
	store, err := storage.New(context.Background())
	if err != nil {
		return nil, err
	}
	gw, err := database.NewGateway(db)
	if err != nil {
		return nil, err
	}

	// Repository
	userRepository := user.NewUserRepository(gw)
	recipeRepository := recipe.NewRecipeRepository(gw)
	ingredientRepository := ingredient.NewIngredientRepository(gw)
	tagRepository := tag.NewTagRepository(gw)

	// Service
	jwtService := jwt.NewJWTService()
	userService := user.NewUserService(userRepository, jwtService, mailing.NewMailer(), user.Options{
		RequireEmailVerification: utils.GetConfigBool("REQUIRE_EMAIL_VERIFICATION"),
		AppURL:                   utils.GetConfig("APP_URL"),
	})
	recipeService := recipe.NewRecipeService(recipeRepository)
	ingredientService := ingredient.NewIngredientService(ingredientRepository)
	tagService := tag.NewTagService(tagRepository, recipeService)
	searchService := search.NewSearchService(recipeService, ingredientService, tagService)
	uploadService := upload.NewUploadService(store, userRepository, int64(maxFileSize))

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator)
	recipeHandler := handlers.NewRecipeHandler(recipeService, validator)
	ingredientHandler := handlers.NewIngredientHandler(ingredientService, validator)
	tagHandler := handlers.NewTagHandler(tagService, validator)
	searchHandler := handlers.NewSearchHandler(searchService, validator)
	uploadHandler := handlers.NewUploadHandler(uploadService, validator)
	webHandler := handlers.NewWebHandler(recipeService, searchService)

	var uploadPath string
	if _, local := store.(*storage.LocalStorage); local {
		uploadPath = utils.GetConfig("UPLOAD_PATH")
	}

	// routes
	routesConfig := routes.Config{
		App:               app,
		UserHandler:       userHandler,
		RecipeHandler:     recipeHandler,
		IngredientHandler: ingredientHandler,
		TagHandler:        tagHandler,
		SearchHandler:     searchHandler,
		UploadHandler:     uploadHandler,
		WebHandler:        webHandler,
		Middleware:        middlewares,
		JWTService:        jwtService,
		UploadPath:        uploadPath,
	}
	routesConfig.Setup()
	return app, nil
}
