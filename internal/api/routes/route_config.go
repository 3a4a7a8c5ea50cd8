package routes

import (
	"github.com/bizfish/tag-a-meal-app/internal/api/handlers"
	"github.com/bizfish/tag-a-meal-app/internal/middleware"
	"github.com/bizfish/tag-a-meal-app/pkg/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	App               *fiber.App
	UserHandler       handlers.UserHandler
	RecipeHandler     handlers.RecipeHandler
	IngredientHandler handlers.IngredientHandler
	TagHandler        handlers.TagHandler
	SearchHandler     handlers.SearchHandler
	UploadHandler     handlers.UploadHandler
	WebHandler        handlers.WebHandler
	Middleware        middleware.Middleware
	JWTService        jwt.JWTService
	// UploadPath is served under /uploads when files are stored locally.
	UploadPath string
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.Prometheus())
	c.App.Use(c.Middleware.CORSMiddleware())
	c.Auth()
	c.Recipes()
	c.Ingredients()
	c.Tags()
	c.Search()
	c.Upload()
	c.GuestRoute()
	c.Pages()
}

func (c *Config) auth() fiber.Handler {
	return c.Middleware.AuthMiddleware(c.JWTService)
}

func (c *Config) optional() fiber.Handler {
	return c.Middleware.OptionalAuth(c.JWTService)
}

func (c *Config) Auth() {
	auth := c.App.Group("/api/auth")
	{
		auth.Post("/register", c.UserHandler.Register)
		auth.Post("/login", c.UserHandler.Login)
		auth.Post("/logout", c.UserHandler.Logout)
		auth.Get("/profile", c.auth(), c.UserHandler.Profile)
		auth.Put("/profile", c.auth(), c.UserHandler.UpdateProfile)
		auth.Post("/refresh", c.UserHandler.RefreshToken)
		auth.Get("/verify", c.UserHandler.VerifyEmail)
		auth.Post("/reset-password", c.UserHandler.ResetPassword)
		auth.Post("/update-password", c.optional(), c.UserHandler.UpdatePassword)
	}
}

func (c *Config) Recipes() {
	recipes := c.App.Group("/api/recipes")
	recipes.Get("", c.optional(), c.RecipeHandler.ListRecipes)
	recipes.Get("/my-recipes", c.auth(), c.RecipeHandler.MyRecipes)
	recipes.Get("/:id", c.optional(), c.RecipeHandler.GetRecipe)
	recipes.Post("", c.auth(), c.RecipeHandler.CreateRecipe)
	recipes.Put("/:id", c.auth(), c.RecipeHandler.UpdateRecipe)
	recipes.Delete("/:id", c.auth(), c.RecipeHandler.DeleteRecipe)
	recipes.Post("/:id/copy", c.auth(), c.RecipeHandler.CopyRecipe)
	recipes.Post("/:id/rate", c.auth(), c.RecipeHandler.RateRecipe)
}

func (c *Config) Ingredients() {
	ingredients := c.App.Group("/api/ingredients")
	ingredients.Get("", c.optional(), c.IngredientHandler.ListIngredients)
	ingredients.Get("/categories", c.optional(), c.IngredientHandler.GetCategories)
	ingredients.Get("/:id", c.optional(), c.IngredientHandler.GetIngredient)
	ingredients.Get("/:id/usage", c.optional(), c.IngredientHandler.GetUsage)
	ingredients.Post("", c.auth(), c.IngredientHandler.CreateIngredient)
	ingredients.Post("/bulk", c.auth(), c.IngredientHandler.BulkCreateIngredients)
	ingredients.Put("/:id", c.auth(), c.IngredientHandler.UpdateIngredient)
	ingredients.Delete("/:id", c.auth(), c.IngredientHandler.DeleteIngredient)
}

func (c *Config) Tags() {
	tags := c.App.Group("/api/tags")
	tags.Get("", c.optional(), c.TagHandler.ListTags)
	tags.Get("/popular", c.optional(), c.TagHandler.PopularTags)
	tags.Get("/:id", c.optional(), c.TagHandler.GetTag)
	tags.Get("/:id/usage", c.optional(), c.TagHandler.GetUsage)
	tags.Get("/:id/recipes", c.optional(), c.TagHandler.GetTagRecipes)
	tags.Post("", c.auth(), c.TagHandler.CreateTag)
	tags.Post("/bulk", c.auth(), c.TagHandler.BulkCreateTags)
	tags.Put("/:id", c.auth(), c.TagHandler.UpdateTag)
	tags.Delete("/:id", c.auth(), c.TagHandler.DeleteTag)
}

func (c *Config) Search() {
	search := c.App.Group("/api/search", c.optional())
	search.Get("/recipes", c.SearchHandler.SearchRecipes)
	search.Get("/ingredients", c.SearchHandler.SearchIngredients)
	search.Get("/tags", c.SearchHandler.SearchTags)
	search.Get("/global", c.SearchHandler.GlobalSearch)
	search.Post("/convert-units", c.SearchHandler.ConvertUnits)
	search.Get("/units", c.SearchHandler.Units)
	search.Post("/suggest-recipes", c.SearchHandler.SuggestRecipes)
}

func (c *Config) Upload() {
	upload := c.App.Group("/api/upload", c.auth())
	upload.Post("/recipe-image", c.UploadHandler.UploadRecipeImage)
	upload.Post("/recipe-images", c.UploadHandler.UploadRecipeImages)
	upload.Post("/avatar", c.UploadHandler.UploadAvatar)
	upload.Delete("/image/:filename", c.UploadHandler.DeleteImage)
	upload.Get("/image/:filename/info", c.UploadHandler.ImageInfo)
	upload.Post("/image/:filename/resize", c.UploadHandler.ResizeImage)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
	c.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	if c.UploadPath != "" {
		c.App.Static("/uploads", c.UploadPath)
	}
}

func (c *Config) Pages() {
	if c.WebHandler == nil {
		return
	}
	c.App.Get("/", c.optional(), c.WebHandler.Home)
	c.App.Get("/recipes/:id", c.optional(), c.WebHandler.Recipe)
}
