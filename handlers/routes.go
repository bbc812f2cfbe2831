package handlers

import (
	"time"

	"habitxp/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes registers the API. authLimiter guards the credential
// endpoints; pass middleware.Disabled to turn it off.
func SetupRoutes(app *fiber.App, authLimiter fiber.Handler) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(authLimiter)
	authGroup.Post("/register", Register)
	authGroup.Post("/login", Login)
	authGroup.Post("/google", GoogleLogin)

	userGroup := api.Group("/usuarios", middleware.AuthMiddleware)
	userGroup.Get("/perfil", GetProfile)
	userGroup.Put("/perfil", UpdateProfile)
	userGroup.Put("/senha", ChangePassword)

	goalGroup := api.Group("/objetivos", middleware.AuthMiddleware)
	goalGroup.Get("/catalogo", ListGoalTemplates)
	goalGroup.Post("/catalogo/selecionar", SelectGoalTemplate)
	goalGroup.Post("/", CreateGoal)
	goalGroup.Get("/", ListGoals)
	goalGroup.Put("/:id", UpdateGoal)
	goalGroup.Delete("/:id", DeleteGoal)

	challengeGroup := api.Group("/desafios", middleware.AuthMiddleware)
	challengeGroup.Get("/catalogo", ListChallengeTemplates)
	challengeGroup.Get("/opcoes/:tipo", GetTypeOptions)
	challengeGroup.Post("/", CreateChallenge)
	challengeGroup.Get("/", ListChallenges)
	challengeGroup.Put("/:id", UpdateChallenge)
	challengeGroup.Delete("/:id", DeleteChallenge)

	historyGroup := api.Group("/historico", middleware.AuthMiddleware)
	historyGroup.Post("/concluir", CompleteChallenge)
	historyGroup.Get("/diario", DailyHistory)
	historyGroup.Get("/desafio/:id", ChallengeHistory)

	achievementGroup := api.Group("/conquistas", middleware.AuthMiddleware)
	achievementGroup.Get("/catalogo", ListAchievementCatalog)
	achievementGroup.Get("/usuario", ListUserAchievements)
}
