package handlers

import (
	"time"

	"habitxp/database"
	"habitxp/logger"
	"habitxp/middleware"
	"habitxp/services"
	"habitxp/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps are the collaborators the handlers share.
type Deps struct {
	Recorder *services.CompletionRecorder
	Google   services.GoogleVerifier
	Log      *logger.Logger
	TimeZone *time.Location
}

var (
	completionRecorder *services.CompletionRecorder
	googleVerifier     services.GoogleVerifier
	log                = logger.Nop()
	timeZone           = time.UTC
)

// InitHandlers must run after database.InitDB.
func InitHandlers(deps Deps) {
	if database.GetDB() == nil {
		panic("Database not initialized before InitHandlers")
	}
	completionRecorder = deps.Recorder
	googleVerifier = deps.Google
	if deps.Log != nil {
		log = deps.Log
	}
	if deps.TimeZone != nil {
		timeZone = deps.TimeZone
	}
}

// requestDB is the shared handle bound to the request context.
func requestDB(c *fiber.Ctx) *gorm.DB {
	return database.GetDB().WithContext(c.UserContext())
}

// currentUser returns the authenticated user id, or false when none is
// attached. Callers answer 401 themselves.
func currentUser(c *fiber.Ctx) (uint, bool) {
	id, err := middleware.GetUserID(c)
	if err != nil {
		return 0, false
	}
	return id, true
}

// serverError logs err and answers 500 without leaking details.
func serverError(c *fiber.Ctx, message string, err error) error {
	log.Error(message,
		"error", err,
		"path", c.Path(),
		"request_id", c.Locals("requestid"),
	)
	return utils.JSONError(c, fiber.StatusInternalServerError, message)
}

func unauthorized(c *fiber.Ctx) error {
	return utils.JSONError(c, fiber.StatusUnauthorized, "Usuário não autenticado.")
}
