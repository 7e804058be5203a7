package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/smarifurrahman/linguistic-horizons-server/database"
	"github.com/smarifurrahman/linguistic-horizons-server/services"
)

var validate = validator.New()

type Deps struct {
	Store      database.Store
	Tokens     *services.TokenService
	Enrollment *services.EnrollmentService
	Classes    *services.ClassService
	Roster     *services.RosterService
	Media      *services.MediaService
}

// Handler holds the collaborators every route needs. One instance serves
// the whole process.
type Handler struct {
	store      database.Store
	tokens     *services.TokenService
	enrollment *services.EnrollmentService
	classes    *services.ClassService
	roster     *services.RosterService
	media      *services.MediaService
}

func New(d Deps) *Handler {
	return &Handler{
		store:      d.Store,
		tokens:     d.Tokens,
		enrollment: d.Enrollment,
		classes:    d.Classes,
		roster:     d.Roster,
		media:      d.Media,
	}
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": true, "message": message})
}

// respondError maps domain errors to status codes. Anything unknown goes to
// ErrorHandler as a 500.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, database.ErrInvalidID):
		return fail(c, fiber.StatusBadRequest, "invalid id")
	case errors.Is(err, database.ErrNotFound):
		return fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotOwner):
		return fail(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrEmptyPatch), errors.Is(err, services.ErrInvalidState):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNoSeats):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":    true,
			"enrolled": false,
			"message":  "No seats available",
		})
	case errors.Is(err, services.ErrMediaNotConfigured):
		return fail(c, fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return fail(c, fiber.StatusGatewayTimeout, "database timeout")
	}
	return err
}

// ErrorHandler is the last stop for errors no handler translated.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
