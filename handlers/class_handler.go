package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/smarifurrahman/linguistic-horizons-server/database"
	"github.com/smarifurrahman/linguistic-horizons-server/middleware"
	"github.com/smarifurrahman/linguistic-horizons-server/models"
)

type CreateClassRequest struct {
	Name           string  `json:"name" validate:"required"`
	Image          string  `json:"image"`
	InstructorName string  `json:"instructorName"`
	Price          float64 `json:"price" validate:"gte=0"`
	AvailableSeats int     `json:"availableSeats" validate:"gte=0"`
}

type FeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required"`
}

func (h *Handler) ListClasses(c *fiber.Ctx) error {
	filter := models.ClassFilter{
		Status:          models.ClassStatus(c.Query("status")),
		InstructorEmail: c.Query("email"),
		SortByPopular:   c.Query("sort") != "",
	}

	classes, err := h.store.ListClasses(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(classes)
}

func (h *Handler) GetClass(c *fiber.Ctx) error {
	class, err := h.store.FindClass(c.UserContext(), c.Params("id"))
	if errors.Is(err, database.ErrNotFound) {
		return c.JSON(nil)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(class)
}

// SelectedClasses resolves a cart (a JSON array of ids) to classes.
func (h *Handler) SelectedClasses(c *fiber.Ctx) error {
	var ids []string
	if err := c.BodyParser(&ids); err != nil {
		return fail(c, fiber.StatusBadRequest, "expected a JSON array of class ids")
	}

	classes, err := h.store.FindClassesByIDs(c.UserContext(), ids)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(classes)
}

func (h *Handler) EnrolledClasses(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		return fail(c, fiber.StatusBadRequest, "email query is required")
	}

	classes, err := h.store.ListClasses(c.UserContext(), models.ClassFilter{EnrolledEmail: email})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(classes)
}

func (h *Handler) AddClass(c *fiber.Ctx) error {
	var req CreateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	instructorName := req.InstructorName
	if instructorName == "" {
		if user := middleware.CurrentUser(c); user != nil {
			instructorName = user.Name
		}
	}

	res, err := h.classes.Submit(c.UserContext(), middleware.Email(c), &models.Class{
		Name:           req.Name,
		Image:          req.Image,
		InstructorName: instructorName,
		Price:          req.Price,
		AvailableSeats: req.AvailableSeats,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) UpdateClass(c *fiber.Ctx) error {
	var patch models.ClassPatch
	if err := c.BodyParser(&patch); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := validate.Struct(patch); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	res, err := h.classes.Update(c.UserContext(), middleware.Email(c), c.Params("id"), patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) ApproveClass(c *fiber.Ctx) error {
	res, err := h.classes.SetStatus(c.UserContext(), c.Params("id"), models.ClassApproved)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) DenyClass(c *fiber.Ctx) error {
	res, err := h.classes.SetStatus(c.UserContext(), c.Params("id"), models.ClassDenied)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) SendFeedback(c *fiber.Ctx) error {
	var req FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	res, err := h.classes.SetFeedback(c.UserContext(), c.Params("id"), req.Feedback)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}
