package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/smarifurrahman/linguistic-horizons-server/middleware"
)

func (h *Handler) SelectClass(c *fiber.Ctx) error {
	res, added, err := h.enrollment.AddToSelection(c.UserContext(), middleware.TargetEmail(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if !added {
		return c.JSON(fiber.Map{"selected": true, "message": "Already Selected"})
	}
	return c.JSON(res)
}

func (h *Handler) DeselectClass(c *fiber.Ctx) error {
	res, err := h.enrollment.RemoveFromSelection(c.UserContext(), middleware.TargetEmail(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) EnrollClass(c *fiber.Ctx) error {
	res, enrolled, err := h.enrollment.EnrollStudent(c.UserContext(), c.Params("id"), middleware.TargetEmail(c))
	if err != nil {
		return respondError(c, err)
	}
	if !enrolled {
		return c.JSON(fiber.Map{"enrolled": true, "message": "Already enrolled"})
	}
	return c.JSON(res)
}

func (h *Handler) UnenrollClass(c *fiber.Ctx) error {
	res, removed, err := h.enrollment.UnenrollStudent(c.UserContext(), c.Params("id"), middleware.TargetEmail(c))
	if err != nil {
		return respondError(c, err)
	}
	if !removed {
		return c.JSON(fiber.Map{"enrolled": false, "message": "Not enrolled"})
	}
	return c.JSON(res)
}
