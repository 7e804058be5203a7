package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/smarifurrahman/linguistic-horizons-server/middleware"
)

// RecountEnrollments runs the same repair as the scheduled job on demand.
func (h *Handler) RecountEnrollments(c *fiber.Ctx) error {
	n, err := h.enrollment.Recount(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}

func (h *Handler) ExportRoster(c *fiber.Ctx) error {
	buf, filename, err := h.roster.Export(c.UserContext(), c.Params("id"), middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}

	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(buf.Bytes())
}

func (h *Handler) ClassImageSignature(c *fiber.Ctx) error {
	sig, err := h.media.ClassImageSignature()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sig)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	if err := h.store.Ping(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "unavailable",
			"message": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
