package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// IssueToken signs whatever user object the client posts, as long as it
// carries an email.
func (h *Handler) IssueToken(c *fiber.Ctx) error {
	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}

	email, _ := payload["email"].(string)
	email = strings.TrimSpace(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return fail(c, fiber.StatusBadRequest, "a valid email is required")
	}
	payload["email"] = email

	token, err := h.tokens.Issue(payload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"token": token})
}
