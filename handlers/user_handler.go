package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/smarifurrahman/linguistic-horizons-server/database"
	"github.com/smarifurrahman/linguistic-horizons-server/middleware"
	"github.com/smarifurrahman/linguistic-horizons-server/models"
)

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required,email"`
	PhotoURL string `json:"photoURL"`
}

// findUser returns nil, nil when nobody has that email.
func (h *Handler) findUser(c *fiber.Ctx, email string) (*models.User, error) {
	user, err := h.store.FindUserByEmail(c.UserContext(), email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	return user, err
}

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	role, ok := models.ParseRole(c.Query("role"))
	if !ok {
		return c.JSON([]models.User{})
	}

	users, err := h.store.ListUsers(c.UserContext(), role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

func (h *Handler) GetUser(c *fiber.Ctx) error {
	user, err := h.findUser(c, c.Params("email"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// CreateUser registers a user on first sign-in. Every new account starts as
// a Student; roles only change through the admin routes.
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	existing, err := h.findUser(c, req.Email)
	if err != nil {
		return respondError(c, err)
	}
	if existing != nil {
		return c.JSON(fiber.Map{"message": "user already exists"})
	}

	res, err := h.store.InsertUser(c.UserContext(), &models.User{
		Name:     req.Name,
		Email:    req.Email,
		PhotoURL: req.PhotoURL,
		Role:     models.RoleStudent,
	})
	if errors.Is(err, database.ErrDuplicate) {
		return c.JSON(fiber.Map{"message": "user already exists"})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// checkRole answers the check-admin/instructor/student lookups. A token for
// someone else gets false without a lookup.
func (h *Handler) checkRole(c *fiber.Ctx, key string, role models.Role) error {
	email := c.Params("email")
	if middleware.Email(c) != email {
		return c.JSON(fiber.Map{key: false})
	}

	user, err := h.findUser(c, email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{key: user.HasRole(role)})
}

func (h *Handler) CheckAdmin(c *fiber.Ctx) error {
	return h.checkRole(c, "admin", models.RoleAdmin)
}

func (h *Handler) CheckInstructor(c *fiber.Ctx) error {
	return h.checkRole(c, "instructor", models.RoleInstructor)
}

func (h *Handler) CheckStudent(c *fiber.Ctx) error {
	return h.checkRole(c, "student", models.RoleStudent)
}

func (h *Handler) setRole(c *fiber.Ctx, role models.Role) error {
	res, err := h.store.SetUserRole(c.UserContext(), c.Params("id"), role)
	if err != nil {
		return respondError(c, err)
	}
	if res.MatchedCount == 0 {
		return fail(c, fiber.StatusNotFound, "user not found")
	}
	return c.JSON(res)
}

func (h *Handler) MakeAdmin(c *fiber.Ctx) error {
	return h.setRole(c, models.RoleAdmin)
}

func (h *Handler) MakeInstructor(c *fiber.Ctx) error {
	return h.setRole(c, models.RoleInstructor)
}
