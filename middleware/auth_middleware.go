package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/smarifurrahman/linguistic-horizons-server/database"
	"github.com/smarifurrahman/linguistic-horizons-server/models"
	"github.com/smarifurrahman/linguistic-horizons-server/services"
)

const (
	localToken       = "token"
	localEmail       = "email"
	localUser        = "user"
	localTargetEmail = "target_email"
)

type Guards struct {
	store  database.Store
	tokens *services.TokenService
}

func NewGuards(store database.Store, tokens *services.TokenService) *Guards {
	return &Guards{store: store, tokens: tokens}
}

func deny(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": true, "message": message})
}

func unauthorized(c *fiber.Ctx, _ error) error {
	return deny(c, fiber.StatusUnauthorized, "unauthorized access")
}

// Authenticate verifies the bearer token and keeps its email claim for the
// handlers downstream.
func (g *Guards) Authenticate() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    g.tokens.Secret(),
		SigningMethod: "HS256",
		ContextKey:    localToken,
		ErrorHandler:  unauthorized,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals(localToken).(*jwt.Token)
			if !ok {
				return unauthorized(c, nil)
			}
			email, err := services.EmailFromClaims(token.Claims)
			if err != nil {
				return unauthorized(c, err)
			}
			c.Locals(localEmail, email)
			return c.Next()
		},
	})
}

// Email is the authenticated email, empty on unguarded routes.
func Email(c *fiber.Ctx) string {
	email, _ := c.Locals(localEmail).(string)
	return email
}

// CurrentUser is the record RequireRole loaded, nil before it ran.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

func forbiddenMessage(roles []models.Role) string {
	if len(roles) == 1 {
		switch roles[0] {
		case models.RoleAdmin:
			return "not an admin, access forbidden"
		case models.RoleInstructor:
			return "not an instructor, access forbidden"
		case models.RoleStudent:
			return "not a student, access forbidden"
		}
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, strings.ToLower(string(r)))
	}
	return "requires " + strings.Join(names, " or ") + ", access forbidden"
}

// RequireRole must run after Authenticate. It looks the caller up by the
// token's email, never by a route parameter.
func (g *Guards) RequireRole(roles ...models.Role) fiber.Handler {
	message := forbiddenMessage(roles)

	return func(c *fiber.Ctx) error {
		email := Email(c)
		if email == "" {
			return unauthorized(c, nil)
		}

		user, err := g.store.FindUserByEmail(c.UserContext(), email)
		if errors.Is(err, database.ErrNotFound) {
			return deny(c, fiber.StatusForbidden, message)
		}
		if err != nil {
			return err
		}

		for _, r := range roles {
			if user.Role == r {
				c.Locals(localUser, user)
				return c.Next()
			}
		}
		return deny(c, fiber.StatusForbidden, message)
	}
}

func (g *Guards) RequireAdmin() fiber.Handler {
	return g.RequireRole(models.RoleAdmin)
}

func (g *Guards) RequireInstructor() fiber.Handler {
	return g.RequireRole(models.RoleInstructor)
}

func (g *Guards) RequireStudent() fiber.Handler {
	return g.RequireRole(models.RoleStudent)
}

// RequireSelf pins ?email= to the authenticated caller. A missing ?email=
// falls back to the token email; a different one is refused.
func (g *Guards) RequireSelf() fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := Email(c)
		if email == "" {
			return unauthorized(c, nil)
		}
		if q := c.Query("email"); q != "" && q != email {
			return deny(c, fiber.StatusForbidden, "forbidden access")
		}
		c.Locals(localTargetEmail, email)
		return c.Next()
	}
}

func TargetEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(localTargetEmail).(string)
	return email
}
