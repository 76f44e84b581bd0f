package middleware

import (
	"context"
	"strings"

	"go-insumos-ws/internal/apierror"
	"go-insumos-ws/internal/model"

	"github.com/gofiber/fiber/v2"
)

const sessionKey = "session"

// Authenticator resolves a bearer token to the user it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// Session is the authenticated caller of one request.
type Session struct {
	UserID     string
	Email      string
	Name       string
	RoleCode   string
	Privileges []string
}

func (s *Session) Actor() model.Actor {
	return model.Actor{ID: s.UserID, Name: s.Name, Email: s.Email}
}

func (s *Session) Has(privilege string) bool {
	for _, p := range s.Privileges {
		if p == privilege {
			return true
		}
	}
	return false
}

// SessionFrom returns the session stored by RequireAuth, nil on public routes.
func SessionFrom(c *fiber.Ctx) *Session {
	s, _ := c.Locals(sessionKey).(*Session)
	return s
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(apierror.Response{Error: msg})
}

// RequireAuth validates the bearer token against the user store and stores the Session.
func RequireAuth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "missing authorization token")
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return unauthorized(c, "invalid authorization format, use: Bearer <token>")
		}

		user, err := auth.Authenticate(c.UserContext(), parts[1])
		if err != nil {
			return c.Status(apierror.StatusCode(err)).JSON(apierror.ToResponse(err))
		}

		// privileges come from the stored user so revocations apply to live tokens
		c.Locals(sessionKey, &Session{
			UserID:     user.ID.String(),
			Email:      user.Email,
			Name:       user.FullName,
			RoleCode:   user.RoleCode(),
			Privileges: user.PrivilegeCodes(),
		})
		return c.Next()
	}
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := SessionFrom(c)
		if s == nil {
			return unauthorized(c, "not authenticated")
		}
		if s.Has(requiredPrivilege) {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(apierror.Response{
			Error: "forbidden: requires '" + requiredPrivilege + "' privilege",
		})
	}
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := SessionFrom(c)
		if s == nil {
			return unauthorized(c, "not authenticated")
		}
		for _, p := range requiredPrivileges {
			if s.Has(p) {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(apierror.Response{
			Error: "forbidden: requires one of " + strings.Join(requiredPrivileges, ", ") + " privileges",
		})
	}
}
