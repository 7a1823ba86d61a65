package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/backoffice-propsdb/internal/auth"
	"github.com/localnerve/backoffice-propsdb/internal/config"
	"github.com/localnerve/backoffice-propsdb/internal/logger"
	"github.com/localnerve/backoffice-propsdb/internal/resources"
	"github.com/localnerve/backoffice-propsdb/internal/services"
	"github.com/localnerve/backoffice-propsdb/internal/types"
	"github.com/localnerve/backoffice-propsdb/internal/utils"
	"go.uber.org/zap"
)

const (
	principalKey = "principal"
	resourceKey  = "resource"
)

// SessionValidator resolves an authorizer session cookie to a principal
type SessionValidator func(c *fiber.Ctx, cookie string) (*auth.Principal, error)

// Action is the kind of access a route needs on a resource
type Action int

const (
	ActionRead Action = iota
	ActionEdit
	ActionDelete
)

// Authenticate resolves the caller from a bearer token, or from the authorizer
// session cookie when a SessionValidator is configured.
func Authenticate(cfg *config.Config, sessions SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
			claims, err := auth.ParseToken(cfg.JWTSecret, token)
			if err != nil {
				return &types.CustomError{
					Code:    fiber.StatusUnauthorized,
					Message: fmt.Sprintf("Invalid token: %v", err),
					Type:    utils.ErrorTypeForbidden + ".token",
				}
			}
			c.Locals(principalKey, &auth.Principal{
				UserID: claims.Subject,
				Email:  claims.Email,
				Role:   claims.Role,
				Source: "token",
			})
			return c.Next()
		}

		if sessions != nil {
			if cookie := c.Cookies("cookie_session"); cookie != "" {
				principal, err := sessions(c, cookie)
				if err != nil {
					return &types.CustomError{
						Code:    fiber.StatusForbidden,
						Message: fmt.Sprintf("Invalid session: %v", err),
						Type:    utils.ErrorTypeForbidden + ".session",
					}
				}
				c.Locals(principalKey, principal)
				return c.Next()
			}
		}

		return &types.CustomError{
			Code:    fiber.StatusUnauthorized,
			Message: "Authorization bearer token or \"cookie_session\" not found",
			Type:    utils.ErrorTypeForbidden,
		}
	}
}

// AuthorizerSessions validates cookies through the authorizer service,
// initializing the client from the first request's protocol and host
func AuthorizerSessions(cfg *config.Config) SessionValidator {
	return func(c *fiber.Ctx, cookie string) (*auth.Principal, error) {
		if !services.IsAuthorizerInitialized() {
			if err := services.InitAuthorizer(cfg, c.Protocol(), c.Hostname()); err != nil {
				logger.Log.Error("authorizer init failed", zap.Error(err))
				return nil, err
			}
		}
		return services.ValidateSession(cookie)
	}
}

// CurrentPrincipal returns the caller stored by Authenticate
func CurrentPrincipal(c *fiber.Ctx) *auth.Principal {
	p, _ := c.Locals(principalKey).(*auth.Principal)
	return p
}

// RequireRoles rejects callers whose role is not in roles
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := CurrentPrincipal(c)
		if p == nil {
			return &types.CustomError{Code: fiber.StatusUnauthorized, Message: "Not authenticated", Type: utils.ErrorTypeForbidden}
		}
		for _, r := range roles {
			if p.Role == r {
				return c.Next()
			}
		}
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: fmt.Sprintf("Role %q may not access this route", p.Role),
			Type:    utils.ErrorTypeForbidden + ".role",
		}
	}
}

// ResourceAccess resolves the :resource route parameter against the registry and
// checks the caller's role for action. Unknown resources are 404.
func ResourceAccess(reg *resources.Registry, action Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("resource")
		res, ok := reg.Lookup(name)
		if !ok {
			return utils.NotFoundResponse(c, fmt.Sprintf("Resource '%s' not found", name))
		}

		p := CurrentPrincipal(c)
		if p == nil {
			return &types.CustomError{Code: fiber.StatusUnauthorized, Message: "Not authenticated", Type: utils.ErrorTypeForbidden}
		}

		allowed := true
		switch action {
		case ActionEdit:
			allowed = res.CanEdit(p.Role)
		case ActionDelete:
			allowed = res.CanDelete(p.Role)
		}
		if !allowed {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: fmt.Sprintf("Role %q may not modify %s", p.Role, res.Title),
				Type:    utils.ErrorTypeForbidden + ".role",
			}
		}

		c.Locals(resourceKey, res)
		return c.Next()
	}
}

// CurrentResource returns the resource stored by ResourceAccess
func CurrentResource(c *fiber.Ctx) *resources.Resource {
	res, _ := c.Locals(resourceKey).(*resources.Resource)
	return res
}
