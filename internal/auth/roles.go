package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// RequireRoles ensures the principal holds one of the allowed roles. With no roles
// it only requires authentication.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized(apperrors.CodeNotAuthenticated, "usuario no autenticado")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if !principal.Role.Valid() {
			return apperrors.NewForbidden(apperrors.CodeRoleNotRecognized, "rol de usuario no reconocido")
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden(apperrors.CodeForbidden, "permisos insuficientes")
		}
		return c.Next()
	}
}
