package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. Role is empty when the stored role
// name is not one the platform knows; RawRole keeps the original for messages.
type Principal struct {
	domain.Principal
	Name    string
	Email   string
	RawRole string
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized(apperrors.CodeTokenRequired, "token de acceso requerido")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized(apperrors.CodeTokenInvalid, "formato de autorización inválido")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized(apperrors.CodeTokenInvalid, "token inválido o expirado")
	}

	user, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized(apperrors.CodeNotAuthenticated, "usuario no encontrado")
		}
		return apperrors.NewInternalError(err)
	}
	if !user.Active {
		return apperrors.NewUnauthorized(apperrors.CodeNotAuthenticated, "usuario inactivo")
	}

	SetPrincipal(c, NewPrincipal(user))
	return c.Next()
}

// NewPrincipal builds the request principal from a stored user. The stored role is
// authoritative over the one embedded in the token.
func NewPrincipal(user *domain.User) *Principal {
	role, _ := domain.ParseRole(user.RoleName)
	return &Principal{
		Principal: domain.Principal{UserID: user.ID, Role: role},
		Name:      user.Name,
		Email:     user.Email,
		RawRole:   user.RoleName,
	}
}

// SetPrincipal stores principal for downstream handlers.
func SetPrincipal(c *fiber.Ctx, principal *Principal) {
	c.Locals(principalKey, principal)
	c.Locals(observability.PrincipalIDKey, principal.UserID)
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	principal, ok := c.Locals(principalKey).(*Principal)
	return principal, ok && principal != nil
}
