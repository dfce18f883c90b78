package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Authenticator issues access tokens. service.AuthService implements it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error)
}

// AuthHandler exposes login and the current-user endpoint.
type AuthHandler struct {
	auth Authenticator
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService Authenticator) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(apperrors.CodeValidation, "cuerpo de la solicitud inválido")
	}

	user, token, exp, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "inicio de sesión exitoso",
		"data": dto.AuthResponse{
			Token:     token,
			ExpiresAt: exp,
			User:      userResponse(auth.NewPrincipal(user)),
		},
	})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.CodeNotAuthenticated, "usuario no autenticado")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    userResponse(principal),
	})
}

func userResponse(p *auth.Principal) dto.UserResponse {
	role := string(p.Role)
	if !p.Role.Valid() {
		role = p.RawRole
	}
	return dto.UserResponse{
		ID:     p.UserID,
		Name:   p.Name,
		Email:  p.Email,
		Role:   role,
		RoleOK: p.Role.Valid(),
	}
}
