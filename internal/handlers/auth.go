package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/example/speakci/internal/middleware"
	"github.com/example/speakci/internal/services"
	"github.com/example/speakci/internal/utils"
)

// AuthHandler bundles dependencies for back-office authentication endpoints.
type AuthHandler struct {
	admin  *services.AdminService
	secret string
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(admin *services.AdminService, secret string) *AuthHandler {
	return &AuthHandler{admin: admin, secret: secret}
}

type loginRequest struct {
	Password string `json:"password"`
}

// Login checks the back-office password and returns a session token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	sess, err := h.admin.Login(c.UserContext(), req.Password)
	if err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.secret, utils.SessionClaims{
		Subject:   sess.Subject,
		IssuedAt:  sess.IssuedAt,
		ExpiresAt: sess.ExpiresAt,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}
	log.Printf("[Admin] session opened from %s", c.IP())

	return c.JSON(fiber.Map{
		"success":    true,
		"token":      token,
		"expires_at": sess.ExpiresAt,
	})
}

// Session reports the current session; the middleware has already validated it.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	sess := middleware.GetAdminSession(c)
	return c.JSON(fiber.Map{
		"success":    true,
		"subject":    sess.Subject,
		"expires_at": sess.ExpiresAt,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ChangePassword replaces the back-office password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.admin.ChangePassword(c.UserContext(), middleware.GetAdminSession(c), req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "mot de passe modifié"})
}
