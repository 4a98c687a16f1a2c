package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storeapi/internal/apperr"
	"storeapi/internal/middleware"
	"storeapi/internal/models"
	"storeapi/internal/services"
	"storeapi/pkg/validator"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
	validate    validator.Validator
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, userService *services.UserService, v validator.Validator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		validate:    v,
		logger:      logger,
	}
}

// RegisterRoutes registers the authentication routes. guard protects the
// profile endpoint.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/sign-up", h.HandleSignUp)
	authRoutes.Post("/sign-in", h.HandleSignIn)
	authRoutes.Get("/me", guard, h.HandleMe)
}

// HandleSignUp registers a user and returns an access token.
func (h *AuthHandler) HandleSignUp(c *fiber.Ctx) error {
	var req models.SignUpRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	token, err := h.authService.SignUp(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(token)
}

// HandleSignIn checks credentials and returns an access token.
func (h *AuthHandler) HandleSignIn(c *fiber.Ctx) error {
	var req models.SignInRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	token, err := h.authService.SignIn(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(token)
}

// HandleMe returns the profile of the authenticated user.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user, err := h.userService.FindByID(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if user == nil {
		// Token outlived its account.
		return respondError(c, h.logger, apperr.ErrUserNotFound)
	}
	return c.JSON(user)
}
