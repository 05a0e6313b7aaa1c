package handlers

import (
	"furnitureshop/internal/models"
	"furnitureshop/internal/services"
	"furnitureshop/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	log         *logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
		log:         log,
	}
}

// RegisterRoutes registers the public authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/register/", h.HandleRegister)
	router.Post("/login/", h.HandleLogin)
}

// HandleRegister creates a user and returns a token for it.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var user models.User
	if err := parseAndValidate(c, h.validate, &user); err != nil {
		return respondError(c, h.log, err)
	}
	user.ID = ""

	if err := h.authService.RegisterUser(c.UserContext(), &user); err != nil {
		return respondError(c, h.log, err)
	}

	token, err := h.authService.IssueToken(&user)
	if err != nil {
		return respondError(c, h.log, err)
	}

	h.log.Info("User registered", "user_id", user.ID, "username", user.Username)
	// For security, do not return the password hash
	user.Password = ""
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
		"token":   token,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	token, err := h.authService.LoginUser(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}
