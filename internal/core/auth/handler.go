package auth

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/utils"
)

type Handler struct {
	authService *Service
	google      GoogleVerifier
}

func NewHandler(authService *Service, google GoogleVerifier) *Handler {
	return &Handler{
		authService: authService,
		google:      google,
	}
}

// RegisterRoutes mounts /auth. Authenticate must already be installed on app.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	g := router.Group("/auth")
	g.Post("/signup", h.Signup)
	g.Post("/login", h.Login)
	g.Post("/google", h.LoginWithGoogle)
	g.Post("/refresh", h.RefreshToken)
	g.Post("/logout", RequireAuth(), h.Logout)
	g.Get("/me", h.Me)
}

// Signup godoc
// @Summary Sign up
// @Description Create a client account with email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup details"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /auth/signup [post]
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	authResponse, err := h.authService.Signup(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("❌ Signup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create account"})
	}

	return c.Status(fiber.StatusCreated).JSON(authResponse)
}

// Login godoc
// @Summary Login with email and password
// @Description Authenticate user and return JWT tokens plus the persisted role
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/login [post]
func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	authResponse, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		log.Printf("❌ Login failed for %s: %v", req.Email, err)
		switch {
		case errors.Is(err, ErrUserDataNotFound):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User data not found"})
		case IsAuthError(err):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Login failed"})
		}
	}

	return c.JSON(authResponse)
}

// LoginWithGoogle godoc
// @Summary Login with Google
// @Description Authenticate with a Google ID token; first sign-in creates a client account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body GoogleLoginRequest true "Google ID token"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/google [post]
func (h *Handler) LoginWithGoogle(c *fiber.Ctx) error {
	var req GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	googleUser, err := h.google.VerifyIDToken(c.UserContext(), req.GoogleIDToken)
	if err != nil {
		log.Printf("❌ Google token verification failed: %v", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid Google ID token"})
	}

	authResponse, err := h.authService.LoginWithGoogle(c.UserContext(), googleUser)
	if err != nil {
		log.Printf("❌ Google login failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Google login failed"})
	}

	return c.JSON(authResponse)
}

// RefreshToken godoc
// @Summary Refresh access token
// @Description Rotate tokens using a refresh token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh token"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/refresh [post]
func (h *Handler) RefreshToken(c *fiber.Ctx) error {
	var req RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	authResponse, err := h.authService.RefreshToken(c.UserContext(), req.RefreshToken)
	if err != nil {
		log.Printf("❌ Token refresh failed: %v", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired refresh token"})
	}

	return c.JSON(authResponse)
}

// Logout godoc
// @Summary Sign out
// @Description Revoke the refresh token of the current user
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/logout [post]
func (h *Handler) Logout(c *fiber.Ctx) error {
	state := StateOf(c)

	if err := h.authService.Logout(c.UserContext(), state.Identity.UserID); err != nil {
		log.Printf("❌ Logout failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to logout"})
	}

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// Me godoc
// @Summary Current auth state
// @Description Anonymous, or Authenticated with identity and role
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} StateView
// @Failure 401 {object} map[string]interface{}
// @Router /auth/me [get]
func (h *Handler) Me(c *fiber.Ctx) error {
	return c.JSON(StateOf(c).View())
}
