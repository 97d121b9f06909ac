package handlers

import (
	"log"

	"scribe/internal/middleware"
	"scribe/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// AuthHandler handles login, logout and the federated-login callback.
// It owns the session store: a successful login regenerates the session
// and stores the user id under it; logout destroys the session.
type AuthHandler struct {
	authService  *services.AuthService
	userService  *services.UserService
	sessionStore *session.Store
	validate     *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, userService *services.UserService, sessionStore *session.Store) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		userService:  userService,
		sessionStore: sessionStore,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Post("/federated", h.HandleFederatedLogin)
	authRoutes.Get("/me", authRequired, h.HandleMe)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FederatedLoginRequest is posted by the third-party login callback once
// the provider has authenticated the identity.
type FederatedLoginRequest struct {
	FederatedID string `json:"federatedId" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"required"`
}

// HandleLogin verifies credentials and opens a session for the caller.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if !parseBody(c, &req) {
		return nil
	}
	if !validateStruct(c, h.validate, &req) {
		return nil
	}

	user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		log.Printf("Login failed for %s: %v", req.Email, err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
		})
	}

	if err := h.openSession(c, user.ID); err != nil {
		log.Printf("Failed to open session for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
	})
}

// HandleFederatedLogin resolves a provider identity (creating the account
// on first sight) and opens a session for it.
func (h *AuthHandler) HandleFederatedLogin(c *fiber.Ctx) error {
	var req FederatedLoginRequest
	if !parseBody(c, &req) {
		return nil
	}
	if !validateStruct(c, h.validate, &req) {
		return nil
	}

	user, err := h.authService.FederatedLogin(req.FederatedID, req.Email, req.DisplayName)
	if err != nil {
		log.Printf("Federated login failed for %s: %v", req.FederatedID, err)
		return storeError(c, err, "Email address already exists")
	}

	if err := h.openSession(c, user.ID); err != nil {
		log.Printf("Failed to open session for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
	})
}

// HandleLogout destroys the caller's session. Logging out without a
// session is a no-op success.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	sess, err := h.sessionStore.Get(c)
	if err == nil {
		if err := sess.Destroy(); err != nil {
			log.Printf("Failed to destroy session: %v", err)
		}
	}
	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

// HandleMe returns the authenticated caller's own record.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	userID := middleware.AuthenticatedUserID(c)
	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		log.Printf("Error loading session user %s: %v", userID, err)
		return storeError(c, err, "")
	}
	return c.JSON(user)
}

// openSession regenerates the caller's session and binds it to userID.
// Regeneration rotates the opaque cookie token so a pre-login cookie can
// never be replayed as an authenticated one.
func (h *AuthHandler) openSession(c *fiber.Ctx, userID string) error {
	sess, err := h.sessionStore.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(middleware.SessionUserKey, userID)
	return sess.Save()
}
