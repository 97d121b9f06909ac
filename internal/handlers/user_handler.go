package handlers

import (
	"log"

	"scribe/internal/models"
	"scribe/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for the user resource.
type UserHandler struct {
	userService *services.UserService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the user routes. Signup is the one mutation
// allowed without a session, since no session can exist before the
// account does; every other operation passes through the auth guard.
func (h *UserHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	userRoutes := router.Group("/user")
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Get("/", authRequired, h.HandleGetUsers)
	userRoutes.Get("/:id", authRequired, h.HandleGetUserByID)
	userRoutes.Put("/:id", authRequired, h.HandleUpdateUser)
	userRoutes.Delete("/:id", authRequired, h.HandleDeleteUser)
}

// HandleCreateUser handles signup of a new account.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req models.CreateUserRequest
	if !parseBody(c, &req) {
		return nil
	}
	if !validateStruct(c, h.validate, &req) {
		return nil
	}

	user, err := h.userService.CreateUser(&req)
	if err != nil {
		log.Printf("Error creating user: %v", err)
		return storeError(c, err, "Email address already exists")
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleGetUsers retrieves all users, password hashes stripped.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.userService.GetAllUsers()
	if err != nil {
		log.Printf("Error getting all users: %v", err)
		return storeError(c, err, "")
	}
	return c.JSON(users)
}

// HandleGetUserByID retrieves a single user by ID.
func (h *UserHandler) HandleGetUserByID(c *fiber.Ctx) error {
	userID := c.Params("id")
	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		log.Printf("Error getting user by ID %s: %v", userID, err)
		return storeError(c, err, "")
	}
	return c.JSON(user)
}

// HandleUpdateUser applies a partial update to a user.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	userID := c.Params("id")

	var req models.UpdateUserRequest
	if !parseBody(c, &req) {
		return nil
	}
	if !validateStruct(c, h.validate, &req) {
		return nil
	}

	user, err := h.userService.UpdateUser(userID, &req)
	if err != nil {
		log.Printf("Error updating user %s: %v", userID, err)
		return storeError(c, err, "Email address already exists")
	}
	return c.JSON(user)
}

// HandleDeleteUser deletes a user by ID.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	userID := c.Params("id")

	deleted, err := h.userService.DeleteUser(userID)
	if err != nil {
		log.Printf("Error deleting user %s: %v", userID, err)
		return storeError(c, err, "")
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Not found",
		})
	}
	return c.JSON(fiber.Map{
		"message": "User deleted",
	})
}
