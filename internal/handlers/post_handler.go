package handlers

import (
	"log"

	"scribe/internal/middleware"
	"scribe/internal/models"
	"scribe/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PostHandler handles HTTP requests for the post resource.
type PostHandler struct {
	postService *services.PostService
	validate    *validator.Validate
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the post routes. Reads are public; every
// mutation requires a session, creation included, because the author id
// is stamped from the authenticated identity.
func (h *PostHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	postRoutes := router.Group("/post")
	postRoutes.Get("/", h.HandleGetPosts)
	postRoutes.Get("/:id", h.HandleGetPostByID)
	postRoutes.Post("/", authRequired, h.HandleCreatePost)
	postRoutes.Put("/:id", authRequired, h.HandleUpdatePost)
	postRoutes.Delete("/:id", authRequired, h.HandleDeletePost)
}

// HandleGetPosts retrieves all posts.
func (h *PostHandler) HandleGetPosts(c *fiber.Ctx) error {
	posts, err := h.postService.GetAllPosts()
	if err != nil {
		log.Printf("Error getting all posts: %v", err)
		return storeError(c, err, "")
	}
	return c.JSON(posts)
}

// HandleGetPostByID retrieves a single post by ID.
func (h *PostHandler) HandleGetPostByID(c *fiber.Ctx) error {
	postID := c.Params("id")
	post, err := h.postService.GetPostByID(postID)
	if err != nil {
		log.Printf("Error getting post by ID %s: %v", postID, err)
		return storeError(c, err, "")
	}
	return c.JSON(post)
}

// HandleCreatePost creates a post authored by the session's user.
func (h *PostHandler) HandleCreatePost(c *fiber.Ctx) error {
	var req models.CreatePostRequest
	if !parseBody(c, &req) {
		return nil
	}
	if !validateStruct(c, h.validate, &req) {
		return nil
	}

	authorID := middleware.AuthenticatedUserID(c)
	if authorID == "" {
		// The guard always runs first on this route; an empty id here
		// means a wiring mistake, not a client error.
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	post, err := h.postService.CreatePost(&req, authorID)
	if err != nil {
		log.Printf("Error creating post: %v", err)
		return storeError(c, err, "")
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// HandleUpdatePost applies a partial title/content update to a post.
func (h *PostHandler) HandleUpdatePost(c *fiber.Ctx) error {
	postID := c.Params("id")

	var req models.UpdatePostRequest
	if !parseBody(c, &req) {
		return nil
	}
	if !validateStruct(c, h.validate, &req) {
		return nil
	}

	post, err := h.postService.UpdatePost(postID, &req)
	if err != nil {
		log.Printf("Error updating post %s: %v", postID, err)
		return storeError(c, err, "")
	}
	return c.JSON(post)
}

// HandleDeletePost deletes a post by ID.
func (h *PostHandler) HandleDeletePost(c *fiber.Ctx) error {
	postID := c.Params("id")

	deleted, err := h.postService.DeletePost(postID)
	if err != nil {
		log.Printf("Error deleting post %s: %v", postID, err)
		return storeError(c, err, "")
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Not found",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Post deleted",
	})
}
