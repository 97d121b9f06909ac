package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// SessionUserKey is the session key holding the authenticated user's id.
const SessionUserKey = "user_id"

// LocalsUserKey is the fiber locals key downstream handlers read the
// authenticated user id from.
const LocalsUserKey = "user_id"

// AuthRequired is a Fiber middleware that admits a request only when its
// cookie resolves to a live session carrying a user id. It rejects before
// any validation or store access runs, so an unauthenticated request has
// no side effects.
func AuthRequired(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			log.Printf("Session lookup failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}

		userID, ok := sess.Get(SessionUserKey).(string)
		if !ok || userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}

		// Expose the authenticated identity to downstream handlers.
		c.Locals(LocalsUserKey, userID)
		return c.Next()
	}
}

// AuthenticatedUserID returns the user id stamped by AuthRequired, or ""
// when the request did not pass through the guard.
func AuthenticatedUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(LocalsUserKey).(string)
	return userID
}
