package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jaegodata/unsold-server/internal/models"
	"github.com/jaegodata/unsold-server/internal/session"
)

// AuthMiddleware returns a Gin middleware for authentication. It validates
// the bearer token and resolves the server-side session it points at;
// every failure gets the same generic answer.
func AuthMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the JWT token from the Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Status:  "error",
				Message: "Authentication required",
			})
			c.Abort()
			return
		}

		// Check if the Authorization header starts with "Bearer "
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Status:  "error",
				Message: "Invalid token format",
			})
			c.Abort()
			return
		}

		tokenString := parts[1]

		// Parse the JWT token
		jwtSecret := c.MustGet("jwtSecret").([]byte)
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			// Validate the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return jwtSecret, nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Status:  "error",
				Message: "Invalid token",
			})
			c.Abort()
			return
		}

		// Extract claims from the token
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Status:  "error",
				Message: "Invalid token claims",
			})
			c.Abort()
			return
		}

		username, ok := claims["sub"].(string)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Status:  "error",
				Message: "Invalid username in token",
			})
			c.Abort()
			return
		}

		// The session holds the ephemeral screen state; a token that
		// outlives its session (server restart) has to log in again.
		sessionID, _ := claims["sid"].(string)
		sess, ok := sessions.Get(sessionID)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Status:  "error",
				Message: "Session expired, please log in again",
			})
			c.Abort()
			return
		}

		c.Set("username", username)
		c.Set("session", sess)
		c.Next()
	}
}

// AdminMiddleware gates the reconciliation report and the log viewer on
// the admin role assigned at startup.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := c.MustGet("session").(*session.Session)
		if sess.Role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, models.ErrorResponse{
				Status:  "error",
				Message: "This screen is restricted to administrators",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
