package api

import (
	"ledger_system/internal/auth"   // User registration and credentials
	"ledger_system/internal/domain" // Importing domain models
	"ledger_system/internal/utils"  // Utility functions
	"net/http"                      // HTTP status codes
	"time"                          // Token lifetime

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// RegisterRequest is the registration form
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`     // Display name must be provided
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// LoginRequest is the login form
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// AuthResponse is returned by a successful login
type AuthResponse struct {
	Token string        `json:"token"` // JWT token
	User  *domain.Actor `json:"user"`  // Logged-in user
}

// RegisterHandler creates a new user
func RegisterHandler(users *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c) // If binding fails, return bad request
			return
		}
		// Validation, hashing and uniqueness are handled by the auth service
		user, err := users.Register(c.Request.Context(), auth.RegisterInput{
			Name:     req.Name,     // Display name
			Email:    req.Email,    // Unique email
			Password: req.Password, // Plain password, hashed before storing
		})
		if err != nil {
			respondError(c, err) // Invalid input or duplicate email
			return
		}
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user.Actor()})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(users *auth.Service, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c) // If binding fails, return bad request
			return
		}
		// Compare provided password with stored hash
		user, err := users.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err) // Invalid credentials
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, jwtSecret, ttl)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		logrus.WithField("user_id", user.ID).Info("Token issued") // Log the login
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token, User: user.Actor()})
	}
}

// CurrentUserHandler returns the authenticated user
func CurrentUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c) // Set by AuthMiddleware
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": actor})
	}
}
