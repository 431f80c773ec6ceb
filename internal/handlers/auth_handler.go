package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harentsoaR/telehealth-api/internal/apperrors"
	"github.com/harentsoaR/telehealth-api/internal/models"
)

type RegisterUserRequest struct {
	Email             string `json:"email" binding:"required,email"`
	Password          string `json:"password" binding:"required,min=8"`
	Username          string `json:"username"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Role              string `json:"role" binding:"omitempty,user_role"`
	PhoneNumber       string `json:"phoneNumber"`
	PreferredLanguage string `json:"preferredLanguage"`
	Organization      string `json:"organization"`
	Country           string `json:"country"`
	Sex               string `json:"sex" binding:"omitempty,oneof=male female other"`
}

func (h *Handler) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RolePatient
	}
	if role == models.RoleAdmin {
		h.respondError(c, apperrors.Forbidden("Admin accounts cannot be self-registered"))
		return
	}

	user := models.User{
		Email:             req.Email,
		Password:          req.Password,
		Username:          req.Username,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Role:              role,
		PhoneNumber:       req.PhoneNumber,
		PreferredLanguage: req.PreferredLanguage,
		Organization:      req.Organization,
		Country:           req.Country,
		Sex:               req.Sex,
	}
	if err := h.Users.Create(c.Request.Context(), &user); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var loginReq struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := h.Users.Authenticate(c.Request.Context(), loginReq.Email, loginReq.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, err := h.Tokens.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		h.respondError(c, apperrors.Internal("Could not generate token", err))
		return
	}
	h.Log.Info("user logged in", zap.String("userId", user.ID.Hex()))

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// GetUser returns a user profile. Users may read their own profile; admins
// may read any.
func (h *Handler) GetUser(c *gin.Context) {
	if !h.canAccessUser(c) {
		return
	}
	id, err := parseObjectID(c.Param("id"), "user")
	if err != nil {
		h.respondError(c, err)
		return
	}

	user, err := h.Users.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser applies a partial update. Only admins may change role or status.
func (h *Handler) UpdateUser(c *gin.Context) {
	if !h.canAccessUser(c) {
		return
	}
	id, err := parseObjectID(c.Param("id"), "user")
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req models.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if (req.Role != nil || req.Status != nil) && c.GetString("userRole") != models.RoleAdmin {
		h.respondError(c, apperrors.Forbidden("Only admins can change role or status"))
		return
	}

	user, err := h.Users.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) canAccessUser(c *gin.Context) bool {
	if c.GetString("userRole") == models.RoleAdmin || c.GetString("userID") == c.Param("id") {
		return true
	}
	h.respondError(c, apperrors.Forbidden("Permission denied"))
	return false
}
