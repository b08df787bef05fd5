package transport

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	usersports "github.com/broasteria/broasteria/internal/domains/users/ports"
)

// UsersHandler serves account registration, login, and administration.
type UsersHandler struct {
	service usersports.Service
	logger  *slog.Logger
}

func NewUsersHandler(service usersports.Service, logger *slog.Logger) *UsersHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UsersHandler{service: service, logger: logger}
}

type registerRequest struct {
	TenantID string `json:"tenantId" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Password string `json:"password" binding:"required"`
}

func (h *UsersHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.service.Register(c.Request.Context(), usersports.RegisterInput{
		TenantID: req.TenantID,
		Email:    req.Email,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusCreated, toUserView(user))
}

type loginRequest struct {
	TenantID string `json:"tenantId" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *UsersHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.service.Login(c.Request.Context(), req.TenantID, req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{
		"token": result.Token,
		"user":  toUserView(result.User),
	})
}

// Me returns the account behind the presented token.
func (h *UsersHandler) Me(c *gin.Context) {
	claims := claimsFrom(c)
	if claims == nil {
		respondFail(c, http.StatusUnauthorized, "missing bearer token")
		return
	}
	user, err := h.service.GetUser(c.Request.Context(), claims.TenantID, claims.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toUserView(user))
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func (h *UsersHandler) ChangePassword(c *gin.Context) {
	claims := claimsFrom(c)
	if claims == nil {
		respondFail(c, http.StatusUnauthorized, "missing bearer token")
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.ChangePassword(c.Request.Context(), claims.TenantID, claims.UserID, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "password changed", nil)
}

func (h *UsersHandler) List(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context(), c.Param("tenantId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toUserViews(users))
}

func (h *UsersHandler) Get(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.Param("tenantId"), c.Param("userId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toUserView(user))
}

func (h *UsersHandler) SetActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.service.SetActive(c.Request.Context(), c.Param("tenantId"), c.Param("userId"), *req.Active)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toUserView(user))
}
