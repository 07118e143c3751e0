package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shorturl-api/internal/authz"
	"shorturl-api/internal/models"
	"shorturl-api/internal/service"
)

type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// CreateUser handles POST /api/v1/users (admin only)
func (uc *UserController) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := uc.userService.Create(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewUserResponse(user))
}

// ListUsers handles GET /api/v1/users (admin only)
func (uc *UserController) ListUsers(c *gin.Context) {
	users, err := uc.userService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewUserResponses(users))
}

// GetUserByEmail handles GET /api/v1/users/email/:email (admin only)
func (uc *UserController) GetUserByEmail(c *gin.Context) {
	user, err := uc.userService.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewUserResponse(user))
}

// GetUser handles GET /api/v1/users/:id
func (uc *UserController) GetUser(c *gin.Context) {
	_, id, ok := uc.selfOrAdmin(c)
	if !ok {
		return
	}

	user, err := uc.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewUserResponse(user))
}

// UpdateUser handles PUT /api/v1/users/:id
func (uc *UserController) UpdateUser(c *gin.Context) {
	identity, id, ok := uc.selfOrAdmin(c)
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := uc.userService.Update(c.Request.Context(), identity, id, service.UserPatch{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewUserResponse(user))
}

// DeleteUser handles DELETE /api/v1/users/:id
func (uc *UserController) DeleteUser(c *gin.Context) {
	_, id, ok := uc.selfOrAdmin(c)
	if !ok {
		return
	}

	if err := uc.userService.SoftDelete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted",
	})
}

// selfOrAdmin binds the :id parameter and checks the caller may act on it.
// It writes the error response itself when ok is false.
func (uc *UserController) selfOrAdmin(c *gin.Context) (authz.Identity, string, bool) {
	identity, ok := requireIdentity(c)
	if !ok {
		return authz.Identity{}, "", false
	}

	var params models.IDParam
	if err := c.ShouldBindUri(&params); err != nil {
		respondInvalidID(c, err)
		return authz.Identity{}, "", false
	}

	if err := authz.AssertSelfOrAdmin(identity, params.ID); err != nil {
		respondError(c, err)
		return authz.Identity{}, "", false
	}

	return identity, params.ID, true
}
