package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/weatherbackend/common"
	"github.com/princinho/weatherbackend/dto"
	"github.com/princinho/weatherbackend/middleware"
	"github.com/princinho/weatherbackend/services"
	"github.com/princinho/weatherbackend/utils"
)

type UsersController struct {
	auth *services.AuthService
}

func NewUsersController(auth *services.AuthService) *UsersController {
	return &UsersController{auth: auth}
}

// POST /users, elevated callers only
func (h *UsersController) CreateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		fields, err := dto.ReadFields(c)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		body, err := dto.ParseRegisterUser(fields)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		user, err := h.auth.CreateUser(c.Request.Context(), body.Username, body.Password, body.Admin)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"admin":      user.Admin,
			"created_at": user.CreatedAt,
		})
	}
}

// POST /users/me/password
func (h *UsersController) ChangeMyPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ChangeMyPasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.RespondError(c, common.BadRequest(err.Error()))
			return
		}

		claims, ok := middleware.ClaimsFrom(c)
		if !ok {
			utils.RespondError(c, common.ErrMissingToken)
			return
		}

		if err := h.auth.ChangePassword(c.Request.Context(), claims.Username, body.CurrentPassword, body.NewPassword); err != nil {
			utils.RespondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
	}
}
