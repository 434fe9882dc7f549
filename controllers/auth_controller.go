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

type AuthController struct {
	auth   *services.AuthService
	tokens *services.TokenService
}

func NewAuthController(auth *services.AuthService, tokens *services.TokenService) *AuthController {
	return &AuthController{auth: auth, tokens: tokens}
}

// POST /register
func (h *AuthController) Register() gin.HandlerFunc {
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

		user, err := h.auth.Register(c.Request.Context(), body.Username, body.Password, body.Admin)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":  "User registered successfully",
			"username": user.Username,
		})
	}
}

// POST /login with HTTP basic credentials
func (h *AuthController) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			utils.RespondError(c, common.Unauthorized("Missing login credentials"))
			return
		}

		token, err := h.auth.Login(c.Request.Context(), username, password)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

// POST /logout
func (h *AuthController) Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.tokens.Revoke(c.Request.Context(), middleware.TokenFrom(c)); err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
	}
}

// POST /token/refresh
func (h *AuthController) Refresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := h.tokens.Refresh(c.Request.Context(), middleware.TokenFrom(c), h.tokens.Now())
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Token refreshed successfully",
			"token":   token,
		})
	}
}
