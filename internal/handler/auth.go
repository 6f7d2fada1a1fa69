package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/service"
)

type AuthHandler struct {
	tokenService *service.TokenService
}

func NewAuthHandler(tokenService *service.TokenService) *AuthHandler {
	return &AuthHandler{tokenService: tokenService}
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, codeValidation, "malformed request body")
		return
	}
	tok, err := h.tokenService.SignIn(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SignInResponse{
		Success: true,
		Message: "signed in",
		UID:     tok.UID,
		Token:   tok.Value,
		Expired: tok.ExpiresAt.UnixMilli(),
	})
}
