package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/service"
)

type CartHandler struct {
	cartService *service.CartService
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// cartKey resolves the cart a request works on. There is one shared cart.
func cartKey(*gin.Context) string { return model.DefaultCartKey }

func (h *CartHandler) Get(c *gin.Context) {
	summary, err := h.cartService.List(c.Request.Context(), cartKey(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CartResponse{Success: true, Data: *summary})
}

func (h *CartHandler) Add(c *gin.Context) {
	in, ok := bindData[dto.CartInput](c)
	if !ok {
		return
	}
	line, err := h.cartService.Add(c.Request.Context(), cartKey(c), *in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CartLineResponse{Success: true, Message: "added to cart", Data: *line})
}

func (h *CartHandler) Update(c *gin.Context) {
	in, ok := bindData[dto.CartInput](c)
	if !ok {
		return
	}
	line, err := h.cartService.Update(c.Request.Context(), cartKey(c), c.Param("id"), *in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CartUpdatedResponse{
		Success: true,
		Message: "cart updated",
		Data:    dto.CartInput{ProductID: line.ProductID, Qty: line.Qty},
	})
}

func (h *CartHandler) Delete(c *gin.Context) {
	if err := h.cartService.Delete(c.Request.Context(), cartKey(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "removed from cart"})
}
