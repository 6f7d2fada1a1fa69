package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/service"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) List(c *gin.Context) {
	page, err := h.productService.List(c.Request.Context(), pageRequest(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProductListResponse{
		Success:    true,
		Products:   page.Items,
		Pagination: page.Pagination,
		Message:    []string{},
	})
}

func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.productService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProductResponse{Success: true, Product: product})
}

func (h *ProductHandler) Create(c *gin.Context) {
	in, ok := bindData[dto.ProductInput](c)
	if !ok {
		return
	}
	product, err := h.productService.Create(c.Request.Context(), *in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ProductCreatedResponse{Success: true, Message: "product created", ProductID: product.ID})
}

func (h *ProductHandler) Update(c *gin.Context) {
	in, ok := bindData[dto.ProductInput](c)
	if !ok {
		return
	}
	if _, err := h.productService.Update(c.Request.Context(), c.Param("id"), *in); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "product updated"})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.productService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "product deleted"})
}
