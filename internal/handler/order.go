package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) Place(c *gin.Context) {
	req, ok := bindData[dto.OrderRequest](c)
	if !ok {
		return
	}
	order, err := h.orderService.PlaceOrder(c.Request.Context(), cartKey(c), *req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.OrderPlacedResponse{
		Success:  true,
		Message:  "order placed",
		Total:    order.Total,
		OrderID:  order.ID,
		CreateAt: order.CreateAt,
	})
}

func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orderService.Get(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrderResponse{Success: true, Order: order})
}

func (h *OrderHandler) List(c *gin.Context) {
	page, err := h.orderService.List(c.Request.Context(), pageRequest(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrderListResponse{Success: true, Orders: page.Items, Pagination: page.Pagination})
}
