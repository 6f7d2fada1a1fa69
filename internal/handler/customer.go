package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/service"
)

type CustomerHandler struct {
	customerService *service.CustomerService
}

func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

func (h *CustomerHandler) Get(c *gin.Context) {
	customer, err := h.customerService.Get(c.Request.Context(), c.Param("email"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CustomerResponse{Success: true, Customer: customer})
}
