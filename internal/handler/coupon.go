package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/service"
)

type CouponHandler struct {
	couponService *service.CouponService
}

func NewCouponHandler(couponService *service.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

func (h *CouponHandler) List(c *gin.Context) {
	page, err := h.couponService.List(c.Request.Context(), pageRequest(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CouponListResponse{Success: true, Coupons: page.Items, Pagination: page.Pagination})
}

func (h *CouponHandler) Get(c *gin.Context) {
	coupon, err := h.couponService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CouponResponse{Success: true, Coupon: coupon})
}

func (h *CouponHandler) Create(c *gin.Context) {
	in, ok := bindData[dto.CouponInput](c)
	if !ok {
		return
	}
	coupon, err := h.couponService.Create(c.Request.Context(), *in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CouponCreatedResponse{Success: true, Message: "coupon created", CouponID: coupon.ID})
}

func (h *CouponHandler) Update(c *gin.Context) {
	in, ok := bindData[dto.CouponInput](c)
	if !ok {
		return
	}
	if _, err := h.couponService.Update(c.Request.Context(), c.Param("id"), *in); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "coupon updated"})
}

func (h *CouponHandler) Delete(c *gin.Context) {
	if err := h.couponService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "coupon deleted"})
}
