package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/pagination"
	"github.com/flicky/storefront-api/internal/service"
)

const (
	codeValidation   = "validation_error"
	codeNotFound     = "not_found"
	codeUnauthorized = "unauthorized"
	codeConflict     = "conflict"
	codeInternal     = "internal_error"
)

var notFoundErrors = []error{
	service.ErrProductNotFound,
	service.ErrCouponNotFound,
	service.ErrCartItemNotFound,
	service.ErrOrderNotFound,
	service.ErrCustomerNotFound,
}

func abortWithError(c *gin.Context, status int, code, message string, fields ...string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Code: code, Message: message, Fields: fields})
}

// writeError maps service errors onto the JSON error envelope. Unexpected
// errors are attached to the context for the request logger and never shown
// to the client.
func writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		abortWithError(c, http.StatusBadRequest, codeValidation, "missing or invalid fields", verr.Fields...)
		return
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			abortWithError(c, http.StatusNotFound, codeNotFound, target.Error())
			return
		}
	}

	switch {
	case errors.Is(err, service.ErrEmptyCart):
		abortWithError(c, http.StatusBadRequest, codeValidation, service.ErrEmptyCart.Error())
	case errors.Is(err, service.ErrUnavailableProduct):
		abortWithError(c, http.StatusBadRequest, codeValidation, service.ErrUnavailableProduct.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		abortWithError(c, http.StatusUnauthorized, codeUnauthorized, service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrInvalidToken):
		abortWithError(c, http.StatusUnauthorized, codeUnauthorized, service.ErrInvalidToken.Error())
	case errors.Is(err, service.ErrDuplicateCoupon):
		abortWithError(c, http.StatusConflict, codeConflict, service.ErrDuplicateCoupon.Error())
	default:
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

// bindData decodes a {"data": {...}} body. It writes the error response and
// returns false when the body is unusable.
func bindData[T any](c *gin.Context) (*T, bool) {
	var req dto.Request[T]
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, codeValidation, "malformed request body")
		return nil, false
	}
	if req.Data == nil {
		abortWithError(c, http.StatusBadRequest, codeValidation, "missing or invalid fields", "data")
		return nil, false
	}
	return req.Data, true
}

func pageRequest(c *gin.Context) pagination.Request {
	return pagination.Parse(c.Query("page"), c.Query("pageSize"))
}
