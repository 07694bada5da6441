package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/logging"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/models"
)

// PlaceOrder handles POST /api/v1/checkout
func (h *Handlers) PlaceOrder(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind checkout request", logging.Fields{"error": err.Error()})
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result := h.checkout.PlaceOrder(c.Request.Context(), userID, &req)
	c.JSON(checkoutStatus(result), result)
}

// checkoutStatus maps a terminal checkout state to an HTTP status. The
// result body always carries the itemized detail.
func checkoutStatus(result *models.CheckoutResult) int {
	switch result.State {
	case models.CheckoutCompleted:
		if result.Duplicate {
			return http.StatusOK
		}
		return http.StatusCreated
	case models.CheckoutRateLimited:
		return http.StatusTooManyRequests
	case models.CheckoutValidationFailed:
		return http.StatusBadRequest
	case models.CheckoutPriceMismatch, models.CheckoutStockInsufficient:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type validatePricesRequest struct {
	Items      []models.CartLine `json:"items"`
	CouponCode string            `json:"coupon_code"`
}

// ValidatePrices handles POST /api/v1/checkout/validate
func (h *Handlers) ValidatePrices(c *gin.Context) {
	var req validatePricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "items are required"})
		return
	}

	quote, err := h.checkout.ValidatePrices(c.Request.Context(), req.Items, req.CouponCode)
	if err != nil {
		h.logger.Error("Price validation unavailable", logging.Fields{"error": err.Error()})
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "pricing is temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, quote)
}

type validateCouponRequest struct {
	Code  string            `json:"code"`
	Items []models.CartLine `json:"items"`
}

// ValidateCoupon handles POST /api/v1/coupons/validate
func (h *Handlers) ValidateCoupon(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req validateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coupon code is required"})
		return
	}

	result, err := h.checkout.CheckCoupon(c.Request.Context(), userID, req.Items, req.Code)
	if err != nil {
		h.logger.Error("Coupon validation unavailable", logging.Fields{"error": err.Error()})
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "coupon validation is temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, result)
}
