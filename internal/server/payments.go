package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/payflowhq/payflow/internal/payment/domain"
)

const paymentMethodsCacheKey = "methods"

func (s *Server) CreatePaymentIntent(c *gin.Context) {
	var req paymentdomain.IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.paymentsvc.CreatePaymentIntent(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) CreateCheckoutSession(c *gin.Context) {
	var req paymentdomain.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.paymentsvc.CreateCheckoutSession(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) RequestRefund(c *gin.Context) {
	var req paymentdomain.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.paymentsvc.RequestRefund(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListPaymentMethods(c *gin.Context) {
	if methods, ok := s.paymentMethodsCache.Get(paymentMethodsCacheKey); ok {
		c.JSON(http.StatusOK, gin.H{"methods": methods})
		return
	}

	methods := s.paymentsvc.AvailableMethods()
	s.paymentMethodsCache.Set(paymentMethodsCacheKey, methods)
	c.JSON(http.StatusOK, gin.H{"methods": methods})
}
