package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/payflowhq/payflow/internal/payment/domain"
)

func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	method, err := paymentdomain.ParseMethod(strings.TrimSpace(c.Param("provider")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// The raw body is what the provider signed; it must reach verification
	// untouched.
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.paymentsvc.HandleWebhook(c.Request.Context(), method, payload, c.Request.Header)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"event_type": result.EventType,
		"applied":    result.Applied,
	})
}
