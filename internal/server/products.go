package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	productdomain "github.com/payflowhq/payflow/internal/product/domain"
)

func (s *Server) CreateProduct(c *gin.Context) {
	var req productdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.productsvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) GetProductByID(c *gin.Context) {
	resp, err := s.productsvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListProducts(c *gin.Context) {
	resp, err := s.productsvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": resp})
}

// SyncProduct mirrors a product into the requested providers, defaulting to
// all of them. Any provider failure surfaces the full breakdown with a 400 so
// the caller can retry the gaps; the ids already obtained stay persisted.
func (s *Server) SyncProduct(c *gin.Context) {
	var req productdomain.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.productsvc.SyncToProviders(c.Request.Context(), c.Param("id"), req.Providers)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if len(result.FailedSyncs) > 0 {
		c.JSON(http.StatusBadRequest, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) GetProductSyncStatus(c *gin.Context) {
	resp, err := s.productsvc.GetSyncStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
