package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/payflowhq/payflow/internal/auth"
	authdomain "github.com/payflowhq/payflow/internal/auth/domain"
	"github.com/payflowhq/payflow/internal/auth/session"
	"github.com/payflowhq/payflow/internal/config"
	"github.com/payflowhq/payflow/internal/observability"
	obsmetrics "github.com/payflowhq/payflow/internal/observability/metrics"
	"github.com/payflowhq/payflow/internal/observability/reqlog"
	"github.com/payflowhq/payflow/internal/order"
	orderdomain "github.com/payflowhq/payflow/internal/order/domain"
	"github.com/payflowhq/payflow/internal/payment"
	paymentdomain "github.com/payflowhq/payflow/internal/payment/domain"
	"github.com/payflowhq/payflow/internal/product"
	productdomain "github.com/payflowhq/payflow/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	observability.Module,
	fx.Provide(registerGin),
	auth.Module,
	order.Module,
	product.Module,
	payment.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqlog.GinMiddleware(log.Named("http")))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	authsvc    authdomain.Service
	sessions   *session.Manager
	ordersvc   orderdomain.Service
	productsvc productdomain.Service
	paymentsvc paymentdomain.Service

	paymentMethodsCache *paymentMethodsCache
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Authsvc    authdomain.Service
	Sessions   *session.Manager
	Ordersvc   orderdomain.Service
	Productsvc productdomain.Service
	Paymentsvc paymentdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:              p.Gin,
		cfg:                 p.Cfg,
		authsvc:             p.Authsvc,
		sessions:            p.Sessions,
		ordersvc:            p.Ordersvc,
		productsvc:          p.Productsvc,
		paymentsvc:          p.Paymentsvc,
		paymentMethodsCache: newPaymentMethodsCache(2 * time.Minute),
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/register", s.Register)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	// -------- Products --------
	products := s.engine.Group("/products")
	products.GET("", s.ListProducts)
	products.GET("/:id", s.GetProductByID)
	products.POST("", s.AuthRequired(), s.CreateProduct)
	products.POST("/:id/sync", s.AuthRequired(), s.SyncProduct)
	products.GET("/:id/sync-status", s.AuthRequired(), s.GetProductSyncStatus)

	// -------- Orders --------
	orders := s.engine.Group("/orders")
	orders.GET("", s.AuthRequired(), s.ListOrders)
	orders.POST("", s.AuthRequired(), s.CreateOrder)
	orders.GET("/:id", s.AuthRequired(), s.GetOrderByID)

	// -------- Payments --------
	payments := s.engine.Group("/payments")
	payments.GET("/methods", s.ListPaymentMethods)
	payments.POST("/create-intent", s.AuthRequired(), s.CreatePaymentIntent)
	payments.POST("/create-checkout-session", s.AuthRequired(), s.CreateCheckoutSession)
	payments.POST("/request-refund", s.AuthRequired(), s.RequestRefund)

	// Webhooks are signature-verified, not session-authenticated.
	payments.POST("/webhook/:provider", s.HandlePaymentWebhook)
}
