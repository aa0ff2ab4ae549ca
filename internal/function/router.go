package function

import (
	"shopee/internal/function/handlers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Router 路由注册
type Router struct {
	engine *gin.Engine
	logger *zap.Logger
	deps   *Dependencies
}

// NewRouter 创建路由注册器，deps 可以为空
func NewRouter(engine *gin.Engine, logger *zap.Logger, deps *Dependencies) *Router {
	if deps == nil {
		deps = &Dependencies{}
	}
	return &Router{engine: engine, logger: logger, deps: deps}
}

// SetupRoutes 注册指标、健康检查和商品路由
//
//	GET /metrics
//	GET /api/v1/health
//	GET /api/v1/products
//	GET /api/v1/products/status-counts
//	GET /api/v1/products/status-counts/history
func (r *Router) SetupRoutes() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.engine.Group("/api/v1")
	v1.GET("/health", handlers.NewHealthHandler(r.deps.Ping, r.version()).Health)

	if r.deps.Products == nil {
		r.logger.Warn("product service not configured, product routes disabled")
		return
	}

	h := handlers.NewProductsHandler(r.deps.Products, r.deps.Snapshots, r.logger)
	products := v1.Group("/products", requireUser())
	products.GET("", h.ListProducts)
	products.GET("/status-counts", h.StatusCounts)
	products.GET("/status-counts/history", h.StatusCountHistory)
}

func (r *Router) version() string {
	if r.deps.Config == nil {
		return ""
	}
	return r.deps.Config.App.Version
}
