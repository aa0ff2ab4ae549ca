package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查
type HealthHandler struct {
	ping    func(ctx context.Context) error
	version string
}

// NewHealthHandler 创建健康检查处理器，ping 为空时只报告进程存活
func NewHealthHandler(ping func(ctx context.Context) error, version string) *HealthHandler {
	return &HealthHandler{ping: ping, version: version}
}

// Health 检查已启用的数据库
func (h *HealthHandler) Health(c *gin.Context) {
	data := gin.H{"status": "ok", "version": h.version}

	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			JSONError(c, http.StatusServiceUnavailable, "dependency unavailable", err)
			return
		}
	}

	JSONSuccess(c, data)
}
