package function

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"shopee/internal/config"
	"shopee/internal/function/handlers"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	readTimeout     = 15 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second

	// 写超时在管道截止时间之外预留的余量
	writeSlack = 5 * time.Second
)

// Dependencies HTTP 层依赖，Products 为空时只提供健康检查和指标
type Dependencies struct {
	Config    *config.Config
	Logger    *zap.Logger
	Products  handlers.ProductService
	Snapshots handlers.SnapshotStore          // 可选，MongoDB 未启用时为空
	Ping      func(ctx context.Context) error // 可选，健康检查使用
}

// Server 商品聚合服务的 HTTP 入口
type Server struct {
	cfg    *config.ServerConfig
	engine *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

// NewServer 创建只带健康检查的 HTTP 服务器
func NewServer(cfg *config.ServerConfig, logger *zap.Logger) *Server {
	return NewServerWithDeps(cfg, logger, nil)
}

// NewServerWithDeps 创建 HTTP 服务器并注册全部路由
func NewServerWithDeps(cfg *config.ServerConfig, logger *zap.Logger, deps *Dependencies) *Server {
	if logger == nil && deps != nil {
		logger = deps.Logger
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	engine := gin.New()
	engine.Use(requestID(logger), ginLogger(logger), gin.Recovery())
	NewRouter(engine, logger, deps).SetupRoutes()

	return &Server{
		cfg:    cfg,
		engine: engine,
		logger: logger,
		http: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:      engine,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeoutFor(deps),
			IdleTimeout:  idleTimeout,
		},
	}
}

// writeTimeoutFor 列表请求可能持续到管道截止时间
func writeTimeoutFor(deps *Dependencies) time.Duration {
	if deps == nil || deps.Config == nil || deps.Config.Pipeline.DeadlineDuration <= 0 {
		return readTimeout
	}
	return deps.Config.Pipeline.DeadlineDuration + writeSlack
}

// Handler 返回 gin 引擎，测试中直接使用
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start 监听端口并在后台提供服务，端口占用等错误同步返回
func (s *Server) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info("HTTP server is disabled, skipping startup")
		return nil
	}

	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}

	s.logger.Info("HTTP server listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("mode", gin.Mode()),
		zap.Duration("write_timeout", s.http.WriteTimeout),
	)

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server terminated", zap.Error(err))
		}
	}()
	return nil
}

// Stop 等待进行中的请求完成后关闭
func (s *Server) Stop(ctx context.Context) error {
	if !s.cfg.Enabled {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown incomplete", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
