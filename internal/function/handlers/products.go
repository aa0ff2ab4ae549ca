package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"shopee/internal/listing"
	"shopee/internal/logger"
	"shopee/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProductService 商品聚合服务
type ProductService interface {
	ListProducts(ctx context.Context, req listing.ListRequest) (*listing.ListResult, error)
	CountByStatus(ctx context.Context, userID int64, accountID *int64) (map[string]int, error)
}

// SnapshotStore 状态计数快照查询
type SnapshotStore interface {
	ListSnapshots(ctx context.Context, userID int64, accountID *int64, limit int) ([]model.StatusSnapshot, error)
}

// ProductsHandler 商品相关接口
type ProductsHandler struct {
	service   ProductService
	snapshots SnapshotStore
	logger    *zap.Logger
}

// NewProductsHandler 创建商品处理器，snapshots 为空时历史接口返回 503
func NewProductsHandler(service ProductService, snapshots SnapshotStore, logger *zap.Logger) *ProductsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductsHandler{
		service:   service,
		snapshots: snapshots,
		logger:    logger,
	}
}

// ListProducts 商品列表
// GET /api/v1/products?account_id=&status=&page=&per_page=&strict=
func (h *ProductsHandler) ListProducts(c *gin.Context) {
	accountID, err := optionalInt64(c, "account_id")
	if err != nil {
		JSONBadRequest(c, "invalid account_id", err)
		return
	}

	status, err := model.ParseItemStatus(c.Query("status"))
	if err != nil {
		JSONBadRequest(c, "invalid status", err)
		return
	}

	page, err := intQuery(c, "page", 1)
	if err != nil {
		JSONBadRequest(c, "invalid page", err)
		return
	}
	perPage, err := intQuery(c, "per_page", 0)
	if err != nil {
		JSONBadRequest(c, "invalid per_page", err)
		return
	}

	strict := false
	if raw := c.Query("strict"); raw != "" {
		strict, err = strconv.ParseBool(raw)
		if err != nil {
			JSONBadRequest(c, "invalid strict", err)
			return
		}
	}

	result, err := h.service.ListProducts(c.Request.Context(), listing.ListRequest{
		UserID:    userID(c),
		AccountID: accountID,
		Status:    status,
		Page:      page,
		PerPage:   perPage,
		Strict:    strict,
	})
	if err != nil {
		writeServiceError(c, err, &listing.ListResult{Products: []model.ProductRecord{}})
		return
	}

	logger.FromContext(c.Request.Context(), h.logger).Debug("listed products",
		zap.Int64("user_id", userID(c)),
		zap.String("status", string(status)),
		zap.Int("page", result.Pagination.Page),
		zap.Int("returned", len(result.Products)),
		zap.Int("total", result.Pagination.Total),
	)
	JSONSuccess(c, result)
}

// StatusCounts 各状态商品数量
// GET /api/v1/products/status-counts?account_id=
func (h *ProductsHandler) StatusCounts(c *gin.Context) {
	accountID, err := optionalInt64(c, "account_id")
	if err != nil {
		JSONBadRequest(c, "invalid account_id", err)
		return
	}

	counts, err := h.service.CountByStatus(c.Request.Context(), userID(c), accountID)
	if err != nil {
		writeServiceError(c, err, map[string]int{})
		return
	}

	JSONSuccess(c, counts)
}

// StatusCountHistory 定时任务保存的计数快照
// GET /api/v1/products/status-counts/history?account_id=&limit=
func (h *ProductsHandler) StatusCountHistory(c *gin.Context) {
	if h.snapshots == nil {
		JSONError(c, http.StatusServiceUnavailable, "snapshot storage disabled", nil)
		return
	}

	accountID, err := optionalInt64(c, "account_id")
	if err != nil {
		JSONBadRequest(c, "invalid account_id", err)
		return
	}
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		JSONBadRequest(c, "invalid limit", err)
		return
	}

	snapshots, err := h.snapshots.ListSnapshots(c.Request.Context(), userID(c), accountID, limit)
	if err != nil {
		writeServiceError(c, err, []model.StatusSnapshot{})
		return
	}

	JSONSuccess(c, snapshots)
}

func optionalInt64(c *gin.Context, key string) (*int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return &v, nil
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return v, nil
}
