package handlers

import (
	"context"
	"errors"
	"net/http"

	"shopee/internal/errs"
	"shopee/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextUserID gin 上下文中保存调用方用户 ID 的键
const ContextUserID = "user_id"

// SuccessResponse 成功响应
type SuccessResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Error     string      `json:"error,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// JSONSuccess 返回成功响应
func JSONSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// JSONError 返回错误响应，code 与 HTTP 状态码一致
func JSONError(c *gin.Context, status int, message string, err error) {
	JSONErrorWithData(c, status, message, err, nil)
}

// JSONErrorWithData 返回带空数据的错误响应
func JSONErrorWithData(c *gin.Context, status int, message string, err error, data interface{}) {
	ctx := c.Request.Context()
	response := ErrorResponse{
		Code:      status,
		Message:   message,
		Data:      data,
		RequestID: logger.RequestID(ctx),
	}
	if err != nil {
		response.Error = err.Error()
		_ = c.Error(err)
		log := logger.FromContext(ctx, nil)
		if status >= http.StatusInternalServerError {
			log.Error(message, zap.Error(err))
		} else {
			log.Warn(message, zap.Error(err))
		}
	}
	c.AbortWithStatusJSON(status, response)
}

// JSONBadRequest 返回400错误
func JSONBadRequest(c *gin.Context, message string, err error) {
	JSONError(c, http.StatusBadRequest, message, err)
}

// statusFor 将服务层错误映射为 HTTP 状态码
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrAuth):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "account not found"
	case errors.Is(err, errs.ErrUpstream):
		return http.StatusBadGateway, "marketplace request failed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// writeServiceError 返回服务层错误，empty 非空时作为 data 一并返回
func writeServiceError(c *gin.Context, err error, empty interface{}) {
	status, message := statusFor(err)
	JSONErrorWithData(c, status, message, err, empty)
}

// userID 读取认证中间件写入的用户 ID
func userID(c *gin.Context) int64 {
	id, _ := c.Get(ContextUserID)
	v, _ := id.(int64)
	return v
}
