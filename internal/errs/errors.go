package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth 请求没有已认证用户，或账号不属于该用户
	ErrAuth = errors.New("unauthorized")

	// ErrNotFound 指定的店铺账号不存在或未启用
	ErrNotFound = errors.New("not found")

	// ErrConfig 配置无效，只在启动时出现
	ErrConfig = errors.New("invalid configuration")

	// ErrUpstream Shopee 远程调用失败
	ErrUpstream = errors.New("upstream request failed")
)

// UpstreamError 远程调用失败的详细信息
type UpstreamError struct {
	Op         string // API 路径
	AccountID  int64  // 店铺账号 ID，partner 级调用为 0
	StatusCode int    // HTTP 状态码，传输失败时为 0
	Code       string // Shopee 返回的 error 字段
	Message    string // Shopee 返回的 message 字段
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("upstream %s", e.Op)
	if e.AccountID != 0 {
		msg += fmt.Sprintf(" (account %d)", e.AccountID)
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Code != "" {
		msg += fmt.Sprintf(": %s", e.Code)
		if e.Message != "" {
			msg += " - " + e.Message
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is(err, ErrUpstream) 对所有 UpstreamError 成立
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// Transport 包装传输层错误（连接失败、超时、读取失败、非 JSON 响应）
func Transport(op string, accountID int64, err error) *UpstreamError {
	return &UpstreamError{Op: op, AccountID: accountID, Err: err}
}

// HTTPStatus 包装非 2xx 响应
func HTTPStatus(op string, accountID int64, status int, body string) *UpstreamError {
	return &UpstreamError{Op: op, AccountID: accountID, StatusCode: status, Message: body}
}

// API 包装 Shopee 在 200 响应中返回的业务错误
func API(op string, accountID int64, code, message string) *UpstreamError {
	return &UpstreamError{Op: op, AccountID: accountID, Code: code, Message: message}
}

// Configf 构造一个包装 ErrConfig 的错误
func Configf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}
