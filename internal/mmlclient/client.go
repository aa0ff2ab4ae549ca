package mmlclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
)

const DefaultServerURL = "http://localhost:8080"

// 请求头，与服务端中间件一致
const (
	headerUserID    = "X-User-ID"
	headerRequestID = "X-Request-ID"
)

// Response 服务端统一响应
type Response struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// HTTPError 非 2xx 响应
type HTTPError struct {
	StatusCode int
	Message    string
	Detail     string
	RequestID  string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.RequestID != "" {
		msg += " [request " + e.RequestID + "]"
	}
	return msg
}

// Client HTTP 客户端，用于与 Shopee 商品服务通信
type Client struct {
	serverURL  string
	userID     int64
	httpClient *http.Client
	out        io.Writer
}

// NewClient 创建新的 HTTP 客户端，userID 作为 X-User-ID 发送
func NewClient(serverURL string, userID int64) *Client {
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	return &Client{
		serverURL: serverURL,
		userID:    userID,
		httpClient: &http.Client{
			// 大于服务端聚合截止时间
			Timeout: 90 * time.Second,
		},
		out: os.Stdout,
	}
}

// SetOutput 设置命令输出位置
func (c *Client) SetOutput(w io.Writer) {
	c.out = w
}

// Out 返回命令输出位置
func (c *Client) Out() io.Writer {
	return c.out
}

// GetServerURL 返回服务器 URL
func (c *Client) GetServerURL() string {
	return c.serverURL
}

// UserID 返回当前用户
func (c *Client) UserID() int64 {
	return c.userID
}

// SetUserID 切换当前用户
func (c *Client) SetUserID(id int64) {
	c.userID = id
}

// GetJSON 发送 GET 请求，并把响应中的 data 解析到 result
func (c *Client) GetJSON(ctx context.Context, endpoint string, query url.Values, result interface{}) error {
	u := c.serverURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userID > 0 {
		req.Header.Set(headerUserID, strconv.FormatInt(c.userID, 10))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope Response
	decodeErr := json.Unmarshal(body, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			RequestID:  resp.Header.Get(headerRequestID),
		}
		if decodeErr == nil && envelope.Message != "" {
			httpErr.Message = envelope.Message
			httpErr.Detail = envelope.Error
		}
		return httpErr
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}

	if result != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, result); err != nil {
			return fmt.Errorf("failed to unmarshal response data: %w", err)
		}
	}
	return nil
}
