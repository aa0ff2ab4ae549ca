package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"shopee/internal/errs"
	"shopee/internal/model"

	"go.uber.org/zap"
)

// 响应体读取上限
const maxResponseSize = 10 << 20

// Client Shopee Open API 客户端
// 负责签名和发送请求，不做重试
type Client struct {
	baseURL    string
	partnerID  int64
	partnerKey string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// Config API 客户端配置
type Config struct {
	BaseURL    string
	PartnerID  int64
	PartnerKey string
	Timeout    time.Duration
	Logger     *zap.Logger
	HTTPClient *http.Client
}

// Envelope Shopee v2 接口的统一响应结构
type Envelope struct {
	RequestID string          `json:"request_id"`
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	Warning   string          `json:"warning"`
	Response  json.RawMessage `json:"response"`
}

// NewClient 创建新的 API 客户端
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = ProductionBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:    baseURL,
		partnerID:  cfg.PartnerID,
		partnerKey: cfg.PartnerKey,
		httpClient: httpClient,
		logger:     cfg.Logger,
		now:        time.Now,
	}
}

// Get 发送 GET 请求，签名参数和业务参数都放在查询串中
func (c *Client) Get(ctx context.Context, acct *model.Account, path string, params map[string]string) (*Envelope, error) {
	return c.do(ctx, acct, http.MethodGet, path, params, nil)
}

// Post 发送 POST 请求，查询串只放签名参数，payload 作为 JSON body
func (c *Client) Post(ctx context.Context, acct *model.Account, path string, payload interface{}) (*Envelope, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			if c.logger != nil {
				c.logger.Error("failed to marshal JSON body",
					zap.String("path", path),
					zap.Error(err),
				)
			}
			return nil, fmt.Errorf("failed to marshal JSON body: %w", err)
		}
	} else {
		body = []byte("{}")
	}
	return c.do(ctx, acct, http.MethodPost, path, nil, body)
}

// Request 按 method 分发到 Get 或 Post
func (c *Client) Request(ctx context.Context, acct *model.Account, method, path string, params map[string]string) (*Envelope, error) {
	switch method {
	case "", http.MethodGet:
		return c.Get(ctx, acct, path, params)
	case http.MethodPost:
		if params == nil {
			return c.Post(ctx, acct, path, nil)
		}
		return c.Post(ctx, acct, path, params)
	default:
		return nil, fmt.Errorf("unsupported method: %s", method)
	}
}

func (c *Client) do(ctx context.Context, acct *model.Account, method, path string, params map[string]string, body []byte) (*Envelope, error) {
	var accountID int64
	if acct != nil {
		accountID = acct.ID
	}

	if c.partnerKey == "" || c.partnerID == 0 {
		err := fmt.Errorf("partner credentials are required but not set")
		if c.logger != nil {
			c.logger.Error("partner credentials missing", zap.Error(err))
		}
		return nil, err
	}

	// 1. 构建 URL
	fullURL, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}
	parsedURL, err := url.Parse(fullURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	// 2. 业务参数（仅 GET），签名参数随后写入，同名时以签名参数为准
	query := parsedURL.Query()
	for key, value := range params {
		query.Set(key, value)
	}

	// 3. 签名参数
	timestamp := c.now().Unix()
	query.Set("partner_id", strconv.FormatInt(c.partnerID, 10))
	query.Set("timestamp", strconv.FormatInt(timestamp, 10))

	var accessToken string
	var shopID int64
	if acct != nil && !IsTokenPath(path) {
		accessToken = acct.AccessToken
		shopID = acct.ShopID
		query.Set("access_token", accessToken)
		query.Set("shop_id", strconv.FormatInt(shopID, 10))
	}
	query.Set("sign", Sign(c.partnerKey, c.partnerID, path, timestamp, accessToken, shopID))
	parsedURL.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, parsedURL.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "shopee-client/1.0")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.logger != nil {
		c.logger.Debug("sending Shopee API request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int64("account_id", accountID),
			zap.Any("params", params),
			zap.Int("body_size", len(body)),
		)
	}

	// 发送请求
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(path, outcomeTransport).Inc()
		if c.logger != nil {
			c.logger.Error("HTTP request failed",
				zap.String("path", path),
				zap.Int64("account_id", accountID),
				zap.Error(err),
			)
		}
		return nil, errs.Transport(path, accountID, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		requestsTotal.WithLabelValues(path, outcomeTransport).Inc()
		return nil, errs.Transport(path, accountID, fmt.Errorf("failed to read response body: %w", err))
	}

	// 检查状态码
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		requestsTotal.WithLabelValues(path, outcomeHTTP).Inc()
		if c.logger != nil {
			c.logger.Error("HTTP response error",
				zap.String("path", path),
				zap.Int64("account_id", accountID),
				zap.Int("status_code", resp.StatusCode),
				zap.String("status", resp.Status),
			)
		}
		return nil, errs.HTTPStatus(path, accountID, resp.StatusCode, truncate(string(respBody), 256))
	}

	// 解析统一响应
	var env Envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		requestsTotal.WithLabelValues(path, outcomeDecode).Inc()
		if c.logger != nil {
			c.logger.Error("non-JSON response",
				zap.String("path", path),
				zap.Int64("account_id", accountID),
				zap.Int("body_size", len(respBody)),
				zap.Error(err),
			)
		}
		return nil, errs.Transport(path, accountID, fmt.Errorf("invalid JSON response: %w", err))
	}

	if env.Error != "" {
		requestsTotal.WithLabelValues(path, outcomeAPI).Inc()
		if c.logger != nil {
			c.logger.Warn("Shopee API returned error",
				zap.String("path", path),
				zap.Int64("account_id", accountID),
				zap.String("error", env.Error),
				zap.String("message", env.Message),
				zap.String("request_id", env.RequestID),
			)
		}
		return nil, errs.API(path, accountID, env.Error, env.Message)
	}

	requestsTotal.WithLabelValues(path, outcomeOK).Inc()
	if c.logger != nil {
		c.logger.Debug("Shopee API request succeeded",
			zap.String("path", path),
			zap.Int64("account_id", accountID),
			zap.String("request_id", env.RequestID),
			zap.Int("response_size", len(respBody)),
		)
	}

	return &env, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
