package product

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"shopee/internal/api"
	"shopee/internal/errs"
	"shopee/internal/model"

	"go.uber.org/zap"
)

// Product 模块接口路径
const (
	PathGetItemList      = "/api/v2/product/get_item_list"
	PathGetItemBaseInfo  = "/api/v2/product/get_item_base_info"
	PathGetItemExtraInfo = "/api/v2/product/get_item_extra_info"
	PathGetModelList     = "/api/v2/product/get_model_list"
)

// MaxIDsPerCall base_info / extra_info 单次请求的商品 ID 上限
const MaxIDsPerCall = 50

// Requester 发送已签名 GET 请求
type Requester interface {
	Get(ctx context.Context, acct *model.Account, path string, params map[string]string) (*api.Envelope, error)
}

// Service Shopee Product 接口
type Service struct {
	client Requester
	logger *zap.Logger
}

// NewService 创建新的 Product 服务
func NewService(client Requester, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client: client,
		logger: logger,
	}
}

// GetItemList 按状态分页获取商品 ID
func (s *Service) GetItemList(ctx context.Context, acct *model.Account, offset, pageSize int, status model.ItemStatus) (*ItemListResult, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("invalid page size: %d", pageSize)
	}
	params := map[string]string{
		"offset":      strconv.Itoa(offset),
		"page_size":   strconv.Itoa(pageSize),
		"item_status": status.Remote().String(),
	}

	var result ItemListResult
	if err := s.get(ctx, acct, PathGetItemList, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetItemBaseInfo 批量获取商品基础信息，超过 MaxIDsPerCall 时分段请求
func (s *Service) GetItemBaseInfo(ctx context.Context, acct *model.Account, itemIDs []int64) ([]ItemBaseInfo, error) {
	items := make([]ItemBaseInfo, 0, len(itemIDs))
	for _, chunk := range chunkIDs(itemIDs, MaxIDsPerCall) {
		var result struct {
			ItemList []ItemBaseInfo `json:"item_list"`
		}
		params := map[string]string{"item_id_list": joinIDs(chunk)}
		if err := s.get(ctx, acct, PathGetItemBaseInfo, params, &result); err != nil {
			return nil, err
		}
		items = append(items, result.ItemList...)
	}
	return items, nil
}

// GetItemExtraInfo 批量获取销量、浏览、点赞等扩展信息
func (s *Service) GetItemExtraInfo(ctx context.Context, acct *model.Account, itemIDs []int64) ([]ItemExtraInfo, error) {
	items := make([]ItemExtraInfo, 0, len(itemIDs))
	for _, chunk := range chunkIDs(itemIDs, MaxIDsPerCall) {
		var result struct {
			ItemList []ItemExtraInfo `json:"item_list"`
		}
		params := map[string]string{"item_id_list": joinIDs(chunk)}
		if err := s.get(ctx, acct, PathGetItemExtraInfo, params, &result); err != nil {
			return nil, err
		}
		items = append(items, result.ItemList...)
	}
	return items, nil
}

// GetModelList 获取单个商品的规格和变体
func (s *Service) GetModelList(ctx context.Context, acct *model.Account, itemID int64) (*ModelList, error) {
	var result ModelList
	params := map[string]string{"item_id": strconv.FormatInt(itemID, 10)}
	if err := s.get(ctx, acct, PathGetModelList, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) get(ctx context.Context, acct *model.Account, path string, params map[string]string, out interface{}) error {
	env, err := s.client.Get(ctx, acct, path, params)
	if err != nil {
		return err
	}
	if env.Warning != "" {
		s.logger.Warn("Shopee API warning",
			zap.String("path", path),
			zap.String("warning", env.Warning),
			zap.String("request_id", env.RequestID),
		)
	}
	if len(env.Response) == 0 || string(env.Response) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Response, out); err != nil {
		return errs.Transport(path, acct.ID, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func chunkIDs(ids []int64, size int) [][]int64 {
	var chunks [][]int64
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
