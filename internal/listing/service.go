package listing

import (
	"context"
	"fmt"
	"time"

	"shopee/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 计数查询只读取 total_count
const countPageSize = 1

// ProductAPI Shopee Product 模块中流水线用到的接口
type ProductAPI interface {
	ItemLister
	DetailSource
}

// CountCache countByStatus 结果缓存，只缓存计数
type CountCache interface {
	GetCounts(ctx context.Context, key string) (map[string]int, bool, error)
	SetCounts(ctx context.Context, key string, counts map[string]int) error
}

// Options 流水线参数
type Options struct {
	PageSize       int
	ModelBatchSize int
	PriceScale     int64
	PerPageMin     int
	PerPageMax     int
	PerPageDefault int
	RequestTimeout time.Duration // 单次远程调用
	Deadline       time.Duration // 整条流水线
	StrictTotals   bool
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{
		PageSize:       DefaultPageSize,
		ModelBatchSize: DefaultModelBatchSize,
		PriceScale:     DefaultPriceScale,
		PerPageMin:     DefaultPerPageMin,
		PerPageMax:     DefaultPerPageMax,
		PerPageDefault: 20,
		RequestTimeout: 15 * time.Second,
		Deadline:       60 * time.Second,
	}
}

// ListRequest listProducts 参数
type ListRequest struct {
	UserID    int64
	AccountID *int64
	Status    model.ItemStatus
	Page      int
	PerPage   int
	Strict    bool // 额外返回 total_retrieved
}

// Pagination 分页信息
type Pagination struct {
	Page           int  `json:"page"`
	PerPage        int  `json:"per_page"`
	Total          int  `json:"total"`
	TotalRetrieved *int `json:"total_retrieved,omitempty"`
}

// ListResult listProducts 结果
type ListResult struct {
	Products   []model.ProductRecord `json:"products"`
	Pagination Pagination            `json:"pagination"`
}

// Service 多账号商品聚合服务
type Service struct {
	resolver   *Resolver
	lister     ItemLister
	aggregator *Aggregator
	joiner     *Joiner
	projector  *Projector
	cache      CountCache
	opts       Options
	logger     *zap.Logger
}

// NewService 创建聚合服务
func NewService(store AccountStore, productAPI ProductAPI, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultOptions()
	if opts.PerPageMin <= 0 {
		opts.PerPageMin = defaults.PerPageMin
	}
	if opts.PerPageMax < opts.PerPageMin {
		opts.PerPageMax = max(defaults.PerPageMax, opts.PerPageMin)
	}
	if opts.PerPageDefault <= 0 {
		opts.PerPageDefault = defaults.PerPageDefault
	}

	fetcher := NewFetcher(productAPI, opts.PageSize, opts.RequestTimeout, logger)
	return &Service{
		resolver:   NewResolver(store, logger),
		lister:     productAPI,
		aggregator: NewAggregator(fetcher, logger),
		joiner:     NewJoiner(productAPI, opts.ModelBatchSize, opts.RequestTimeout, logger),
		projector:  NewProjector(opts.PriceScale),
		opts:       opts,
		logger:     logger,
	}
}

// SetCountCache 启用计数缓存
func (s *Service) SetCountCache(cache CountCache) {
	s.cache = cache
}

// ListProducts 聚合、分页并补全当前页的商品
func (s *Service) ListProducts(ctx context.Context, req ListRequest) (*ListResult, error) {
	status := req.Status
	if status == "" {
		status = model.StatusNormal
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid item status: %q", status)
	}

	perPage := req.PerPage
	if perPage == 0 {
		perPage = s.opts.PerPageDefault
	}
	page, perPage := ClampPage(req.Page, perPage, s.opts.PerPageMin, s.opts.PerPageMax)

	result := &ListResult{
		Products:   []model.ProductRecord{},
		Pagination: Pagination{Page: page, PerPage: perPage},
	}
	strict := s.opts.StrictTotals || req.Strict

	accounts, err := s.resolver.Resolve(ctx, req.UserID, req.AccountID)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		if strict {
			result.Pagination.TotalRetrieved = new(int)
		}
		return result, nil
	}

	if s.opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Deadline)
		defer cancel()
	}

	start := time.Now()
	agg := s.aggregator.Aggregate(ctx, accounts, status.Remote())
	pageRefs := Slice(agg.Merged(), page, perPage)
	joined, stats := s.joiner.Join(ctx, pageRefs)

	for _, ref := range pageRefs {
		if j, ok := joined[ref.Key()]; ok {
			result.Products = append(result.Products, s.projector.Project(j))
		}
	}

	result.Pagination.Total = agg.GrandTotal
	if strict {
		retrieved := agg.Retrieved
		result.Pagination.TotalRetrieved = &retrieved
	}

	observeDuration("list", start)
	observeDegraded(degradedAccountTruncated, agg.Failed())
	observeDegraded(degradedMissingBase, stats.MissingBase)
	observeDegraded(degradedExtraFailed, stats.ExtraFailed)
	observeDegraded(degradedModelsFailed, stats.ModelsFailed)

	s.logger.Info("products listed",
		zap.Int64("user_id", req.UserID),
		zap.Int("accounts", len(accounts)),
		zap.String("status", status.String()),
		zap.Int("page", page),
		zap.Int("per_page", perPage),
		zap.Int("total", agg.GrandTotal),
		zap.Int("retrieved", agg.Retrieved),
		zap.Int("returned", len(result.Products)),
		zap.Int("failed_accounts", agg.Failed()),
		zap.Int("missing_base", stats.MissingBase),
		zap.Int("models_failed", stats.ModelsFailed),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// CountByStatus 对每个账号每个远程状态发一次计数请求请求，按状态汇总 total_count
func (s *Service) CountByStatus(ctx context.Context, userID int64, accountID *int64) (map[string]int, error) {
	accounts, err := s.resolver.Resolve(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(model.RemoteStatuses))
	for _, status := range model.RemoteStatuses {
		counts[status.String()] = 0
	}
	if len(accounts) == 0 {
		return counts, nil
	}

	cacheKey := countCacheKey(userID, accountID)
	if s.cache != nil {
		cached, ok, err := s.cache.GetCounts(ctx, cacheKey)
		if err != nil {
			s.logger.Warn("count cache read failed", zap.String("key", cacheKey), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	if s.opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Deadline)
		defer cancel()
	}

	start := time.Now()
	defer observeDuration("count", start)

	// perAccount[i][k] 为第 i 个账号第 k 个状态的 total
	perAccount := make([][]int, len(accounts))
	var eg errgroup.Group
	for i := range accounts {
		acct := &accounts[i]
		eg.Go(func() error {
			perAccount[i] = s.countAccount(ctx, acct)
			return nil
		})
	}
	_ = eg.Wait()

	for _, totals := range perAccount {
		for k, status := range model.RemoteStatuses {
			counts[status.String()] += totals[k]
		}
	}

	if s.cache != nil {
		if err := s.cache.SetCounts(ctx, cacheKey, counts); err != nil {
			s.logger.Warn("count cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return counts, nil
}

func (s *Service) countAccount(ctx context.Context, acct *model.Account) []int {
	totals := make([]int, len(model.RemoteStatuses))
	for k, status := range model.RemoteStatuses {
		reqCtx := ctx
		cancel := context.CancelFunc(func() {})
		if s.opts.RequestTimeout > 0 {
			reqCtx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
		}
		res, err := s.lister.GetItemList(reqCtx, acct, 0, countPageSize, status)
		cancel()
		if err != nil {
			observeDegraded(degradedCountFailed, 1)
			s.logger.Warn("status count request failed",
				zap.Int64("account_id", acct.ID),
				zap.String("status", status.String()),
				zap.Error(err),
			)
			continue
		}
		totals[k] = res.TotalCount
	}
	return totals
}

func countCacheKey(userID int64, accountID *int64) string {
	if accountID == nil {
		return fmt.Sprintf("%d:all", userID)
	}
	return fmt.Sprintf("%d:%d", userID, *accountID)
}
