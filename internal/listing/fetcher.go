package listing

import (
	"context"
	"iter"
	"slices"
	"time"

	"shopee/internal/api/shopee/product"
	"shopee/internal/model"

	"go.uber.org/zap"
)

// DefaultPageSize get_item_list 每次请求的条数
const DefaultPageSize = 100

// ItemLister 分页列出商品 ID
type ItemLister interface {
	GetItemList(ctx context.Context, acct *model.Account, offset, pageSize int, status model.ItemStatus) (*product.ItemListResult, error)
}

// Cursor 单个账号单个状态的 offset 分页游标
// 总数只取第一页返回的 total_count
type Cursor struct {
	lister         ItemLister
	account        *model.Account
	status         model.ItemStatus
	pageSize       int
	requestTimeout time.Duration

	offset  int
	total   int
	started bool
	done    bool
	calls   int
	err     error
}

// Next 获取下一页，没有更多数据或出错时返回 false
func (c *Cursor) Next(ctx context.Context) ([]model.ItemRef, bool) {
	if c.done {
		return nil, false
	}

	reqCtx := ctx
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	c.calls++
	res, err := c.lister.GetItemList(reqCtx, c.account, c.offset, c.pageSize, c.status)
	if err != nil {
		c.err = err
		c.done = true
		return nil, false
	}

	if !c.started {
		c.total = res.TotalCount
		c.started = true
	}

	refs := make([]model.ItemRef, 0, len(res.Items))
	for _, item := range res.Items {
		refs = append(refs, model.ItemRef{Account: c.account, ItemID: item.ItemID})
	}

	c.offset += c.pageSize
	if len(res.Items) < c.pageSize || c.offset >= c.total {
		c.done = true
	}
	return refs, true
}

// All 以迭代器形式逐条返回引用，按需翻页
func (c *Cursor) All(ctx context.Context) iter.Seq[model.ItemRef] {
	return func(yield func(model.ItemRef) bool) {
		for {
			refs, ok := c.Next(ctx)
			if !ok {
				return
			}
			for _, ref := range refs {
				if !yield(ref) {
					return
				}
			}
		}
	}
}

// Total 第一页报告的总数
func (c *Cursor) Total() int { return c.total }

// Err 分页中断的原因
func (c *Cursor) Err() error { return c.err }

// Calls 已发出的请求数
func (c *Cursor) Calls() int { return c.calls }

// FetchResult 单个账号的分页结果
type FetchResult struct {
	Account *model.Account
	Refs    []model.ItemRef
	Total   int // 第一页报告的总数
	Pages   int
	Err     error // 非空表示结果被截断
}

// Fetcher 分页拉取商品 ID
type Fetcher struct {
	lister         ItemLister
	pageSize       int
	requestTimeout time.Duration
	logger         *zap.Logger
}

// NewFetcher 创建分页拉取器
func NewFetcher(lister ItemLister, pageSize int, requestTimeout time.Duration, logger *zap.Logger) *Fetcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		lister:         lister,
		pageSize:       pageSize,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// Cursor 为账号创建分页游标
func (f *Fetcher) Cursor(acct *model.Account, status model.ItemStatus) *Cursor {
	return &Cursor{
		lister:         f.lister,
		account:        acct,
		status:         status,
		pageSize:       f.pageSize,
		requestTimeout: f.requestTimeout,
	}
}

// FetchAll 拉取账号在该状态下的全部商品 ID
// 单页失败时停止并返回已拉取的部分，不向上返回错误
func (f *Fetcher) FetchAll(ctx context.Context, acct *model.Account, status model.ItemStatus) FetchResult {
	cursor := f.Cursor(acct, status)
	refs := slices.Collect(cursor.All(ctx))

	result := FetchResult{
		Account: acct,
		Refs:    refs,
		Total:   cursor.Total(),
		Pages:   cursor.Calls(),
		Err:     cursor.Err(),
	}

	if result.Err != nil {
		f.logger.Warn("item list paging stopped early",
			zap.Int64("account_id", acct.ID),
			zap.Int64("shop_id", acct.ShopID),
			zap.String("status", status.String()),
			zap.Int("collected", len(refs)),
			zap.Int("reported_total", result.Total),
			zap.Error(result.Err),
		)
	} else {
		f.logger.Debug("item list fetched",
			zap.Int64("account_id", acct.ID),
			zap.String("status", status.String()),
			zap.Int("count", len(refs)),
			zap.Int("pages", result.Pages),
		)
	}
	return result
}
