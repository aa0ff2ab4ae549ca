package listing

import (
	"context"
	"iter"
	"slices"

	"shopee/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// IdentifierFetcher 拉取单个账号的全部商品 ID
type IdentifierFetcher interface {
	FetchAll(ctx context.Context, acct *model.Account, status model.ItemStatus) FetchResult
}

// Aggregate 多账号合并结果
type Aggregate struct {
	Sources    []FetchResult // 与账号解析顺序一致
	GrandTotal int           // 各账号第一页 total 之和
	Retrieved  int           // 实际拉取到的 ID 数量
}

// Refs 按账号顺序、账号内按页顺序串联全部引用
func (a *Aggregate) Refs() iter.Seq[model.ItemRef] {
	seqs := make([]iter.Seq[model.ItemRef], len(a.Sources))
	for i := range a.Sources {
		seqs[i] = slices.Values(a.Sources[i].Refs)
	}
	return Concat(seqs...)
}

// Merged 合并后的引用列表
func (a *Aggregate) Merged() []model.ItemRef {
	return slices.Collect(a.Refs())
}

// Failed 分页被截断的账号数量
func (a *Aggregate) Failed() int {
	n := 0
	for _, src := range a.Sources {
		if src.Err != nil {
			n++
		}
	}
	return n
}

// Aggregator 并发拉取所有账号
type Aggregator struct {
	fetcher IdentifierFetcher
	logger  *zap.Logger
}

// NewAggregator 创建聚合器
func NewAggregator(fetcher IdentifierFetcher, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{fetcher: fetcher, logger: logger}
}

// Aggregate 每个账号一个 goroutine，不额外限流
func (g *Aggregator) Aggregate(ctx context.Context, accounts []model.Account, status model.ItemStatus) *Aggregate {
	results := make([]FetchResult, len(accounts))

	var eg errgroup.Group
	for i := range accounts {
		acct := &accounts[i]
		eg.Go(func() error {
			results[i] = g.fetcher.FetchAll(ctx, acct, status)
			return nil
		})
	}
	_ = eg.Wait()

	agg := &Aggregate{Sources: results}
	for _, r := range results {
		agg.GrandTotal += r.Total
		agg.Retrieved += len(r.Refs)
	}

	if failed := agg.Failed(); failed > 0 {
		g.logger.Warn("some accounts returned partial item lists",
			zap.Int("failed_accounts", failed),
			zap.Int("grand_total", agg.GrandTotal),
			zap.Int("retrieved", agg.Retrieved),
		)
	}
	return agg
}
