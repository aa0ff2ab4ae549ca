package listing

import (
	"context"
	"time"

	"shopee/internal/api/shopee/product"
	"shopee/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultModelBatchSize 每批并发的 get_model_list 请求数
const DefaultModelBatchSize = 10

// DetailSource 商品详情接口
type DetailSource interface {
	GetItemBaseInfo(ctx context.Context, acct *model.Account, itemIDs []int64) ([]product.ItemBaseInfo, error)
	GetItemExtraInfo(ctx context.Context, acct *model.Account, itemIDs []int64) ([]product.ItemExtraInfo, error)
	GetModelList(ctx context.Context, acct *model.Account, itemID int64) (*product.ModelList, error)
}

// JoinStats 一次 Join 的降级统计
type JoinStats struct {
	MissingBase  int // 基础信息获取失败或缺失的商品
	ExtraFailed  int // extra_info 调用失败的账号组
	ModelsFailed int // get_model_list 失败的商品
}

// Joiner 按账号分组批量获取详情并按 (账号, 商品) 关联
type Joiner struct {
	source         DetailSource
	modelBatchSize int
	requestTimeout time.Duration
	logger         *zap.Logger
}

// NewJoiner 创建详情关联器
func NewJoiner(source DetailSource, modelBatchSize int, requestTimeout time.Duration, logger *zap.Logger) *Joiner {
	if modelBatchSize <= 0 {
		modelBatchSize = DefaultModelBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Joiner{
		source:         source,
		modelBatchSize: modelBatchSize,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

type accountGroup struct {
	account *model.Account
	refs    []model.ItemRef
}

// Join 获取当前页商品的详情，key 为 model.RefKey
// 基础信息拿不到的商品不出现在结果中
func (j *Joiner) Join(ctx context.Context, refs []model.ItemRef) (map[string]*Joined, JoinStats) {
	groups := groupByAccount(refs)

	partials := make([]map[string]*Joined, len(groups))
	stats := make([]JoinStats, len(groups))

	var eg errgroup.Group
	for i, group := range groups {
		eg.Go(func() error {
			partials[i], stats[i] = j.joinGroup(ctx, group)
			return nil
		})
	}
	_ = eg.Wait()

	joined := make(map[string]*Joined, len(refs))
	var total JoinStats
	for i := range groups {
		for key, rec := range partials[i] {
			joined[key] = rec
		}
		total.MissingBase += stats[i].MissingBase
		total.ExtraFailed += stats[i].ExtraFailed
		total.ModelsFailed += stats[i].ModelsFailed
	}
	return joined, total
}

func (j *Joiner) joinGroup(ctx context.Context, group accountGroup) (map[string]*Joined, JoinStats) {
	var stats JoinStats
	acct := group.account
	// 远程分页漂移可能让同一商品出现两次，每个商品只请求和补全一次
	seen := make(map[int64]bool, len(group.refs))
	ids := make([]int64, 0, len(group.refs))
	for _, ref := range group.refs {
		if !seen[ref.ItemID] {
			seen[ref.ItemID] = true
			ids = append(ids, ref.ItemID)
		}
	}

	// (a) 基础信息
	baseCtx, cancel := j.withTimeout(ctx)
	bases, err := j.source.GetItemBaseInfo(baseCtx, acct, ids)
	cancel()
	if err != nil {
		j.logger.Error("failed to fetch item base info",
			zap.Int64("account_id", acct.ID),
			zap.Int("item_count", len(ids)),
			zap.Error(err),
		)
		stats.MissingBase = len(ids)
		return map[string]*Joined{}, stats
	}

	joined := make(map[string]*Joined, len(bases))
	for i := range bases {
		key := model.RefKey(acct.ID, bases[i].ItemID)
		joined[key] = &Joined{
			Ref:  model.ItemRef{Account: acct, ItemID: bases[i].ItemID},
			Base: &bases[i],
		}
	}
	stats.MissingBase = len(ids) - len(joined)

	// (b) 扩展信息，失败时计数保持为 0
	extraCtx, cancel := j.withTimeout(ctx)
	extras, err := j.source.GetItemExtraInfo(extraCtx, acct, ids)
	cancel()
	if err != nil {
		stats.ExtraFailed = 1
		j.logger.Warn("item extra info unavailable, metrics default to zero",
			zap.Int64("account_id", acct.ID),
			zap.Error(err),
		)
	}
	for i := range extras {
		if rec, ok := joined[model.RefKey(acct.ID, extras[i].ItemID)]; ok {
			rec.Extra = &extras[i]
		}
	}

	// (c) 变体列表，每批 modelBatchSize 个并发，批与批之间串行
	var withModels []*Joined
	for _, id := range ids {
		if rec, ok := joined[model.RefKey(acct.ID, id)]; ok && rec.Base.HasModel {
			withModels = append(withModels, rec)
		}
	}
	stats.ModelsFailed = j.fetchModels(ctx, acct, withModels)

	return joined, stats
}

func (j *Joiner) fetchModels(ctx context.Context, acct *model.Account, records []*Joined) int {
	for start := 0; start < len(records); start += j.modelBatchSize {
		batch := records[start:min(start+j.modelBatchSize, len(records))]

		var eg errgroup.Group
		for _, rec := range batch {
			eg.Go(func() error {
				reqCtx, cancel := j.withTimeout(ctx)
				defer cancel()

				models, err := j.source.GetModelList(reqCtx, acct, rec.Ref.ItemID)
				if err != nil {
					j.logger.Warn("model list unavailable, item has no variations",
						zap.Int64("account_id", acct.ID),
						zap.Int64("item_id", rec.Ref.ItemID),
						zap.Error(err),
					)
					rec.modelsFailed = true
					return nil
				}
				rec.Models = models
				return nil
			})
		}
		_ = eg.Wait()
	}

	failed := 0
	for _, rec := range records {
		if rec.modelsFailed {
			failed++
		}
	}
	return failed
}

func (j *Joiner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if j.requestTimeout > 0 {
		return context.WithTimeout(ctx, j.requestTimeout)
	}
	return context.WithCancel(ctx)
}

// groupByAccount 按账号首次出现的顺序分组
func groupByAccount(refs []model.ItemRef) []accountGroup {
	index := make(map[int64]int)
	var groups []accountGroup
	for _, ref := range refs {
		i, ok := index[ref.Account.ID]
		if !ok {
			i = len(groups)
			index[ref.Account.ID] = i
			groups = append(groups, accountGroup{account: ref.Account})
		}
		groups[i].refs = append(groups[i].refs, ref)
	}
	return groups
}
