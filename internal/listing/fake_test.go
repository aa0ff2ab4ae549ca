package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"shopee/internal/api/shopee/product"
	"shopee/internal/errs"
	"shopee/internal/model"
)

var errBoom = errors.New("boom")

// fakeShop 内存中的 Shopee 商品接口
type fakeShop struct {
	mu sync.Mutex

	items         map[int64][]int64                    // 账号 -> 商品 ID
	reportedTotal map[int64]int                        // 覆盖 total_count
	failAtOffset  map[int64]int                        // 账号在该 offset 及之后 get_item_list 失败
	statusTotals  map[int64]map[model.ItemStatus]int   // 计数查询使用
	statusErr     map[int64]map[model.ItemStatus]error // 计数查询失败
	base          map[string]product.ItemBaseInfo      // 覆盖默认基础信息
	missingBase   map[string]bool                      // 基础信息缺失
	baseErr       map[int64]error                      // 账号级基础信息失败
	extra         map[string]product.ItemExtraInfo
	extraErr      error
	models        map[string]*product.ModelList
	modelErr      map[string]error
	modelDelay    time.Duration

	listCalls   []listCall
	baseCalls   int
	modelCalls  int
	inflight    int
	maxInflight int
}

type listCall struct {
	accountID int64
	offset    int
	pageSize  int
	status    model.ItemStatus
}

func newFakeShop() *fakeShop {
	return &fakeShop{
		items:         map[int64][]int64{},
		reportedTotal: map[int64]int{},
		failAtOffset:  map[int64]int{},
		statusTotals:  map[int64]map[model.ItemStatus]int{},
		statusErr:     map[int64]map[model.ItemStatus]error{},
		base:          map[string]product.ItemBaseInfo{},
		missingBase:   map[string]bool{},
		baseErr:       map[int64]error{},
		extra:         map[string]product.ItemExtraInfo{},
		models:        map[string]*product.ModelList{},
		modelErr:      map[string]error{},
	}
}

func (f *fakeShop) GetItemList(ctx context.Context, acct *model.Account, offset, pageSize int, status model.ItemStatus) (*product.ItemListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, listCall{accountID: acct.ID, offset: offset, pageSize: pageSize, status: status})

	if byStatus, ok := f.statusTotals[acct.ID]; ok {
		if err := f.statusErr[acct.ID][status]; err != nil {
			return nil, err
		}
		return &product.ItemListResult{TotalCount: byStatus[status]}, nil
	}

	if at, ok := f.failAtOffset[acct.ID]; ok && offset >= at {
		return nil, errs.Transport("get_item_list", acct.ID, errBoom)
	}

	ids := f.items[acct.ID]
	total := len(ids)
	if t, ok := f.reportedTotal[acct.ID]; ok {
		total = t
	}
	res := &product.ItemListResult{TotalCount: total}
	for i := offset; i < len(ids) && i < offset+pageSize; i++ {
		res.Items = append(res.Items, product.ItemListEntry{ItemID: ids[i], ItemStatus: status.String()})
	}
	res.HasNextPage = offset+pageSize < len(ids)
	res.NextOffset = offset + len(res.Items)
	return res, nil
}

func (f *fakeShop) GetItemBaseInfo(ctx context.Context, acct *model.Account, itemIDs []int64) ([]product.ItemBaseInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.baseCalls++

	if err := f.baseErr[acct.ID]; err != nil {
		return nil, err
	}
	out := make([]product.ItemBaseInfo, 0, len(itemIDs))
	for _, id := range itemIDs {
		key := model.RefKey(acct.ID, id)
		if f.missingBase[key] {
			continue
		}
		if info, ok := f.base[key]; ok {
			out = append(out, info)
			continue
		}
		out = append(out, product.ItemBaseInfo{
			ItemID:     id,
			ItemName:   fmt.Sprintf("item %d of account %d", id, acct.ID),
			ItemStatus: "NORMAL",
			PriceInfo: []product.PriceInfo{{
				OriginalPrice: decimalOf(1000000),
				CurrentPrice:  decimalOf(1000000),
			}},
		})
	}
	return out, nil
}

func (f *fakeShop) GetItemExtraInfo(ctx context.Context, acct *model.Account, itemIDs []int64) ([]product.ItemExtraInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.extraErr != nil {
		return nil, f.extraErr
	}
	var out []product.ItemExtraInfo
	for _, id := range itemIDs {
		if info, ok := f.extra[model.RefKey(acct.ID, id)]; ok {
			out = append(out, info)
		}
	}
	return out, nil
}

func (f *fakeShop) GetModelList(ctx context.Context, acct *model.Account, itemID int64) (*product.ModelList, error) {
	key := model.RefKey(acct.ID, itemID)

	f.mu.Lock()
	f.modelCalls++
	f.inflight++
	f.maxInflight = max(f.maxInflight, f.inflight)
	delay := f.modelDelay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inflight--
	if err := f.modelErr[key]; err != nil {
		return nil, err
	}
	if models, ok := f.models[key]; ok {
		return models, nil
	}
	return &product.ModelList{}, nil
}

func (f *fakeShop) listCallsFor(accountID int64) []listCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []listCall
	for _, c := range f.listCalls {
		if c.accountID == accountID {
			out = append(out, c)
		}
	}
	return out
}

// fakeStore 内存账号表
type fakeStore struct {
	accounts []model.Account
	err      error
}

func (s *fakeStore) ListActiveAccounts(ctx context.Context, userID int64) ([]model.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []model.Account
	for _, a := range s.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) GetActiveAccount(ctx context.Context, userID, accountID int64) (*model.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.accounts {
		if s.accounts[i].ID == accountID && s.accounts[i].UserID == userID {
			acct := s.accounts[i]
			return &acct, nil
		}
	}
	return nil, errs.ErrNotFound
}

// fakeCache 内存计数缓存
type fakeCache struct {
	data map[string]map[string]int
	sets int
}

func (c *fakeCache) GetCounts(ctx context.Context, key string) (map[string]int, bool, error) {
	counts, ok := c.data[key]
	return counts, ok, nil
}

func (c *fakeCache) SetCounts(ctx context.Context, key string, counts map[string]int) error {
	if c.data == nil {
		c.data = map[string]map[string]int{}
	}
	c.data[key] = counts
	c.sets++
	return nil
}

func seqIDs(start int64, n int) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = start + int64(i)
	}
	return ids
}

func testAccount(id, userID, shopID int64) model.Account {
	return model.Account{ID: id, UserID: userID, ShopID: shopID, ShopName: fmt.Sprintf("Loja %d", id), AccessToken: "tok"}
}
