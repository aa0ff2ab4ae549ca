package listing

import (
	"context"
	"testing"
	"time"

	"shopee/internal/api/shopee/product"
	"shopee/internal/errs"
	"shopee/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refsFor(acct *model.Account, ids ...int64) []model.ItemRef {
	refs := make([]model.ItemRef, len(ids))
	for i, id := range ids {
		refs[i] = model.ItemRef{Account: acct, ItemID: id}
	}
	return refs
}

func TestJoiner_SameItemIDOnTwoAccounts(t *testing.T) {
	shop := newFakeShop()
	a, b := testAccount(1, 7, 100), testAccount(2, 7, 200)
	shop.base[model.RefKey(1, 555)] = product.ItemBaseInfo{ItemID: 555, ItemName: "from shop 100"}
	shop.base[model.RefKey(2, 555)] = product.ItemBaseInfo{ItemID: 555, ItemName: "from shop 200"}

	refs := append(refsFor(&a, 555), refsFor(&b, 555)...)
	joined, stats := NewJoiner(shop, 0, 0, nil).Join(context.Background(), refs)

	require.Len(t, joined, 2)
	assert.Equal(t, JoinStats{}, stats)
	assert.Equal(t, "from shop 100", joined["1:555"].Base.ItemName)
	assert.Equal(t, "from shop 200", joined["2:555"].Base.ItemName)
	assert.Same(t, &a, joined["1:555"].Ref.Account)
	assert.Equal(t, 2, shop.baseCalls)
}

func TestJoiner_ExtraAndModels(t *testing.T) {
	shop := newFakeShop()
	acct := testAccount(1, 7, 100)
	shop.base[model.RefKey(1, 10)] = product.ItemBaseInfo{ItemID: 10, HasModel: true}
	shop.base[model.RefKey(1, 11)] = product.ItemBaseInfo{ItemID: 11}
	shop.extra[model.RefKey(1, 10)] = product.ItemExtraInfo{ItemID: 10, Attributes: map[string]interface{}{"sale": 3}}
	shop.models[model.RefKey(1, 10)] = &product.ModelList{Model: []product.Model{{ModelID: 1}}}

	joined, stats := NewJoiner(shop, 0, 0, nil).Join(context.Background(), refsFor(&acct, 10, 11))

	assert.Equal(t, JoinStats{}, stats)
	require.Contains(t, joined, "1:10")
	require.NotNil(t, joined["1:10"].Extra)
	require.NotNil(t, joined["1:10"].Models)
	assert.Len(t, joined["1:10"].Models.Model, 1)

	// 没有变体的商品不请求 get_model_list
	assert.Nil(t, joined["1:11"].Models)
	assert.Equal(t, 1, shop.modelCalls)
}

func TestJoiner_ModelFailureDegrades(t *testing.T) {
	shop := newFakeShop()
	acct := testAccount(1, 7, 100)
	shop.base[model.RefKey(1, 10)] = product.ItemBaseInfo{
		ItemID:    10,
		HasModel:  true,
		PriceInfo: []product.PriceInfo{{OriginalPrice: decimalOf(3000000), CurrentPrice: decimalOf(3000000)}},
	}
	shop.modelErr[model.RefKey(1, 10)] = errs.Transport("get_model_list", 1, errBoom)

	joined, stats := NewJoiner(shop, 0, 0, nil).Join(context.Background(), refsFor(&acct, 10))

	assert.Equal(t, 1, stats.ModelsFailed)
	require.Contains(t, joined, "1:10")
	assert.Nil(t, joined["1:10"].Models)

	rec := NewProjector(DefaultPriceScale).Project(joined["1:10"])
	assert.True(t, rec.HasVariations)
	assert.Empty(t, rec.Variations)
	assert.Nil(t, rec.Price)
	assert.Zero(t, rec.Stock)
}

func TestJoiner_DuplicateRefsJoinedOnce(t *testing.T) {
	shop := newFakeShop()
	acct := testAccount(1, 7, 100)
	shop.base[model.RefKey(1, 10)] = product.ItemBaseInfo{ItemID: 10, HasModel: true}

	refs := append(refsFor(&acct, 10), refsFor(&acct, 10)...)
	joined, stats := NewJoiner(shop, 0, 0, nil).Join(context.Background(), refs)

	require.Len(t, joined, 1)
	assert.Zero(t, stats.MissingBase)
	assert.Zero(t, stats.ModelsFailed)
	assert.Equal(t, 1, shop.modelCalls)
	assert.NotNil(t, joined["1:10"].Models)
}

func TestJoiner_ModelBatchesBounded(t *testing.T) {
	shop := newFakeShop()
	shop.modelDelay = 5 * time.Millisecond
	acct := testAccount(1, 7, 100)
	ids := seqIDs(1, 25)
	for _, id := range ids {
		shop.base[model.RefKey(1, id)] = product.ItemBaseInfo{ItemID: id, HasModel: true}
	}

	_, stats := NewJoiner(shop, 10, 0, nil).Join(context.Background(), refsFor(&acct, ids...))

	assert.Equal(t, 0, stats.ModelsFailed)
	assert.Equal(t, 25, shop.modelCalls)
	assert.LessOrEqual(t, shop.maxInflight, 10)
	assert.GreaterOrEqual(t, shop.maxInflight, 1)
}

func TestJoiner_BaseFailureDropsOnlyThatAccount(t *testing.T) {
	shop := newFakeShop()
	a, b := testAccount(1, 7, 100), testAccount(2, 7, 200)
	shop.baseErr[2] = errs.HTTPStatus("get_item_base_info", 2, 500, "oops")

	refs := append(refsFor(&a, 1, 2), refsFor(&b, 3, 4, 5)...)
	joined, stats := NewJoiner(shop, 0, 0, nil).Join(context.Background(), refs)

	assert.Len(t, joined, 2)
	assert.Contains(t, joined, "1:1")
	assert.Contains(t, joined, "1:2")
	assert.Equal(t, 3, stats.MissingBase)
}

func TestJoiner_MissingBaseForSomeItems(t *testing.T) {
	shop := newFakeShop()
	acct := testAccount(1, 7, 100)
	shop.missingBase[model.RefKey(1, 2)] = true

	joined, stats := NewJoiner(shop, 0, 0, nil).Join(context.Background(), refsFor(&acct, 1, 2, 3))

	assert.Len(t, joined, 2)
	assert.NotContains(t, joined, "1:2")
	assert.Equal(t, 1, stats.MissingBase)
}

func TestJoiner_ExtraFailureKeepsItems(t *testing.T) {
	shop := newFakeShop()
	acct := testAccount(1, 7, 100)
	shop.extraErr = errs.API("get_item_extra_info", 1, "error_server", "busy")

	joined, stats := NewJoiner(shop, 0, 0, nil).Join(context.Background(), refsFor(&acct, 1, 2))

	assert.Len(t, joined, 2)
	assert.Equal(t, 1, stats.ExtraFailed)
	assert.Nil(t, joined["1:1"].Extra)

	rec := NewProjector(DefaultPriceScale).Project(joined["1:1"])
	assert.Equal(t, int64(0), rec.SoldCount)
	assert.Equal(t, int64(0), rec.ViewCount)
}

func TestJoiner_EmptyPage(t *testing.T) {
	shop := newFakeShop()
	joined, stats := NewJoiner(shop, 0, 0, nil).Join(context.Background(), nil)

	assert.Empty(t, joined)
	assert.Equal(t, JoinStats{}, stats)
	assert.Equal(t, 0, shop.baseCalls)
}
