package listing

import (
	"encoding/json"
	"testing"

	"shopee/internal/api/shopee/product"
	"shopee/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decimalOf(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func decodeBase(t *testing.T, raw string) *product.ItemBaseInfo {
	t.Helper()
	var info product.ItemBaseInfo
	require.NoError(t, json.Unmarshal([]byte(raw), &info))
	return &info
}

func decodeExtra(t *testing.T, raw string) *product.ItemExtraInfo {
	t.Helper()
	var info product.ItemExtraInfo
	require.NoError(t, json.Unmarshal([]byte(raw), &info))
	return &info
}

func decodeModels(t *testing.T, raw string) *product.ModelList {
	t.Helper()
	var list product.ModelList
	require.NoError(t, json.Unmarshal([]byte(raw), &list))
	return &list
}

var projAccount = &model.Account{ID: 3, UserID: 7, ShopID: 98765, ShopName: "Loja Centro"}

func joinedOf(base *product.ItemBaseInfo) *Joined {
	return &Joined{Ref: model.ItemRef{Account: projAccount, ItemID: base.ItemID}, Base: base}
}

func TestProjector_SimpleItem(t *testing.T) {
	base := decodeBase(t, `{
		"item_id": 111,
		"item_name": "Camiseta",
		"item_sku": "",
		"item_status": "NORMAL",
		"create_time": 0,
		"update_time": 1700000000,
		"has_model": false,
		"image": {"image_url_list": ["https://cf.shopee/img/1", "https://cf.shopee/img/2"]},
		"price_info": [{"currency": "BRL", "original_price": 1999000, "current_price": 1999000}],
		"stock_info_v2": {"summary_info": {"total_available_stock": 42}}
	}`)

	rec := NewProjector(DefaultPriceScale).Project(joinedOf(base))

	assert.Equal(t, "shopee-98765-111", rec.ID)
	assert.Equal(t, model.MarketplaceShopee, rec.Marketplace)
	assert.Equal(t, "Loja Centro", rec.Account)
	assert.Equal(t, int64(3), rec.AccountID)
	assert.Equal(t, "Camiseta", rec.Title)
	assert.Equal(t, "111", rec.SKU)
	assert.Equal(t, "https://cf.shopee/img/1", rec.ImageURL)
	assert.Equal(t, model.StatusNormal, rec.Status)
	assert.False(t, rec.HasVariations)
	assert.Equal(t, "1970-01-01T00:00:00Z", rec.PublishedAt)
	assert.Equal(t, "2023-11-14T22:13:20Z", rec.UpdatedAt)

	require.NotNil(t, rec.Price)
	assert.True(t, rec.Price.IsSingle())
	assert.True(t, rec.Price.Min.Equal(mustDecimal(t, "19.99")))
	assert.Nil(t, rec.PromoPrice)
	assert.Equal(t, int64(42), rec.Stock)
	assert.Empty(t, rec.Variations)
}

func TestProjector_ItemLevelPromo(t *testing.T) {
	tests := []struct {
		name      string
		original  int64
		current   int64
		wantPrice string
		wantPromo string
	}{
		{"discounted", 2000000, 1500000, "20", "15"},
		{"same price", 2000000, 2000000, "20", ""},
		{"missing original", 0, 1500000, "15", ""},
		{"missing current", 2000000, 0, "20", ""},
		{"current above original", 1500000, 2000000, "15", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &product.ItemBaseInfo{
				ItemID:    1,
				PriceInfo: []product.PriceInfo{{OriginalPrice: decimalOf(tt.original), CurrentPrice: decimalOf(tt.current)}},
			}
			rec := NewProjector(DefaultPriceScale).Project(joinedOf(base))

			require.NotNil(t, rec.Price)
			assert.True(t, rec.Price.Min.Equal(mustDecimal(t, tt.wantPrice)), "price %s", rec.Price.Min)
			if tt.wantPromo == "" {
				assert.Nil(t, rec.PromoPrice)
				return
			}
			require.NotNil(t, rec.PromoPrice)
			assert.True(t, rec.PromoPrice.Min.Equal(mustDecimal(t, tt.wantPromo)))
		})
	}
}

func TestProjector_NoPriceInfo(t *testing.T) {
	rec := NewProjector(DefaultPriceScale).Project(joinedOf(&product.ItemBaseInfo{ItemID: 1}))

	assert.Nil(t, rec.Price)
	assert.Nil(t, rec.PromoPrice)
}

func TestProjector_CustomScale(t *testing.T) {
	base := &product.ItemBaseInfo{
		ItemID:    1,
		PriceInfo: []product.PriceInfo{{OriginalPrice: decimalOf(1999), CurrentPrice: decimalOf(1999)}},
	}
	rec := NewProjector(100).Project(joinedOf(base))

	require.NotNil(t, rec.Price)
	assert.True(t, rec.Price.Min.Equal(mustDecimal(t, "19.99")))
}

const tieredModels = `{
	"tier_variation": [
		{"name": "Cor", "option_list": [
			{"option": "Vermelho", "image": {"image_url": "https://cf.shopee/red"}},
			{"option": "Azul", "image": {"image_url": "https://cf.shopee/blue"}}
		]},
		{"name": "Tamanho", "option_list": [{"option": "P"}, {"option": "M"}]}
	],
	"model": [
		{"model_id": 1, "model_sku": "RED-P", "tier_index": [0, 0],
		 "price_info": [{"original_price": 1000000, "current_price": 800000}],
		 "stock_info_v2": {"summary_info": {"total_available_stock": 3}}},
		{"model_id": 2, "model_sku": "BLUE-M", "tier_index": [1, 1],
		 "price_info": [{"original_price": 1500000, "current_price": 1500000}],
		 "image": {"image_url": "https://cf.shopee/blue-m"},
		 "stock_info_v2": {"summary_info": {"total_available_stock": 4}}}
	]
}`

func TestProjector_Variations(t *testing.T) {
	base := decodeBase(t, `{"item_id": 5, "has_model": true,
		"price_info": [{"original_price": 9900000, "current_price": 9900000}],
		"stock_info_v2": {"summary_info": {"total_available_stock": 999}}}`)
	j := joinedOf(base)
	j.Models = decodeModels(t, tieredModels)

	rec := NewProjector(DefaultPriceScale).Project(j)

	assert.True(t, rec.HasVariations)
	require.Len(t, rec.Variations, 2)

	red, blue := rec.Variations[0], rec.Variations[1]
	assert.Equal(t, "1", red.ID)
	assert.Equal(t, "Vermelho / P", red.Name)
	assert.Equal(t, "RED-P", red.SKU)
	assert.True(t, red.Price.Equal(decimalOf(10)))
	require.NotNil(t, red.PromoPrice)
	assert.True(t, red.PromoPrice.Equal(decimalOf(8)))
	assert.Equal(t, int64(3), red.Stock)
	assert.Equal(t, "https://cf.shopee/red", red.ImageURL)

	assert.Equal(t, "Azul / M", blue.Name)
	assert.Nil(t, blue.PromoPrice)
	assert.Equal(t, "https://cf.shopee/blue-m", blue.ImageURL)

	// 价格区间来自变体原价，促销价只统计有折扣的变体
	require.NotNil(t, rec.Price)
	assert.True(t, rec.Price.Min.Equal(decimalOf(10)))
	assert.True(t, rec.Price.Max.Equal(decimalOf(15)))
	require.NotNil(t, rec.PromoPrice)
	assert.True(t, rec.PromoPrice.IsSingle())
	assert.True(t, rec.PromoPrice.Min.Equal(decimalOf(8)))

	// 库存为变体之和，忽略商品级库存
	assert.Equal(t, int64(7), rec.Stock)
}

func TestProjector_VariationPriceRange(t *testing.T) {
	tests := []struct {
		name       string
		prices     [][2]int64
		wantNil    bool
		wantSingle bool
		wantMin    int64
		wantMax    int64
	}{
		{"equal prices collapse", [][2]int64{{1000000, 1000000}, {1000000, 1000000}}, false, true, 10, 10},
		{"different prices", [][2]int64{{1000000, 1000000}, {1500000, 1500000}}, false, false, 10, 15},
		{"zero prices ignored", [][2]int64{{0, 0}, {1500000, 1500000}}, false, true, 15, 15},
		{"all zero", [][2]int64{{0, 0}, {0, 0}}, true, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models := &product.ModelList{}
			for i, p := range tt.prices {
				models.Model = append(models.Model, product.Model{
					ModelID:   int64(i + 1),
					PriceInfo: []product.PriceInfo{{OriginalPrice: decimalOf(p[0]), CurrentPrice: decimalOf(p[1])}},
				})
			}
			j := joinedOf(&product.ItemBaseInfo{ItemID: 9, HasModel: true})
			j.Models = models

			rec := NewProjector(DefaultPriceScale).Project(j)

			assert.Nil(t, rec.PromoPrice)
			if tt.wantNil {
				assert.Nil(t, rec.Price)
				return
			}
			require.NotNil(t, rec.Price)
			assert.Equal(t, tt.wantSingle, rec.Price.IsSingle())
			assert.True(t, rec.Price.Min.Equal(decimalOf(tt.wantMin)))
			assert.True(t, rec.Price.Max.Equal(decimalOf(tt.wantMax)))
		})
	}
}

func TestProjector_ModelsUnavailableKeepsVariableShape(t *testing.T) {
	base := decodeBase(t, `{"item_id": 5, "has_model": true,
		"price_info": [{"original_price": 2500000, "current_price": 2000000}],
		"stock_info_v2": {"summary_info": {"total_available_stock": 40}}}`)
	j := joinedOf(base)
	j.modelsFailed = true

	rec := NewProjector(DefaultPriceScale).Project(j)

	assert.True(t, rec.HasVariations)
	assert.NotNil(t, rec.Variations)
	assert.Empty(t, rec.Variations)
	assert.Nil(t, rec.Price, "item-level price is not used for a variable product")
	assert.Nil(t, rec.PromoPrice)
	assert.Equal(t, int64(0), rec.Stock, "item-level stock is not used for a variable product")
}

func TestVariationName(t *testing.T) {
	tiers := decodeModels(t, tieredModels).TierVariation

	tests := []struct {
		name  string
		model product.Model
		want  string
	}{
		{"tier options", product.Model{TierIndex: []int{1, 0}}, "Azul / P"},
		{"index out of range uses model name", product.Model{TierIndex: []int{5}, ModelName: "Especial"}, "Especial"},
		{"no tiers uses model name", product.Model{ModelName: " Kit 2 "}, "Kit 2"},
		{"nothing uses default", product.Model{}, DefaultVariationName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, variationName(tiers, tt.model))
		})
	}
}

func TestProjector_CounterFallbacks(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		extra     string
		wantSold  int64
		wantLikes int64
		wantViews int64
	}{
		{
			name:     "extra info first",
			base:     `{"item_id": 1, "sale": 99}`,
			extra:    `{"item_id": 1, "sale": 4, "likes": 2, "views": 30}`,
			wantSold: 4, wantLikes: 2, wantViews: 30,
		},
		{
			name:     "alternate names",
			base:     `{"item_id": 1}`,
			extra:    `{"item_id": 1, "historical_sold": 7, "liked_count": 3, "view_count": 11}`,
			wantSold: 7, wantLikes: 3, wantViews: 11,
		},
		{
			name:     "zero counts as present",
			base:     `{"item_id": 1, "sales": 50}`,
			extra:    `{"item_id": 1, "sale": 0}`,
			wantSold: 0,
		},
		{
			name:     "null is skipped",
			base:     `{"item_id": 1}`,
			extra:    `{"item_id": 1, "sale": null, "sold": 8}`,
			wantSold: 8,
		},
		{
			name:     "base info when extra is missing",
			base:     `{"item_id": 1, "sold": 6, "liked_count": 1}`,
			wantSold: 6, wantLikes: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := joinedOf(decodeBase(t, tt.base))
			if tt.extra != "" {
				j.Extra = decodeExtra(t, tt.extra)
			}

			rec := NewProjector(DefaultPriceScale).Project(j)

			assert.Equal(t, tt.wantSold, rec.SoldCount)
			assert.Equal(t, tt.wantLikes, rec.LikedCount)
			assert.Equal(t, tt.wantViews, rec.ViewCount)
		})
	}
}

func TestStockChain(t *testing.T) {
	tests := []struct {
		name  string
		attrs map[string]interface{}
		want  int64
	}{
		{"summary info", map[string]interface{}{
			"stock_info_v2": map[string]interface{}{"summary_info": map[string]interface{}{"total_available_stock": 9}},
			"stock":         100,
		}, 9},
		{"legacy stock info", map[string]interface{}{
			"stock_info": []interface{}{map[string]interface{}{"normal_stock": 5}},
		}, 5},
		{"normal stock", map[string]interface{}{"normal_stock": "3"}, 3},
		{"plain stock", map[string]interface{}{"stock": 2.0}, 2},
		{"nothing", map[string]interface{}{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StockChain.First(tt.attrs))
		})
	}
}

func TestProductRecord_JSON(t *testing.T) {
	base := decodeBase(t, `{"item_id": 111, "price_info": [{"original_price": 1999000, "current_price": 1999000}]}`)
	rec := NewProjector(DefaultPriceScale).Project(joinedOf(base))

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, map[string]interface{}{"value": "19.99"}, out["price"])
	assert.NotContains(t, out, "promo_price")
	assert.NotContains(t, out, "variations")
}
