package listing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"shopee/internal/api/shopee/product"
	"shopee/internal/model"

	"github.com/shopspring/decimal"
)

// DefaultVariationName 既无规格选项也无变体名称时使用
const DefaultVariationName = "Variação"

// Joined 一个商品的三类远程数据
// Extra 和 Models 可能为空（尽力而为的调用失败）
type Joined struct {
	Ref    model.ItemRef
	Base   *product.ItemBaseInfo
	Extra  *product.ItemExtraInfo
	Models *product.ModelList

	modelsFailed bool
}

// Projector 将 Joined 转换为 ProductRecord，纯函数
type Projector struct {
	scale decimal.Decimal
}

// NewProjector 创建记录投影器，priceScale <= 0 时使用 DefaultPriceScale
func NewProjector(priceScale int64) *Projector {
	if priceScale <= 0 {
		priceScale = DefaultPriceScale
	}
	return &Projector{scale: decimal.NewFromInt(priceScale)}
}

// Project 生成最终的商品记录
func (p *Projector) Project(j *Joined) model.ProductRecord {
	base := j.Base
	acct := j.Ref.Account

	rec := model.ProductRecord{
		ID:            fmt.Sprintf("shopee-%d-%d", acct.ShopID, base.ItemID),
		Marketplace:   model.MarketplaceShopee,
		ItemID:        base.ItemID,
		AccountID:     acct.ID,
		ShopID:        acct.ShopID,
		Account:       acct.Label(),
		Title:         base.ItemName,
		SKU:           base.ItemSKU,
		Status:        model.ItemStatus(base.ItemStatus),
		HasVariations: base.HasModel,
		UpdatedAt:     formatEpoch(base.UpdateTime),
		PublishedAt:   formatEpoch(base.CreateTime),
	}
	if rec.SKU == "" {
		rec.SKU = strconv.FormatInt(base.ItemID, 10)
	}
	if len(base.Image.ImageURLList) > 0 {
		rec.ImageURL = base.Image.ImageURLList[0]
	}

	var extraAttrs map[string]interface{}
	if j.Extra != nil {
		extraAttrs = j.Extra.Attributes
	}
	rec.SoldCount = SalesChain.First(extraAttrs, base.Attributes)
	rec.LikedCount = LikesChain.First(extraAttrs, base.Attributes)
	rec.ViewCount = ViewsChain.First(extraAttrs, base.Attributes)

	// 变体商品的价格和库存只来自变体，变体列表不可用时为空
	if base.HasModel {
		p.projectVariations(&rec, j.Models)
		return rec
	}

	pair := normalizePrice(base.PriceInfo, p.scale)
	rec.Price = rangeOf([]decimal.Decimal{pair.original})
	if pair.hasDiscount() {
		rec.PromoPrice = model.SinglePrice(pair.current)
	}
	rec.Stock = StockChain.First(base.Attributes)
	return rec
}

func (p *Projector) projectVariations(rec *model.ProductRecord, models *product.ModelList) {
	if models == nil {
		models = &product.ModelList{}
	}
	originals := make([]decimal.Decimal, 0, len(models.Model))
	promos := make([]decimal.Decimal, 0, len(models.Model))
	variations := make([]model.VariationRecord, 0, len(models.Model))
	var stock int64

	for _, m := range models.Model {
		pair := normalizePrice(m.PriceInfo, p.scale)
		v := model.VariationRecord{
			ID:       strconv.FormatInt(m.ModelID, 10),
			Name:     variationName(models.TierVariation, m),
			SKU:      m.ModelSKU,
			Price:    pair.original,
			Stock:    StockChain.First(m.Attributes),
			ImageURL: variationImage(models.TierVariation, m),
		}
		originals = append(originals, pair.original)
		if pair.hasDiscount() {
			current := pair.current
			v.PromoPrice = &current
			promos = append(promos, current)
		}
		stock += v.Stock
		variations = append(variations, v)
	}

	rec.Variations = variations
	rec.Price = rangeOf(originals)
	rec.PromoPrice = rangeOf(promos)
	rec.Stock = stock
}

// variationName 按 tier_index 解析规格选项，用 " / " 连接
func variationName(tiers []product.TierVariation, m product.Model) string {
	if len(m.TierIndex) > 0 && len(tiers) > 0 {
		labels := make([]string, 0, len(m.TierIndex))
		for k, idx := range m.TierIndex {
			if k >= len(tiers) || idx < 0 || idx >= len(tiers[k].OptionList) {
				labels = nil
				break
			}
			option := strings.TrimSpace(tiers[k].OptionList[idx].Option)
			if option == "" {
				labels = nil
				break
			}
			labels = append(labels, option)
		}
		if len(labels) > 0 {
			return strings.Join(labels, " / ")
		}
	}
	if name := strings.TrimSpace(m.ModelName); name != "" {
		return name
	}
	return DefaultVariationName
}

// variationImage 变体自身图片，否则取第一层规格选项的图片
func variationImage(tiers []product.TierVariation, m product.Model) string {
	if m.Image.ImageURL != "" {
		return m.Image.ImageURL
	}
	if len(m.TierIndex) > 0 && len(tiers) > 0 {
		idx := m.TierIndex[0]
		if idx >= 0 && idx < len(tiers[0].OptionList) {
			return tiers[0].OptionList[idx].Image.ImageURL
		}
	}
	return ""
}

func formatEpoch(sec int64) string {
	if sec < 0 {
		sec = 0
	}
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}
