package listing

import (
	"shopee/internal/api/shopee/product"
	"shopee/internal/model"

	"github.com/shopspring/decimal"
)

// DefaultPriceScale 远程价格的定点单位：1 货币单位 = 100000
const DefaultPriceScale = 100000

// pricePair 归一化后的一对价格
type pricePair struct {
	original decimal.Decimal
	current  decimal.Decimal
}

// normalizePrice 将远程价格除以 scale，并在一侧缺失时用另一侧补齐
func normalizePrice(infos []product.PriceInfo, scale decimal.Decimal) pricePair {
	if len(infos) == 0 {
		return pricePair{}
	}
	original := infos[0].OriginalPrice.Div(scale)
	current := infos[0].CurrentPrice.Div(scale)

	if !original.IsPositive() {
		original = current
	}
	if !current.IsPositive() {
		current = original
	}
	return pricePair{original: original, current: current}
}

// hasDiscount 当前价严格低于原价
func (p pricePair) hasDiscount() bool {
	return p.current.IsPositive() && p.current.LessThan(p.original)
}

// rangeOf 取正值的最小/最大值，没有正值时返回 nil
func rangeOf(values []decimal.Decimal) *model.PriceRange {
	var r *model.PriceRange
	for _, v := range values {
		if !v.IsPositive() {
			continue
		}
		if r == nil {
			r = model.SinglePrice(v)
			continue
		}
		if v.LessThan(r.Min) {
			r.Min = v
		}
		if v.GreaterThan(r.Max) {
			r.Max = v
		}
	}
	return r
}
