package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// MarketplaceShopee 商品记录的来源平台
const MarketplaceShopee = "shopee"

// PriceRange 价格区间，最小值等于最大值时序列化为单一值
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// SinglePrice 创建单一价格
func SinglePrice(v decimal.Decimal) *PriceRange {
	return &PriceRange{Min: v, Max: v}
}

// IsSingle 是否为单一价格
func (p PriceRange) IsSingle() bool {
	return p.Min.Equal(p.Max)
}

// MarshalJSON 单一价格输出 {"value": x}，区间输出 {"min": x, "max": y}
func (p PriceRange) MarshalJSON() ([]byte, error) {
	if p.IsSingle() {
		return json.Marshal(struct {
			Value decimal.Decimal `json:"value"`
		}{p.Min})
	}
	return json.Marshal(struct {
		Min decimal.Decimal `json:"min"`
		Max decimal.Decimal `json:"max"`
	}{p.Min, p.Max})
}

// UnmarshalJSON 接受两种格式
func (p *PriceRange) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value *decimal.Decimal `json:"value"`
		Min   *decimal.Decimal `json:"min"`
		Max   *decimal.Decimal `json:"max"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Value != nil {
		p.Min, p.Max = *raw.Value, *raw.Value
		return nil
	}
	if raw.Min != nil {
		p.Min = *raw.Min
	}
	if raw.Max != nil {
		p.Max = *raw.Max
	}
	return nil
}

// ProductRecord 聚合后的商品列表记录
type ProductRecord struct {
	ID            string            `json:"id"` // shopee-{shopId}-{itemId}
	Marketplace   string            `json:"marketplace"`
	ItemID        int64             `json:"item_id"`
	AccountID     int64             `json:"account_id"`
	ShopID        int64             `json:"shop_id"`
	Account       string            `json:"account"`
	Title         string            `json:"title"`
	ImageURL      string            `json:"image_url,omitempty"`
	SKU           string            `json:"sku"`
	Price         *PriceRange       `json:"price,omitempty"`
	PromoPrice    *PriceRange       `json:"promo_price,omitempty"`
	Stock         int64             `json:"stock"`
	SoldCount     int64             `json:"sold_count"`
	LikedCount    int64             `json:"liked_count"`
	ViewCount     int64             `json:"view_count"`
	Status        ItemStatus        `json:"status"`
	HasVariations bool              `json:"has_variations"`
	UpdatedAt     string            `json:"updated_at"`
	PublishedAt   string            `json:"published_at"`
	Variations    []VariationRecord `json:"variations,omitempty"`
}

// VariationRecord 商品变体（规格）
type VariationRecord struct {
	ID         string           `json:"variation_id"`
	Name       string           `json:"variation_name"`
	SKU        string           `json:"sku,omitempty"`
	Price      decimal.Decimal  `json:"price"`
	PromoPrice *decimal.Decimal `json:"promo_price,omitempty"`
	Stock      int64            `json:"stock"`
	ImageURL   string           `json:"image_url,omitempty"`
}
