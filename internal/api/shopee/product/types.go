package product

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ItemListEntry get_item_list 返回的商品条目
type ItemListEntry struct {
	ItemID     int64  `json:"item_id"`
	ItemStatus string `json:"item_status"`
	UpdateTime int64  `json:"update_time"`
}

// ItemListResult get_item_list 响应
type ItemListResult struct {
	Items       []ItemListEntry `json:"item"`
	TotalCount  int             `json:"total_count"`
	HasNextPage bool            `json:"has_next_page"`
	NextOffset  int             `json:"next_offset"`
}

// PriceInfo 价格信息，单位由 pipeline.price_scale 决定
type PriceInfo struct {
	Currency      string          `json:"currency"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
}

// ItemImage 商品图片
type ItemImage struct {
	ImageURLList []string `json:"image_url_list"`
	ImageIDList  []string `json:"image_id_list"`
}

// ItemBaseInfo get_item_base_info 返回的单个商品
// Attributes 保留原始字段，用于按备选字段名读取计数类数据
type ItemBaseInfo struct {
	ItemID     int64       `json:"item_id"`
	ItemName   string      `json:"item_name"`
	ItemSKU    string      `json:"item_sku"`
	ItemStatus string      `json:"item_status"`
	CreateTime int64       `json:"create_time"`
	UpdateTime int64       `json:"update_time"`
	HasModel   bool        `json:"has_model"`
	Image      ItemImage   `json:"image"`
	PriceInfo  []PriceInfo `json:"price_info"`

	Attributes map[string]interface{} `json:"-"`
}

// UnmarshalJSON 同时解析结构化字段和原始字段
func (i *ItemBaseInfo) UnmarshalJSON(data []byte) error {
	type alias ItemBaseInfo
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	attrs, err := decodeAttributes(data)
	if err != nil {
		return err
	}
	*i = ItemBaseInfo(a)
	i.Attributes = attrs
	return nil
}

// ItemExtraInfo get_item_extra_info 返回的单个商品
type ItemExtraInfo struct {
	ItemID int64 `json:"item_id"`

	Attributes map[string]interface{} `json:"-"`
}

// UnmarshalJSON 同时解析结构化字段和原始字段
func (i *ItemExtraInfo) UnmarshalJSON(data []byte) error {
	type alias ItemExtraInfo
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	attrs, err := decodeAttributes(data)
	if err != nil {
		return err
	}
	*i = ItemExtraInfo(a)
	i.Attributes = attrs
	return nil
}

// TierOption 规格选项
type TierOption struct {
	Option string `json:"option"`
	Image  struct {
		ImageURL string `json:"image_url"`
	} `json:"image"`
}

// TierVariation 规格维度（如颜色、尺码）
type TierVariation struct {
	Name       string       `json:"name"`
	OptionList []TierOption `json:"option_list"`
}

// Model 商品变体
type Model struct {
	ModelID   int64       `json:"model_id"`
	ModelSKU  string      `json:"model_sku"`
	ModelName string      `json:"model_name"`
	TierIndex []int       `json:"tier_index"`
	PriceInfo []PriceInfo `json:"price_info"`
	Image     struct {
		ImageURL string `json:"image_url"`
	} `json:"image"`

	Attributes map[string]interface{} `json:"-"`
}

// UnmarshalJSON 同时解析结构化字段和原始字段
func (m *Model) UnmarshalJSON(data []byte) error {
	type alias Model
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	attrs, err := decodeAttributes(data)
	if err != nil {
		return err
	}
	*m = Model(a)
	m.Attributes = attrs
	return nil
}

// ModelList get_model_list 响应
type ModelList struct {
	TierVariation []TierVariation `json:"tier_variation"`
	Model         []Model         `json:"model"`
}

func decodeAttributes(data []byte) (map[string]interface{}, error) {
	attrs := make(map[string]interface{})
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}
